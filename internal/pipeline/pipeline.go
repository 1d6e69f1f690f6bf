// Package pipeline drives the chapter conversion steps over directories:
// split a raw book into per-chapter files, build EN-only documents, fill
// the KO field, then bundle or export the verified chapters.
//
// Every chapter is an independent unit. A failure is recorded in that
// chapter's Result and the run moves on to the next chapter.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/FocuswithJustin/versesplit/core/books"
	"github.com/FocuswithJustin/versesplit/core/chapter"
	"github.com/FocuswithJustin/versesplit/core/verify"
	"github.com/FocuswithJustin/versesplit/internal/config"
	"github.com/FocuswithJustin/versesplit/internal/fill"
	"github.com/FocuswithJustin/versesplit/internal/validation"
)

// Stage names a pipeline step.
type Stage string

const (
	StageSplit  Stage = "split"
	StageBuild  Stage = "build"
	StageFill   Stage = "fill"
	StageVerify Stage = "verify"
	StageExport Stage = "export"
)

// Result is the outcome of one chapter.
type Result struct {
	BookCode string
	Chapter  int
	// Stage is the last stage attempted.
	Stage    Stage
	Path     string
	Verses   int
	Warnings []verify.Warning
	Err      error
}

// OK reports whether the chapter went through without error.
func (r Result) OK() bool {
	return r.Err == nil
}

// Name returns the chapter's file name.
func (r Result) Name() string {
	return chapter.FileName(r.BookCode, r.Chapter)
}

// Report collects the results of a run.
type Report struct {
	RunID    string
	Results  []Result
	Duration time.Duration
}

// Succeeded counts chapters without error.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed counts chapters with an error.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Failures returns the failed results in run order.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Pipeline holds what every step needs.
type Pipeline struct {
	cfg        *config.Config
	table      *books.Table
	translator fill.Translator
	now        func() time.Time
}

// New creates a Pipeline. A nil translator replays responses from
// cfg.Fill.ResponsesDir.
func New(cfg *config.Config, table *books.Table, tr fill.Translator) *Pipeline {
	if tr == nil {
		tr = fill.FileTranslator{Dir: cfg.Fill.ResponsesDir}
	}
	return &Pipeline{
		cfg:        cfg,
		table:      table,
		translator: tr,
		now:        time.Now,
	}
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// verifyOptions returns the validator options for a chapter. Both dialects
// apply the configured gloss rules.
func (p *Pipeline) verifyOptions(d chapter.Dialect, bookCode string, ch int) verify.Options {
	return verify.Options{
		Dialect:  d,
		Glosses:  p.cfg.Glosses,
		BookCode: bookCode,
		Chapter:  ch,
	}
}

func (p *Pipeline) fillOptions(all bool) fill.Options {
	return fill.Options{
		MaxAttempts:     p.cfg.Fill.MaxAttempts,
		InitialInterval: p.cfg.Fill.InitialInterval,
		MaxInterval:     p.cfg.Fill.MaxInterval,
		All:             all,
	}
}

// chapterFiles lists the chapters of bookCode present in dir as
// <code>_<ccc>.txt files, sorted by chapter. A missing directory yields
// no chapters.
func chapterFiles(dir, bookCode string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var out []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		code, ch, ok := validation.ParseChapterFileName(e.Name())
		if !ok || code != bookCode {
			continue
		}
		out = append(out, ch)
	}
	sort.Ints(out)
	return out, nil
}

// writeFile replaces path atomically with data.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// chapterPath joins dir with the canonical file name.
func chapterPath(dir, bookCode string, ch int) string {
	return filepath.Join(dir, chapter.FileName(bookCode, ch))
}

// intermediate renders raw verses as "C:V text" lines, the format Split
// writes and Build reads back.
func intermediate(ch int, verses []chapter.Verse) []byte {
	var sb strings.Builder
	for _, v := range verses {
		fmt.Fprintf(&sb, "%d:%d %s\n", ch, v.N, v.EN)
	}
	return []byte(sb.String())
}
