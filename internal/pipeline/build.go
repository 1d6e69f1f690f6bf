package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/FocuswithJustin/versesplit/core/chapter"
	"github.com/FocuswithJustin/versesplit/core/emit"
	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
	"github.com/FocuswithJustin/versesplit/core/segment"
	"github.com/FocuswithJustin/versesplit/core/verify"
	"github.com/FocuswithJustin/versesplit/internal/fill"
	"github.com/FocuswithJustin/versesplit/internal/logging"
	"github.com/FocuswithJustin/versesplit/internal/rawsource"
	"github.com/FocuswithJustin/versesplit/internal/validation"
)

// BuildDocument converts the raw lines of one chapter into a validated
// EN-only document. Lines for other chapters are ignored. Bare archaic
// words receive their gloss before validation.
func (p *Pipeline) BuildDocument(lines []string, bookCode string, ch int) (*verify.Result, error) {
	opts, err := p.cfg.SegmentOptions(nil)
	if err != nil {
		return nil, err
	}

	raw := segment.Select(segment.Accumulate(lines, opts), segment.ChapterKey{Chapter: ch})
	if len(raw) == 0 {
		return nil, vserrors.Chapterf(vserrors.KindMalformedInput, 0, "no verses found for chapter %d", ch)
	}

	doc, err := emit.Chapter(bookCode, ch, raw, p.table)
	if err != nil {
		return nil, err
	}
	for i := range doc.Verses {
		doc.Verses[i].EN = verify.ApplyGlosses(doc.Verses[i].EN, p.cfg.Glosses)
	}

	return verify.Text(string(doc.Bytes()), p.verifyOptions(chapter.ENOnly, bookCode, ch))
}

// BuildFile builds one chapter from src and writes it to the EN-only
// directory.
func (p *Pipeline) BuildFile(ctx context.Context, src, bookCode string, ch int) Result {
	res := Result{BookCode: bookCode, Chapter: ch, Stage: StageBuild}

	lines, err := rawsource.ReadFile(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = &vserrors.NotFoundError{Resource: "raw chapter", ID: src, Err: err}
		}
		res.Err = err
		return p.logResult(ctx, res)
	}

	vr, err := p.BuildDocument(lines, bookCode, ch)
	if err != nil {
		res.Err = vserrors.Wrapf(err, "build %s", res.Name())
		return p.logResult(ctx, res)
	}

	res.Path = chapterPath(p.cfg.ENOnlyDir, bookCode, ch)
	res.Verses = vr.Count()
	res.Warnings = vr.Warnings
	res.Err = writeFile(res.Path, vr.Document().Bytes())
	return p.logResult(ctx, res)
}

// Build builds one chapter from its file in the raw directory.
func (p *Pipeline) Build(ctx context.Context, bookCode string, ch int) Result {
	return p.BuildFile(ctx, chapterPath(p.cfg.RawDir, bookCode, ch), bookCode, ch)
}

// Fill reads the EN-only document of one chapter, completes its KO fields
// through the translator and writes the result to the final directory once
// it passes validation in the filled dialect. With all set, verses that
// already carry KO text are translated again.
func (p *Pipeline) Fill(ctx context.Context, bookCode string, ch int, all bool) Result {
	res := Result{BookCode: bookCode, Chapter: ch, Stage: StageFill}

	src := chapterPath(p.cfg.ENOnlyDir, bookCode, ch)
	vr, err := p.VerifyFile(src, chapter.ENOnly)
	if err != nil {
		res.Err = err
		return p.logResult(ctx, res)
	}

	doc := vr.Document()
	logging.DebugContext(ctx, "fill_start", "book", bookCode, "chapter", ch, "missing", fill.Missing(doc), "all", all)
	if err := fill.Chapter(ctx, doc, p.translator, p.fillOptions(all)); err != nil {
		res.Err = err
		return p.logResult(ctx, res)
	}

	res.Stage = StageVerify
	final, err := verify.Text(string(doc.Bytes()), p.verifyOptions(chapter.Filled, bookCode, ch))
	if err != nil {
		res.Err = vserrors.Wrapf(err, "verify %s", res.Name())
		return p.logResult(ctx, res)
	}

	res.Path = chapterPath(p.cfg.FinalDir, bookCode, ch)
	res.Verses = final.Count()
	res.Warnings = final.Warnings
	res.Err = writeFile(res.Path, final.Document().Bytes())
	return p.logResult(ctx, res)
}

// VerifyFile validates the document at path in dialect d. When the file
// name follows the chapter naming convention the header must agree with
// it.
func (p *Pipeline) VerifyFile(path string, d chapter.Dialect) (*verify.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &vserrors.NotFoundError{Resource: "chapter document", ID: path, Err: err}
		}
		return nil, vserrors.NewIO("read", path, err)
	}

	return p.verifyBytes(path, data, d)
}

func (p *Pipeline) verifyBytes(name string, data []byte, d chapter.Dialect) (*verify.Result, error) {
	opts := p.verifyOptions(d, "", 0)
	if code, ch, ok := validation.ParseChapterFileName(name); ok {
		opts.BookCode, opts.Chapter = code, ch
	}

	vr, err := verify.Text(string(data), opts)
	if err != nil {
		return nil, vserrors.Wrapf(err, "verify %s", filepath.Base(name))
	}
	return vr, nil
}

func (p *Pipeline) logResult(ctx context.Context, res Result) Result {
	if res.OK() {
		logging.ChapterEvent(ctx, string(res.Stage), res.BookCode, res.Chapter, "verses", res.Verses, "warnings", len(res.Warnings), "path", res.Path)
		for _, w := range res.Warnings {
			logging.WarnContext(ctx, "chapter_warning", "book", res.BookCode, "chapter", res.Chapter, "line", w.Line, "message", w.Message)
		}
	} else {
		var args []any
		if kind := vserrors.KindOf(res.Err); kind != 0 {
			args = append(args, "kind", kind.String())
		}
		logging.ChapterFailure(ctx, string(res.Stage), res.BookCode, res.Chapter, res.Err, args...)
	}
	return res
}
