// Package fill completes the KO field of an EN-only chapter by asking a
// Translator for the missing verses and merging its answer.
//
// The translator sees one prompt per attempt. Each answer line has the form
//
//	KO|N=<verse>|KO=<text>
//
// and anything else is ignored. Verses still missing after an attempt are
// asked for again, with exponential backoff between attempts.
package fill

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/FocuswithJustin/versesplit/core/chapter"
	"github.com/FocuswithJustin/versesplit/internal/logging"
)

// ErrIncomplete is returned when verses remain without KO text after the
// last attempt.
var ErrIncomplete = errors.New("fill incomplete")

var responseLine = regexp.MustCompile(`^KO\|N=([0-9]+)\|KO=(.*)$`)

// Prompt is one translation request.
type Prompt struct {
	BookCode string
	Chapter  int
	Attempt  int
	Verses   []chapter.Verse
}

// Text renders the prompt for a language model. Retries name the missing
// verse numbers explicitly.
func (p Prompt) Text() string {
	var sb strings.Builder
	sb.WriteString("Return ONLY the following lines. No extra text. No blank lines.\n")
	sb.WriteString("Format (exact): KO|N=<verse>|KO=<Korean translation>\n")
	fmt.Fprintf(&sb, "Source: %s chapter %d (KJV). Leave inline glosses such as unto(to) out of the Korean text.\n", p.BookCode, p.Chapter)
	if p.Attempt > 1 {
		nums := make([]int, len(p.Verses))
		for i, v := range p.Verses {
			nums[i] = v.N
		}
		fmt.Fprintf(&sb, "Translate ONLY the missing verses %v, each exactly once, in increasing order.\n", nums)
	} else {
		sb.WriteString("Translate EVERY verse below, each exactly once, in increasing order.\n")
	}
	sb.WriteString("- Do NOT wrap lines.\n- Do NOT include English.\n- Do NOT use the '|' character.\n\n")
	for _, v := range p.Verses {
		fmt.Fprintf(&sb, "EN|N=%d|EN=%s\n", v.N, v.EN)
	}
	return sb.String()
}

// Translator answers prompts.
type Translator interface {
	Translate(ctx context.Context, p Prompt) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(ctx context.Context, p Prompt) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// Options controls retries.
type Options struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// All re-translates every verse, not only those with empty KO.
	All bool
}

// ParseResponse extracts verse → KO text from a translator answer. Lines
// that do not match, carry an empty or '|'-containing text, or repeat an
// earlier verse are skipped.
func ParseResponse(resp string) map[int]string {
	out := make(map[int]string)
	for _, line := range strings.Split(resp, "\n") {
		m := responseLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		text := strings.Join(strings.Fields(m[2]), " ")
		if text == "" || strings.Contains(text, "|") {
			continue
		}
		if _, dup := out[n]; dup {
			continue
		}
		out[n] = text
	}
	return out
}

// Missing returns the numbers of verses whose KO is empty.
func Missing(doc *chapter.Document) []int {
	var out []int
	for _, v := range doc.Verses {
		if strings.TrimSpace(v.KO) == "" {
			out = append(out, v.N)
		}
	}
	return out
}

// Chapter fills doc in place. The returned error wraps ErrIncomplete when
// verses are still missing once the attempts run out.
func Chapter(ctx context.Context, doc *chapter.Document, tr Translator, opts Options) error {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	index := make(map[int]int, len(doc.Verses))
	for i, v := range doc.Verses {
		index[v.N] = i
	}

	pending := make(map[int]bool)
	for _, v := range doc.Verses {
		if opts.All || strings.TrimSpace(v.KO) == "" {
			pending[v.N] = true
		}
	}
	if len(pending) == 0 {
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	if opts.InitialInterval > 0 {
		bo.InitialInterval = opts.InitialInterval
	}
	if opts.MaxInterval > 0 {
		bo.MaxInterval = opts.MaxInterval
	}
	bo.MaxElapsedTime = 0

	attempt := 0
	h := doc.Header
	op := func() error {
		attempt++
		p := Prompt{BookCode: h.BookCode, Chapter: h.Chapter, Attempt: attempt}
		for _, v := range doc.Verses {
			if pending[v.N] {
				p.Verses = append(p.Verses, v)
			}
		}

		resp, err := tr.Translate(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			logging.WarnContext(ctx, "translator failed", "book", h.BookCode, "chapter", h.Chapter, "attempt", attempt, "error", err.Error())
			return err
		}

		for n, ko := range ParseResponse(resp) {
			if !pending[n] {
				continue
			}
			doc.Verses[index[n]].KO = ko
			delete(pending, n)
		}
		if len(pending) > 0 {
			logging.DebugContext(ctx, "verses still missing", "book", h.BookCode, "chapter", h.Chapter, "attempt", attempt, "missing", len(pending))
			return fmt.Errorf("%w: verses %v have no KO text", ErrIncomplete, sortedKeys(pending))
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(opts.MaxAttempts-1)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("fill %s: %w", chapter.FileName(h.BookCode, h.Chapter), err)
	}
	return nil
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// FileTranslator answers with a recorded response file per chapter,
// <Dir>/<code>_<ccc>.txt. It is used for offline runs and replays.
type FileTranslator struct {
	Dir string
}

// Translate returns the recorded response for p's chapter.
func (f FileTranslator) Translate(_ context.Context, p Prompt) (string, error) {
	path := filepath.Join(f.Dir, chapter.FileName(p.BookCode, p.Chapter))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("no recorded response: %w", err))
	}
	return string(data), nil
}
