package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/versesplit/core/chapters"
	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
	"github.com/FocuswithJustin/versesplit/internal/logging"
)

// BatchOptions controls a batch run.
type BatchOptions struct {
	// Fill runs the KO fill step after each successful build.
	Fill bool
	// All re-translates verses that already have KO text.
	All bool
	// TranscriptPath, when set, receives the run transcript.
	TranscriptPath string
}

// Batch builds, and optionally fills, every selected chapter of bookCode
// found in the raw directory. Selected chapters without a raw file are
// reported as failures. The returned error is reserved for problems that
// stop the whole run; chapter failures live in the report.
func (p *Pipeline) Batch(ctx context.Context, bookCode string, sel *chapters.Selection, opts BatchOptions) (*Report, error) {
	start := p.now()
	if _, err := p.table.Lookup(bookCode); err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString()}
	ctx = logging.WithRunID(ctx, report.RunID)

	nums, err := p.batchChapters(bookCode, sel)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return nil, vserrors.NewNotFound("raw chapters for book", bookCode)
	}
	logging.InfoContext(ctx, "batch_start", "book", bookCode, "chapters", len(nums), "selection", sel.String(), "fill", opts.Fill)

	var runErr error
	for _, ch := range nums {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		res := p.Build(ctx, bookCode, ch)
		if res.OK() && opts.Fill {
			res = p.Fill(ctx, bookCode, ch, opts.All)
		}
		report.Results = append(report.Results, res)
	}

	report.Duration = time.Since(start)
	logging.RunSummary(ctx, report.Succeeded(), report.Failed(), report.Duration, "book", bookCode)

	if opts.TranscriptPath != "" {
		if err := WriteTranscript(opts.TranscriptPath, report.Events()); err != nil {
			logging.ErrorContext(ctx, "transcript_write_failed", "path", opts.TranscriptPath, "error", err)
			if runErr == nil {
				runErr = err
			}
		}
	}
	return report, runErr
}

// batchChapters lists every chapter on disk, or every selected chapter so
// that one missing from disk still gets a result.
func (p *Pipeline) batchChapters(bookCode string, sel *chapters.Selection) ([]int, error) {
	if sel == nil {
		return chapterFiles(p.cfg.RawDir, bookCode)
	}

	// ranges are merged and sorted, so this is already in order
	var out []int
	for _, r := range sel.Ranges {
		for n := max(r.From, 1); n <= min(r.To, chapters.MaxChapter); n++ {
			out = append(out, n)
		}
	}
	return out, nil
}
