package pipeline

import (
	"context"
	"time"

	"github.com/FocuswithJustin/versesplit/core/chapters"
	"github.com/FocuswithJustin/versesplit/core/emit"
	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
	"github.com/FocuswithJustin/versesplit/core/segment"
	"github.com/FocuswithJustin/versesplit/internal/logging"
	"github.com/FocuswithJustin/versesplit/internal/rawsource"
)

// Split reads a raw source and writes one "C:V text" file per chapter into
// the raw directory.
//
// Without book headings every verse belongs to bookCode. With headings the
// book comes from the source and bookCode, when set, keeps only that book.
// A nil selection keeps every chapter. Each chapter must start at verse 1
// and have no gaps; a chapter that does not is reported and not written.
func (p *Pipeline) Split(ctx context.Context, src, bookCode string, sel *chapters.Selection) (*Report, error) {
	start := p.now()

	opts, err := p.cfg.SegmentOptions(p.table)
	if err != nil {
		return nil, err
	}
	if opts.BookHeadings == nil && bookCode == "" {
		return nil, vserrors.NewChapter(vserrors.KindConfiguration, 0, "split needs a book code when book headings are off")
	}
	if bookCode != "" {
		if _, err := p.table.Lookup(bookCode); err != nil {
			return nil, err
		}
	}

	lines, err := rawsource.ReadFile(src)
	if err != nil {
		return nil, err
	}

	all := segment.Accumulate(lines, opts)
	segs := all[:0]
	for _, s := range all {
		switch {
		case s.Book == "":
			s.Book = bookCode
		case bookCode != "" && s.Book != bookCode:
			continue
		}
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return nil, vserrors.Chapterf(vserrors.KindMalformedInput, 0, "no verse locators found in %s", src)
	}

	report := &Report{RunID: logging.GetRunID(ctx)}
	for _, ck := range segment.Chapters(segs) {
		if !sel.Contains(ck.Chapter) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Results = append(report.Results, p.logResult(ctx, p.splitChapter(segs, ck)))
	}
	report.Duration = time.Since(start)
	return report, nil
}

func (p *Pipeline) splitChapter(segs []segment.Segment, ck segment.ChapterKey) Result {
	res := Result{BookCode: ck.Book, Chapter: ck.Chapter, Stage: StageSplit}
	if _, err := p.table.Lookup(ck.Book); err != nil {
		res.Err = err
		return res
	}

	verses, err := emit.Records(segment.Select(segs, ck))
	if err == nil {
		err = emit.Contiguous(verses)
	}
	if err != nil {
		res.Err = err
		return res
	}

	res.Path = chapterPath(p.cfg.RawDir, ck.Book, ck.Chapter)
	if err := writeFile(res.Path, intermediate(ck.Chapter, verses)); err != nil {
		res.Err = err
		return res
	}
	res.Verses = len(verses)
	return res
}
