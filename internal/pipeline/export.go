package pipeline

import (
	"context"
	"time"

	"github.com/FocuswithJustin/versesplit/core/chapter"
	"github.com/FocuswithJustin/versesplit/internal/logging"
	"github.com/FocuswithJustin/versesplit/internal/versedb"
)

// Export loads verified chapter documents of dialect d into the SQLite
// database at dbPath. With no book codes every book of the table is
// considered. A document that fails validation is reported and skipped.
func (p *Pipeline) Export(ctx context.Context, dbPath string, bookCodes []string, d chapter.Dialect) (*Report, versedb.Stats, error) {
	start := p.now()
	for _, code := range bookCodes {
		if _, err := p.table.Lookup(code); err != nil {
			return nil, versedb.Stats{}, err
		}
	}
	if len(bookCodes) == 0 {
		bookCodes = p.table.Codes()
	}

	db, err := versedb.Open(ctx, dbPath)
	if err != nil {
		return nil, versedb.Stats{}, err
	}
	defer db.Close()

	if err := db.PutBooks(ctx, p.table); err != nil {
		return nil, versedb.Stats{}, err
	}

	dir := p.sourceDir(d)
	report := &Report{RunID: logging.GetRunID(ctx)}
	for _, code := range bookCodes {
		nums, err := chapterFiles(dir, code)
		if err != nil {
			return report, versedb.Stats{}, err
		}
		for _, ch := range nums {
			if err := ctx.Err(); err != nil {
				return report, versedb.Stats{}, err
			}
			res := Result{BookCode: code, Chapter: ch, Stage: StageExport, Path: chapterPath(dir, code, ch)}
			vr, err := p.VerifyFile(res.Path, d)
			if err == nil {
				res.Verses = vr.Count()
				res.Warnings = vr.Warnings
				err = db.PutChapter(ctx, vr.Document())
			}
			res.Err = err
			report.Results = append(report.Results, p.logResult(ctx, res))
		}
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		return report, versedb.Stats{}, err
	}
	report.Duration = time.Since(start)
	return report, stats, nil
}
