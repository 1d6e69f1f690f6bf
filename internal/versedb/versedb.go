// Package versedb exports validated chapter documents into a SQLite
// database with books, chapters and verses tables.
package versedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/FocuswithJustin/versesplit/core/books"
	"github.com/FocuswithJustin/versesplit/core/cas"
	"github.com/FocuswithJustin/versesplit/core/chapter"
	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
	"github.com/FocuswithJustin/versesplit/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	code     TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	name_ko  TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS chapters (
	id        INTEGER PRIMARY KEY,
	book_code TEXT NOT NULL REFERENCES books(code),
	chapter   INTEGER NOT NULL,
	title_en  TEXT NOT NULL,
	title_ko  TEXT NOT NULL,
	sha256    TEXT NOT NULL,
	blake3    TEXT NOT NULL,
	UNIQUE (book_code, chapter)
);
CREATE TABLE IF NOT EXISTS verses (
	chapter_id INTEGER NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
	n          INTEGER NOT NULL,
	en         TEXT NOT NULL,
	ko         TEXT NOT NULL,
	PRIMARY KEY (chapter_id, n)
);
`

// DB is an open verse database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("versedb: apply schema: %w", err)
	}
	return &DB{db: db}, nil
}

// OpenReadOnly opens an existing database for reading. Writes through the
// returned DB fail.
func OpenReadOnly(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, vserrors.NewNotFound("database", path)
		}
		return nil, vserrors.NewIO("stat", path, err)
	}
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// PutBooks inserts or updates every book of table, keeping table order.
func (d *DB) PutBooks(ctx context.Context, table *books.Table) error {
	return sqlite.WithTx(ctx, d.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO books (code, name, name_ko, position) VALUES (?, ?, ?, ?)
			ON CONFLICT(code) DO UPDATE SET name = excluded.name, name_ko = excluded.name_ko, position = excluded.position`)
		if err != nil {
			return fmt.Errorf("versedb: prepare books: %w", err)
		}
		defer stmt.Close()

		for i, code := range table.Codes() {
			b, err := table.Lookup(code)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, b.Code, b.Name, b.NameKO, i+1); err != nil {
				return fmt.Errorf("versedb: insert book %s: %w", b.Code, err)
			}
		}
		return nil
	})
}

// PutChapter stores doc, replacing any earlier copy of the same chapter.
// The book must already exist.
func (d *DB) PutChapter(ctx context.Context, doc *chapter.Document) error {
	digest := cas.Sum(doc.Bytes())
	h := doc.Header

	return sqlite.WithTx(ctx, d.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM books WHERE code = ?`, h.BookCode).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return vserrors.Chapterf(vserrors.KindConfiguration, 0, "book %s is not in the database", h.BookCode)
		}
		if err != nil {
			return fmt.Errorf("versedb: lookup book: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE book_code = ? AND chapter = ?`, h.BookCode, h.Chapter); err != nil {
			return fmt.Errorf("versedb: replace chapter: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO chapters (book_code, chapter, title_en, title_ko, sha256, blake3) VALUES (?, ?, ?, ?, ?, ?)`,
			h.BookCode, h.Chapter, doc.Title.EN, doc.Title.KO, digest.SHA256, digest.BLAKE3)
		if err != nil {
			return fmt.Errorf("versedb: insert chapter: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("versedb: chapter id: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO verses (chapter_id, n, en, ko) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("versedb: prepare verses: %w", err)
		}
		defer stmt.Close()
		for _, v := range doc.Verses {
			if _, err := stmt.ExecContext(ctx, id, v.N, v.EN, v.KO); err != nil {
				return fmt.Errorf("versedb: insert verse %d: %w", v.N, err)
			}
		}
		return nil
	})
}

// Chapter reads one chapter back as a document. The header book name is
// the compact form of the stored book name.
func (d *DB) Chapter(ctx context.Context, bookCode string, chapterNum int) (*chapter.Document, error) {
	var (
		id      int64
		name    string
		titleEN string
		titleKO string
	)
	err := d.db.QueryRowContext(ctx, `SELECT c.id, b.name, c.title_en, c.title_ko
		FROM chapters c JOIN books b ON b.code = c.book_code
		WHERE c.book_code = ? AND c.chapter = ?`, bookCode, chapterNum).Scan(&id, &name, &titleEN, &titleKO)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vserrors.NewNotFound("chapter", chapter.FileName(bookCode, chapterNum))
	}
	if err != nil {
		return nil, fmt.Errorf("versedb: query chapter: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, `SELECT n, en, ko FROM verses WHERE chapter_id = ? ORDER BY n`, id)
	if err != nil {
		return nil, fmt.Errorf("versedb: query verses: %w", err)
	}
	defer rows.Close()

	doc := &chapter.Document{
		Header: chapter.Header{Book: chapter.CompactName(name), BookCode: bookCode, Chapter: chapterNum},
		Title:  chapter.Title{EN: titleEN, KO: titleKO},
	}
	for rows.Next() {
		var v chapter.Verse
		if err := rows.Scan(&v.N, &v.EN, &v.KO); err != nil {
			return nil, fmt.Errorf("versedb: scan verse: %w", err)
		}
		doc.Verses = append(doc.Verses, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("versedb: read verses: %w", err)
	}
	return doc, nil
}

// Stats counts stored rows.
type Stats struct {
	Books    int
	Chapters int
	Verses   int
}

// Stats returns row counts for each table.
func (d *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := d.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM books),
		(SELECT COUNT(*) FROM chapters),
		(SELECT COUNT(*) FROM verses)`).Scan(&s.Books, &s.Chapters, &s.Verses)
	if err != nil {
		return Stats{}, fmt.Errorf("versedb: stats: %w", err)
	}
	return s, nil
}
