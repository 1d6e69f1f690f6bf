// Package emit turns accumulated raw segments into a canonical EN-only
// chapter document.
package emit

import (
	"sort"
	"strings"

	"github.com/FocuswithJustin/versesplit/core/books"
	"github.com/FocuswithJustin/versesplit/core/chapter"
	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
)

// Normalize collapses every whitespace run to one space and trims the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Records normalizes raw verse text, drops empty entries and returns the
// verses sorted by number with KO left empty.
//
// The result must be non-empty and start at verse 1. Text containing the
// field separator '|' cannot be represented and is rejected.
func Records(raw map[int]string) ([]chapter.Verse, error) {
	verses := make([]chapter.Verse, 0, len(raw))
	for n, text := range raw {
		text = Normalize(text)
		if text == "" {
			continue
		}
		verses = append(verses, chapter.Verse{N: n, EN: text})
	}

	if len(verses) == 0 {
		return nil, vserrors.NewChapter(vserrors.KindMalformedInput, 0, "no verses parsed")
	}

	sort.Slice(verses, func(i, j int) bool { return verses[i].N < verses[j].N })

	if verses[0].N != 1 {
		return nil, vserrors.Chapterf(vserrors.KindMalformedInput, 0, "first verse is %d (expected 1)", verses[0].N)
	}
	for _, v := range verses {
		if strings.Contains(v.EN, "|") {
			return nil, vserrors.Chapterf(vserrors.KindMalformedInput, 0, "verse %d text contains the field separator '|'", v.N)
		}
	}
	return verses, nil
}

// Chapter builds the EN-only document for one chapter.
//
// The book code must be present in table; a miss is a configuration error.
// The header carries the book name without whitespace, the title carries
// the display names.
func Chapter(bookCode string, chapterNum int, raw map[int]string, table *books.Table) (*chapter.Document, error) {
	book, err := table.Lookup(bookCode)
	if err != nil {
		return nil, err
	}
	if chapterNum <= 0 {
		return nil, vserrors.Chapterf(vserrors.KindMalformedInput, 0, "invalid chapter number %d", chapterNum)
	}

	verses, err := Records(raw)
	if err != nil {
		return nil, err
	}

	return &chapter.Document{
		Header: chapter.Header{
			Book:     chapter.CompactName(book.Name),
			BookCode: book.Code,
			Chapter:  chapterNum,
		},
		Title: chapter.Title{
			EN: book.TitleEN(chapterNum),
			KO: book.TitleKO(chapterNum),
		},
		Verses: verses,
	}, nil
}

// Contiguous checks that verses run 1..n without gaps.
func Contiguous(verses []chapter.Verse) error {
	nums := make([]int, len(verses))
	for i, v := range verses {
		nums[i] = v.N
	}
	if g := chapter.FindGaps(nums); !g.None() {
		return vserrors.Chapterf(vserrors.KindMalformedInput, 0, "missing verse numbers: %s", g)
	}
	return nil
}
