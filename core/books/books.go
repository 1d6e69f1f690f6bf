// Package books holds the book-code table injected into the emitter.
package books

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
)

// DefaultUnitKO is the Korean chapter counter used in titles ("창세기 1장").
const DefaultUnitKO = "장"

// Book is one entry of the table.
type Book struct {
	Code   string `yaml:"code" toml:"code"`
	Name   string `yaml:"name" toml:"name"`
	NameKO string `yaml:"name_ko" toml:"name_ko"`
	// UnitKO overrides the chapter counter, e.g. "편" for Psalms.
	UnitKO string `yaml:"unit_ko,omitempty" toml:"unit_ko,omitempty"`
	// Headings are the literal heading lines that open this book in a
	// whole-Bible source file.
	Headings []string `yaml:"headings,omitempty" toml:"headings,omitempty"`
}

// TitleEN returns the English chapter title, e.g. "Genesis 1".
func (b Book) TitleEN(chapter int) string {
	return fmt.Sprintf("%s %d", b.Name, chapter)
}

// TitleKO returns the Korean chapter title, or "" when no Korean name is known.
func (b Book) TitleKO(chapter int) string {
	if b.NameKO == "" {
		return ""
	}
	unit := b.UnitKO
	if unit == "" {
		unit = DefaultUnitKO
	}
	return fmt.Sprintf("%s %d%s", b.NameKO, chapter, unit)
}

// Table maps book codes to books.
type Table struct {
	books map[string]Book
	order []string
}

// NewTable builds a table. Codes are lower-cased; a later duplicate replaces
// an earlier one.
func NewTable(list []Book) *Table {
	t := &Table{books: make(map[string]Book, len(list))}
	for _, b := range list {
		b.Code = strings.ToLower(strings.TrimSpace(b.Code))
		if b.Code == "" {
			continue
		}
		if _, exists := t.books[b.Code]; !exists {
			t.order = append(t.order, b.Code)
		}
		t.books[b.Code] = b
	}
	return t
}

// Lookup returns the book for code. A miss is a configuration error.
func (t *Table) Lookup(code string) (Book, error) {
	b, ok := t.books[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Book{}, vserrors.Chapterf(vserrors.KindConfiguration, 0, "unknown book code %q: add it to the book table", code)
	}
	return b, nil
}

// Codes returns book codes in table order.
func (t *Table) Codes() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of books.
func (t *Table) Len() int {
	return len(t.order)
}

// Headings returns heading line → book code for every book that declares
// headings.
func (t *Table) Headings() map[string]string {
	out := make(map[string]string)
	for _, code := range t.order {
		for _, h := range t.books[code].Headings {
			out[strings.TrimSpace(h)] = code
		}
	}
	return out
}

type tableFile struct {
	Books []Book `yaml:"books" toml:"books"`
}

// Load reads a book table from a .yaml, .yml or .toml file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vserrors.NewIO("read", path, err)
	}

	var f tableFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse book table %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("failed to parse book table %s: %w", path, err)
		}
	default:
		return nil, vserrors.Chapterf(vserrors.KindConfiguration, 0, "unsupported book table format: %s", path)
	}

	if len(f.Books) == 0 {
		return nil, vserrors.Chapterf(vserrors.KindConfiguration, 0, "book table %s has no books", path)
	}
	for i, b := range f.Books {
		if err := b.check(); err != nil {
			return nil, vserrors.Chapterf(vserrors.KindConfiguration, 0, "book table %s: entry %d: %v", path, i+1, err)
		}
	}
	return NewTable(f.Books), nil
}

// codePattern is the BOOKCODE grammar of a chapter header, after the
// lower-casing NewTable applies.
var codePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// check rejects entries that could not be written into a chapter document.
func (b Book) check() error {
	if strings.TrimSpace(b.Code) == "" || strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("needs code and name")
	}
	if code := strings.ToLower(strings.TrimSpace(b.Code)); !codePattern.MatchString(code) {
		return fmt.Errorf("code %q must match [a-z0-9_]+", b.Code)
	}
	for _, field := range []struct{ key, value string }{
		{"name", b.Name},
		{"name_ko", b.NameKO},
		{"unit_ko", b.UnitKO},
	} {
		if strings.ContainsAny(field.value, "|\r\n") {
			return fmt.Errorf("%s %q contains '|' or a line break", field.key, field.value)
		}
	}
	return nil
}

// LoadOrDefault loads path, or returns the built-in table when path is empty.
func LoadOrDefault(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
