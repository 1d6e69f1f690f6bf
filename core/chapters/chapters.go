// Package chapters parses chapter selections such as "1-50,52" used by the
// split and batch commands.
package chapters

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// MaxChapter is the highest chapter number a selection may name. Psalms,
// the longest book, has 150.
const MaxChapter = 150

// Range is an inclusive span of chapter numbers.
type Range struct {
	From int
	To   int
}

func (r Range) String() string {
	if r.From == r.To {
		return strconv.Itoa(r.From)
	}
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// Selection is a set of chapter ranges. A nil *Selection selects every
// chapter.
type Selection struct {
	Ranges []Range
}

//nolint:govet // participle grammar tags are not standard struct tags
type selectionGrammar struct {
	Items []*itemGrammar `parser:"@@ ( \",\" @@ )*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type itemGrammar struct {
	From int  `parser:"@Int"`
	To   *int `parser:"( \"-\" @Int )?"`
}

var selectionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[,\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var selectionParser = participle.MustBuild[selectionGrammar](
	participle.Lexer(selectionLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a selection string.
// Supported formats:
//   - "" or "all" (every chapter, returns nil)
//   - "3" (single chapter)
//   - "1-50" (inclusive range)
//   - "1-3, 7, 10-12" (comma-separated list)
//
// Overlapping and adjacent ranges are merged.
func Parse(s string) (*Selection, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil, nil
	}

	parsed, err := selectionParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid chapter selection: %q: %w", s, err)
	}

	ranges := make([]Range, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		r := Range{From: item.From, To: item.From}
		if item.To != nil {
			r.To = *item.To
		}
		if r.From < 1 {
			return nil, fmt.Errorf("invalid chapter selection: %q: chapter numbers start at 1", s)
		}
		if r.To > MaxChapter {
			return nil, fmt.Errorf("invalid chapter selection: %q: chapter %d is above %d", s, r.To, MaxChapter)
		}
		if r.To < r.From {
			return nil, fmt.Errorf("invalid chapter selection: %q: range %d-%d is reversed", s, r.From, r.To)
		}
		ranges = append(ranges, r)
	}
	return &Selection{Ranges: merge(ranges)}, nil
}

func merge(ranges []Range) []Range {
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].From < ranges[j].From })
	out := ranges[:0]
	for _, r := range ranges {
		if n := len(out); n > 0 && r.From <= out[n-1].To+1 {
			if r.To > out[n-1].To {
				out[n-1].To = r.To
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Contains reports whether chapter n is selected.
func (s *Selection) Contains(n int) bool {
	if s == nil {
		return n > 0
	}
	for _, r := range s.Ranges {
		if n >= r.From && n <= r.To {
			return true
		}
	}
	return false
}

// String returns the normalized selection, or "all".
func (s *Selection) String() string {
	if s == nil {
		return "all"
	}
	parts := make([]string, len(s.Ranges))
	for i, r := range s.Ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
