// Package chapter defines the canonical chapter document: one header line,
// one title line and one line per verse.
//
//	#BOOK=Genesis|BOOKCODE=gen|CHAPTER=1|VERSION=KJV|LANGPAIR=EN-KO|ARCHAIC=INLINE_PARENS
//	T|EN=Genesis 1|KO=창세기 1장
//	V|N=1|EN=In the beginning God created the heaven and the earth.|KO=
//
// The emitter writes this grammar and the validator parses it back, so both
// use the patterns and formatters below.
package chapter

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Fixed header values.
const (
	Version  = "KJV"
	LangPair = "EN-KO"
	Archaic  = "INLINE_PARENS"
)

// Dialect selects whether KO fields may be empty.
type Dialect int

const (
	// ENOnly documents leave KO empty for a later fill step.
	ENOnly Dialect = iota
	// Filled documents carry a non-empty KO on the title and every verse.
	Filled
)

func (d Dialect) String() string {
	if d == Filled {
		return "filled"
	}
	return "en-only"
}

// ParseDialect accepts the names returned by Dialect.String.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en-only", "enonly", "en_only":
		return ENOnly, nil
	case "filled":
		return Filled, nil
	}
	return ENOnly, fmt.Errorf("unknown dialect %q (want en-only or filled)", s)
}

var (
	headerPattern = regexp.MustCompile(`^#BOOK=([^|]+)\|BOOKCODE=([a-z0-9_]+)\|CHAPTER=([1-9][0-9]*)\|VERSION=` +
		Version + `\|LANGPAIR=` + LangPair + `\|ARCHAIC=` + Archaic + `$`)

	titlePatterns = map[Dialect]*regexp.Regexp{
		ENOnly: regexp.MustCompile(`^T\|EN=(.*)\|KO=(.*)$`),
		Filled: regexp.MustCompile(`^T\|EN=(.+)\|KO=(.+)$`),
	}

	// EN may be empty in both dialects; that is reported as a warning.
	versePatterns = map[Dialect]*regexp.Regexp{
		ENOnly: regexp.MustCompile(`^V\|N=([0-9]+)\|EN=(.*)\|KO=(.*)$`),
		Filled: regexp.MustCompile(`^V\|N=([0-9]+)\|EN=(.*)\|KO=(.+)$`),
	}
)

// Header is the first line of a chapter document.
type Header struct {
	Book     string
	BookCode string
	Chapter  int
}

// String formats the header line.
func (h Header) String() string {
	return fmt.Sprintf("#BOOK=%s|BOOKCODE=%s|CHAPTER=%d|VERSION=%s|LANGPAIR=%s|ARCHAIC=%s",
		h.Book, h.BookCode, h.Chapter, Version, LangPair, Archaic)
}

// Title is the localized chapter heading.
type Title struct {
	EN string
	KO string
}

// String formats the title line.
func (t Title) String() string {
	return "T|EN=" + t.EN + "|KO=" + t.KO
}

// Verse is one verse record.
type Verse struct {
	N  int
	EN string
	KO string
}

// String formats the verse line.
func (v Verse) String() string {
	return "V|N=" + strconv.Itoa(v.N) + "|EN=" + v.EN + "|KO=" + v.KO
}

// Document is a parsed or emitted chapter.
type Document struct {
	Header Header
	Title  Title
	Verses []Verse
}

// Lines returns the document as canonical lines, without terminators.
func (d *Document) Lines() []string {
	lines := make([]string, 0, len(d.Verses)+2)
	lines = append(lines, d.Header.String(), d.Title.String())
	for _, v := range d.Verses {
		lines = append(lines, v.String())
	}
	return lines
}

// WriteTo writes the document, one newline-terminated line per record.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, ln := range d.Lines() {
		n, err := io.WriteString(w, ln+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// ParseHeader matches a header line. It does not check for whitespace;
// see HasWhitespace.
func ParseHeader(line string) (Header, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Header{}, false
	}
	chapter, err := strconv.Atoi(m[3])
	if err != nil {
		return Header{}, false
	}
	return Header{Book: m[1], BookCode: m[2], Chapter: chapter}, true
}

// ParseTitle matches a title line in the given dialect.
func ParseTitle(line string, d Dialect) (Title, bool) {
	m := titlePatterns[d].FindStringSubmatch(line)
	if m == nil {
		return Title{}, false
	}
	return Title{EN: m[1], KO: m[2]}, true
}

// ParseVerse matches a verse line in the given dialect.
func ParseVerse(line string, d Dialect) (Verse, bool) {
	m := versePatterns[d].FindStringSubmatch(line)
	if m == nil {
		return Verse{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Verse{}, false
	}
	return Verse{N: n, EN: m[2], KO: m[3]}, true
}

// HasWhitespace reports whether s contains any whitespace character.
func HasWhitespace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}

// CompactName strips whitespace so a display name such as "1 Samuel" fits
// the whitespace-free header.
func CompactName(name string) string {
	return strings.Join(strings.Fields(name), "")
}

// FileName returns the conventional file name for a chapter, e.g. "gen_001.txt".
func FileName(bookCode string, chapter int) string {
	return fmt.Sprintf("%s_%03d.txt", bookCode, chapter)
}

// MaxListedGaps caps how many missing numbers a Gaps value lists.
const MaxListedGaps = 20

// Gaps describes the numbers missing from 1..max of a set of verse numbers.
type Gaps struct {
	// First is the smallest missing number, or 0 when nothing is missing.
	First int
	// Listed holds the smallest missing numbers, at most MaxListedGaps.
	Listed []int
	// More counts the missing numbers not in Listed.
	More int
}

// FindGaps walks nums, in any order and possibly repeated, and reports the
// numbers missing from 1..max(nums). Non-positive numbers are ignored. Cost
// is proportional to len(nums), not to the largest number.
func FindGaps(nums []int) Gaps {
	sorted := append([]int(nil), nums...)
	sort.Ints(sorted)

	var g Gaps
	prev := 0
	for _, n := range sorted {
		if n <= prev {
			continue
		}
		gap := n - prev - 1
		if gap > 0 && g.First == 0 {
			g.First = prev + 1
		}
		listed := 0
		for m := prev + 1; m < n && len(g.Listed) < MaxListedGaps; m++ {
			g.Listed = append(g.Listed, m)
			listed++
		}
		g.More += gap - listed
		prev = n
	}
	return g
}

// None reports whether nothing is missing.
func (g Gaps) None() bool {
	return g.First == 0
}

// String lists the missing numbers, e.g. "[3 4 6]". Past MaxListedGaps it
// appends the remainder as " …(+N more)".
func (g Gaps) String() string {
	s := fmt.Sprint(g.Listed)
	if g.More > 0 {
		s += fmt.Sprintf(" …(+%d more)", g.More)
	}
	return s
}
