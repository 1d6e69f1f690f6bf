// Package verify checks a canonical chapter document and reports the first
// violation found.
//
// Checks run in four phases: grammar of every line, verse continuity, the
// required archaic glosses, and consecutive duplicate glosses. The first
// failing check ends validation with a single *errors.ChapterError carrying
// the 1-based line number.
package verify

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/versesplit/core/chapter"
	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
)

// DefaultGlosses lists archaic words that must carry an inline gloss.
var DefaultGlosses = map[string]string{
	"unto": "to",
}

// glossPattern matches an inline annotation such as unto(to).
var glossPattern = regexp.MustCompile(`([A-Za-z]+)\(([^()]+)\)`)

// Options configures a validation run.
type Options struct {
	// Dialect selects whether KO fields may be empty.
	Dialect chapter.Dialect

	// Glosses maps an archaic word to its required gloss. Nil means
	// DefaultGlosses; an empty non-nil map disables the rule.
	Glosses map[string]string

	// BookCode and Chapter, when set, must equal the header values.
	BookCode string
	Chapter  int
}

// Warning is a non-fatal finding.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Result describes a document that passed validation.
type Result struct {
	Header   chapter.Header
	Title    chapter.Title
	Verses   []chapter.Verse
	Warnings []Warning
}

// Count returns the number of verses.
func (r *Result) Count() int {
	return len(r.Verses)
}

// Document returns the validated content as a chapter.Document.
func (r *Result) Document() *chapter.Document {
	return &chapter.Document{Header: r.Header, Title: r.Title, Verses: r.Verses}
}

type glossRule struct {
	word    string
	gloss   string
	pattern *regexp.Regexp
}

type validator struct {
	opts  Options
	rules []glossRule
}

func newValidator(opts Options) *validator {
	glosses := opts.Glosses
	if glosses == nil {
		glosses = DefaultGlosses
	}
	words := make([]string, 0, len(glosses))
	for w := range glosses {
		words = append(words, w)
	}
	sort.Strings(words)

	v := &validator{opts: opts}
	for _, w := range words {
		v.rules = append(v.rules, glossRule{
			word:    w,
			gloss:   glosses[w],
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`),
		})
	}
	return v
}

// Text validates a whole document. A single trailing newline terminates the
// last line; any other empty or whitespace-only line is a violation.
func Text(text string, opts Options) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, vserrors.NewChapter(vserrors.KindGrammar, 0, "empty input")
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return Lines(lines, opts)
}

// Reader validates a document read from r.
func Reader(r io.Reader, opts Options) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Text(string(data), opts)
}

// Lines validates a document given as lines without terminators.
func Lines(lines []string, opts Options) (*Result, error) {
	return newValidator(opts).run(lines)
}

func (v *validator) run(lines []string) (*Result, error) {
	for i, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			return nil, vserrors.NewChapter(vserrors.KindGrammar, i+1, "blank line; no blank lines allowed")
		}
	}
	if len(lines) < 3 {
		return nil, vserrors.NewChapter(vserrors.KindGrammar, 0, "input too short; need header, title and at least one verse line")
	}

	res := &Result{}
	var err error
	if res.Header, err = v.header(lines[0]); err != nil {
		return nil, err
	}
	if res.Title, err = v.title(lines[1]); err != nil {
		return nil, err
	}

	for i := 2; i < len(lines); i++ {
		verse, err := v.verse(lines[i], i+1)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(verse.EN) == "" {
			res.Warnings = append(res.Warnings, Warning{Line: i + 1, Message: fmt.Sprintf("verse %d has empty EN text", verse.N)})
		}
		res.Verses = append(res.Verses, verse)
	}

	if err := continuity(res.Verses); err != nil {
		return nil, err
	}

	for i, verse := range res.Verses {
		lineNo := i + 3
		if err := v.requiredGlosses(verse.EN, lineNo); err != nil {
			return nil, err
		}
		if err := consecutiveGloss(verse.EN, lineNo); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func (v *validator) header(line string) (chapter.Header, error) {
	if chapter.HasWhitespace(line) {
		return chapter.Header{}, vserrors.NewChapter(vserrors.KindGrammar, 1, "header contains whitespace; header must have no spaces or tabs")
	}
	h, ok := chapter.ParseHeader(line)
	if !ok {
		return chapter.Header{}, vserrors.NewChapter(vserrors.KindGrammar, 1, "header format mismatch; must match exact required header keys and order")
	}
	if v.opts.BookCode != "" && h.BookCode != v.opts.BookCode {
		return chapter.Header{}, vserrors.Chapterf(vserrors.KindGrammar, 1, "header BOOKCODE=%s does not match expected %s", h.BookCode, v.opts.BookCode)
	}
	if v.opts.Chapter != 0 && h.Chapter != v.opts.Chapter {
		return chapter.Header{}, vserrors.Chapterf(vserrors.KindGrammar, 1, "header CHAPTER=%d does not match expected %d", h.Chapter, v.opts.Chapter)
	}
	return h, nil
}

func (v *validator) title(line string) (chapter.Title, error) {
	t, ok := chapter.ParseTitle(line, v.opts.Dialect)
	if ok {
		return t, nil
	}
	if v.opts.Dialect == chapter.Filled {
		if _, loose := chapter.ParseTitle(line, chapter.ENOnly); loose {
			return chapter.Title{}, vserrors.NewChapter(vserrors.KindGrammar, 2, "title EN and KO must both be non-empty")
		}
	}
	return chapter.Title{}, vserrors.NewChapter(vserrors.KindGrammar, 2, "title line format mismatch; must be T|EN=...|KO=...")
}

func (v *validator) verse(line string, lineNo int) (chapter.Verse, error) {
	verse, ok := chapter.ParseVerse(line, v.opts.Dialect)
	if !ok {
		if v.opts.Dialect == chapter.Filled {
			if loose, looseOK := chapter.ParseVerse(line, chapter.ENOnly); looseOK {
				return chapter.Verse{}, vserrors.Chapterf(vserrors.KindGrammar, lineNo, "verse %d has empty KO text", loose.N)
			}
		}
		return chapter.Verse{}, vserrors.NewChapter(vserrors.KindGrammar, lineNo, "verse line format mismatch; must be V|N=..|EN=..|KO=..")
	}

	if pipes := strings.Count(line, "|"); pipes != 3 {
		return chapter.Verse{}, vserrors.Chapterf(vserrors.KindGrammar, lineNo, "verse line has pipe count %d (expected 3)", pipes)
	}
	en, ko := strings.Index(line, "|EN="), strings.Index(line, "|KO=")
	if en < 0 || ko < 0 || en > ko {
		return chapter.Verse{}, vserrors.NewChapter(vserrors.KindGrammar, lineNo, "verse key order invalid; EN must come before KO")
	}
	return verse, nil
}

// continuity requires verse numbers 1..max, each once, in file order.
func continuity(verses []chapter.Verse) error {
	lineOf := func(i int) int { return i + 3 }

	if verses[0].N != 1 {
		return vserrors.Chapterf(vserrors.KindContinuity, lineOf(0), "first verse N is %d (expected 1)", verses[0].N)
	}

	firstLine := make(map[int]int, len(verses))
	var dups []int
	dupLine := 0
	for i, v := range verses {
		if _, seen := firstLine[v.N]; seen {
			if dupLine == 0 {
				dupLine = lineOf(i)
			}
			dups = append(dups, v.N)
			continue
		}
		firstLine[v.N] = lineOf(i)
	}
	if len(dups) > 0 {
		sort.Ints(dups)
		return vserrors.Chapterf(vserrors.KindContinuity, dupLine, "duplicate verse numbers found: %v", uniqueInts(dups))
	}

	nums := make([]int, len(verses))
	for i, v := range verses {
		nums[i] = v.N
	}
	if g := chapter.FindGaps(nums); !g.None() {
		gapLine := 0
		for i, v := range verses {
			if v.N > g.First {
				gapLine = lineOf(i)
				break
			}
		}
		return vserrors.Chapterf(vserrors.KindContinuity, gapLine, "missing verse numbers: %s", g)
	}

	for i := 1; i < len(verses); i++ {
		if verses[i].N != verses[i-1].N+1 {
			return vserrors.Chapterf(vserrors.KindContinuity, lineOf(i),
				"verse order break between lines %d (N=%d) and %d (N=%d)",
				lineOf(i-1), verses[i-1].N, lineOf(i), verses[i].N)
		}
	}
	return nil
}

// requiredGlosses reports the leftmost bare archaic word lacking its gloss.
func (v *validator) requiredGlosses(en string, lineNo int) error {
	var first error
	firstPos := -1
	for _, rule := range v.rules {
		for _, m := range rule.pattern.FindAllStringIndex(en, -1) {
			rest := en[m[1]:]
			if strings.HasPrefix(rest, "("+rule.gloss+")") {
				continue
			}
			if firstPos >= 0 && m[0] >= firstPos {
				break
			}
			firstPos = m[0]
			if strings.HasPrefix(rest, "(") {
				first = vserrors.Chapterf(vserrors.KindLexical, lineNo, "archaic rule: '%s' gloss must be (%s)", rule.word, rule.gloss)
			} else {
				first = vserrors.Chapterf(vserrors.KindLexical, lineNo, "archaic rule: '%s' must be glossed as %s(%s)", rule.word, rule.word, rule.gloss)
			}
			break
		}
	}
	return first
}

// consecutiveGloss rejects the same word(gloss) pair repeated with only
// whitespace or punctuation between the two annotations.
func consecutiveGloss(en string, lineNo int) error {
	matches := glossPattern.FindAllStringSubmatchIndex(en, -1)
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		w1, g1 := en[prev[2]:prev[3]], en[prev[4]:prev[5]]
		w2, g2 := en[cur[2]:cur[3]], en[cur[4]:cur[5]]
		if !strings.EqualFold(w1, w2) || !strings.EqualFold(g1, g2) {
			continue
		}
		if !hasWordChar(en[prev[1]:cur[0]]) {
			return vserrors.Chapterf(vserrors.KindLexical, lineNo, "duplicate gloss %s(%s) repeated consecutively in EN field", w2, g2)
		}
	}
	return nil
}

func hasWordChar(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func uniqueInts(sorted []int) []int {
	out := sorted[:0:0]
	for i, n := range sorted {
		if i == 0 || n != sorted[i-1] {
			out = append(out, n)
		}
	}
	return out
}

// ApplyGlosses inserts the required gloss after every bare archaic word in
// en. Words already followed by '(' are left alone, so a wrong gloss still
// fails validation. A nil map applies DefaultGlosses.
func ApplyGlosses(en string, glosses map[string]string) string {
	v := newValidator(Options{Glosses: glosses})
	for _, rule := range v.rules {
		var sb strings.Builder
		last := 0
		for _, m := range rule.pattern.FindAllStringIndex(en, -1) {
			if strings.HasPrefix(en[m[1]:], "(") {
				continue
			}
			sb.WriteString(en[last:m[1]])
			sb.WriteString("(" + rule.gloss + ")")
			last = m[1]
		}
		if last == 0 {
			continue
		}
		sb.WriteString(en[last:])
		en = sb.String()
	}
	return en
}
