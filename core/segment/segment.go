// Package segment groups wrapped raw text into one segment per locator.
//
// The Accumulator is a two-state machine. It is Idle until the first marker
// opens a verse; from then on a line without markers continues the open
// verse and every marker flushes the open verse and opens the next one.
package segment

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/versesplit/core/locator"
)

// DuplicatePolicy decides what happens when a locator is flushed twice.
type DuplicatePolicy int

const (
	// Merge appends the later text to the earlier one, joined by a space.
	Merge DuplicatePolicy = iota
	// Overwrite replaces the earlier text with the later one.
	Overwrite
	// KeepFirst discards the later text.
	KeepFirst
)

func (p DuplicatePolicy) String() string {
	switch p {
	case Merge:
		return "merge"
	case Overwrite:
		return "overwrite"
	case KeepFirst:
		return "keep-first"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy parses "merge", "overwrite" or "keep-first".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "merge":
		return Merge, nil
	case "overwrite":
		return Overwrite, nil
	case "keep-first", "keepfirst":
		return KeepFirst, nil
	default:
		return Merge, fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// Options configures an Accumulator.
type Options struct {
	// IgnoreLiterals are whole lines (after trimming) that are skipped
	// without touching the open verse, e.g. "Otherwise Called:".
	IgnoreLiterals []string

	// IgnorePrefixes skip any line starting with the prefix as a whole
	// word, e.g. "CHAPTER" skips "CHAPTER 12" but not "CHAPTERS".
	IgnorePrefixes []string

	// BookHeadings maps a heading line to a book code. A heading closes the
	// open verse and switches the current book. When set, lines before the
	// first heading are ignored.
	BookHeadings map[string]string

	// Duplicates selects the policy for a locator flushed more than once.
	Duplicates DuplicatePolicy
}

// Segment is the raw text collected for one locator.
type Segment struct {
	Book    string
	Locator locator.Locator
	Text    string
}

type key struct {
	book string
	loc  locator.Locator
}

// state is either idle or open.
type state interface {
	isState()
}

type idle struct{}

type open struct {
	loc       locator.Locator
	fragments []string
}

func (idle) isState()  {}
func (*open) isState() {}

// Accumulator collects segments for a single run. It is not safe for
// concurrent use; create one per input.
type Accumulator struct {
	opts     Options
	literals map[string]struct{}
	state    state
	book     string
	segments []Segment
	seen     map[key]int
}

// New creates an Accumulator in the Idle state.
func New(opts Options) *Accumulator {
	literals := make(map[string]struct{}, len(opts.IgnoreLiterals))
	for _, lit := range opts.IgnoreLiterals {
		literals[strings.TrimSpace(lit)] = struct{}{}
	}
	return &Accumulator{
		opts:     opts,
		literals: literals,
		state:    idle{},
		seen:     make(map[key]int),
	}
}

// Feed processes one physical line.
func (a *Accumulator) Feed(line string) {
	trimmed := strings.TrimSpace(line)

	if code, ok := a.opts.BookHeadings[trimmed]; ok && trimmed != "" {
		a.flush()
		a.book = code
		return
	}
	if a.ignored(trimmed) {
		return
	}
	if len(a.opts.BookHeadings) > 0 && a.book == "" {
		return
	}

	markers := locator.Scan(line)
	if len(markers) == 0 {
		if st, ok := a.state.(*open); ok {
			st.append(trimmed)
		}
		return
	}

	if st, ok := a.state.(*open); ok && markers[0].Start > 0 {
		st.append(strings.TrimSpace(line[:markers[0].Start]))
	}

	for i, m := range markers {
		end := len(line)
		if i+1 < len(markers) {
			end = markers[i+1].Start
		}
		a.flush()
		next := &open{loc: m.Locator}
		next.append(strings.TrimSpace(line[m.End:end]))
		a.state = next
	}
}

// Close flushes the open verse and returns all segments in first-flush order.
func (a *Accumulator) Close() []Segment {
	a.flush()
	return a.segments
}

func (a *Accumulator) ignored(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	if _, ok := a.literals[trimmed]; ok {
		return true
	}
	for _, p := range a.opts.IgnorePrefixes {
		if p == "" || !strings.HasPrefix(trimmed, p) {
			continue
		}
		rest := trimmed[len(p):]
		if rest == "" {
			return true
		}
		r := []rune(rest)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return true
		}
	}
	return false
}

// flush moves the open verse into the output and returns to Idle.
func (a *Accumulator) flush() {
	st, ok := a.state.(*open)
	a.state = idle{}
	if !ok {
		return
	}

	text := strings.Join(st.fragments, " ")
	if strings.TrimSpace(text) == "" {
		return
	}

	k := key{book: a.book, loc: st.loc}
	if idx, dup := a.seen[k]; dup {
		switch a.opts.Duplicates {
		case Overwrite:
			a.segments[idx].Text = text
		case KeepFirst:
		default:
			a.segments[idx].Text += " " + text
		}
		return
	}

	a.seen[k] = len(a.segments)
	a.segments = append(a.segments, Segment{Book: a.book, Locator: st.loc, Text: text})
}

func (o *open) append(fragment string) {
	if fragment == "" {
		return
	}
	o.fragments = append(o.fragments, fragment)
}

// Accumulate runs a fresh Accumulator over lines.
func Accumulate(lines []string, opts Options) []Segment {
	acc := New(opts)
	for _, ln := range lines {
		acc.Feed(ln)
	}
	return acc.Close()
}

// ChapterKey identifies one chapter of one book.
type ChapterKey struct {
	Book    string
	Chapter int
}

// Chapters lists the distinct chapters present in segs, sorted by book in
// first-seen order and then by chapter number.
func Chapters(segs []Segment) []ChapterKey {
	bookOrder := make(map[string]int)
	seen := make(map[ChapterKey]bool)
	var keys []ChapterKey
	for _, s := range segs {
		if _, ok := bookOrder[s.Book]; !ok {
			bookOrder[s.Book] = len(bookOrder)
		}
		k := ChapterKey{Book: s.Book, Chapter: s.Locator.Chapter}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Book != keys[j].Book {
			return bookOrder[keys[i].Book] < bookOrder[keys[j].Book]
		}
		return keys[i].Chapter < keys[j].Chapter
	})
	return keys
}

// Select returns the verse → raw text mapping for one chapter.
func Select(segs []Segment, ck ChapterKey) map[int]string {
	out := make(map[int]string)
	for _, s := range segs {
		if s.Book == ck.Book && s.Locator.Chapter == ck.Chapter {
			out[s.Locator.Verse] = s.Text
		}
	}
	return out
}
