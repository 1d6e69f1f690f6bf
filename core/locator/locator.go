// Package locator finds chapter:verse markers in raw scripture text.
package locator

import (
	"fmt"
	"regexp"
	"strconv"
)

// Locator identifies one verse within a chapter.
type Locator struct {
	Chapter int `json:"chapter"`
	Verse   int `json:"verse"`
}

// String returns the "C:V" form.
func (l Locator) String() string {
	return fmt.Sprintf("%d:%d", l.Chapter, l.Verse)
}

// Marker is one locator token found in a line.
// Start and End are byte offsets; line[Start:End] is the token text.
type Marker struct {
	Locator
	Start int
	End   int
}

// markerPattern matches the candidate token; digit boundaries are checked in Scan.
var markerPattern = regexp.MustCompile(`([0-9]+):([0-9]+)`)

// Scan returns every chapter:verse marker in line, left to right.
//
// A candidate immediately preceded or followed by another digit is rejected,
// so a reference buried inside a longer numeral is never split into a
// shorter marker. Candidates whose numbers are zero or overflow int are not
// locators and are skipped. Scan never fails; no markers yields nil.
func Scan(line string) []Marker {
	matches := markerPattern.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return nil
	}

	var markers []Marker
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && isDigit(line[start-1]) {
			continue
		}
		if end < len(line) && isDigit(line[end]) {
			continue
		}

		chapter, err := strconv.Atoi(line[m[2]:m[3]])
		if err != nil || chapter <= 0 {
			continue
		}
		verse, err := strconv.Atoi(line[m[4]:m[5]])
		if err != nil || verse <= 0 {
			continue
		}

		markers = append(markers, Marker{
			Locator: Locator{Chapter: chapter, Verse: verse},
			Start:   start,
			End:     end,
		})
	}
	return markers
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
