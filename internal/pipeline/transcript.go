package pipeline

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	vserrors "github.com/FocuswithJustin/versesplit/core/errors"
)

// Event is one line of a run transcript (JSONL).
type Event struct {
	Type    string `json:"t"`
	Seq     int    `json:"seq"`
	RunID   string `json:"run_id,omitempty"`
	Book    string `json:"book,omitempty"`
	Chapter int    `json:"chapter,omitempty"`
	Stage   string `json:"stage,omitempty"`
	Path    string `json:"path,omitempty"`
	Verses  int    `json:"verses,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message,omitempty"`
}

// Known event types
const (
	EventRunStart      = "RUN_START"
	EventChapterOK     = "CHAPTER_OK"
	EventChapterFailed = "CHAPTER_FAILED"
	EventWarn          = "WARN"
	EventRunEnd        = "RUN_END"
)

// Events renders a report as transcript events.
func (r *Report) Events() []Event {
	var events []Event
	add := func(e Event) {
		e.Seq = len(events)
		e.RunID = r.RunID
		events = append(events, e)
	}

	add(Event{Type: EventRunStart})
	for _, res := range r.Results {
		if !res.OK() {
			e := Event{Type: EventChapterFailed, Book: res.BookCode, Chapter: res.Chapter, Stage: string(res.Stage), Message: res.Err.Error()}
			var ce *vserrors.ChapterError
			if errors.As(res.Err, &ce) {
				e.Kind = ce.Kind.String()
				e.Line = ce.Line
			}
			add(e)
			continue
		}
		for _, w := range res.Warnings {
			add(Event{Type: EventWarn, Book: res.BookCode, Chapter: res.Chapter, Stage: string(res.Stage), Line: w.Line, Message: w.Message})
		}
		add(Event{Type: EventChapterOK, Book: res.BookCode, Chapter: res.Chapter, Stage: string(res.Stage), Path: res.Path, Verses: res.Verses})
	}
	add(Event{Type: EventRunEnd, Message: fmt.Sprintf("succeeded=%d failed=%d", r.Succeeded(), r.Failed())})
	return events
}

// WriteTranscript writes events to path, one JSON object per line.
func WriteTranscript(path string, events []Event) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, event := range events {
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return file.Close()
}

// ParseTranscript reads every event of a transcript file.
func ParseTranscript(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading transcript: %w", err)
	}
	return events, nil
}

// Transcript is a parsed transcript with helper methods.
type Transcript struct {
	Events []Event
	Path   string
}

// LoadTranscript loads a transcript from a file.
func LoadTranscript(path string) (*Transcript, error) {
	events, err := ParseTranscript(path)
	if err != nil {
		return nil, err
	}
	return &Transcript{Events: events, Path: path}, nil
}

// RunID returns the run ID recorded in the transcript.
func (t *Transcript) RunID() string {
	for _, e := range t.Events {
		if e.RunID != "" {
			return e.RunID
		}
	}
	return ""
}

// Failures returns the failed chapter events.
func (t *Transcript) Failures() []Event {
	return t.ofType(EventChapterFailed)
}

// Warnings returns the warning events.
func (t *Transcript) Warnings() []Event {
	return t.ofType(EventWarn)
}

// Completed returns the successful chapter events.
func (t *Transcript) Completed() []Event {
	return t.ofType(EventChapterOK)
}

// HasErrors reports whether any chapter failed.
func (t *Transcript) HasErrors() bool {
	return len(t.Failures()) > 0
}

func (t *Transcript) ofType(typ string) []Event {
	var out []Event
	for _, e := range t.Events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
