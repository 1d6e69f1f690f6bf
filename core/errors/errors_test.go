package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestChapterError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ChapterError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "grammar with line",
			err:      NewChapter(KindGrammar, 4, "verse line format mismatch"),
			wantMsg:  "line 4: verse line format mismatch",
			wantBase: ErrGrammar,
		},
		{
			name:     "continuity with line",
			err:      Chapterf(KindContinuity, 7, "duplicate verse number %d", 5),
			wantMsg:  "line 7: duplicate verse number 5",
			wantBase: ErrContinuity,
		},
		{
			name:     "lexical",
			err:      NewChapter(KindLexical, 3, "bare unto"),
			wantMsg:  "line 3: bare unto",
			wantBase: ErrLexical,
		},
		{
			name:     "malformed without line",
			err:      NewChapter(KindMalformedInput, 0, "no verses parsed"),
			wantMsg:  "no verses parsed",
			wantBase: ErrMalformedInput,
		},
		{
			name:     "configuration",
			err:      NewChapter(KindConfiguration, 0, "unknown book code \"xyz\""),
			wantMsg:  "unknown book code \"xyz\"",
			wantBase: ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.wantBase) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("bad number")
		err := &ChapterError{Kind: KindGrammar, Line: 2, Message: "x", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindMalformedInput, "MalformedInput"},
		{KindGrammar, "GrammarViolation"},
		{KindContinuity, "ContinuityViolation"},
		{KindLexical, "LexicalViolation"},
		{KindConfiguration, "ConfigurationError"},
		{Kind(42), "Kind(42)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	err := Wrap(NewChapter(KindLexical, 3, "x"), "chapter gen 1")
	if got := KindOf(err); got != KindLexical {
		t.Errorf("KindOf() = %v, want %v", got, KindLexical)
	}
	if got := KindOf(fmt.Errorf("plain")); got != 0 {
		t.Errorf("KindOf(plain) = %v, want 0", got)
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "book", ID: "gen"},
			wantMsg:  "book not found: gen",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "chapter file"},
			wantMsg:  "chapter file not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}
}

func TestIOError(t *testing.T) {
	underlyingErr := fmt.Errorf("permission denied")
	err := NewIO("read", "/tmp/gen_001.txt", underlyingErr)
	if got := err.Error(); got != "failed to read /tmp/gen_001.txt: permission denied" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("expected IOError to unwrap to underlying error")
	}

	noPath := NewIO("write", "", underlyingErr)
	if got := noPath.Error(); got != "failed to write: permission denied" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
	base := NewChapter(KindGrammar, 1, "bad header")
	wrapped := Wrapf(base, "verify %s", "gen_001.txt")
	if got := wrapped.Error(); got != "verify gen_001.txt: line 1: bad header" {
		t.Errorf("Wrapf() = %q", got)
	}
	var ce *ChapterError
	if !As(wrapped, &ce) || ce.Line != 1 {
		t.Error("As() should find the ChapterError")
	}
	if !Is(wrapped, ErrGrammar) {
		t.Error("Is() should match ErrGrammar")
	}
}
