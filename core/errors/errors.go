// Package errors provides the error taxonomy shared by the segmentation
// engine, the emitter and the validator.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure kind.
var (
	// ErrMalformedInput indicates a source chapter that cannot be turned into records
	ErrMalformedInput = errors.New("malformed input")
	// ErrGrammar indicates a line that does not match the canonical grammar
	ErrGrammar = errors.New("grammar violation")
	// ErrContinuity indicates duplicate, missing or out-of-order verse numbers
	ErrContinuity = errors.New("continuity violation")
	// ErrLexical indicates a missing or repeated gloss annotation
	ErrLexical = errors.New("lexical violation")
	// ErrConfiguration indicates an unknown book code or missing mapping entry
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
)

// Kind classifies a chapter failure.
type Kind int

const (
	KindMalformedInput Kind = iota + 1
	KindGrammar
	KindContinuity
	KindLexical
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "MalformedInput"
	case KindGrammar:
		return "GrammarViolation"
	case KindContinuity:
		return "ContinuityViolation"
	case KindLexical:
		return "LexicalViolation"
	case KindConfiguration:
		return "ConfigurationError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMalformedInput:
		return ErrMalformedInput
	case KindGrammar:
		return ErrGrammar
	case KindContinuity:
		return ErrContinuity
	case KindLexical:
		return ErrLexical
	case KindConfiguration:
		return ErrConfiguration
	default:
		return nil
	}
}

// ChapterError is the single structured failure reported for a chapter.
type ChapterError struct {
	Kind    Kind   // Failure class
	Line    int    // 1-based line number in the canonical document, 0 if not line-specific
	Message string // Human-readable reason
	Err     error  // Underlying error, if any
}

func (e *ChapterError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func (e *ChapterError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind.sentinel()
}

// NewChapter creates a ChapterError.
func NewChapter(kind Kind, line int, message string) *ChapterError {
	return &ChapterError{
		Kind:    kind,
		Line:    line,
		Message: message,
	}
}

// Chapterf creates a ChapterError with a formatted message.
func Chapterf(kind Kind, line int, format string, args ...interface{}) *ChapterError {
	return NewChapter(kind, line, fmt.Sprintf(format, args...))
}

// KindOf returns the Kind of the first ChapterError in err's chain, or 0.
func KindOf(err error) Kind {
	var ce *ChapterError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "book", "chapter file")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
