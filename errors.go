package jsonstream

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is wrapped by every error returned while registering
	// patterns.
	ErrConfiguration = errors.New("jsonstream: configuration error")

	// ErrFinalized is returned, wrapped in ErrConfiguration, when a pattern is
	// registered on a Builder that has already built a parser.  The compiled
	// patterns are shared by all parsers from the same Builder and cannot
	// change.
	ErrFinalized = errors.New("builder already finalized")

	// ErrMalformed is matched by every *SyntaxError.
	ErrMalformed = errors.New("jsonstream: malformed JSON input")

	// ErrMaxDepth is returned when the input nests deeper than the limit set
	// with WithMaxDepth.
	ErrMaxDepth = errors.New("jsonstream: maximum nesting depth exceeded")

	// ErrClosed is returned when a closed Parser is used.
	ErrClosed = errors.New("jsonstream: parser closed")

	// ErrEnded is returned when a Parser is fed after EndOfInput.
	ErrEnded = errors.New("jsonstream: input already ended")

	// ErrCallbackPanicked is the error a Parser reports after a callback
	// panicked through one of its methods.
	ErrCallbackPanicked = errors.New("jsonstream: callback panicked")

	// ErrInternal is the error a Parser reports after it panicked outside of
	// a callback.
	ErrInternal = errors.New("jsonstream: internal error")
)

// A SyntaxError reports invalid JSON input.  Line and Col are 1-based and
// Offset is the 0-based position of the offending byte in the whole stream.
type SyntaxError struct {
	Offset int64
	Line   int
	Col    int
	Msg    string

	// Err is io.ErrUnexpectedEOF when the input ended too early.
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at L%d,C%d: %s", e.Line, e.Col, e.Msg)
}

// Is makes every SyntaxError match ErrMalformed.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrMalformed
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// A CallbackError wraps an error returned by a Callback.
type CallbackError struct {
	Pattern string
	Err     error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("jsonstream: callback for %q: %s", e.Pattern, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}
