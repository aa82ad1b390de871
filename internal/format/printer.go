package format

import (
	"bytes"
	"fmt"
	"io"
)

// labelIndent starts every line of a value printed under its label.
const labelIndent = "  "

// A Flusher is flushed after each match, so that matches show up as soon as
// they are found.
type Flusher interface {
	Flush() error
}

// A WriteError is returned when a match could not be sent to the output.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write match: %s", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// appendLines appends every line of value to dst, after prefix and followed
// by a newline.  An empty value is an empty line.
func appendLines(dst []byte, prefix string, value []byte) []byte {
	for {
		line, rest, more := bytes.Cut(value, []byte{'\n'})
		dst = append(dst, prefix...)
		dst = append(dst, line...)
		dst = append(dst, '\n')
		if !more {
			return dst
		}
		value = rest
	}
}

// writeMatch sends out the lines of a match in one write.
func writeMatch(w io.Writer, f Flusher, lines []byte) error {
	if _, err := w.Write(lines); err != nil {
		return &WriteError{Err: err}
	}
	if f != nil {
		if err := f.Flush(); err != nil {
			return &WriteError{Err: err}
		}
	}
	return nil
}
