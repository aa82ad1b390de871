// Package pointer parses the path patterns used to subscribe to values in a
// JSON stream.
//
// A pattern is a JSON Pointer (RFC 6901) with one addition: the segment "-"
// stands for every element of an array.  Inside an object the same segment
// still names the field "-", so a pattern only says what it wants and the
// document decides which reading applies.
//
//	""              the whole document
//	"/name"         the "name" field of the root object
//	"/pets/-/name"  the "name" field of every element of the "pets" array
//	"/a~1b"         the field "a/b"
//	"/"             the field "" (empty name)
package pointer

import (
	"errors"
	"fmt"
	"strings"
)

const (
	EncodedTilde = "~0"
	EncodedSlash = "~1"
	Separator    = '/'

	// Wildcard is the segment matching any array element.
	Wildcard = "-"
)

// ErrInvalidPointer is wrapped by every error returned from Parse.
var ErrInvalidPointer = errors.New("invalid pointer")

// A Pointer is a parsed pattern: the unescaped segments, root first.  The
// root pattern "" is the empty Pointer.
type Pointer []string

// Parse splits s into unescaped segments.
func Parse(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if s[0] != Separator {
		return nil, fmt.Errorf("%w: %q must be empty or start with '/'", ErrInvalidPointer, s)
	}
	parts := strings.Split(s[1:], string(Separator))
	p := make(Pointer, len(parts))
	for i, part := range parts {
		seg, err := Unescape(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q segment %d: %s", ErrInvalidPointer, s, i+1, err)
		}
		p[i] = seg
	}
	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Pointer {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the escaped form of p, so that Parse(p.String()) == p.
func (p Pointer) String() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte(Separator)
		b.WriteString(Escape(seg))
	}
	return b.String()
}

// IsRoot reports whether p designates the whole document.
func (p Pointer) IsRoot() bool {
	return len(p) == 0
}

// Unescape decodes a single segment.  "~1" becomes "/" and "~0" becomes "~",
// in that order, so "~01" decodes to "~1".  Any other use of '~' is an error.
func Unescape(seg string) (string, error) {
	i := strings.IndexByte(seg, '~')
	if i < 0 {
		return seg, nil
	}
	var b strings.Builder
	b.Grow(len(seg))
	for ; i >= 0; i = strings.IndexByte(seg, '~') {
		b.WriteString(seg[:i])
		if i+1 == len(seg) {
			return "", errors.New("'~' at end of segment")
		}
		switch seg[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("invalid escape %q", seg[i:i+2])
		}
		seg = seg[i+2:]
	}
	b.WriteString(seg)
	return b.String(), nil
}

// Escape is the inverse of Unescape.
func Escape(seg string) string {
	if !strings.ContainsAny(seg, "~/") {
		return seg
	}
	return escaper.Replace(seg)
}

var escaper = strings.NewReplacer("~", EncodedTilde, "/", EncodedSlash)
