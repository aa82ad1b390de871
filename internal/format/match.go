// Package format prints matched JSON values for the jsub command.
package format

import (
	"bytes"
	"io"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/surajatreya/jsonstream/token"
)

// A MatchPrinter prints one matched value per line.
type MatchPrinter struct {
	Writer io.Writer

	// If set, it is flushed after each match.
	Flusher Flusher

	Colorizer *Colorizer

	// Indent is the indentation of pretty-printed containers.  Zero prints
	// values as they appear in the input and a negative value removes all
	// insignificant whitespace.
	Indent int

	// Width is the line width under which pretty-printed arrays stay on one
	// line.
	Width int

	// If set, the label of the match is printed before the value.
	ShowLabel bool

	// If set, string values are printed decoded.
	Decode bool

	buf []byte
}

// PrintMatch prints a value of the given kind, which must be valid JSON.
// Values printed over several lines are indented under their label.  Errors
// from the output are returned as a *WriteError.
func (m *MatchPrinter) PrintMatch(label string, kind token.Kind, raw []byte) error {
	var out []byte
	if m.Decode && kind == token.String {
		s, err := token.Unquote(raw)
		if err != nil {
			return err
		}
		out = []byte(s)
	} else {
		out = m.Colorizer.Colorize(m.reformat(kind, raw))
	}

	buf := m.buf[:0]
	prefix := ""
	if m.ShowLabel {
		buf = m.Colorizer.AppendLabel(buf, label)
		if bytes.IndexByte(out, '\n') >= 0 {
			buf = append(buf, ":\n"...)
			prefix = labelIndent
		} else {
			buf = append(buf, ": "...)
		}
	}
	buf = appendLines(buf, prefix, out)
	m.buf = buf
	return writeMatch(m.Writer, m.Flusher, buf)
}

func (m *MatchPrinter) reformat(kind token.Kind, raw []byte) []byte {
	switch {
	case m.Indent < 0:
		return pretty.Ugly(raw)
	case m.Indent > 0 && kind.IsContainer():
		out := pretty.PrettyOptions(raw, &pretty.Options{
			Width:  m.Width,
			Indent: strings.Repeat(" ", m.Indent),
		})
		return bytes.TrimRight(out, "\n")
	}
	return raw
}
