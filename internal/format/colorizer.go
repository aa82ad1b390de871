package format

import (
	"github.com/tidwall/pretty"
)

// A Colorizer adds terminal colours to the output of a MatchPrinter.  A nil
// *Colorizer prints everything plain.
type Colorizer struct {
	LabelColorCode []byte
	ResetCode      []byte

	// Style colours JSON values.
	Style *pretty.Style
}

// DefaultColorizer uses ANSI codes.
var DefaultColorizer = Colorizer{
	LabelColorCode: []byte("\033[35m"),
	ResetCode:      []byte("\033[0m"),
	Style:          pretty.TerminalStyle,
}

// AppendLabel appends label to dst, coloured if c is not nil.
func (c *Colorizer) AppendLabel(dst []byte, label string) []byte {
	if c == nil {
		return append(dst, label...)
	}
	dst = append(dst, c.LabelColorCode...)
	dst = append(dst, label...)
	return append(dst, c.ResetCode...)
}

// Colorize returns json with colour codes added.
func (c *Colorizer) Colorize(json []byte) []byte {
	if c == nil {
		return json
	}
	return pretty.Color(json, c.Style)
}
