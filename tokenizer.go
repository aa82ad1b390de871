package jsonstream

import (
	"fmt"
	"io"

	"github.com/surajatreya/jsonstream/internal/scanner"
	"github.com/surajatreya/jsonstream/token"
)

// state is where the tokenizer is in the JSON grammar.  Every state can be
// left at a chunk boundary and resumed with the next chunk.
type state uint8

const (
	stBetween     state = iota // before, between or after top-level values
	stValue                    // after ':' or ',' in an array
	stObjectFirst              // after '{'
	stObjectKey                // after ',' in an object
	stColon                    // after a key
	stObjectNext               // after a member value
	stArrayFirst               // after '['
	stArrayNext                // after an element
	stString                   // inside a string or key
	stNumber                   // inside a number
	stLiteral                  // inside true, false or null
)

type numState uint8

const (
	numStart numState = iota
	numMinus
	numZero
	numInt
	numDot
	numFrac
	numExp
	numExpSign
	numExpDigits
)

// complete reports whether a number can end in state s.
func (s numState) complete() bool {
	switch s {
	case numZero, numInt, numFrac, numExpDigits:
		return true
	}
	return false
}

// scan consumes all the available input.
func (p *Parser) scan() error {
	for {
		c, ok := p.buf.Peek()
		if !ok {
			return nil
		}
		var err error
		switch p.state {
		case stString:
			err = p.stringByte(c)
		case stNumber:
			err = p.numberByte(c)
		case stLiteral:
			err = p.literalByte(c)
		default:
			if scanner.IsSpace(c) {
				p.buf.Advance()
				if p.state == stBetween {
					p.needSep = false
				}
				continue
			}
			err = p.structuralByte(c)
		}
		if err != nil {
			return err
		}
	}
}

// finish is called once the input has ended.
func (p *Parser) finish() error {
	switch p.state {
	case stBetween:
		return nil
	case stNumber:
		if p.frames.IsEmpty() && p.num.complete() {
			return p.endScalar()
		}
	}
	return p.unexpectedEnd()
}

func (p *Parser) structuralByte(c byte) error {
	switch p.state {
	case stBetween:
		if p.needSep {
			switch token.KindOf(c) {
			case token.Number, token.Boolean, token.Null:
				return p.unexpectedByte(c, "expected whitespace between top-level values, got")
			}
		}
		return p.beginValue(c)
	case stValue:
		return p.beginValue(c)
	case stArrayFirst:
		if c == ']' {
			return p.endContainer()
		}
		return p.beginValue(c)
	case stArrayNext:
		switch c {
		case ',':
			p.buf.Advance()
			p.state = stValue
			return nil
		case ']':
			return p.endContainer()
		}
		return p.unexpectedByte(c, "expected ']' or ',', got")
	case stObjectFirst:
		switch c {
		case '"':
			p.beginKey()
			return nil
		case '}':
			return p.endContainer()
		}
		return p.unexpectedByte(c, "expected '}' or a key, got")
	case stObjectKey:
		if c != '"' {
			return p.unexpectedByte(c, "expected a key, got")
		}
		p.beginKey()
		return nil
	case stColon:
		if c != ':' {
			return p.unexpectedByte(c, "expected ':', got")
		}
		p.buf.Advance()
		p.state = stValue
		return nil
	case stObjectNext:
		switch c {
		case ',':
			p.buf.Advance()
			p.state = stObjectKey
			return nil
		case '}':
			return p.endContainer()
		}
		return p.unexpectedByte(c, "expected '}' or ',', got")
	}
	panic(fmt.Sprintf("invalid tokenizer state %d", p.state))
}

func (p *Parser) beginKey() {
	if top := p.frames.PeekRef(); top.node.HasFields() {
		p.keyStart = p.buf.Offset()
	}
	p.buf.Advance()
	p.inKey = true
	p.state = stString
}

func (p *Parser) stringByte(c byte) error {
	switch {
	case p.hexLeft > 0:
		if !scanner.IsHex(c) {
			return p.unexpectedByte(c, "invalid \\u escape, got")
		}
		p.hexLeft--
	case p.escaped:
		switch c {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		case 'u':
			p.hexLeft = 4
		default:
			return p.unexpectedByte(c, "invalid escape sequence")
		}
		p.escaped = false
	case c == '"':
		p.buf.Advance()
		if p.inKey {
			return p.endKey()
		}
		return p.endScalar()
	case c == '\\':
		p.escaped = true
	case scanner.IsCtrl(c):
		return p.unexpectedByte(c, "invalid control character in string")
	}
	p.buf.Advance()
	return nil
}

func (p *Parser) endKey() error {
	p.inKey = false
	p.state = stColon
	if p.keyStart < 0 {
		p.keyNode = nil
		return nil
	}
	name, err := token.Unquote(p.buf.Bytes(p.keyStart, p.buf.Offset()))
	if err != nil {
		return p.syntaxError(p.keyStart, fmt.Sprintf("invalid key: %s", err), nil)
	}
	p.keyStart = -1
	p.keyNode = p.frames.PeekRef().node.Child(name)
	return nil
}

func (p *Parser) numberByte(c byte) error {
	var next numState
	switch p.num {
	case numStart:
		switch {
		case c == '-':
			next = numMinus
		case c == '0':
			next = numZero
		default:
			next = numInt
		}
	case numMinus:
		switch {
		case c == '0':
			next = numZero
		case scanner.IsDigit(c):
			next = numInt
		default:
			return p.unexpectedByte(c, "expected a digit after '-', got")
		}
	case numZero, numInt, numFrac:
		switch {
		case p.num == numInt && scanner.IsDigit(c), p.num == numFrac && scanner.IsDigit(c):
			next = p.num
		case c == '.' && p.num != numFrac:
			next = numDot
		case c == 'e' || c == 'E':
			next = numExp
		default:
			return p.endScalar()
		}
	case numDot:
		if !scanner.IsDigit(c) {
			return p.unexpectedByte(c, "expected a digit after '.', got")
		}
		next = numFrac
	case numExp:
		switch {
		case c == '+' || c == '-':
			next = numExpSign
		case scanner.IsDigit(c):
			next = numExpDigits
		default:
			return p.unexpectedByte(c, "expected a digit or sign in exponent, got")
		}
	case numExpSign, numExpDigits:
		if !scanner.IsDigit(c) {
			if p.num == numExpSign {
				return p.unexpectedByte(c, "expected a digit in exponent, got")
			}
			return p.endScalar()
		}
		next = numExpDigits
	}
	p.num = next
	p.buf.Advance()
	return nil
}

func (p *Parser) literalByte(c byte) error {
	if c != p.literal[p.litIndex] {
		return p.unexpectedByte(c, "invalid literal, expected %q", p.literal)
	}
	p.buf.Advance()
	p.litIndex++
	if p.litIndex == len(p.literal) {
		return p.endScalar()
	}
	return nil
}

func literalFor(c byte) string {
	switch c {
	case 't':
		return "true"
	case 'f':
		return "false"
	}
	return "null"
}

func (p *Parser) unexpectedByte(c byte, expected string, args ...any) error {
	msg := fmt.Sprintf("%s: %q", fmt.Sprintf(expected, args...), c)
	return p.syntaxError(p.buf.Offset(), msg, nil)
}

func (p *Parser) unexpectedEnd() error {
	return p.syntaxError(p.buf.Offset(), "unexpected end of input", io.ErrUnexpectedEOF)
}

// syntaxError reports a problem at offset.  The line and column are those of
// the next unread byte.
func (p *Parser) syntaxError(offset int64, msg string, err error) *SyntaxError {
	pos := p.buf.CurrentPos()
	return &SyntaxError{
		Offset: offset,
		Line:   pos.Line + 1,
		Col:    pos.Col + 1,
		Msg:    msg,
		Err:    err,
	}
}
