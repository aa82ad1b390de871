package jsonstream

import (
	"fmt"

	"github.com/surajatreya/jsonstream/internal/debug"
	"github.com/surajatreya/jsonstream/token"
)

// A span is a value being read whose bytes will be passed to a callback.
type span struct {
	start int64
	sub   *subscription
	kind  token.Kind
}

// A frame is an open container.
type frame struct {
	kind token.Kind

	// The node matched by the container, nil when nothing inside the container
	// can match.  Such containers are scanned without looking at the tree.
	node *node

	// Set if the container itself matched.
	capture span
}

// valueNode returns the node matching the value about to start.
func (p *Parser) valueNode() *node {
	top := p.frames.PeekRef()
	switch {
	case top == nil:
		return p.tree.Root()
	case top.kind == token.Array:
		return top.node.Wildcard()
	}
	return p.keyNode
}

func (p *Parser) beginValue(c byte) error {
	kind := token.KindOf(c)
	if kind == token.Invalid {
		return p.unexpectedByte(c, "expected a value, got")
	}
	n := p.valueNode()
	sub, _ := n.Value()
	start := p.buf.Offset()

	switch kind {
	case token.Object, token.Array:
		if p.maxDepth > 0 && p.frames.Size() >= p.maxDepth {
			pos := p.buf.CurrentPos()
			return fmt.Errorf("%w: depth %d at L%d,C%d", ErrMaxDepth, p.maxDepth, pos.Line+1, pos.Col+1)
		}
		f := frame{kind: kind}
		if !n.IsLeaf() {
			f.node = n
		}
		if sub != nil {
			f.capture = span{start: start, sub: sub, kind: kind}
			p.hold(start)
		}
		p.frames.Push(f)
		p.buf.Advance()
		if kind == token.Object {
			p.state = stObjectFirst
		} else {
			p.state = stArrayFirst
		}
		return nil
	case token.String:
		p.buf.Advance()
		p.inKey = false
		p.state = stString
	case token.Number:
		p.num = numStart
		p.state = stNumber
	default:
		p.literal = literalFor(c)
		p.litIndex = 0
		p.state = stLiteral
	}
	p.scalar = span{start: start, sub: sub, kind: kind}
	return nil
}

// hold keeps the input from start until the matching release in
// endContainer.
func (p *Parser) hold(start int64) {
	if p.captures == 0 {
		p.captureFrom = start
	}
	p.captures++
}

func (p *Parser) endContainer() error {
	p.buf.Advance()
	f, _ := p.frames.Pop()
	if f.capture.sub != nil {
		p.captures--
		if err := p.fire(f.capture, p.buf.Offset()); err != nil {
			return err
		}
	}
	p.valueDone(f.kind)
	return nil
}

func (p *Parser) endScalar() error {
	s := p.scalar
	p.scalar = span{}
	if s.sub != nil {
		if err := p.fire(s, p.buf.Offset()); err != nil {
			return err
		}
	}
	p.valueDone(s.kind)
	return nil
}

func (p *Parser) valueDone(kind token.Kind) {
	top := p.frames.PeekRef()
	switch {
	case top == nil:
		p.docs++
		p.state = stBetween
		p.needSep = kind == token.Number || kind == token.Boolean || kind == token.Null
	case top.kind == token.Array:
		p.state = stArrayNext
	default:
		p.keyNode = nil
		p.state = stObjectNext
	}
}

// fire calls the callback of s with the bytes up to end.
func (p *Parser) fire(s span, end int64) error {
	v := &Value{
		raw:     p.buf.Bytes(s.start, end),
		kind:    s.kind,
		pattern: s.sub.pattern,
	}
	defer v.invalidate()
	if debug.On {
		debug.Printf("match %q: %s [%d, %d)", s.sub.pattern, s.kind, s.start, end)
	}
	p.inCallback = true
	err := s.sub.callback(v)
	p.inCallback = false
	if err != nil {
		return &CallbackError{Pattern: s.sub.pattern, Err: err}
	}
	return nil
}
