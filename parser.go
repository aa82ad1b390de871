package jsonstream

import (
	"github.com/surajatreya/jsonstream/internal/scanner"
	"github.com/surajatreya/jsonstream/internal/stack"
	"github.com/surajatreya/jsonstream/pathtree"
)

// A Parser reads a stream of JSON documents pushed to it in chunks and calls
// the callbacks registered on its Builder for every matching value.
//
// Callbacks run synchronously, in document order, inside the Feed or
// EndOfInput call that delivered the last byte of the value.  A Parser must
// be driven by one goroutine at a time.  Any error is sticky: once a call has
// failed every later call returns the same error.  Close must always be
// called when the parser is no longer needed.
type Parser struct {
	tree     *pathtree.Tree[*subscription]
	buf      *scanner.Buffer
	release  scanner.Releaser
	maxDepth int

	state  state
	frames *stack.Stack[frame]

	// String state
	inKey    bool
	escaped  bool
	hexLeft  uint8
	keyStart int64 // offset of the current key, -1 if it is not recorded
	keyNode  *node // node matching the value of the current object member

	// Number and literal state
	num      numState
	literal  string
	litIndex int

	// The scalar being read
	scalar span

	// Number of frames capturing their container, and where the outermost
	// one started.
	captures    int
	captureFrom int64

	// Set after a top-level number or literal, until whitespace is seen.
	needSep bool

	// Set while a callback runs.
	inCallback bool

	docs   int
	err    error
	ended  bool
	closed bool
}

// Feed parses the next chunk of input, calling callbacks for every value it
// completes.  The parser takes ownership of chunk: the caller must not modify
// or reuse it, unless a releaser set with WithChunkReleaser hands it back.
// An empty chunk is a no-op.
//
// The returned error is a *SyntaxError for invalid input, a *CallbackError if
// a callback failed, or ErrMaxDepth, ErrClosed or ErrEnded.
func (p *Parser) Feed(chunk []byte) error {
	if err := p.usable(); err != nil {
		if p.release != nil {
			p.release(chunk)
		}
		return err
	}
	p.buf.Feed(chunk)
	return p.run(p.scan)
}

// EndOfInput signals that no more input will be fed.  A trailing top-level
// number is completed, which may call a callback.  It is an error if the
// input stops in the middle of a document, in which case the returned
// *SyntaxError also matches io.ErrUnexpectedEOF.  An empty input contains no
// document and is valid.
func (p *Parser) EndOfInput() error {
	if err := p.usable(); err != nil {
		return err
	}
	if err := p.run(p.finish); err != nil {
		return err
	}
	p.ended = true
	p.releaseAll()
	return nil
}

// Close releases all the input retained by the parser.  It never calls a
// callback and can be called at any point, any number of times.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.releaseAll()
	return nil
}

// Documents returns the number of complete top-level documents read so far.
func (p *Parser) Documents() int {
	return p.docs
}

// Offset returns the number of input bytes consumed so far.
func (p *Parser) Offset() int64 {
	return p.buf.Offset()
}

// Depth returns the current container nesting depth.
func (p *Parser) Depth() int {
	return p.frames.Size()
}

func (p *Parser) usable() error {
	switch {
	case p.closed:
		return ErrClosed
	case p.err != nil:
		return p.err
	case p.ended:
		return ErrEnded
	}
	return nil
}

// run calls step then keeps the input that spans still need.  If step fails
// or panics, the parser is poisoned and everything it holds is released.
func (p *Parser) run(step func() error) error {
	done := false
	defer func() {
		switch {
		case done:
		case p.inCallback:
			p.inCallback = false
			p.fail(ErrCallbackPanicked)
		default:
			p.fail(ErrInternal)
		}
	}()
	err := step()
	done = true
	if err != nil {
		p.fail(err)
		return err
	}
	p.buf.Retain(p.retainFrom())
	return nil
}

func (p *Parser) fail(err error) {
	p.err = err
	p.releaseAll()
}

func (p *Parser) releaseAll() {
	p.buf.Release()
	p.frames.Release()
	p.scalar = span{}
	p.keyStart = -1
	p.keyNode = nil
	p.captures = 0
}

// retainFrom returns the offset of the first byte that a pending span or
// key still needs, or -1.
func (p *Parser) retainFrom() int64 {
	switch {
	case p.captures > 0:
		return p.captureFrom
	case p.scalar.sub != nil:
		return p.scalar.start
	case p.keyStart >= 0:
		return p.keyStart
	}
	return -1
}
