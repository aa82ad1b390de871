package jsonstream

import (
	"errors"
	"fmt"

	"github.com/surajatreya/jsonstream/internal/scanner"
	"github.com/surajatreya/jsonstream/internal/stack"
	"github.com/surajatreya/jsonstream/pathtree"
	"github.com/surajatreya/jsonstream/pointer"
)

// A Callback receives a matched value.  The Value is only valid until the
// callback returns.  A non-nil error stops the parser and is returned,
// wrapped in a *CallbackError, from the Feed or EndOfInput call that
// completed the value.
type Callback func(v *Value) error

type subscription struct {
	pattern  string
	callback Callback
}

type node = pathtree.Node[*subscription]

// A Builder collects patterns and builds parsers that share them.
//
//	b := jsonstream.NewBuilder().
//		OnValue("/name", printName).
//		OnValue("/pets/-/name", printPet)
//	p, err := b.Build()
//
// Once Build has been called the set of patterns is frozen: every parser
// from the Builder reads the same compiled tree, possibly from different
// goroutines, and further registrations fail with ErrFinalized.  A Builder
// itself must not be used concurrently.
type Builder struct {
	tree *pathtree.Builder[*subscription]
	err  error
}

func NewBuilder() *Builder {
	return &Builder{tree: pathtree.NewBuilder[*subscription]()}
}

// Register subscribes callback to the values designated by pattern (see
// package pointer for the syntax).  Registering the same pattern again
// replaces its callback.
func (b *Builder) Register(pattern string, callback Callback) error {
	if b.tree.Frozen() {
		return fmt.Errorf("%w: cannot register %q: %w", ErrConfiguration, pattern, ErrFinalized)
	}
	if callback == nil {
		return fmt.Errorf("%w: nil callback for %q", ErrConfiguration, pattern)
	}
	ptr, err := pointer.Parse(pattern)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return b.tree.Insert(ptr, &subscription{pattern: pattern, callback: callback})
}

// OnValue is like Register but returns b so that calls can be chained.  The
// first error is kept and returned by Err and Build, except for ErrFinalized:
// a registration made after Build is reported by Err but parsers can still
// be built from the frozen patterns.
func (b *Builder) OnValue(pattern string, callback Callback) *Builder {
	if err := b.Register(pattern, callback); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first error recorded by OnValue.
func (b *Builder) Err() error {
	return b.err
}

// Build freezes the registered patterns and returns a new Parser reading
// them.  It can be called any number of times; the patterns are compiled
// once.
func (b *Builder) Build(opts ...Option) (*Parser, error) {
	if b.err != nil && !errors.Is(b.err, ErrFinalized) {
		return nil, b.err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	frames := stack.New[frame]()
	if o.maxDepth > 0 {
		frames = stack.NewWithCapacity[frame](min(o.maxDepth, maxPreallocatedDepth))
	}
	p := &Parser{
		tree:     b.tree.Freeze(),
		buf:      scanner.NewBuffer(o.release),
		frames:   frames,
		release:  o.release,
		maxDepth: o.maxDepth,
		keyStart: -1,
	}
	return p, nil
}

// Frames for deeper limits are allocated as the input nests.
const maxPreallocatedDepth = 64

// An Option configures a Parser.
type Option func(*options)

type options struct {
	release  scanner.Releaser
	maxDepth int
}

// WithChunkReleaser sets a function that takes back every chunk passed to
// Feed once the parser no longer references it, for example to return it to
// a pool.  It is called exactly once per chunk, before the Feed call that
// received the chunk returns, whether or not that call succeeded.
func WithChunkReleaser(release func([]byte)) Option {
	return func(o *options) {
		o.release = release
	}
}

// WithMaxDepth limits the nesting of containers.  Input nesting deeper fails
// with ErrMaxDepth.  Zero or negative means no limit.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}
