// Package pathtree compiles parsed pointers into a trie that a streaming
// parser can walk one container level at a time.
//
// A Builder is mutable and owned by one goroutine.  Freeze turns it into a
// Tree, after which the Builder refuses further inserts: the Tree is shared
// by every parser built from it and may be read concurrently.
package pathtree

import (
	"errors"

	"github.com/surajatreya/jsonstream/pointer"
)

// ErrFrozen is returned by Insert once Freeze has been called.
var ErrFrozen = errors.New("path tree is frozen")

// A Node is one segment of one or more inserted pointers.
type Node[T any] struct {
	children map[string]*Node[T]
	wildcard *Node[T]
	value    T
	hasValue bool
}

// Child returns the node reached from n through the object field name, or
// nil.
func (n *Node[T]) Child(name string) *Node[T] {
	if n == nil {
		return nil
	}
	return n.children[name]
}

// Wildcard returns the node reached from n through any array element, or
// nil.
func (n *Node[T]) Wildcard() *Node[T] {
	if n == nil {
		return nil
	}
	return n.wildcard
}

// Value returns the value stored at n, if a pointer ends at n.
func (n *Node[T]) Value() (T, bool) {
	if n == nil {
		var zero T
		return zero, false
	}
	return n.value, n.hasValue
}

// HasValue reports whether a pointer ends at n.
func (n *Node[T]) HasValue() bool {
	return n != nil && n.hasValue
}

// IsLeaf reports whether no pointer goes deeper than n.
func (n *Node[T]) IsLeaf() bool {
	return n == nil || len(n.children) == 0 && n.wildcard == nil
}

// HasFields reports whether some pointer continues from n through an object
// field name.
func (n *Node[T]) HasFields() bool {
	return n != nil && len(n.children) > 0
}

// A Tree is a frozen trie.  It has no mutating methods.
type Tree[T any] struct {
	root *Node[T]
	size int
}

// Root returns the node matching whole documents.  It is never nil.
func (t *Tree[T]) Root() *Node[T] {
	return t.root
}

// Len returns the number of distinct pointers in the tree.
func (t *Tree[T]) Len() int {
	return t.size
}

// A Builder accumulates pointers until Freeze is called.
type Builder[T any] struct {
	root   *Node[T]
	size   int
	frozen *Tree[T]
}

func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{root: &Node[T]{}}
}

// Insert stores v at the node for p, creating intermediate nodes as needed.
// Inserting the same pointer twice replaces the earlier value.
//
// A pointer.Wildcard segment is stored as the field edge "-" and as the
// wildcard edge at once, both leading to the same node: which one applies is
// only known once the document shows whether the container is an object or
// an array.
func (b *Builder[T]) Insert(p pointer.Pointer, v T) error {
	if b.frozen != nil {
		return ErrFrozen
	}
	n := b.root
	for _, seg := range p {
		n = n.edge(seg)
	}
	if !n.hasValue {
		b.size++
	}
	n.value = v
	n.hasValue = true
	return nil
}

func (n *Node[T]) edge(seg string) *Node[T] {
	if child := n.children[seg]; child != nil {
		return child
	}
	child := &Node[T]{}
	if n.children == nil {
		n.children = make(map[string]*Node[T])
	}
	n.children[seg] = child
	if seg == pointer.Wildcard {
		n.wildcard = child
	}
	return child
}

// Freeze returns the Tree built so far.  Every call returns the same Tree.
func (b *Builder[T]) Freeze() *Tree[T] {
	if b.frozen == nil {
		b.frozen = &Tree[T]{root: b.root, size: b.size}
	}
	return b.frozen
}

// Frozen reports whether Freeze has been called.
func (b *Builder[T]) Frozen() bool {
	return b.frozen != nil
}
