package scanner

import (
	"github.com/surajatreya/jsonstream/internal/debug"
)

type Pos struct {
	Line int
	Col  int
}

// A Releaser takes back a chunk once the Buffer no longer references it.
type Releaser func([]byte)

// Buffer holds the bytes of a push-fed stream that a resumable tokenizer has
// not finished with.
//
// Chunks are handed over with Feed and read a byte at a time with Peek and
// Advance.  Bytes are addressed by their absolute offset in the stream, so a
// token can be started in one chunk and read back with Bytes once its end
// arrives in a later one.  When all available bytes have been consumed the
// owner calls Retain with the offset of the earliest byte it still needs:
// those bytes are copied into storage owned by the Buffer (the remainder) and
// the chunk is released.  There is at most one remainder and it is always
// logically in front of the next chunk.
type Buffer struct {
	// The bytes available for reading.  buf[i] is at offset base+i.  This is
	// either the caller's chunk (when aliased is true) or rem.
	buf  []byte
	base int64

	// Current position in buf
	// 0 <= currentIndex <= len(buf)
	currentIndex int

	// Records lineno and colno of current position (from when the scanning
	// started)
	currentPos Pos

	aliased bool

	// Storage for the remainder, reused from feed to feed.
	rem []byte

	release Releaser
}

func NewBuffer(release Releaser) *Buffer {
	return &Buffer{release: release}
}

// Feed makes chunk available for reading after whatever was retained.  The
// Buffer owns chunk from now on.  It must only be called once every available
// byte has been read and Retain has been called.
func (b *Buffer) Feed(chunk []byte) {
	if b.currentIndex != len(b.buf) || b.aliased {
		panic("Feed called with unread input")
	}
	if len(chunk) == 0 {
		b.releaseChunk(chunk)
		return
	}
	if len(b.buf) == 0 {
		// Nothing retained: read straight from the caller's chunk.
		b.buf = chunk
		b.currentIndex = 0
		b.aliased = true
		return
	}
	b.rem = append(b.buf, chunk...)
	b.buf = b.rem
	b.releaseChunk(chunk)
}

// Peek returns the next unread byte.  It returns false when the available
// input is exhausted.
func (b *Buffer) Peek() (byte, bool) {
	if b.currentIndex < len(b.buf) {
		return b.buf[b.currentIndex], true
	}
	return 0, false
}

// Advance consumes the byte returned by the last Peek.
func (b *Buffer) Advance() {
	c := b.buf[b.currentIndex]
	b.currentIndex++
	switch {
	case c == '\n':
		b.currentPos.Line++
		b.currentPos.Col = 0
	case c&0xC0 != 0x80:
		// Not a continuation byte of a utf8-encoded codepoint
		b.currentPos.Col++
	}
}

// Offset returns the stream offset of the next unread byte.
func (b *Buffer) Offset() int64 {
	return b.base + int64(b.currentIndex)
}

// CurrentPos returns the line and column of the next unread byte, both
// counted from 0.
func (b *Buffer) CurrentPos() Pos {
	return b.currentPos
}

// Bytes returns the stream bytes in [from, to).  The returned slice aliases
// the Buffer and is only valid until the next call to Feed, Retain or
// Release.  It panics if the range is not available.
func (b *Buffer) Bytes(from, to int64) []byte {
	if from < b.base || to > b.base+int64(len(b.buf)) || from > to {
		panic("range not in buffer")
	}
	return b.buf[from-b.base : to-b.base]
}

// Retain keeps the bytes from offset from to the end of the available input
// and releases everything else.  A negative from keeps nothing.
func (b *Buffer) Retain(from int64) {
	end := b.base + int64(len(b.buf))
	if from < 0 || from > end {
		from = end
	}
	if from < b.base {
		panic("cannot retain bytes that are already gone")
	}
	b.store(b.buf[from-b.base:])
	if b.aliased {
		b.releaseChunk(b.buf)
		b.aliased = false
	}
	b.buf = b.rem
	b.base = from
	b.currentIndex = len(b.buf)
}

// Retained returns the number of bytes kept by the last Retain that have not
// been released since.
func (b *Buffer) Retained() int {
	if b.aliased {
		return 0
	}
	return len(b.buf)
}

// Release drops the remainder and any chunk still referenced.  The Buffer
// can no longer be read after that.
func (b *Buffer) Release() {
	if b.aliased {
		b.releaseChunk(b.buf)
		b.aliased = false
	}
	b.base += int64(len(b.buf))
	b.buf = nil
	b.rem = nil
	b.currentIndex = 0
}

// store copies keep to the start of the remainder storage.  keep may alias
// that storage.
//
// If the storage is small or well used it is reused, otherwise a smaller one
// is allocated so that one large token does not pin its memory for the rest
// of the stream.
func (b *Buffer) store(keep []byte) {
	if cap(b.rem) <= remainderCapacityThreshold || len(keep)*2 > cap(b.rem) {
		b.rem = append(b.rem[:0], keep...)
		return
	}
	debug.Printf("reducing remainder capacity %d to %d", cap(b.rem), len(keep))
	if len(keep) == 0 {
		b.rem = nil
		return
	}
	rem := make([]byte, len(keep))
	copy(rem, keep)
	b.rem = rem
}

func (b *Buffer) releaseChunk(chunk []byte) {
	if b.release != nil {
		b.release(chunk)
	}
}

const (
	// remainderCapacityThreshold is the capacity up to which the remainder
	// storage is always reused.  Larger storage is only reused if at least
	// half of it is needed.
	remainderCapacityThreshold = 4096
)
