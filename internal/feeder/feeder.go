// Package feeder pushes the content of an io.Reader to a parser in chunks.
package feeder

import (
	"context"
	"errors"
	"io"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultChunkSize is used when New is given a size of 0.
const DefaultChunkSize = 32 * 1024

// A Sink consumes chunks.  It owns each chunk it is given and hands it back
// with Feeder.Release.  *jsonstream.Parser is a Sink when built with
// WithChunkReleaser(f.Release).
type Sink interface {
	Feed(chunk []byte) error
	EndOfInput() error
}

// A Feeder reads input into pooled chunks.  It may be used for several
// inputs in turn but not concurrently.
type Feeder struct {
	size    int
	pool    sync.Pool
	limiter *rate.Limiter

	// Statistics of the last Run
	Chunks int
	Bytes  int64
}

// New returns a Feeder reading chunks of chunkSize bytes.  If bytesPerSecond
// is positive the input is read no faster than that.
func New(chunkSize int, bytesPerSecond float64) *Feeder {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	f := &Feeder{size: chunkSize}
	f.pool.New = func() any {
		b := make([]byte, chunkSize)
		return &b
	}
	if bytesPerSecond <= 0 {
		f.limiter = rate.NewLimiter(rate.Inf, chunkSize)
	} else {
		f.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), chunkSize)
	}
	return f
}

// ChunkSize returns the size of the chunks read.
func (f *Feeder) ChunkSize() int {
	return f.size
}

// Release returns a chunk to the pool.  Chunks that did not come from f are
// dropped.
func (f *Feeder) Release(chunk []byte) {
	if cap(chunk) != f.size {
		return
	}
	chunk = chunk[:f.size]
	f.pool.Put(&chunk)
}

// Run reads r until EOF, feeding every chunk to sink, then ends the sink's
// input.  It stops at the first error, from r, from sink or from ctx.
func (f *Feeder) Run(ctx context.Context, r io.Reader, sink Sink) error {
	f.Chunks, f.Bytes = 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := *f.pool.Get().(*[]byte)
		n, err := r.Read(chunk)
		if n > 0 {
			if werr := f.limiter.WaitN(ctx, n); werr != nil {
				f.Release(chunk)
				return werr
			}
			f.Chunks++
			f.Bytes += int64(n)
			if ferr := sink.Feed(chunk[:n]); ferr != nil {
				return ferr
			}
		} else {
			f.Release(chunk)
		}
		switch {
		case errors.Is(err, io.EOF):
			return sink.EndOfInput()
		case err != nil:
			return err
		}
	}
}
