// Package cursor implements the producer/consumer split that carries
// query results out of storage: an InternalCursor the producer feeds
// samples into, and the ExternalCursor a reader drains.
//
// The original engine ran the producer on its own stackful coroutine,
// yielding control to the reader whenever its output buffer filled
// and back again whenever the reader asked for more than was ready.
// Go has no stackful coroutines, but it does have goroutines and
// channels, so the same cooperative handoff is expressed as a
// rendezvous: the producer goroutine blocks sending a batch on an
// unbuffered channel, and the reader blocks receiving one, with
// context.Context standing in for cancellation instead of a forced
// coroutine unwind.
package cursor

import (
	"context"

	"github.com/macneib/Akumuli/page"
)

// InternalCursor is the producer side: the goroutine generating
// results calls Put for every sample, Complete when it's done, and
// SetError if it needs to abort early.
type InternalCursor interface {
	// Put delivers one sample, blocking until the reader accepts it
	// or ctx is canceled. It reports whether the producer should
	// continue (false means the reader has gone away).
	Put(ctx context.Context, s page.Sample) bool
	Complete()
	SetError(err error)
}

// ExternalCursor is the consumer side: Read drains up to len(buf)
// samples, blocking until buf is full, the producer finishes, or ctx is
// canceled. A short count with a nil error means the producer is done.
type ExternalCursor interface {
	Read(ctx context.Context, buf []page.Sample) (int, error)
	IsDone() bool
	IsError() (error, bool)
	Close()
}

// channelCursor implements both interfaces over a single unbuffered
// channel: exactly one sample crosses per rendezvous, matching the
// original's per-sample put/get handoff.
type channelCursor struct {
	samples chan page.Sample
	done    chan struct{}
	err     error
	closed  bool
}

// New creates a connected (InternalCursor, ExternalCursor) pair.
func New() (InternalCursor, ExternalCursor) {
	c := &channelCursor{
		samples: make(chan page.Sample),
		done:    make(chan struct{}),
	}

	return c, c
}

func (c *channelCursor) Put(ctx context.Context, s page.Sample) bool {
	select {
	case c.samples <- s:
		return true
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	}
}

func (c *channelCursor) Complete() {
	close(c.done)
}

func (c *channelCursor) SetError(err error) {
	c.err = err
	close(c.done)
}

func (c *channelCursor) Read(ctx context.Context, buf []page.Sample) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	n := 0

	for n < len(buf) {
		select {
		case s := <-c.samples:
			buf[n] = s
			n++
		case <-c.done:
			return n, c.err
		case <-ctx.Done():
			return n, ctx.Err()
		}
	}

	return n, nil
}

func (c *channelCursor) IsDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *channelCursor) IsError() (error, bool) {
	if c.IsDone() && c.err != nil {
		return c.err, true
	}

	return nil, false
}

func (c *channelCursor) Close() {
	if !c.closed {
		c.closed = true
	}
}

// Produce runs fn on its own goroutine with an InternalCursor wired
// to the returned ExternalCursor, calling Complete (or SetError, if fn
// returns a non-nil error) once fn returns.
func Produce(ctx context.Context, fn func(ctx context.Context, ic InternalCursor) error) ExternalCursor {
	ic, ec := New()

	go func() {
		if err := fn(ctx, ic); err != nil {
			ic.SetError(err)

			return
		}

		ic.Complete()
	}()

	return ec
}

// ReadAll drains ec to completion, returning every sample it produced.
// Used by callers that don't need streaming/backpressure, such as
// tests and the fan-in cursor's child consumers.
func ReadAll(ctx context.Context, ec ExternalCursor) ([]page.Sample, error) {
	var out []page.Sample

	buf := make([]page.Sample, 64)

	for {
		n, err := ec.Read(ctx, buf)
		out = append(out, buf[:n]...)

		if err != nil {
			return out, err
		}

		if n < len(buf) {
			if readErr, ok := ec.IsError(); ok {
				return out, readErr
			}

			return out, nil
		}
	}
}
