// Package elastic implements a bounded (or unbounded) FIFO queue backed
// by condvar.Cond instead of a background goroutine shuffling values
// between two channels. Pending items are kept in a container/list.List
// rather than a slice-backed ring.
package elastic

import (
	"container/list"
	"context"
	"errors"

	"github.com/robintsai/condvar/condvar"
)

// ErrClosed is returned by Push/Pop once the Buf has been closed.
var ErrClosed = errors.New("elastic: buf closed")

// Buf is a bounded FIFO queue. Producers block in Push when it is full;
// consumers block in Pop when it is empty. Both wait on a shared
// condvar.Mutex with wait morphing enabled, so a Pop that wakes a blocked
// Push (or vice versa) hands the mutex straight to it instead of making it
// re-contend.
type Buf struct {
	mu       condvar.Mutex
	notEmpty *condvar.Cond
	notFull  *condvar.Cond
	items    list.List
	capacity int // <= 0 means unbounded
	closed   bool
}

// NewBuf creates a Buf holding at most capacity items. capacity <= 0 means
// unbounded (Push never blocks on fullness).
func NewBuf(capacity int) *Buf {
	b := &Buf{capacity: capacity}
	b.notEmpty = condvar.NewCond(true)
	b.notFull = condvar.NewCond(true)
	return b
}

// Len reports the number of items currently queued.
func (b *Buf) Len() int {
	b.mu.Lock()
	n := b.items.Len()
	b.mu.Unlock()
	return n
}

// Push enqueues v, blocking while the queue is at capacity. It returns
// ErrClosed if the Buf is closed either before or while waiting, and
// context.DeadlineExceeded if ctx carries a deadline that elapses first.
// Only ctx's deadline is honored, not its Done channel: a bare
// context.WithCancel will not unblock a waiting Push. Call Close (or give
// ctx a deadline) to guarantee a blocked caller returns.
func (b *Buf) Push(ctx context.Context, v interface{}) error {
	deadline, _ := ctx.Deadline()

	b.mu.Lock()
	for !b.closed && b.capacity > 0 && b.items.Len() >= b.capacity {
		if timedOut := b.notFull.Wait(&b.mu, deadline); timedOut {
			b.mu.Unlock()
			return context.DeadlineExceeded
		}
	}
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.items.PushBack(v)
	b.mu.Unlock()
	b.notEmpty.WakeOne()
	return nil
}

// Pop dequeues the oldest item, blocking while the queue is empty. It
// returns false if the Buf is closed and drained, or if ctx's deadline
// elapses first. As with Push, only ctx's deadline is honored, not
// cancellation via its Done channel; Close is what Pool.Down relies on to
// unblock idle workers promptly.
func (b *Buf) Pop(ctx context.Context) (interface{}, bool) {
	deadline, _ := ctx.Deadline()

	b.mu.Lock()
	for b.items.Len() == 0 {
		if b.closed {
			b.mu.Unlock()
			return nil, false
		}
		if timedOut := b.notEmpty.Wait(&b.mu, deadline); timedOut {
			b.mu.Unlock()
			return nil, false
		}
	}
	front := b.items.Front()
	v := front.Value
	b.items.Remove(front)
	b.mu.Unlock()
	b.notFull.WakeOne()
	return v, true
}

// Close marks the Buf closed: blocked and future Push calls fail with
// ErrClosed, blocked and future Pop calls on a drained Buf return
// (nil, false). Items already queued remain poppable until drained.
func (b *Buf) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	b.notEmpty.WakeAll()
	b.notFull.WakeAll()
}
