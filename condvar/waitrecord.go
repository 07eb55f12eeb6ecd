package condvar

import (
	"sync/atomic"
	"time"
)

// waitRecord is the per-wait rendezvous object linking a waiting goroutine
// to its wakeup event and its position in a Cond's FIFO. It is created by
// newWaitRecord for a single wait and must not be reused across calls to
// Wait: each wait gets its own record.
//
// The FIFO holds only a non-owning reference via next; the record itself is
// owned by the calling goroutine's stack frame for the duration of Wait.
type waitRecord struct {
	next *waitRecord // FIFO link, mutated only under the owning Cond.internal (or Mutex.guard)

	woken atomic.Bool   // set exactly once, by wakeUp() or a completed handoff
	wake  chan struct{} // capacity 1; the park/unpark primitive

	cpu int32  // affinity hint, populated at enqueue time, read-only after
	id  uint64 // surrogate goroutine identity, see Scheduler.NextID
}

func newWaitRecord(sched Scheduler) *waitRecord {
	return &waitRecord{
		wake: make(chan struct{}, 1),
		cpu:  sched.CurrentCPU(),
		id:   sched.NextID(),
	}
}

// wait blocks until wakeUp() has been called on this record, or until timer
// fires (timer may be nil, meaning no timeout). It returns true if it woke
// because of timer expiry rather than wakeUp().
func (w *waitRecord) wait(timer <-chan time.Time) (timedOut bool) {
	if timer == nil {
		<-w.wake
		return false
	}
	select {
	case <-w.wake:
		return false
	case <-timer:
		return true
	}
}

// wakeUp sets woken and makes the owning goroutine runnable. It is safe to
// call at most once per record; a second call would double-close nothing
// (the channel send is non-blocking) but no protocol path in this package
// ever does that.
func (w *waitRecord) wakeUp() {
	w.woken.Store(true)
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *waitRecord) isWoken() bool {
	return w.woken.Load()
}
