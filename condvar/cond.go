package condvar

import (
	"sync"
	"time"
)

// Cond is a FIFO of goroutines waiting on a predicate guarded by a user
// mutex, with WakeOne/WakeAll operations to release one or all of them.
//
// If morph is true (see NewCond), WakeOne/WakeAll hand the user mutex
// directly to the woken waiter instead of merely waking it ("wait
// morphing"). All concurrent waiters on a morphing Cond must pass the
// same *Mutex to Wait; passing a different one is a usage bug and panics.
type Cond struct {
	internal sync.Mutex // protects everything below; short critical sections only
	queue    waiterQueue
	morph    bool
	userMu   *Mutex // remembered user mutex, morph mode only; nil once queue drains
	sched    Scheduler
}

// NewCond creates a Cond. When morph is true, Wait requires a
// *condvar.Mutex and WakeOne/WakeAll transfer ownership directly to woken
// waiters; when false, Wait accepts any sync.Locker and waiters simply get
// woken and re-acquire it themselves, exactly like sync.Cond.
func NewCond(morph bool) *Cond {
	return NewCondWithScheduler(morph, DefaultScheduler)
}

// NewCondWithScheduler is NewCond with an explicit Scheduler, used by
// tests that need deterministic affinity hints.
func NewCondWithScheduler(morph bool, sched Scheduler) *Cond {
	return &Cond{morph: morph, sched: sched}
}

// preemptDisable/preemptEnable mirror the underlying runtime's trick of
// disabling preemption across the two unlocks, to avoid an extra context
// switch between releasing the user mutex and releasing the internal one.
// Go gives user code no handle on its own preemption, so these are
// deliberate no-ops kept only as a named seam matching that structure;
// correctness never depends on them, this is optimization only.
func preemptDisable() {}
func preemptEnable()  {}

// Wait atomically releases mu, which must be held on entry, and blocks the
// calling goroutine until woken by WakeOne, WakeAll, or deadline (if
// non-zero). It always returns with mu held again. It reports true if it
// returned because of deadline rather than a wakeup — callers must still
// re-check their predicate either way: aside from never phantom-waking,
// Wait itself promises nothing about the predicate.
//
// In morph mode, mu must be the same *Mutex across all concurrent waiters
// on c; Wait panics otherwise.
func (c *Cond) Wait(mu sync.Locker, deadline time.Time) (timedOut bool) {
	w := newWaitRecord(c.sched)

	var condMu *Mutex
	if c.morph {
		var ok bool
		condMu, ok = mu.(*Mutex)
		if !ok {
			panic("condvar: wait-morphing Cond requires a *condvar.Mutex")
		}
	}

	c.internal.Lock()
	c.queue.pushBack(w)
	if c.morph {
		if c.userMu == nil {
			c.userMu = condMu
		} else if c.userMu != condMu {
			c.internal.Unlock()
			panic("condvar: concurrent waiters on this Cond used different mutexes")
		}
	}
	preemptDisable()
	mu.Unlock()
	c.internal.Unlock()
	preemptEnable()

	var timerC <-chan time.Time
	var timer *time.Timer
	if !deadline.IsZero() {
		timer = time.NewTimer(time.Until(deadline))
		timerC = timer.C
		defer timer.Stop()
	}

	fired := w.wait(timerC)
	if !fired {
		return c.finishWoken(w, condMu, mu)
	}

	// Timer fired: only FIFO membership, checked under the internal
	// mutex, is authoritative.
	c.internal.Lock()
	removed := c.queue.remove(w)
	if c.morph && c.queue.empty() {
		c.userMu = nil
	}
	c.internal.Unlock()

	if removed {
		mu.Lock()
		return true
	}

	// Lost the race: a signaller already detached w and will complete the
	// wakeup (or handoff). Wait again, with no timer, so the record isn't
	// freed out from under a pending wake().
	w.wait(nil)
	c.finishWoken(w, condMu, mu)
	return false
}

// finishWoken runs the common "woken == true" tail of Wait: in morph mode
// the mutex has already been transferred, so only bookkeeping is needed;
// otherwise mu is acquired normally.
func (c *Cond) finishWoken(w *waitRecord, condMu *Mutex, mu sync.Locker) bool {
	if c.morph {
		condMu.receiveLock(w.id)
		return false
	}
	mu.Lock()
	return false
}

// WakeOne wakes the longest-waiting goroutine enqueued on c, if any. It is
// a no-op if none are waiting.
func (c *Cond) WakeOne() {
	if c.queue.peekOldestUnsafe() == nil {
		return
	}

	c.internal.Lock()
	w := c.queue.popFront()
	if w == nil {
		c.internal.Unlock()
		return
	}
	morph := c.morph
	userMu := c.userMu
	if morph && c.queue.empty() {
		c.userMu = nil
	}
	c.internal.Unlock()

	if morph {
		userMu.sendLock(w)
	} else {
		w.wakeUp()
	}
}

// WakeAll wakes every goroutine presently enqueued on c. A goroutine that
// enqueues after WakeAll has taken the internal mutex is not woken by this
// call. It is a no-op if none are waiting.
func (c *Cond) WakeAll() {
	if c.queue.peekOldestUnsafe() == nil {
		return
	}

	c.internal.Lock()
	head := c.queue.detachAll()
	morph := c.morph
	userMu := c.userMu
	if morph {
		c.userMu = nil
	}
	c.internal.Unlock()

	if head == nil {
		return
	}

	if !morph {
		for w := head; w != nil; w = w.next {
			w.wakeUp()
		}
		return
	}

	c.handoffAll(head, userMu)
}

// handoffAll walks the detached snapshot handing each waiter off to
// userMu, with an affinity-grouping optimization: after handing off to a
// waiter, it scans the remainder for any whose cpu hint matches and splices
// them out to hand off immediately too, batching handoffs likely to resume
// on the same CPU. This is purely a batching heuristic — correctness
// does not depend on the hint being accurate.
func (c *Cond) handoffAll(head *waitRecord, userMu *Mutex) {
	for head != nil {
		w := head
		head = head.next
		w.next = nil
		userMu.sendLock(w)

		cpu := w.cpu
		var prev *waitRecord
		for p := head; p != nil; {
			if p.cpu == cpu {
				next := p.next
				p.next = nil
				if prev == nil {
					head = next
				} else {
					prev.next = next
				}
				userMu.sendLock(p)
				p = next
				continue
			}
			prev = p
			p = p.next
		}
	}
}
