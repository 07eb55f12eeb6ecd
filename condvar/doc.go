// Package condvar implements a condition variable tightly coupled to a
// cooperating mutex, in the style of the runtime's own sync.Cond/sync.Mutex
// pair, but with one addition: wait morphing.
//
// Instead of waking a waiter so that it re-contends for the user mutex,
// WakeOne and WakeAll can hand the mutex directly to the woken goroutine's
// wait record. The recipient resumes already holding the lock, never having
// raced anyone for it. This removes the classic wake -> re-sleep-on-mutex
// cycle under contention.
//
// Like sync.Cond, a zero Wait call only makes sense in a loop that re-checks
// the predicate: there is no promise that the predicate is actually true
// when Wait returns, only that a signal, a handoff, or a timeout caused the
// return.
package condvar
