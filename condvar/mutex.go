package condvar

import "sync"

// Mutex is the cooperating "user mutex" that condition-variable waiters
// hand ownership through. It is a
// from-scratch implementation rather than a thin wrapper over sync.Mutex,
// because the wait-morphing protocol needs two operations the standard
// library does not expose: handing ownership directly to a specific
// waiting goroutine (sendLock) and that goroutine acknowledging the
// handoff without contending for anything (receiveLock).
//
// Lock/Unlock/TryLock, the slow path and the handoff path all run under
// one small guard lock (a sync.Mutex) and share one internal queue, rather
// than using the runtime's lock-free CAS state machine; there is no CAS
// fast path. This package has no access to the runtime's private
// semaphore, and a guard-protected state is exactly the shape this
// protocol needs (an O(1) guard-protected queue, short critical sections).
//
// Ordinary Lock/Unlock contention fairness is out of scope here; what the
// condvar
// protocol depends on, and what this type gets right precisely, is that
// sendLock/receiveLock transfer ownership without the recipient ever
// calling Lock again.
type Mutex struct {
	guard      sync.Mutex
	locked     bool
	waiters    waiterQueue
	designated *waitRecord // set by sendLock while the mutex is busy; the next Unlock hands off here
	ownerID    uint64      // debug bookkeeping only, read by AssertHeld
}

// TryLock acquires m without blocking, reporting whether it succeeded.
func (m *Mutex) TryLock() bool {
	m.guard.Lock()
	defer m.guard.Unlock()
	if m.locked || m.designated != nil {
		return false
	}
	m.locked = true
	return true
}

// Lock blocks until m is free and then acquires it.
func (m *Mutex) Lock() {
	m.guard.Lock()
	if !m.locked && m.designated == nil {
		m.locked = true
		m.guard.Unlock()
		return
	}
	w := newWaitRecord(DefaultScheduler)
	m.waiters.pushBack(w)
	m.guard.Unlock()

	w.wait(nil) // granted: m.locked was already set true on our behalf
}

// Unlock releases m. If a handoff target is pending (because sendLock ran
// while m was busy) or an ordinary contender is queued, ownership is
// handed directly to it — m stays marked locked throughout, so no third
// goroutine can barge in between.
func (m *Mutex) Unlock() {
	m.guard.Lock()
	if !m.locked {
		m.guard.Unlock()
		panic("condvar: unlock of unlocked Mutex")
	}
	if w := m.designated; w != nil {
		m.designated = nil
		m.guard.Unlock()
		w.wakeUp()
		return
	}
	if w := m.waiters.popFront(); w != nil {
		m.guard.Unlock()
		w.wakeUp()
		return
	}
	m.locked = false
	m.guard.Unlock()
}

// sendLock transfers ownership of m to w's goroutine without it
// re-contending. The caller need not presently hold
// m: if m is free, the handoff completes immediately; if m is busy, w is
// recorded as the designated recipient of the next Unlock (ahead of
// ordinary Lock contenders queued behind it, preserving the FIFO order in
// which sendLock calls were made — this is what gives WakeAll's morphed
// waiters a total order across the mutex).
func (m *Mutex) sendLock(w *waitRecord) {
	m.guard.Lock()
	if !m.locked && m.designated == nil {
		m.locked = true
		m.guard.Unlock()
		w.wakeUp()
		return
	}
	if m.designated == nil {
		m.designated = w
	} else {
		m.waiters.pushBack(w)
	}
	m.guard.Unlock()
}

// receiveLock is invoked by a goroutine that has just been handed m via
// sendLock, to record ownership bookkeeping. It never blocks.
func (m *Mutex) receiveLock(id uint64) {
	m.guard.Lock()
	m.ownerID = id
	m.guard.Unlock()
}

// AssertHeld panics if m is not currently locked. Debug helper, grounded
// on nsync.Mu.AssertHeld in the reference pack; used by tests to check the
// "mutex held on exit" invariant.
func (m *Mutex) AssertHeld() {
	m.guard.Lock()
	locked := m.locked
	m.guard.Unlock()
	if !locked {
		panic("condvar: Mutex not held")
	}
}
