package condvar

import (
	"sync"
	"time"
)

// sema is a small counting semaphore. RWMutex keeps one instance per role
// (readers, writer) so the two never share a wakeup path. Unlike a plain
// chan struct{}, release(n) never blocks and never drops a permit
// regardless of how many goroutines are presently waiting — it just adds
// n to the count and wakes waiters to come collect it, the same
// accumulate-then-notify shape a runtime semaphore gives rwmutex.go,
// rebuilt here on this package's own non-morphing Cond.
type sema struct {
	mu    sync.Mutex
	cond  *Cond
	count int
}

func newSema() *sema {
	return &sema{cond: NewCond(false)}
}

// acquire blocks until a permit is available, then consumes one.
func (s *sema) acquire() {
	s.mu.Lock()
	for s.count == 0 {
		s.cond.Wait(&s.mu, time.Time{})
	}
	s.count--
	s.mu.Unlock()
}

// release adds n permits and wakes up to n blocked acquirers. It never
// blocks itself.
func (s *sema) release(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.count += n
	s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.cond.WakeOne()
	}
}
