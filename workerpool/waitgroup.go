package workerpool

import (
	"sync"
	"sync/atomic"
)

// extWaitGroup is sync.WaitGroup plus a readable live count — Pool needs
// to see how many workers are currently running to decide whether AddTask
// should spawn another one.
type extWaitGroup struct {
	sync.WaitGroup
	waitCount uint64
}

// Add records n more live workers and returns the new count.
func (w *extWaitGroup) Add(n int) uint64 {
	w.WaitGroup.Add(n)
	return atomic.AddUint64(&w.waitCount, uint64(n))
}

// CompareAndAdd adds delta only if the live count is still old, the same
// race-free pattern AddTask uses to decide whether to spawn a new worker
// without overshooting workerCount.
func (w *extWaitGroup) CompareAndAdd(old, delta uint64) bool {
	if !atomic.CompareAndSwapUint64(&w.waitCount, old, old+delta) {
		return false
	}
	w.WaitGroup.Add(int(delta))
	return true
}

func (w *extWaitGroup) Done() {
	w.WaitGroup.Done()
	atomic.AddUint64(&w.waitCount, ^uint64(0))
}

func (w *extWaitGroup) GetWaitCount() uint64 {
	return atomic.LoadUint64(&w.waitCount)
}
