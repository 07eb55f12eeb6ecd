// Package workerpool is a fixed/elastic goroutine pool rebuilt on top of
// elastic.Buf, so its queueing goes through condvar.Cond rather than a
// pair of channels shuffled by a background goroutine.
package workerpool

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/robintsai/condvar/elastic"
)

// Workload is one unit of work a Pool runs on a worker goroutine.
type Workload interface {
	Work()
}

// Producer yields Workloads until exhausted, at which point Produce
// returns nil.
type Producer interface {
	Produce() Workload
}

// maxIdleDuration is how long a worker goroutine waits for a task before
// shrinking the pool back down, exactly as workpool.go's spawnOneWorker
// did with its time.After branch.
const maxIdleDuration = 3 * time.Second

// Pool runs Workloads on up to workerCount concurrent goroutines, growing
// and shrinking within that bound as work arrives and idles out.
type Pool struct {
	workerCount int
	down        atomic.Bool
	ctx         context.Context
	cancel      context.CancelFunc
	buf         *elastic.Buf
	extWaitGroup
}

// NewPool creates a Pool that runs at most n workers concurrently. It
// returns nil if n <= 0.
func NewPool(n int) *Pool {
	if n <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workerCount: n,
		ctx:         ctx,
		cancel:      cancel,
		buf:         elastic.NewBuf(0), // unbounded: AddTask never blocks
	}
}

// spawnOneWorker runs one worker's loop: pull a job and run it, shrinking
// the pool if idle too long or if the pool has gone down.
func (p *Pool) spawnOneWorker() {
	defer p.Done()

	for {
		popCtx, cancel := context.WithTimeout(p.ctx, maxIdleDuration)
		job, ok := p.buf.Pop(popCtx)
		cancel()

		if !ok {
			if errors.Is(popCtx.Err(), context.DeadlineExceeded) && p.ctx.Err() == nil {
				return // idle too long: shrink
			}
			return // immediate Down, or a graceful Shutdown that drained the queue
		}
		if p.ctx.Err() != nil {
			return // Down: discard whatever is still queued
		}

		if work, ok := job.(Workload); ok {
			work.Work()
		} else {
			log.Printf("workerpool: unexpected job type %T", job)
		}
	}
}

// Start brings up the pool's first worker.
func (p *Pool) Start() {
	p.Add(1)
	go p.spawnOneWorker()
}

// Shutdown stops accepting new tasks and lets every queued task run to
// completion; call Wait afterward to block until it drains.
func (p *Pool) Shutdown() {
	if !p.down.CompareAndSwap(false, true) {
		return
	}
	p.buf.Close()
}

// Down stops accepting new tasks and cancels every in-flight worker
// immediately, discarding whatever is still queued.
func (p *Pool) Down() {
	if !p.down.CompareAndSwap(false, true) {
		return
	}
	p.buf.Close()
	p.cancel()
}

// AddTask enqueues work without blocking, growing the pool by one worker
// whenever fewer than workerCount workers are live.
func (p *Pool) AddTask(work Workload) {
	if p.down.Load() {
		log.Println("workerpool: add task into closed pool")
		return
	}

	wc := p.GetWaitCount()
	if wc == 0 {
		p.Add(1)
		go p.spawnOneWorker()
	} else if wc < uint64(p.workerCount) && p.CompareAndAdd(wc, 1) {
		go p.spawnOneWorker()
	}

	if err := p.buf.Push(p.ctx, work); err != nil {
		log.Printf("workerpool: dropped task after pool went down: %v", err)
	}
}
