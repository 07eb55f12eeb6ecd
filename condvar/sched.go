package condvar

import (
	"runtime"
	"sync/atomic"
)

// Scheduler stands in for the thread/scheduler contract spec'd in the
// source material's current_thread()/current_cpu() calls. Go exposes
// neither a public "current OS thread" handle nor a cheap way to read the
// CPU a goroutine is presently running on, so both are modeled as
// pluggable, non-authoritative hints:
//
//   - NextID is a surrogate for current_thread(): a per-wait identity used
//     only for bookkeeping (FIFO debugging, tests), never for correctness.
//   - CurrentCPU is consumed only by WakeAll's affinity-grouping
//     optimization; a wrong answer only costs a
//     missed batching opportunity, never correctness (see the scenario
//     5: any legal interleaving is acceptable).
type Scheduler interface {
	NextID() uint64
	CurrentCPU() int32
}

// RoundRobinScheduler is the default Scheduler. It approximates CPU
// affinity with a striped atomic counter modulo the configured CPU count,
// which is cheap and close enough for a batching hint but carries no
// guarantee of matching real affinity.
type RoundRobinScheduler struct {
	numCPU  int32
	nextID  uint64
	nextCPU uint64
}

// NewRoundRobinScheduler creates a scheduler that stripes its CurrentCPU
// hint across numCPU buckets. numCPU <= 0 defaults to runtime.NumCPU().
func NewRoundRobinScheduler(numCPU int) *RoundRobinScheduler {
	if numCPU <= 0 {
		numCPU = runtime.NumCPU()
	}
	return &RoundRobinScheduler{numCPU: int32(numCPU)}
}

func (s *RoundRobinScheduler) NextID() uint64 {
	return atomic.AddUint64(&s.nextID, 1)
}

func (s *RoundRobinScheduler) CurrentCPU() int32 {
	n := atomic.AddUint64(&s.nextCPU, 1)
	return int32(n % uint64(s.numCPU))
}

// DefaultScheduler is shared by Cond/Mutex instances that don't supply
// their own, mirroring how the runtime has exactly one scheduler per
// process rather than one per lock.
var DefaultScheduler Scheduler = NewRoundRobinScheduler(0)

// FakeScheduler gives tests deterministic control over affinity hints, to
// exercise affinity grouping deterministically (waiters pinned across CPUs)
// exactly rather than relying on RoundRobinScheduler's approximation.
type FakeScheduler struct {
	IDs  []uint64
	CPUs []int32

	idIdx, cpuIdx int
}

func (f *FakeScheduler) NextID() uint64 {
	if f.idIdx >= len(f.IDs) {
		return uint64(f.idIdx + 1)
	}
	v := f.IDs[f.idIdx]
	f.idIdx++
	return v
}

func (f *FakeScheduler) CurrentCPU() int32 {
	if f.cpuIdx >= len(f.CPUs) {
		return 0
	}
	v := f.CPUs[f.cpuIdx]
	f.cpuIdx++
	return v
}
