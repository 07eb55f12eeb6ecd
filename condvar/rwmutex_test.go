package condvar

import (
	"sync"
	"testing"
	"time"
)

func TestRWMutexReadersConcurrent(t *testing.T) {
	rw := NewRWMutex()
	var wg sync.WaitGroup
	const n = 20
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rw.RLock()
			time.Sleep(time.Millisecond)
			rw.RUnlock()
		}()
	}
	doneCh := make(chan struct{})
	go func() { wg.Wait(); close(doneCh) }()
	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("concurrent readers deadlocked")
	}
}

func TestRWMutexWriterExcludesReaders(t *testing.T) {
	rw := NewRWMutex()
	rw.Lock()

	acquired := make(chan struct{})
	go func() {
		rw.RLock()
		close(acquired)
		rw.RUnlock()
	}()

	select {
	case <-acquired:
		t.Fatal("reader acquired RLock while writer held Lock")
	case <-time.After(50 * time.Millisecond):
	}

	rw.Unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("reader never acquired after writer released")
	}
}

// TestRWMutexMultiReaderThenWriterThenMoreReaders reproduces a deadlock
// that a single shared semaphore for readers and the writer would hit: a
// reader arriving while a writer is already queued must not steal the
// wakeup the last departing reader intended for that writer.
func TestRWMutexMultiReaderThenWriterThenMoreReaders(t *testing.T) {
	rw := NewRWMutex()
	rw.RLock() // R1 holds the read lock

	writerHasLock := make(chan struct{})
	go func() {
		rw.Lock()
		close(writerHasLock)
		time.Sleep(30 * time.Millisecond)
		rw.Unlock()
	}()
	time.Sleep(20 * time.Millisecond) // let the writer queue behind R1

	r2Acquired := make(chan struct{})
	go func() {
		rw.RLock() // must queue behind the pending writer, not steal its wakeup
		close(r2Acquired)
		rw.RUnlock()
	}()
	time.Sleep(20 * time.Millisecond) // let R2 queue too

	rw.RUnlock() // R1 departs: must wake the writer, never R2

	select {
	case <-r2Acquired:
		t.Fatal("R2 acquired RLock before the pending writer ran")
	case <-time.After(10 * time.Millisecond):
	}

	select {
	case <-writerHasLock:
	case <-time.After(time.Second):
		t.Fatal("writer never acquired Lock after the last reader departed")
	}

	select {
	case <-r2Acquired:
	case <-time.After(time.Second):
		t.Fatal("R2 never acquired RLock after the writer released")
	}
}

func TestRWMutexRUnlockOfUnlockedPanics(t *testing.T) {
	rw := NewRWMutex()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	rw.RUnlock()
}
