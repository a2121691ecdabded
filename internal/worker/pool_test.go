package worker

import (
	"sync/atomic"
	"testing"
)

func TestStopDrainsQueuedJobs(t *testing.T) {
	p := NewPool(2)
	var n int32
	for i := 0; i < 100; i++ {
		p.Submit(func() { atomic.AddInt32(&n, 1) })
	}
	p.Stop()
	if got := atomic.LoadInt32(&n); got != 100 {
		t.Fatalf("ran=%d want 100", got)
	}
	p.Stop() // second Stop is a no-op
}

func TestPanickingJobDoesNotKillWorker(t *testing.T) {
	p := NewPool(1)
	var ran int32
	p.Submit(func() { panic("boom") })
	p.Submit(func() { atomic.StoreInt32(&ran, 1) })
	p.Stop()
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("job after a panic did not run")
	}
}
