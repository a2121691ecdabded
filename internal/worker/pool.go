package worker

import (
	"log/slog"
	"sync"

	"github.com/baharkarakas/atm-backend/internal/metrics"
)

type task func()

// Pool runs post-commit side effects (audit writes, event publishing) off the
// request path. Stop drains queued jobs before returning.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
	once sync.Once
}

func NewPool(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Dec()
				run(job)
			}
		}()
	}
	return p
}

func run(job task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker job panicked", "err", rec)
		}
	}()
	job()
}

func (p *Pool) Submit(f task) {
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
}

func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}
