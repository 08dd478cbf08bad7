package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/martinsuchenak/ipamd/internal/log"
)

const jobQueueSize = 100

// Job is a unit of background work. Result is optional; when set it
// receives the handler's error exactly once.
type Job struct {
	ID      string
	Handler JobHandler
	Result  chan error
}

// WorkerPool executes submitted jobs on a fixed set of goroutines. Jobs
// queue up to jobQueueSize; Submit blocks once the queue is full and
// fails once the pool has been stopped.
type WorkerPool struct {
	workers int
	jobs    chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workers: workers,
		jobs:    make(chan Job, jobQueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines
func (p *WorkerPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	log.Info("Worker pool started", "workers", p.workers)
}

// Stop cancels in-flight jobs and waits for the workers to exit. The jobs
// channel is left open so a late Submit fails instead of panicking.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Submit queues a job for execution
func (p *WorkerPool) Submit(job Job) error {
	if err := p.ctx.Err(); err != nil {
		return fmt.Errorf("worker pool stopped: %w", err)
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool stopped: %w", p.ctx.Err())
	}
}

func (p *WorkerPool) run(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobs:
			p.execute(id, job)
		}
	}
}

func (p *WorkerPool) execute(id int, job Job) {
	started := time.Now()
	log.Debug("Job started", "worker", id, "job", job.ID)

	err := job.Handler(p.ctx)
	if job.Result != nil {
		job.Result <- err
	} else if err != nil {
		// Scheduled jobs have nobody waiting on them, so log the failure here
		log.Error("Job failed", "worker", id, "job", job.ID, "error", err)
		return
	}

	log.Debug("Job finished", "worker", id, "job", job.ID, "duration", time.Since(started))
}
