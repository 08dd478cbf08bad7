package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/martinsuchenak/ipamd/internal/log"
)

// JobHandler is the function executed by a scheduled job
type JobHandler func(ctx context.Context) error

// Scheduler runs named background jobs on cron schedules. Due jobs are
// handed to a shared worker pool, so a slow job never stalls the cron loop.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	pool    *WorkerPool
	jobs    map[string]cron.EntryID
	running bool
}

// NewScheduler creates a scheduler backed by the given number of workers
func NewScheduler(maxWorkers int) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		pool: NewWorkerPool(maxWorkers),
		jobs: make(map[string]cron.EntryID),
	}
}

// Register adds a job under a standard five-field cron schedule, e.g.
// "*/30 * * * *". Registering must happen before Start.
func (s *Scheduler) Register(name, schedule string, handler JobHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	id, err := s.cron.AddFunc(schedule, func() {
		err := s.pool.Submit(Job{ID: name, Handler: handler})
		if err != nil {
			log.Warn("Failed to queue job", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", schedule, name, err)
	}

	s.jobs[name] = id
	log.Info("Job registered", "job", name, "schedule", schedule)
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	s.pool.Start()
	s.cron.Start()
	log.Info("Starting background scheduler", "jobs", len(s.jobs))
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	log.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
	s.pool.Stop()
}

// RunNow queues a registered job immediately, outside its schedule. The
// returned channel yields the job's error.
func (s *Scheduler) RunNow(name string, handler JobHandler) (<-chan error, error) {
	result := make(chan error, 1)
	err := s.pool.Submit(Job{ID: name, Handler: handler, Result: result})
	if err != nil {
		return nil, err
	}
	return result, nil
}
