// Package workers implements a fixed-size pool for background jobs (CSV
// imports, bulk deletes). Jobs are identified by UUID and their status can be
// polled; a failed job is logged and abandoned, there are no retries.
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/google/uuid"
)

// ErrQueueFull is returned by Submit when the backlog is at capacity.
var ErrQueueFull = errors.New("job queue is full")

// ErrPoolClosed is returned by Submit after Stop has been called.
var ErrPoolClosed = errors.New("worker pool is closed")

type JobStatus string

const (
	StatusQueued  JobStatus = "queued"
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusFailed  JobStatus = "failed"
)

// Job is a point-in-time snapshot of a background job.
type Job struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     JobStatus  `json:"status"`
	Error      string     `json:"error,omitempty"`
	Result     string     `json:"result,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// JobFunc does the actual work. The returned string, if any, is stored as the
// job result; a non-nil error marks the job failed.
type JobFunc func(ctx context.Context) (string, error)

type task struct {
	id string
	fn JobFunc
}

// Pool runs submitted jobs on a fixed number of goroutines.
type Pool struct {
	workers int
	queue   chan *task
	logger  logging.Logger

	mu   sync.RWMutex
	jobs map[string]*Job

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

// NewPool creates a pool with the given worker count and queue capacity.
func NewPool(workers int, queueSize int, l logging.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		queue:   make(chan *task, queueSize),
		logger:  l.With("module", "workers"),
		jobs:    make(map[string]*Job),
		closed:  make(chan struct{}),
	}
}

// Start launches the worker goroutines. It does not block; use Stop to drain.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Stop closes the queue and waits until the already-submitted jobs finish.
func (p *Pool) Stop() {
	p.closeOnce.Do(func() {
		close(p.closed)
		close(p.queue)
	})
	p.wg.Wait()
}

// Submit enqueues fn and returns the job ID for later status polls.
func (p *Pool) Submit(name string, fn JobFunc) (string, error) {
	select {
	case <-p.closed:
		return "", ErrPoolClosed
	default:
	}

	job := &Job{
		ID:         uuid.NewString(),
		Name:       name,
		Status:     StatusQueued,
		EnqueuedAt: time.Now(),
	}

	p.mu.Lock()
	p.jobs[job.ID] = job
	p.mu.Unlock()

	select {
	case p.queue <- &task{id: job.ID, fn: fn}:
		return job.ID, nil
	default:
		p.mu.Lock()
		delete(p.jobs, job.ID)
		p.mu.Unlock()
		return "", ErrQueueFull
	}
}

// Status returns a snapshot of the job or common.ErrorNotFound.
func (p *Pool) Status(id string) (*Job, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	job, ok := p.jobs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for t := range p.queue {
		p.run(ctx, t)
	}
}

func (p *Pool) run(ctx context.Context, t *task) {
	started := time.Now()
	p.update(t.id, func(j *Job) {
		j.Status = StatusRunning
		j.StartedAt = &started
	})

	result, err := t.fn(ctx)

	finished := time.Now()
	if err != nil {
		p.logger.Error(ctx, "background job failed", "job_id", t.id, "error", err)
		p.update(t.id, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
			j.FinishedAt = &finished
		})
		return
	}
	p.update(t.id, func(j *Job) {
		j.Status = StatusDone
		j.Result = result
		j.FinishedAt = &finished
	})
}

func (p *Pool) update(id string, fn func(*Job)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, ok := p.jobs[id]; ok {
		fn(job)
	}
}
