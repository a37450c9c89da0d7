package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/geoknoesis/rdf-tabular/dataset"
)

var (
	// ErrQueueClosed is returned by Submit after the queue stopped.
	ErrQueueClosed = errors.New("queue closed")
	// ErrQueueStarted is returned by Start when the queue already ran.
	ErrQueueStarted = errors.New("queue already started")
)

// Job is a queued conversion. Open is called when the job's turn comes, so
// files are read in their state at run time.
type Job struct {
	Filename string
	Open     func() (io.ReadCloser, error)
	Options  *dataset.FileOptions
}

// FileJob returns a job reading path from disk. The run filename is the
// base name of path.
func FileJob(path string, opts *dataset.FileOptions) Job {
	return Job{
		Filename: filepath.Base(path),
		Open:     func() (io.ReadCloser, error) { return os.Open(path) },
		Options:  opts,
	}
}

// Queue runs jobs one after another on an Engine, waiting behind any run
// already in flight rather than failing with ErrBusy.
type Queue struct {
	engine  *Engine
	jobs    chan Job
	done    chan struct{}
	started atomic.Bool
	logger  *slog.Logger

	// OnResult, when set, observes the outcome of every job.
	OnResult func(Job, *Result, error)
}

// NewQueue returns a queue buffering up to size pending jobs.
func NewQueue(e *Engine, size int) *Queue {
	if size <= 0 {
		size = 16
	}
	return &Queue{
		engine: e,
		jobs:   make(chan Job, size),
		done:   make(chan struct{}),
		logger: e.logger.With("component", "queue"),
	}
}

// Submit enqueues job, blocking while the buffer is full.
func (q *Queue) Submit(ctx context.Context, job Job) error {
	if job.Open == nil {
		return fmt.Errorf("queue %s: no input", job.Filename)
	}
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.jobs <- job:
		q.logger.Debug("Queued run", "filename", job.Filename, "pending", len(q.jobs))
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start processes jobs until ctx is done. Pending jobs are dropped. A queue
// runs once; later calls return ErrQueueStarted.
func (q *Queue) Start(ctx context.Context) error {
	if !q.started.CompareAndSwap(false, true) {
		return ErrQueueStarted
	}
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			if n := len(q.jobs); n > 0 {
				q.logger.Warn("Dropping pending runs", "pending", n)
			}
			return nil
		case job := <-q.jobs:
			res, err := q.process(ctx, job)
			if q.OnResult != nil {
				q.OnResult(job, res, err)
			}
		}
	}
}

func (q *Queue) process(ctx context.Context, job Job) (*Result, error) {
	rc, err := job.Open()
	if err != nil {
		q.logger.Warn("Cannot open queued input", "filename", job.Filename, "error", err)
		return nil, &RunError{Op: OpRead, Target: job.Filename, Err: err}
	}
	defer rc.Close()
	return q.engine.runWait(ctx, Input{Filename: job.Filename, Data: rc, Options: job.Options})
}
