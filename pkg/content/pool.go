package content

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/uitheme/pkg/util"
)

type fileJob struct {
	path  string
	jobID int
}

type fileResult struct {
	path   string
	counts map[string]int
	cached bool
	jobID  int
}

// FileError records a content file that could not be scanned.
type FileError struct {
	Path    string `json:"path"`
	Message string `json:"error"`
}

// workerPool runs scan jobs on a fixed set of goroutines. Results and errors
// arrive on separate channels; cancelling the parent context stops workers
// without draining the queue.
type workerPool struct {
	numWorkers int
	jobs       chan fileJob
	results    chan fileResult
	errors     chan FileError
	wg         sync.WaitGroup
	process    func(path string) (fileResult, error)
	logger     *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// newWorkerPool creates a pool of numWorkers goroutines (0 = CPU-aware
// default) that call process for each submitted path.
func newWorkerPool(ctx context.Context, numWorkers int, process func(string) (fileResult, error), logger *slog.Logger) *workerPool {
	if numWorkers <= 0 {
		numWorkers = util.GetOptimalPoolSize()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &workerPool{
		numWorkers: numWorkers,
		jobs:       make(chan fileJob, numWorkers*2),
		results:    make(chan fileResult, numWorkers),
		errors:     make(chan FileError, numWorkers),
		process:    process,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (wp *workerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		return
	}
	wp.logger.Debug("starting scan workers", "workers", wp.numWorkers)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *workerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

func (wp *workerPool) processJob(workerID int, job fileJob) {
	result, err := wp.process(job.path)
	if err != nil {
		wp.logger.Debug("scan job failed", "worker_id", workerID, "file", job.path, "error", err)
		wp.jobsFailed.Add(1)
		select {
		case wp.errors <- FileError{Path: job.path, Message: err.Error()}:
		case <-wp.ctx.Done():
		}
		return
	}

	wp.jobsProcessed.Add(1)
	result.jobID = job.jobID
	select {
	case wp.results <- result:
	case <-wp.ctx.Done():
	}
}

// Submit enqueues a job, blocking while the queue is full.
func (wp *workerPool) Submit(job fileJob) error {
	if wp.stopped.Load() {
		return fmt.Errorf("worker pool is stopped")
	}

	wp.jobsSubmitted.Add(1)

	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled: %w", wp.ctx.Err())
	case wp.jobs <- job:
		return nil
	}
}

func (wp *workerPool) Results() <-chan fileResult { return wp.results }

func (wp *workerPool) Errors() <-chan FileError { return wp.errors }

// FinishSubmitting closes the job queue so workers exit once it drains.
// Safe to call more than once.
func (wp *workerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// Stop waits for workers and closes the result channels. Idempotent.
func (wp *workerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	wp.FinishSubmitting()
	wp.wg.Wait()

	close(wp.results)
	close(wp.errors)
	wp.cancel()

	wp.logger.Debug("scan workers stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load())
}
