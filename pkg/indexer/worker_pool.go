package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gnana997/tsgraph/pkg/extractor"
	"github.com/gnana997/tsgraph/pkg/util"
)

// FileJob represents a file to be processed by the worker pool.
type FileJob struct {
	FilePath string
	JobID    int
}

// FileResult contains the extraction result for a file.
type FileResult struct {
	FilePath string
	File     *extractor.SourceFile
	JobID    int
}

// WorkerPool reads and extracts files on a fixed set of goroutines.
//
// **Usage:**
//
//	pool := NewWorkerPool(ctx, numWorkers, ext, cache, logger)
//	pool.Start()
//	defer pool.Stop()
//
//	for i, file := range files {
//	    pool.Submit(FileJob{FilePath: file, JobID: i})
//	}
//	pool.FinishSubmitting()
//
//	// Read exactly len(files) values from Results() and Errors().
type WorkerPool struct {
	numWorkers int
	jobs       chan FileJob
	results    chan FileResult
	errors     chan FileError
	wg         sync.WaitGroup
	extractor  *extractor.Extractor
	files      util.FileCache
	logger     *slog.Logger

	// Lifecycle management
	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	// Statistics
	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool creates a new worker pool.
//
// Parameters:
//   - ctx: cancels in-flight submissions and result delivery
//   - numWorkers: number of worker goroutines (0 = util.WorkerCount)
//   - ext: extractor shared by all workers
//   - files: cache the workers read through; each file is released after
//     extraction
func NewWorkerPool(ctx context.Context, numWorkers int, ext *extractor.Extractor, files util.FileCache, logger *slog.Logger) *WorkerPool {
	numWorkers = util.WorkerCount(numWorkers)
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan FileJob, numWorkers*2),
		results:    make(chan FileResult, numWorkers),
		errors:     make(chan FileError, numWorkers),
		extractor:  ext,
		files:      files,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns all worker goroutines. Must be called before submitting jobs.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("worker pool already started")
		return
	}

	wp.logger.Debug("starting worker pool", "workers", wp.numWorkers)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
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

func (wp *WorkerPool) processJob(workerID int, job FileJob) {
	content, err := wp.readFile(job.FilePath)
	if err != nil {
		wp.fail(job, err)
		return
	}

	file, err := wp.extractor.ExtractFile(job.FilePath, content)
	if err != nil {
		wp.fail(job, err)
		return
	}

	wp.logger.Debug("extracted", "worker_id", workerID, "file", job.FilePath, "imports", len(file.Imports))
	wp.jobsProcessed.Add(1)

	select {
	case wp.results <- FileResult{FilePath: job.FilePath, File: file, JobID: job.JobID}:
	case <-wp.ctx.Done():
	}
}

// readFile goes through the file cache and copies the text out, so the
// mapping can be released right away. A full cache degrades to a plain read.
func (wp *WorkerPool) readFile(path string) (string, error) {
	if wp.files == nil {
		data, err := os.ReadFile(path)
		return string(data), err
	}

	mf, err := wp.files.Get(path)
	if errors.Is(err, util.ErrCacheLimit) {
		wp.logger.Debug("file cache full, reading directly", "file", path)
		data, err := os.ReadFile(path)
		return string(data), err
	}
	if err != nil {
		return "", err
	}

	text := mf.Text()
	if err := wp.files.Release(path); err != nil {
		wp.logger.Warn("failed to release file", "file", path, "error", err)
	}
	return text, nil
}

func (wp *WorkerPool) fail(job FileJob, err error) {
	wp.jobsFailed.Add(1)
	select {
	case wp.errors <- FileError{FilePath: job.FilePath, JobID: job.JobID, Err: err}:
	case <-wp.ctx.Done():
	}
}

// Submit enqueues a job, blocking while the queue is full.
func (wp *WorkerPool) Submit(job FileJob) error {
	if wp.stopped.Load() {
		return fmt.Errorf("worker pool is stopped")
	}

	select {
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	case wp.jobs <- job:
		wp.jobsSubmitted.Add(1)
		return nil
	}
}

// Results returns the results channel.
func (wp *WorkerPool) Results() <-chan FileResult {
	return wp.results
}

// Errors returns the errors channel.
func (wp *WorkerPool) Errors() <-chan FileError {
	return wp.errors
}

// FinishSubmitting closes the job queue so workers exit once it drains.
// Safe to call multiple times.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// Stop shuts the pool down and closes the result and error channels.
// Workers blocked on delivery are released, so undelivered results are
// dropped. Safe to call multiple times.
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	wp.FinishSubmitting()
	wp.cancel()
	wp.wg.Wait()

	close(wp.results)
	close(wp.errors)

	wp.logger.Debug("worker pool stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load())
}

// GetStats returns current worker pool statistics.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		QueueLength:   len(wp.jobs),
	}
}

// WorkerPoolStats contains statistics about the worker pool.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int // Current jobs in queue
}
