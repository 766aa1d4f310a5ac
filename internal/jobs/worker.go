package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/smartdebt-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Observer is notified after every job run
type Observer interface {
	JobFinished(name string, elapsed time.Duration, err error)
}

// Worker runs persistence writes, outgoing emails and scheduled backups off the request path
type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	queue    chan namedJob
	asyncSem chan struct{}
	observer Observer

	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex
	closeOnce     sync.Once
}

type namedJob struct {
	name string
	run  Job
}

// WorkerStats holds statistics about the worker.
// CompletedJobs counts every finished run; FailedJobs is the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := numWorkers * 2
	if asyncLimit < 4 {
		asyncLimit = 4
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan namedJob, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// SetObserver installs a hook called after each job; call before enqueueing
func (w *Worker) SetObserver(o Observer) {
	w.observer = o
}

// Enqueue adds a job to the pool queue. When the queue is full the job runs on the caller's goroutine.
func (w *Worker) Enqueue(name string, job Job) {
	select {
	case <-w.ctx.Done():
		logger.Warn("Worker stopped, dropping job", "job", name)
		return
	default:
	}

	select {
	case w.queue <- namedJob{name: name, run: job}:
	default:
		logger.Warn("Worker queue full, running job synchronously", "job", name)
		w.run(w.ctx, namedJob{name: name, run: job}, "sync")
	}
}

// EnqueueAsync runs a job in its own goroutine, bounded by a semaphore
func (w *Worker) EnqueueAsync(name string, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case w.asyncSem <- struct{}{}:
		case <-w.ctx.Done():
			return
		}
		defer func() { <-w.asyncSem }()
		w.run(w.ctx, namedJob{name: name, run: job}, "async")
	}()
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	source := fmt.Sprintf("worker-%d", workerID)
	for {
		select {
		case <-w.ctx.Done():
			// Drain what was accepted before shutdown so queued saves are not lost
			drainCtx := context.WithoutCancel(w.ctx)
			for {
				select {
				case job := <-w.queue:
					w.run(drainCtx, job, source)
				default:
					return
				}
			}
		case job := <-w.queue:
			w.run(w.ctx, job, source)
		}
	}
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run(w.ctx, namedJob{name: name, run: job}, "scheduler")
			}
		}
	}()
}

func (w *Worker) run(ctx context.Context, job namedJob, source string) {
	w.trackJobStart()
	start := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		elapsed := time.Since(start)
		if err != nil {
			logger.Error("Job failed", "job", job.name, "source", source, "error", err)
			w.trackJobFailure()
		} else {
			logger.Debug("Job completed", "job", job.name, "source", source, "elapsed", elapsed)
		}
		w.trackJobEnd()
		if w.observer != nil {
			w.observer.JobFinished(job.name, elapsed, err)
		}
	}()
	err = job.run(ctx)
}

// Shutdown stops the schedulers, finishes queued jobs and waits for running ones
func (w *Worker) Shutdown() {
	w.closeOnce.Do(func() {
		w.cancel()
		w.wg.Wait()
	})
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
