package worker

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/iklasky/tactic-trainer/internal/engine"
	"github.com/iklasky/tactic-trainer/internal/logger"
)

// Job is a unit of work bound to one worker's oracle. The oracle is owned by
// the worker for its whole lifetime and is never shared across goroutines.
type Job interface {
	Run(ctx context.Context, oracle engine.Oracle) error
	Name() string
}

// Factory builds one oracle per worker at pool start.
type Factory func() (engine.Oracle, error)

type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	queue   int
	factory Factory
	cancel  context.CancelFunc
	log     *logger.Logger
}

func NewPool(workers, queueSize int, factory Factory) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		queue:   queueSize,
		factory: factory,
		log:     log,
	}
}

// Start launches the workers. Each worker builds its own oracle up front; a
// worker whose oracle fails to start exits immediately and the rest carry
// the load. Start blocks until every worker has either come up or failed
// and returns the number that came up, so callers can refuse to queue work
// when nobody is left to do it.
func (p *Pool) Start(ctx context.Context) int {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	ready := make(chan bool, p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)

			oracle, err := p.factory()
			if err != nil {
				workerLog.Error("failed to start oracle, worker exiting: %v", err)
				ready <- false
				return
			}
			ready <- true
			defer closeOracle(oracle, workerLog)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job := <-p.jobs:
					if job == nil {
						workerLog.Debug("worker shutting down (nil job received)")
						return
					}

					jobLog := workerLog.WithField("job", job.Name())
					jobLog.Debug("starting job")
					start := time.Now()

					jobCtx := logger.NewContext(ctx, jobLog)

					if err := job.Run(jobCtx, oracle); err != nil {
						jobLog.Error("job failed after %v: %v", time.Since(start), err)
					} else {
						jobLog.Info("job completed in %v", time.Since(start))
					}
				}
			}
		}(i + 1)
	}

	started := 0
	for i := 0; i < p.workers; i++ {
		if <-ready {
			started++
		}
	}
	if started < p.workers {
		p.log.Warn("%d of %d workers failed to start an oracle", p.workers-started, p.workers)
	}
	return started
}

func (p *Pool) Stop() {
	p.log.Info("stopping worker pool")
	if p.cancel != nil {
		p.cancel()
	}
	close(p.jobs)
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

// Drain closes the queue and waits for the workers to finish everything
// already submitted. Unlike Stop it does not cancel in-flight jobs.
func (p *Pool) Drain() {
	p.log.Info("draining worker pool")
	close(p.jobs)
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.log.Info("worker pool drained")
}

func (p *Pool) Submit(job Job) {
	p.log.Debug("submitting job: %s", job.Name())
	p.jobs <- job
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

func closeOracle(oracle engine.Oracle, log *logger.Logger) {
	if closer, ok := oracle.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn("failed to close oracle: %v", err)
		}
	}
}
