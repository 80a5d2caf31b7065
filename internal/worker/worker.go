// Package worker runs digest processing jobs on a fixed pool of goroutines
// behind a bounded queue. Submission never blocks: a full queue is reported
// to the caller instead of stalling the request path.
package worker

import (
	"context"
	"errors"
	"sync"

	"scholarly/internal/logger"
)

// ErrQueueFull is returned by Submit when the job queue has no room.
var ErrQueueFull = errors.New("digest queue is full")

// ErrStopped is returned by Submit after the pool has been stopped.
var ErrStopped = errors.New("worker pool is stopped")

// Processor handles one digest end to end.
type Processor interface {
	Process(ctx context.Context, digestID string) error
}

// Pool processes submitted digests concurrently. Jobs run under
// context.Background: once processing starts it is never cancelled, and
// outcomes land in storage rather than with the submitter.
type Pool struct {
	processor Processor
	jobs      chan string
	wg        sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a pool and starts its workers. Non-positive sizes fall back
// to 4 workers and a queue of 64.
func New(processor Processor, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	p := &Pool{
		processor: processor,
		jobs:      make(chan string, queueSize),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work(i)
	}
	logger.Info("Worker pool started", "workers", workers, "queue_size", queueSize)
	return p
}

// Submit queues a digest for processing without blocking.
func (p *Pool) Submit(digestID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrStopped
	}
	select {
	case p.jobs <- digestID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for queued and in-flight jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	logger.Info("Worker pool stopped")
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for digestID := range p.jobs {
		logger.Debug("Worker picked up digest", "worker", id, "digest_id", digestID)
		if err := p.processor.Process(context.Background(), digestID); err != nil {
			// Already recorded on the digest; logged here for the operator
			logger.Error("Digest job failed", err, "worker", id, "digest_id", digestID)
		}
	}
}
