package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"wallet-core.backend/pkg/logger"
)

// JobKindHandleWebhook processes a verified payment-provider event.
const JobKindHandleWebhook = "handle_webhook"

// ErrQueueClosed is returned by Enqueue after Stop.
var ErrQueueClosed = errors.New("job queue closed")

// Job is one unit of asynchronous work. Payload carries the full verified
// event so the handler never re-reads request state.
type Job struct {
	Kind    string
	Payload []byte

	attempt int
}

// Handler processes a job payload. A returned error triggers a retry with
// backoff until the attempt budget is exhausted.
type Handler func(ctx context.Context, payload []byte) error

// Queue is an in-process at-least-once job runner. Webhook ingestion hands
// heavy work here so the HTTP response does not block on ledger contention.
type Queue struct {
	jobs       chan Job
	handlers   map[string]Handler
	maxRetries int
	baseDelay  time.Duration

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(buffer int) *Queue {
	return &Queue{
		jobs:       make(chan Job, buffer),
		handlers:   make(map[string]Handler),
		maxRetries: 5,
		baseDelay:  500 * time.Millisecond,
	}
}

// Register binds a handler to a job kind. Must be called before Start.
func (q *Queue) Register(kind string, h Handler) {
	q.handlers[kind] = h
}

// Enqueue submits a job for asynchronous execution.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrQueueClosed
	}
	q.jobs <- job
	return nil
}

// Start launches the worker goroutines. Workers drain until Stop is called
// or the context is cancelled.
func (q *Queue) Start(ctx context.Context, workers int) {
	logger.Info(ctx, "starting job queue", zap.Int("workers", workers))
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			q.process(ctx, job)
		}
	}
}

func (q *Queue) process(ctx context.Context, job Job) {
	handler, ok := q.handlers[job.Kind]
	if !ok {
		logger.Warn(ctx, "no handler for job kind", zap.String("kind", job.Kind))
		return
	}

	err := handler(ctx, job.Payload)
	if err == nil {
		return
	}

	if job.attempt >= q.maxRetries {
		logger.Error(ctx, "job dropped after retries",
			zap.String("kind", job.Kind),
			zap.Int("attempts", job.attempt+1),
			zap.Error(err))
		return
	}

	// Exponential backoff before requeueing.
	delay := q.baseDelay << job.attempt
	logger.Warn(ctx, "job failed, retrying",
		zap.String("kind", job.Kind),
		zap.Int("attempt", job.attempt+1),
		zap.Duration("delay", delay),
		zap.Error(err))

	job.attempt++
	q.wg.Add(1)
	go func(j Job) {
		defer q.wg.Done()
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		q.mu.Lock()
		if q.stopped {
			q.mu.Unlock()
			return
		}
		q.jobs <- j
		q.mu.Unlock()
	}(job)
}
