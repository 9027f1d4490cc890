// Package worker defines workers for asynchronous score persistence.
//
// A worker dequeues accepted submissions and appends them to the score store.
// An acknowledged submission means "accepted for processing", not "durably
// stored": append failures here are logged and counted, never retried
// (at-most-once write semantics).
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/skgamebot/flappyrank/internal/adapters/repository"
	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/pkg/logger"
	"github.com/skgamebot/flappyrank/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Submission is what workers read off the queue.
type Submission = model.Submission

// Appender performs the durable store write.
type Appender interface {
	Append(ctx context.Context, event model.ScoreEvent) (string, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker persists submissions until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// StoreWorker implements Worker for appending submissions to the store.
type StoreWorker struct {
	queue    Queue
	appender Appender
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewStoreWorker creates a new worker with configuration options.
func NewStoreWorker(queue Queue, appender Appender, opts ...Option) *StoreWorker {
	w := &StoreWorker{
		queue:    queue,
		appender: appender,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *StoreWorker) Run(ctx context.Context) {
	defer close(w.done)

	subs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subs:
			if !ok {
				return
			}
			if err := w.persist(ctx, sub); err != nil {
				w.logger.Error(ctx, "error persisting submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *StoreWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// persist handles a single submission.
func (w *StoreWorker) persist(ctx context.Context, sub Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	id, err := w.appender.Append(ctx, sub.Event())
	if err != nil {
		metrics.RecordWorkerError()
		if errors.Is(err, repository.ErrInvalidEvent) {
			// Gateways validate before enqueueing, so this indicates a bug
			// upstream rather than bad client input.
			w.logger.Warn(ctx, "invalid submission reached worker",
				logger.String("userID", sub.UserID),
			)
			return fmt.Errorf("invalid submission for %s: %w", sub.UserID, err)
		}
		w.logger.Error(ctx, "store append failed",
			logger.String("userID", sub.UserID),
			logger.String("correlationID", sub.MongoID),
			logger.Error(err),
		)
		return fmt.Errorf("store append failed: %w", err)
	}

	w.logger.Debug(ctx, "submission persisted",
		logger.String("storeID", id),
		logger.String("userID", sub.UserID),
		logger.Int("score", sub.Score),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*StoreWorker
	queue    Queue
	appender Appender

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, appender Appender) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*StoreWorker, workerCount),
		queue:    queue,
		appender: appender,
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewStoreWorker(
			queue,
			appender,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers. Each worker gets its own shutdown
// signal, so Stop works whether or not the queue was closed first.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker stop timed out", logger.String("worker", w.name))
		}
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
