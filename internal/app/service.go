// Package service provides the core business service that implements
// the dependencies required by the HTTP and Telegram gateways.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	subqueue "github.com/skgamebot/flappyrank/internal/adapters/mq/queue"
	workerpool "github.com/skgamebot/flappyrank/internal/adapters/mq/worker"
	"github.com/skgamebot/flappyrank/internal/adapters/repository"
	"github.com/skgamebot/flappyrank/internal/domain/dedupe"
	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/internal/domain/rank"
	"github.com/skgamebot/flappyrank/pkg/logger"
	"github.com/skgamebot/flappyrank/pkg/metrics"
)

// Ack reports how a submission was received. Accepted means "accepted for
// processing": the durable write happens asynchronously and may still fail.
type Ack struct {
	Accepted  bool `json:"-"`
	Duplicate bool `json:"duplicate"`
}

// Service wires the score store, idempotency cache, submission queue, worker
// pool, and ranking engine. The store is an injected capability, not a
// process-wide singleton.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	queue   subqueue.Queue
	pool    *workerpool.Pool
	engine  *rank.Engine

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the score store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100_000,
		dedupeSize:  50_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting leaderboard service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "no store injected; using in-memory store")
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = subqueue.NewInMemoryQueue(
		subqueue.WithCapacity(s.queueSize),
		subqueue.WithBufferSize(s.queueSize),
	)
	s.engine = rank.New(s.store)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service. The queue is closed first so the
// workers drain what was already acknowledged.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping leaderboard service...")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if closer, ok := s.store.(interface{ Close(ctx context.Context) error }); ok {
		_ = closer.Close(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "leaderboard service stopped")
}

// Enqueue accepts a submission for asynchronous persistence. Validation and
// idempotency happen here, in the caller's request cycle; the durable write
// does not.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) (Ack, error) {
	if err := sub.Validate(); err != nil {
		metrics.RecordSubmissionInvalid()
		return Ack{}, err
	}

	if sub.AcceptedAt.IsZero() {
		sub.AcceptedAt = time.Now().UTC()
	}

	// Dedupe on the client correlation id; submissions without one are
	// always treated as new.
	key := sub.MongoID
	if key == "" {
		key = uuid.NewString()
	}
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission",
			logger.String("correlationID", sub.MongoID),
			logger.String("userID", sub.UserID),
		)
		return Ack{Accepted: true, Duplicate: true}, nil
	}

	if ok := s.queue.Enqueue(ctx, sub); !ok {
		// Roll back the seen mark so the client may retry.
		s.deduper.Unrecord(ctx, key)
		return Ack{}, ErrBackpressure
	}

	metrics.RecordSubmissionAccepted()
	return Ack{Accepted: true}, nil
}

// Leaderboard computes the ranked view for a scope.
func (s *Service) Leaderboard(ctx context.Context, scope model.Scope, topN int, requestingUserID string) (rank.Ranking, error) {
	return s.engine.Compute(ctx, scope, topN, requestingUserID)
}

// Rank locates one user's full-scope rank and best score.
func (s *Service) Rank(ctx context.Context, scope model.Scope, userID string) (rank.Entry, error) {
	return s.engine.Rank(ctx, scope, userID)
}

// Stats is a point-in-time snapshot of the service for monitoring. Length and
// entry counts are only populated while the service is running.
type Stats struct {
	Started       bool  `json:"started"`
	WorkerCount   int   `json:"worker_count"`
	QueueCapacity int   `json:"queue_capacity"`
	QueueLength   int   `json:"queue_length"`
	DedupeSize    int   `json:"dedupe_size"`
	DedupeEntries int64 `json:"dedupe_entries"`
	TotalUsers    int   `json:"total_users"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := Stats{
		Started:       s.started,
		WorkerCount:   s.workerCount,
		QueueCapacity: s.queueSize,
		DedupeSize:    s.dedupeSize,
	}

	if s.started {
		stats.QueueLength = s.queue.Len(ctx)
		stats.DedupeEntries = s.deduper.Size()

		if total, err := s.store.Count(ctx, model.Global()); err == nil {
			stats.TotalUsers = total
			metrics.UpdateTotalUsers(total)
		}
		metrics.UpdateQueueSize(stats.QueueLength)
	}
	return stats
}
