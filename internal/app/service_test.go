package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/skgamebot/flappyrank/internal/adapters/repository"
	service "github.com/skgamebot/flappyrank/internal/app"
	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/internal/domain/rank"
	"github.com/skgamebot/flappyrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// waitForTotal polls the store until it holds n events or the deadline hits.
// Persistence is async, so tests need to wait for the workers to catch up.
func waitForTotal(store *repository.MemoryStore, n int, deadline time.Duration) bool {
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if store.Len() >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service with small settings", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithDedupeSize(100),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats.Started, ShouldBeTrue)
				So(stats.WorkerCount, ShouldEqual, 2)
				So(stats.QueueCapacity, ShouldEqual, 100)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestEnqueue(t *testing.T) {
	Convey("Given a started service over an in-memory store", t, func() {
		store := repository.NewMemoryStore()
		svc := service.New(
			service.WithStore(store),
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithDedupeSize(100),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When enqueueing a valid submission", func() {
			ack, err := svc.Enqueue(ctx, model.Submission{
				Score:     42,
				MongoID:   "corr-1",
				FirstName: "Ada",
				UserID:    "u1",
			})

			Convey("Then it is acknowledged and eventually persisted", func() {
				So(err, ShouldBeNil)
				So(ack.Accepted, ShouldBeTrue)
				So(ack.Duplicate, ShouldBeFalse)
				So(waitForTotal(store, 1, 2*time.Second), ShouldBeTrue)
			})
		})

		Convey("When enqueueing the same correlation id twice", func() {
			first, err1 := svc.Enqueue(ctx, model.Submission{Score: 42, MongoID: "corr-dup", UserID: "u1"})
			second, err2 := svc.Enqueue(ctx, model.Submission{Score: 42, MongoID: "corr-dup", UserID: "u1"})

			Convey("Then the second is acknowledged as a duplicate", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.Duplicate, ShouldBeFalse)
				So(second.Duplicate, ShouldBeTrue)

				So(waitForTotal(store, 1, 2*time.Second), ShouldBeTrue)
				time.Sleep(50 * time.Millisecond)
				So(store.Len(), ShouldEqual, 1)
			})
		})

		Convey("When enqueueing without a correlation id", func() {
			_, err1 := svc.Enqueue(ctx, model.Submission{Score: 10, UserID: "u1"})
			_, err2 := svc.Enqueue(ctx, model.Submission{Score: 10, UserID: "u1"})

			Convey("Then identical submissions are both accepted", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(waitForTotal(store, 2, 2*time.Second), ShouldBeTrue)
			})
		})

		Convey("When enqueueing an invalid submission", func() {
			_, err := svc.Enqueue(ctx, model.Submission{Score: -1, UserID: "u1"})

			Convey("Then it is rejected before the queue", func() {
				So(errors.Is(err, model.ErrNegativeScore), ShouldBeTrue)
			})
		})
	})
}

func TestServiceReadPath(t *testing.T) {
	Convey("Given a service with persisted scores", t, func() {
		store := repository.NewMemoryStore()
		svc := service.New(
			service.WithStore(store),
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithDedupeSize(100),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		subs := []model.Submission{
			{Score: 50, UserID: "A", FirstName: "Alice"},
			{Score: 80, UserID: "B", FirstName: "Bob"},
			{Score: 90, UserID: "A", FirstName: "Alice"},
			{Score: 80, UserID: "C", FirstName: "Cara"},
		}
		for i, sub := range subs {
			sub.MongoID = fmt.Sprintf("corr-%d", i)
			sub.AcceptedAt = time.Date(2024, 5, 1, 12, i, 0, 0, time.UTC)
			_, err := svc.Enqueue(ctx, sub)
			So(err, ShouldBeNil)
		}
		So(waitForTotal(store, len(subs), 2*time.Second), ShouldBeTrue)

		Convey("When computing the leaderboard", func() {
			ranking, err := svc.Leaderboard(ctx, model.Global(), 10, "")

			Convey("Then best scores rank in total order", func() {
				So(err, ShouldBeNil)
				So(ranking.TotalUsers, ShouldEqual, 3)
				So(ranking.Entries[0].UserID, ShouldEqual, "A")
				So(ranking.Entries[0].BestScore, ShouldEqual, 90)
				So(ranking.Entries[1].UserID, ShouldEqual, "B")
				So(ranking.Entries[2].UserID, ShouldEqual, "C")
			})
		})

		Convey("When looking up a single rank", func() {
			entry, err := svc.Rank(ctx, model.Global(), "C")

			Convey("Then the full-scope entry is returned", func() {
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 3)
			})
		})

		Convey("When looking up an unknown user", func() {
			_, err := svc.Rank(ctx, model.Global(), "nobody")

			Convey("Then not found is returned", func() {
				So(errors.Is(err, rank.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When fetching stats", func() {
			stats := svc.GetStats()

			Convey("Then the user total is reported", func() {
				So(stats.TotalUsers, ShouldEqual, 3)
			})
		})
	})
}

func TestBackpressure(t *testing.T) {
	Convey("Given a service whose workers cannot keep up", t, func() {
		// A queue of one slot and a store that blocks forever.
		store := &blockingStore{unblock: make(chan struct{})}
		svc := service.New(
			service.WithStore(store),
			service.WithWorkerCount(1),
			service.WithQueueSize(1),
			service.WithDedupeSize(100),
		)
		defer svc.Stop()
		// Unblock the store before Stop runs so the workers can drain.
		defer close(store.unblock)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When the queue fills up", func() {
			var sawBackpressure bool
			for i := 0; i < 10; i++ {
				_, err := svc.Enqueue(ctx, model.Submission{
					Score:   i,
					MongoID: fmt.Sprintf("bp-%d", i),
					UserID:  "u1",
				})
				if errors.Is(err, service.ErrBackpressure) {
					sawBackpressure = true
					break
				}
			}

			Convey("Then backpressure is reported instead of blocking", func() {
				So(sawBackpressure, ShouldBeTrue)
			})
		})
	})
}

// blockingStore blocks every append until unblock is closed.
type blockingStore struct {
	unblock chan struct{}
}

func (s *blockingStore) Append(ctx context.Context, event model.ScoreEvent) (string, error) {
	select {
	case <-s.unblock:
	case <-ctx.Done():
	}
	return "", ctx.Err()
}

func (s *blockingStore) BestScores(ctx context.Context, scope model.Scope) ([]model.BestScore, error) {
	return nil, nil
}

func (s *blockingStore) Count(ctx context.Context, scope model.Scope) (int, error) {
	return 0, nil
}
