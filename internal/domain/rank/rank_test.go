package rank_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

// stubSource returns a fixed slice of best scores, or an error.
type stubSource struct {
	bests []model.BestScore
	err   error
}

func (s *stubSource) BestScores(ctx context.Context, scope model.Scope) ([]model.BestScore, error) {
	if s.err != nil {
		return nil, s.err
	}
	// Return a copy so the engine's in-place sort never mutates the fixture.
	out := make([]model.BestScore, len(s.bests))
	copy(out, s.bests)
	return out, nil
}

func at(minute int) time.Time {
	return time.Date(2024, 5, 1, 12, minute, 0, 0, time.UTC)
}

func TestCompute(t *testing.T) {
	Convey("Given users A, B, C with bests 90, 80, 80", t, func() {
		// A submitted 50 then 90; B and C both peaked at 80, B first.
		source := &stubSource{bests: []model.BestScore{
			{UserID: "A", DisplayName: "Alice", Score: 90, FirstAt: at(3)},
			{UserID: "B", DisplayName: "Bob", Score: 80, FirstAt: at(2)},
			{UserID: "C", DisplayName: "Cara", Score: 80, FirstAt: at(4)},
		}}
		engine := rank.New(source)

		Convey("When computing the top 10", func() {
			ranking, err := engine.Compute(context.Background(), model.Global(), 10, "")

			Convey("Then ranks are dense and ties break on earliest best", func() {
				So(err, ShouldBeNil)
				So(ranking.TotalUsers, ShouldEqual, 3)
				So(ranking.Entries, ShouldHaveLength, 3)

				So(ranking.Entries[0].Rank, ShouldEqual, 1)
				So(ranking.Entries[0].UserID, ShouldEqual, "A")
				So(ranking.Entries[0].BestScore, ShouldEqual, 90)

				So(ranking.Entries[1].Rank, ShouldEqual, 2)
				So(ranking.Entries[1].UserID, ShouldEqual, "B")

				So(ranking.Entries[2].Rank, ShouldEqual, 3)
				So(ranking.Entries[2].UserID, ShouldEqual, "C")
			})
		})

		Convey("When computing twice over the same snapshot", func() {
			first, err1 := engine.Compute(context.Background(), model.Global(), 10, "")
			second, err2 := engine.Compute(context.Background(), model.Global(), 10, "")

			Convey("Then the order is identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second.Entries, ShouldResemble, first.Entries)
			})
		})

		Convey("When computing the top 2", func() {
			ranking, err := engine.Compute(context.Background(), model.Global(), 2, "")

			Convey("Then the list is truncated but the total is not", func() {
				So(err, ShouldBeNil)
				So(ranking.Entries, ShouldHaveLength, 2)
				So(ranking.TopN, ShouldEqual, 2)
				So(ranking.TotalUsers, ShouldEqual, 3)
			})
		})

		Convey("When topN is below one", func() {
			_, err := engine.Compute(context.Background(), model.Global(), 0, "")

			Convey("Then the request is rejected", func() {
				So(errors.Is(err, rank.ErrInvalidTopN), ShouldBeTrue)
			})
		})
	})

	Convey("Given users tied on score and timestamp", t, func() {
		source := &stubSource{bests: []model.BestScore{
			{UserID: "zed", Score: 50, FirstAt: at(1)},
			{UserID: "amy", Score: 50, FirstAt: at(1)},
		}}
		engine := rank.New(source)

		Convey("When computing the ranking", func() {
			ranking, err := engine.Compute(context.Background(), model.Global(), 10, "")

			Convey("Then the user id breaks the tie", func() {
				So(err, ShouldBeNil)
				So(ranking.Entries[0].UserID, ShouldEqual, "amy")
				So(ranking.Entries[1].UserID, ShouldEqual, "zed")
			})
		})
	})

	Convey("Given an empty scope", t, func() {
		engine := rank.New(&stubSource{})

		Convey("When computing the ranking", func() {
			ranking, err := engine.Compute(context.Background(), model.Global(), 10, "u1")

			Convey("Then the result is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(ranking.Entries, ShouldBeEmpty)
				So(ranking.TotalUsers, ShouldEqual, 0)
				So(ranking.Requester, ShouldBeNil)
			})
		})
	})

	Convey("Given a failing source", t, func() {
		engine := rank.New(&stubSource{err: errors.New("store down")})

		Convey("When computing the ranking", func() {
			_, err := engine.Compute(context.Background(), model.Global(), 10, "")

			Convey("Then the failure is surfaced as scope unavailable", func() {
				So(errors.Is(err, rank.ErrScopeUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestComputeRequester(t *testing.T) {
	Convey("Given 15 users with descending scores", t, func() {
		bests := make([]model.BestScore, 0, 15)
		for i := 0; i < 15; i++ {
			bests = append(bests, model.BestScore{
				UserID:  fmt.Sprintf("user-%02d", i),
				Score:   1000 - i*10,
				FirstAt: at(i),
			})
		}
		engine := rank.New(&stubSource{bests: bests})

		Convey("When a user ranked 13th requests the top 10", func() {
			ranking, err := engine.Compute(context.Background(), model.Global(), 10, "user-12")

			Convey("Then their entry is attached below the list", func() {
				So(err, ShouldBeNil)
				So(ranking.Entries, ShouldHaveLength, 10)
				So(ranking.Requester, ShouldNotBeNil)
				So(ranking.Requester.Rank, ShouldEqual, 13)
				So(ranking.Requester.UserID, ShouldEqual, "user-12")
			})
		})

		Convey("When a user inside the top 10 requests it", func() {
			ranking, err := engine.Compute(context.Background(), model.Global(), 10, "user-03")

			Convey("Then no separate entry is attached", func() {
				So(err, ShouldBeNil)
				So(ranking.Requester, ShouldBeNil)
			})
		})

		Convey("When an unknown user requests it", func() {
			ranking, err := engine.Compute(context.Background(), model.Global(), 10, "stranger")

			Convey("Then no entry is attached", func() {
				So(err, ShouldBeNil)
				So(ranking.Requester, ShouldBeNil)
				So(ranking.RequestedUserID, ShouldEqual, "stranger")
			})
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given a populated source", t, func() {
		source := &stubSource{bests: []model.BestScore{
			{UserID: "A", Score: 90, FirstAt: at(1)},
			{UserID: "B", Score: 80, FirstAt: at(2)},
		}}
		engine := rank.New(source)

		Convey("When looking up a known user", func() {
			entry, err := engine.Rank(context.Background(), model.Global(), "B")

			Convey("Then their full-scope entry is returned", func() {
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 2)
				So(entry.BestScore, ShouldEqual, 80)
			})
		})

		Convey("When looking up an unknown user", func() {
			_, err := engine.Rank(context.Background(), model.Global(), "nobody")

			Convey("Then not found is returned", func() {
				So(errors.Is(err, rank.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
