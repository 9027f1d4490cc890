package model_test

import (
	"testing"
	"time"

	"github.com/skgamebot/flappyrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSubmissionValidate(t *testing.T) {
	Convey("Given a submission", t, func() {
		Convey("When all fields are valid", func() {
			sub := model.Submission{Score: 42, UserID: "u1", FirstName: "Ada"}

			Convey("Then validation passes", func() {
				So(sub.Validate(), ShouldBeNil)
			})
		})

		Convey("When the user id is empty", func() {
			sub := model.Submission{Score: 42, FirstName: "Ada"}

			Convey("Then validation fails", func() {
				So(sub.Validate(), ShouldEqual, model.ErrEmptyUserID)
			})
		})

		Convey("When the score is negative", func() {
			sub := model.Submission{Score: -1, UserID: "u1"}

			Convey("Then validation fails", func() {
				So(sub.Validate(), ShouldEqual, model.ErrNegativeScore)
			})
		})

		Convey("When the score is zero", func() {
			sub := model.Submission{Score: 0, UserID: "u1"}

			Convey("Then validation passes", func() {
				So(sub.Validate(), ShouldBeNil)
			})
		})
	})
}

func TestSubmissionEvent(t *testing.T) {
	Convey("Given a submission with all fields set", t, func() {
		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		sub := model.Submission{
			Score:      77,
			MongoID:    "abc123",
			FirstName:  "Ada",
			LastName:   "Lovelace",
			UserID:     "u1",
			ChatID:     "chat-9",
			AcceptedAt: at,
		}

		Convey("When converted to an event", func() {
			event := sub.Event()

			Convey("Then the fields carry over", func() {
				So(event.UserID, ShouldEqual, "u1")
				So(event.DisplayName, ShouldEqual, "Ada")
				So(event.LastName, ShouldEqual, "Lovelace")
				So(event.Score, ShouldEqual, 77)
				So(event.ChatID, ShouldEqual, "chat-9")
				So(event.CorrelationID, ShouldEqual, "abc123")
				So(event.SubmittedAt, ShouldEqual, at)
			})
		})
	})

	Convey("Given a submission without an accepted timestamp", t, func() {
		sub := model.Submission{Score: 1, UserID: "u1"}

		Convey("When converted to an event", func() {
			event := sub.Event()

			Convey("Then a timestamp is stamped", func() {
				So(event.SubmittedAt.IsZero(), ShouldBeFalse)
			})
		})
	})
}

func TestScope(t *testing.T) {
	Convey("Given the scope constructors", t, func() {
		Convey("When using the global scope", func() {
			s := model.Global()

			Convey("Then it reports global", func() {
				So(s.IsGlobal(), ShouldBeTrue)
				So(s.ChatID(), ShouldBeEmpty)
				So(s.String(), ShouldEqual, "global")
			})
		})

		Convey("When using a chat scope", func() {
			s := model.Chat("42")

			Convey("Then it reports the chat", func() {
				So(s.IsGlobal(), ShouldBeFalse)
				So(s.ChatID(), ShouldEqual, "42")
				So(s.String(), ShouldEqual, "chat:42")
			})
		})

		Convey("When the zero value is used", func() {
			var s model.Scope

			Convey("Then it is the global scope", func() {
				So(s.IsGlobal(), ShouldBeTrue)
			})
		})
	})
}
