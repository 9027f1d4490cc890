package format_test

import (
	"strings"
	"testing"

	"github.com/skgamebot/flappyrank/internal/domain/format"
	"github.com/skgamebot/flappyrank/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEscape(t *testing.T) {
	Convey("Given the MarkdownV2 dialect", t, func() {
		Convey("When escaping the full reserved set", func() {
			reserved := "_*[]()~`>#+-=|{}.!"
			escaped := format.Escape(reserved, format.MarkdownV2)

			Convey("Then every reserved character is backslash-escaped", func() {
				for _, r := range reserved {
					So(escaped, ShouldContainSubstring, "\\"+string(r))
				}
				So(len(escaped), ShouldEqual, 2*len(reserved))
			})
		})

		Convey("When escaping text without reserved characters", func() {
			So(format.Escape("Alice", format.MarkdownV2), ShouldEqual, "Alice")
		})

		Convey("When escaping a hostile display name", func() {
			escaped := format.Escape("*bold* [link](x)", format.MarkdownV2)

			Convey("Then the markup cannot break out", func() {
				So(escaped, ShouldEqual, "\\*bold\\* \\[link\\]\\(x\\)")
			})
		})
	})

	Convey("Given the HTML dialect", t, func() {
		Convey("When escaping markup characters", func() {
			So(format.Escape("<b>&</b>", format.HTML), ShouldEqual, "&lt;b&gt;&amp;&lt;/b&gt;")
		})
	})

	Convey("Given the plain dialect", t, func() {
		Convey("When escaping reserved characters", func() {
			So(format.Escape("_*.", format.Plain), ShouldEqual, "_*.")
		})
	})
}

func TestMedal(t *testing.T) {
	Convey("Given the medal markers", t, func() {
		So(format.Medal(1), ShouldEqual, "🥇")
		So(format.Medal(2), ShouldEqual, "🥈")
		So(format.Medal(3), ShouldEqual, "🥉")
		So(format.Medal(4), ShouldBeEmpty)
		So(format.Medal(0), ShouldBeEmpty)
	})
}

func TestRender(t *testing.T) {
	Convey("Given an empty ranking", t, func() {
		Convey("When rendering plain text", func() {
			out := format.Render(rank.Ranking{}, format.Plain)

			Convey("Then the empty message is returned", func() {
				So(out, ShouldEqual, format.EmptyMessage)
			})
		})

		Convey("When rendering MarkdownV2", func() {
			out := format.Render(rank.Ranking{}, format.MarkdownV2)

			Convey("Then the empty message is escaped too", func() {
				So(out, ShouldEqual, "No scores available yet\\.")
			})
		})
	})

	Convey("Given a ranking with four entries", t, func() {
		ranking := rank.Ranking{
			Entries: []rank.Entry{
				{Rank: 1, UserID: "A", DisplayName: "Alice", BestScore: 90},
				{Rank: 2, UserID: "B", DisplayName: "Bob", BestScore: 80},
				{Rank: 3, UserID: "C", DisplayName: "Cara", BestScore: 70},
				{Rank: 4, UserID: "D", DisplayName: "Dan", BestScore: 60},
			},
			TotalUsers: 4,
		}

		Convey("When rendering plain text", func() {
			out := format.Render(ranking, format.Plain)
			lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

			Convey("Then the header and medals render per position", func() {
				So(lines[0], ShouldEqual, "Leaderboard:")
				So(lines[1], ShouldEqual, "1. Alice 🥇 - 90")
				So(lines[2], ShouldEqual, "2. Bob 🥈 - 80")
				So(lines[3], ShouldEqual, "3. Cara 🥉 - 70")
				So(lines[4], ShouldEqual, "4. Dan - 60")
			})
		})

		Convey("When rendering MarkdownV2 with a hostile name", func() {
			ranking.Entries[0].DisplayName = "Al.ice!"
			out := format.Render(ranking, format.MarkdownV2)

			Convey("Then names and template punctuation are escaped", func() {
				So(out, ShouldContainSubstring, "1\\. Al\\.ice\\! 🥇 \\- 90")
				So(out, ShouldContainSubstring, "2\\. Bob 🥈 \\- 80")
			})
		})

		Convey("When scanning the MarkdownV2 output for reserved characters", func() {
			ranking.Entries[0].DisplayName = "_*[]()~`>#+-=|{}.!"
			out := format.Render(ranking, format.MarkdownV2)

			Convey("Then every reserved character is preceded by a backslash", func() {
				const reserved = "_*[]()~`>#+-=|{}.!"
				for i := 0; i < len(out); i++ {
					if strings.ContainsRune(reserved, rune(out[i])) {
						So(i, ShouldBeGreaterThan, 0)
						So(out[i-1], ShouldEqual, byte('\\'))
					}
				}
			})
		})
	})

	Convey("Given a ranking with a trailing requester", t, func() {
		ranking := rank.Ranking{
			Entries: []rank.Entry{
				{Rank: 1, UserID: "A", DisplayName: "Alice", BestScore: 90},
			},
			TotalUsers:      13,
			RequestedUserID: "M",
			Requester:       &rank.Entry{Rank: 13, UserID: "M", DisplayName: "Mallory", BestScore: 5},
		}

		Convey("When rendering", func() {
			out := format.Render(ranking, format.Plain)

			Convey("Then the requester line is appended", func() {
				So(out, ShouldEndWith, "Your rank: 13. Mallory - 5\n")
			})
		})
	})

	Convey("Given a requested user with no scores in scope", t, func() {
		ranking := rank.Ranking{
			Entries: []rank.Entry{
				{Rank: 1, UserID: "A", DisplayName: "Alice", BestScore: 90},
			},
			TopN:            10,
			TotalUsers:      1,
			RequestedUserID: "ghost",
		}

		Convey("When rendering", func() {
			out := format.Render(ranking, format.Plain)

			Convey("Then the line names the requested top-N, not the list length", func() {
				So(out, ShouldEndWith, "ghost: not in top 10\n")
			})
		})

		Convey("When the ranking carries no requested top-N", func() {
			ranking.TopN = 0
			out := format.Render(ranking, format.Plain)

			Convey("Then the rendered length is the fallback", func() {
				So(out, ShouldEndWith, "ghost: not in top 1\n")
			})
		})
	})

	Convey("Given a requested user already listed", t, func() {
		ranking := rank.Ranking{
			Entries: []rank.Entry{
				{Rank: 1, UserID: "A", DisplayName: "Alice", BestScore: 90},
			},
			TotalUsers:      1,
			RequestedUserID: "A",
		}

		Convey("When rendering", func() {
			out := format.Render(ranking, format.Plain)

			Convey("Then no extra line is appended", func() {
				So(out, ShouldEndWith, "1. Alice 🥇 - 90\n")
			})
		})
	})
}
