// Package format renders a computed ranking as human-readable text for a
// constrained markup dialect. Rendering never fails: unrepresentable input is
// escaped or substituted, not rejected.
package format

import (
	"fmt"
	"strings"

	"github.com/skgamebot/flappyrank/internal/domain/rank"
)

// Dialect selects the reserved character set escaped during rendering.
type Dialect int

const (
	// Plain escapes nothing.
	Plain Dialect = iota
	// MarkdownV2 targets Telegram's MarkdownV2 parse mode.
	MarkdownV2
	// HTML targets Telegram's HTML parse mode.
	HTML
)

// EmptyMessage is rendered when the scope has no scores yet.
const EmptyMessage = "No scores available yet."

// markdownV2Replacer covers the full MarkdownV2 reserved set. Missing even
// one character lets a display name break out of the markup.
var markdownV2Replacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
	">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
	".", "\\.", "!", "\\!",
)

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;",
)

// Escape escapes every reserved character of the dialect. Render applies it
// exactly once over the complete message; callers passing pre-escaped text
// will see doubled escapes.
func Escape(text string, dialect Dialect) string {
	switch dialect {
	case MarkdownV2:
		return markdownV2Replacer.Replace(text)
	case HTML:
		return htmlReplacer.Replace(text)
	default:
		return text
	}
}

// Medal returns the placement marker for the top three ranks, empty otherwise.
func Medal(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return ""
	}
}

// Render produces the leaderboard text: a header, one line per entry as
// "<rank>. <name> <medal> - <score>", and a trailing line for a requesting
// user ranked below the rendered list. The complete message is escaped once
// at the end: constrained dialects reserve template punctuation ('.', '-')
// too, so escaping only the names would leave an unparseable message.
func Render(r rank.Ranking, dialect Dialect) string {
	if len(r.Entries) == 0 {
		return Escape(EmptyMessage, dialect)
	}

	var b strings.Builder
	b.WriteString("Leaderboard:\n")
	for _, entry := range r.Entries {
		writeEntry(&b, entry)
	}

	switch {
	case r.Requester != nil:
		fmt.Fprintf(&b, "Your rank: %d. %s - %d\n",
			r.Requester.Rank, r.Requester.DisplayName, r.Requester.BestScore)
	case r.RequestedUserID != "" && !contains(r.Entries, r.RequestedUserID):
		// The engine could not locate the user; they have no event in scope,
		// so there is no score to report.
		fmt.Fprintf(&b, "%s: not in top %d\n", r.RequestedUserID, listSize(r))
	}
	return Escape(b.String(), dialect)
}

func writeEntry(b *strings.Builder, entry rank.Entry) {
	if m := Medal(entry.Rank); m != "" {
		fmt.Fprintf(b, "%d. %s %s - %d\n", entry.Rank, entry.DisplayName, m, entry.BestScore)
		return
	}
	fmt.Fprintf(b, "%d. %s - %d\n", entry.Rank, entry.DisplayName, entry.BestScore)
}

// listSize reports the top-N the caller asked for, falling back to the
// rendered length for rankings built without one.
func listSize(r rank.Ranking) int {
	if r.TopN > 0 {
		return r.TopN
	}
	return len(r.Entries)
}

func contains(entries []rank.Entry, userID string) bool {
	for _, e := range entries {
		if e.UserID == userID {
			return true
		}
	}
	return false
}
