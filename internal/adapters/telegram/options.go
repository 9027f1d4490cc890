package telegram

import "github.com/skgamebot/flappyrank/pkg/logger"

const (
	defaultGlobalTopN = 10
	defaultGroupTopN  = 5
)

// Option configures the Bot.
type Option func(*Bot)

// WithGlobalTopN sets the list size for private-chat leaderboards.
func WithGlobalTopN(n int) Option {
	return func(b *Bot) {
		if n > 0 {
			b.globalTopN = n
		}
	}
}

// WithGroupTopN sets the list size for group-chat leaderboards.
func WithGroupTopN(n int) Option {
	return func(b *Bot) {
		if n > 0 {
			b.groupTopN = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.logger = l
		}
	}
}
