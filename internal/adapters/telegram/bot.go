// Package telegram adapts the ranking service to a Telegram bot. The bot is a
// read-side collaborator: it answers commands, it never writes scores.
package telegram

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/skgamebot/flappyrank/internal/domain/format"
	"github.com/skgamebot/flappyrank/internal/domain/model"
	"github.com/skgamebot/flappyrank/internal/domain/rank"
	"github.com/skgamebot/flappyrank/pkg/logger"
	"github.com/skgamebot/flappyrank/pkg/metrics"
)

const (
	welcomeMessage  = "Welcome!"
	fetchFailedText = "Could not fetch the leaderboard, try again later."

	commandTimeout = 10 * time.Second
)

// RankingService exposes the read operations the bot needs.
type RankingService interface {
	Leaderboard(ctx context.Context, scope model.Scope, topN int, requestingUserID string) (rank.Ranking, error)
}

// Bot long-polls Telegram for commands and replies with rendered leaderboards.
type Bot struct {
	api        *tgbotapi.BotAPI
	svc        RankingService
	globalTopN int
	groupTopN  int
	logger     logger.Logger
}

// New creates a Bot for the given token. The token is validated against the
// Telegram API before this returns.
func New(token string, svc RankingService, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		api:        api,
		svc:        svc,
		globalTopN: defaultGlobalTopN,
		groupTopN:  defaultGroupTopN,
		logger:     logger.Get().Named("telegram"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info(ctx, "bot started", logger.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	command := msg.Command()
	metrics.RecordBotCommand(command)

	switch command {
	case "start":
		b.reply(ctx, msg.Chat.ID, welcomeMessage, "")
	case "leaderboard":
		b.handleLeaderboard(ctx, msg)
	default:
		// Unknown commands are ignored, same as the original bot.
	}
}

func (b *Bot) handleLeaderboard(ctx context.Context, msg *tgbotapi.Message) {
	scope := model.Global()
	topN := b.globalTopN
	if !msg.Chat.IsPrivate() {
		scope = model.Chat(strconv.FormatInt(msg.Chat.ID, 10))
		topN = b.groupTopN
	}

	userID := ""
	if msg.From != nil {
		userID = strconv.FormatInt(msg.From.ID, 10)
	}

	text, err := LeaderboardReply(ctx, b.svc, scope, topN, userID)
	if err != nil {
		metrics.RecordBotError()
		b.logger.Error(ctx, "leaderboard fetch failed",
			logger.String("scope", scope.String()), logger.Error(err))
		b.reply(ctx, msg.Chat.ID, fetchFailedText, "")
		return
	}
	b.reply(ctx, msg.Chat.ID, text, tgbotapi.ModeMarkdownV2)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text, parseMode string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = parseMode
	if _, err := b.api.Send(out); err != nil {
		metrics.RecordBotError()
		b.logger.Error(ctx, "send failed", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}

// LeaderboardReply computes and renders the leaderboard text for one command.
// Split out so the reply content is testable without a live bot connection.
func LeaderboardReply(ctx context.Context, svc RankingService, scope model.Scope, topN int, requestingUserID string) (string, error) {
	ranking, err := svc.Leaderboard(ctx, scope, topN, requestingUserID)
	if err != nil {
		return "", err
	}
	return format.Render(ranking, format.MarkdownV2), nil
}
