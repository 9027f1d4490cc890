// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults are built in New; Load layers file and env on top.
// - Top-N values are configuration, never constants in handler code.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":10000".
	Addr string `koanf:"addr"`

	// MongoURI selects the backing document store. Empty runs the in-memory
	// store (useful for local runs and tests).
	MongoURI string `koanf:"mongo_uri"`

	// MongoDatabase and MongoCollection locate the score event log.
	MongoDatabase   string `koanf:"mongo_database"`
	MongoCollection string `koanf:"mongo_collection"`

	// TelegramToken enables the command gateway when set.
	TelegramToken string `koanf:"telegram_token"`

	// GlobalTopN is the leaderboard size for the global scope.
	GlobalTopN int `koanf:"global_top_n"`

	// GroupTopN is the leaderboard size for chat scopes.
	GroupTopN int `koanf:"group_top_n"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of persistence workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":10000",
		MongoDatabase:       "skgamebot",
		MongoCollection:     "flappybird",
		GlobalTopN:          10,
		GroupTopN:           5,
		MaxLeaderboardLimit: 100,
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          50_000,
	}
}
