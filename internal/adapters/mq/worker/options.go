// Package worker defines workers for asynchronous score persistence.
package worker

import (
	"github.com/skgamebot/flappyrank/pkg/logger"
)

// Option applies a configuration option to the StoreWorker.
type Option func(*StoreWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *StoreWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *StoreWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
