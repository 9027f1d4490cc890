package repository

import "time"

// MongoOption applies a configuration option to the MongoStore.
type MongoOption func(*MongoStore)

// WithConnectTimeout bounds the initial connect and ping.
func WithConnectTimeout(d time.Duration) MongoOption {
	return func(s *MongoStore) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}
