// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"time"
)

// Validation errors for inbound submissions.
var (
	ErrEmptyUserID   = errors.New("user_id must not be empty")
	ErrNegativeScore = errors.New("score must not be negative")
)

// ScoreEvent is one user's one submission, immutable once stored.
// Field names mirror the document schema used by the score collection.
type ScoreEvent struct {
	UserID        string    `bson:"user_id" json:"user_id"`
	DisplayName   string    `bson:"first_name" json:"first_name"`
	LastName      string    `bson:"last_name,omitempty" json:"last_name,omitempty"` // stored for audit, never ranked or rendered
	Score         int       `bson:"score" json:"score"`
	ChatID        string    `bson:"chat_id,omitempty" json:"chat_id,omitempty"`
	CorrelationID string    `bson:"mongo_id,omitempty" json:"mongo_id,omitempty"` // opaque client correlation id, passthrough only
	SubmittedAt   time.Time `bson:"submitted_at" json:"submitted_at"`
}

// Submission is the inbound wire record accepted by the submission gateway.
// Fields mirror the webhook payload of the original score endpoint.
type Submission struct {
	Score     int    `json:"score"`
	MongoID   string `json:"mongo_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserID    string `json:"user_id"`
	ChatID    string `json:"chat_id,omitempty"`

	// AcceptedAt is stamped by the gateway when the submission is accepted,
	// so the stored timestamp reflects arrival order, not worker timing.
	AcceptedAt time.Time `json:"-"`
}

// Validate rejects submissions that must never reach the store.
func (s Submission) Validate() error {
	if s.UserID == "" {
		return ErrEmptyUserID
	}
	if s.Score < 0 {
		return ErrNegativeScore
	}
	return nil
}

// Event converts the submission into a ScoreEvent. The display name is the
// first name only; the last name rides along untouched.
func (s Submission) Event() ScoreEvent {
	at := s.AcceptedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return ScoreEvent{
		UserID:        s.UserID,
		DisplayName:   s.FirstName,
		LastName:      s.LastName,
		Score:         s.Score,
		ChatID:        s.ChatID,
		CorrelationID: s.MongoID,
		SubmittedAt:   at,
	}
}

// BestScore is one user's aggregated best in a scope: the maximum score, the
// display name attached to the earliest event carrying that maximum, and that
// event's timestamp.
type BestScore struct {
	UserID      string
	DisplayName string
	Score       int
	FirstAt     time.Time
}

// Scope is the partition a ranking is computed over. The zero value is the
// global scope; Chat(id) restricts to events attributed to one chat.
type Scope struct {
	chatID string
}

// Global returns the scope covering every event in the store.
func Global() Scope { return Scope{} }

// Chat returns the scope restricted to a single chat.
func Chat(id string) Scope { return Scope{chatID: id} }

// IsGlobal reports whether the scope covers the whole store.
func (s Scope) IsGlobal() bool { return s.chatID == "" }

// ChatID returns the chat identity, empty for the global scope.
func (s Scope) ChatID() string { return s.chatID }

func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "chat:" + s.chatID
}
