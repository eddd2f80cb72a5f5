package types

import (
	"context"
	"time"
)

// Analyzer defines the interface to the external text-analysis service.
// Implementations live in internal/analysis; everything above it treats the
// service as an opaque request/response boundary.
type Analyzer interface {
	// ClassifyTopic returns a short topic label for the given text.
	ClassifyTopic(ctx context.Context, text string) (string, error)

	// ScoreRelevance rates how relevant text is to the given topic, 0.0-1.0.
	ScoreRelevance(ctx context.Context, text, topic string) (float64, error)

	// AnalyzeDrift compares an earlier slice of conversation against a
	// recent one and judges whether the conversation has drifted.
	AnalyzeDrift(ctx context.Context, earlier, recent string) (DriftAssessment, error)
}

// ActivityStore holds per-user manual-control state keyed by user id.
// Implementations must be safe for concurrent use: the state is global per
// user, not per session.
type ActivityStore interface {
	// Level returns the user's current level and whether one was ever set.
	Level(userID string) (ActivityLevel, bool)

	// SetLevel replaces the user's current level.
	SetLevel(userID string, level ActivityLevel)

	// AppendChange appends to the user's audit log, trimming the oldest
	// entries beyond maxEntries.
	AppendChange(userID string, change ActivityLevelChange, maxEntries int)

	// Changes returns a copy of the user's audit log, oldest first.
	Changes(userID string) []ActivityLevelChange
}

// FeedbackStore holds labeled intervention outcomes keyed by user id.
// The learning loop is its only writer.
type FeedbackStore interface {
	// Append records one labeled outcome for a user.
	Append(ctx context.Context, rec FeedbackRecord) error

	// ListByUser returns all records for a user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]FeedbackRecord, error)

	// ListSince returns records for a user recorded at or after the cutoff,
	// oldest first.
	ListSince(ctx context.Context, userID string, cutoff time.Time) ([]FeedbackRecord, error)

	// Close releases any underlying resources.
	Close() error
}

// Clock supplies the current time. Injectable so tests can pin it and so
// evaluating an unchanged context is idempotent.
type Clock func() time.Time

// RandSource supplies uniform floats in [0, 1). The manual-control
// probability gates draw from it; tests pin the outcome with a fixed source.
type RandSource interface {
	Float64() float64
}
