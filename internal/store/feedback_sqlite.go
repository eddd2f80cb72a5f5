package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// SQLiteFeedbackStore is the persistent types.FeedbackStore. A hosting
// process that wants learning state to survive restarts points
// learning.database_path at a file; the core itself defaults to memory.
type SQLiteFeedbackStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteFeedbackStore opens (or creates) the feedback database at path.
func NewSQLiteFeedbackStore(path string) (*SQLiteFeedbackStore, error) {
	if path == "" {
		return nil, fmt.Errorf("feedback database path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create feedback db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback db: %w", err)
	}

	s := &SQLiteFeedbackStore{db: db}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logging.LearningDebug("SQLite feedback store ready at %s", path)
	return s, nil
}

func (s *SQLiteFeedbackStore) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		intervention_id TEXT NOT NULL,
		intervention_type TEXT NOT NULL,
		trigger_text TEXT DEFAULT '',
		reaction TEXT NOT NULL,
		outcome TEXT NOT NULL,
		effectiveness TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id, recorded_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one labeled outcome for a user.
func (s *SQLiteFeedbackStore) Append(ctx context.Context, rec types.FeedbackRecord) error {
	timer := logging.StartTimer(logging.CategoryLearning, "SQLiteFeedbackStore.Append")
	defer timer.Stop()

	effJSON, err := json.Marshal(rec.Effectiveness)
	if err != nil {
		return fmt.Errorf("failed to marshal effectiveness: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, user_id, intervention_id, intervention_type, trigger_text, reaction, outcome, effectiveness, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			reaction = excluded.reaction,
			outcome = excluded.outcome,
			effectiveness = excluded.effectiveness
	`, rec.ID, rec.UserID, rec.InterventionID, string(rec.InterventionType), rec.Trigger,
		string(rec.Reaction), string(rec.Outcome), string(effJSON), rec.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// ListByUser returns all records for a user, oldest first.
func (s *SQLiteFeedbackStore) ListByUser(ctx context.Context, userID string) ([]types.FeedbackRecord, error) {
	return s.list(ctx, userID, time.Time{})
}

// ListSince returns records recorded at or after the cutoff, oldest first.
func (s *SQLiteFeedbackStore) ListSince(ctx context.Context, userID string, cutoff time.Time) ([]types.FeedbackRecord, error) {
	return s.list(ctx, userID, cutoff)
}

func (s *SQLiteFeedbackStore) list(ctx context.Context, userID string, cutoff time.Time) ([]types.FeedbackRecord, error) {
	timer := logging.StartTimer(logging.CategoryLearning, "SQLiteFeedbackStore.list")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, intervention_id, intervention_type, trigger_text, reaction, outcome, effectiveness, recorded_at
		FROM feedback
		WHERE user_id = ? AND recorded_at >= ?
		ORDER BY recorded_at ASC
	`, userID, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var out []types.FeedbackRecord
	for rows.Next() {
		var rec types.FeedbackRecord
		var itype, reaction, outcome, effJSON string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.InterventionID, &itype, &rec.Trigger, &reaction, &outcome, &effJSON, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		rec.InterventionType = types.InterventionType(itype)
		rec.Reaction = types.UserReaction(reaction)
		rec.Outcome = types.ConversationOutcome(outcome)
		if err := json.Unmarshal([]byte(effJSON), &rec.Effectiveness); err != nil {
			return nil, fmt.Errorf("failed to decode effectiveness: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteFeedbackStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
