package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"meetsense/internal/config"
	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// Loop is the feedback loop. RecordOutcome is its only write path;
// everything else is recomputed on demand from the store.
type Loop struct {
	cfg   config.LearningConfig
	store types.FeedbackStore
	clock types.Clock
}

// NewLoop creates a learning loop over the given store. A nil clock
// defaults to time.Now.
func NewLoop(cfg config.LearningConfig, store types.FeedbackStore, clock types.Clock) *Loop {
	if clock == nil {
		clock = time.Now
	}
	return &Loop{cfg: cfg, store: store, clock: clock}
}

// RecordOutcome labels an intervention with its observed reaction and
// outcome. It mutates the record exactly once - attaching the reaction and
// the computed effectiveness - and appends a FeedbackRecord for the user.
func (l *Loop) RecordOutcome(ctx context.Context, userID string, intervention *types.InterventionRecord, reaction types.UserReaction, outcome types.ConversationOutcome) (types.FeedbackRecord, error) {
	if intervention == nil {
		return types.FeedbackRecord{}, fmt.Errorf("intervention record required")
	}
	if intervention.Effectiveness != nil {
		return types.FeedbackRecord{}, fmt.Errorf("intervention %s already has feedback", intervention.ID)
	}

	eff := ComputeEffectiveness(reaction, outcome)
	intervention.Reaction = reaction
	intervention.Effectiveness = &eff

	rec := types.FeedbackRecord{
		ID:               uuid.NewString(),
		UserID:           userID,
		InterventionID:   intervention.ID,
		InterventionType: intervention.Type,
		Trigger:          intervention.Trigger,
		Reaction:         reaction,
		Outcome:          outcome,
		Effectiveness:    eff,
		RecordedAt:       l.clock(),
	}
	if err := l.store.Append(ctx, rec); err != nil {
		return types.FeedbackRecord{}, fmt.Errorf("failed to store feedback: %w", err)
	}

	logging.Learning("outcome recorded: user=%s type=%s reaction=%s outcome=%s overall=%.2f",
		userID, rec.InterventionType, reaction, outcome, eff.Overall)
	return rec, nil
}

// Metrics computes the user's rolling aggregates over their full feedback
// history.
func (l *Loop) Metrics(ctx context.Context, userID string) (types.LearningMetrics, error) {
	recs, err := l.store.ListByUser(ctx, userID)
	if err != nil {
		return types.LearningMetrics{}, fmt.Errorf("failed to load feedback: %w", err)
	}

	m := types.LearningMetrics{TotalInterventions: len(recs)}
	if len(recs) == 0 {
		return m, nil
	}

	successes := 0
	effSum, satSum := 0.0, 0.0
	for _, rec := range recs {
		if successful(rec) {
			successes++
		}
		effSum += rec.Effectiveness.Overall
		satSum += satisfaction(rec.Reaction)
	}
	m.SuccessRate = float64(successes) / float64(len(recs))
	m.AverageEffectiveness = effSum / float64(len(recs))
	m.Satisfaction = satSum / float64(len(recs))
	m.ImprovementTrend = l.improvementTrend(recs)
	return m, nil
}

// improvementTrend compares the average effectiveness of the most recent
// trend window against the window before it. Zero until both windows have
// at least one record.
func (l *Loop) improvementTrend(recs []types.FeedbackRecord) float64 {
	w := l.cfg.TrendWindow
	if w <= 0 || len(recs) <= w {
		return 0
	}

	recent := recs[len(recs)-w:]
	priorStart := len(recs) - 2*w
	if priorStart < 0 {
		priorStart = 0
	}
	prior := recs[priorStart : len(recs)-w]

	return average(recent) - average(prior)
}

func average(recs []types.FeedbackRecord) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0.0
	for _, rec := range recs {
		sum += rec.Effectiveness.Overall
	}
	return sum / float64(len(recs))
}
