package learning

import (
	"context"
	"fmt"

	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// UpdateThresholds recomputes the user's decision thresholds from feedback
// over the trailing window. Users with no history get the defaults; a
// strong success rate loosens the intervention threshold, a weak one
// tightens it, and average effectiveness moves the confidence threshold
// the same way.
func (l *Loop) UpdateThresholds(ctx context.Context, userID string) (types.ThresholdAdjustments, error) {
	adj := types.ThresholdAdjustments{
		InterventionThreshold: l.cfg.DefaultInterventionThreshold,
		ConfidenceThreshold:   l.cfg.DefaultConfidenceThreshold,
		TimingSensitivity:     l.cfg.DefaultTimingSensitivity,
	}

	cutoff := l.clock().Add(-l.cfg.TrailingWindow)
	recs, err := l.store.ListSince(ctx, userID, cutoff)
	if err != nil {
		return adj, fmt.Errorf("failed to load feedback: %w", err)
	}
	if len(recs) == 0 {
		return adj, nil
	}

	successes := 0
	effSum, timingSum := 0.0, 0.0
	for _, rec := range recs {
		if successful(rec) {
			successes++
		}
		effSum += rec.Effectiveness.Overall
		timingSum += rec.Effectiveness.Timing
	}
	successRate := float64(successes) / float64(len(recs))
	avgEffectiveness := effSum / float64(len(recs))
	avgTiming := timingSum / float64(len(recs))

	switch {
	case successRate > 0.8:
		adj.InterventionThreshold = 0.6 // earn the right to speak up more
	case successRate < 0.4:
		adj.InterventionThreshold = 0.9
	}

	switch {
	case avgEffectiveness > 0.7:
		adj.ConfidenceThreshold = 0.5
	case avgEffectiveness < 0.4:
		adj.ConfidenceThreshold = 0.8
	}

	// Poor timing sub-scores make the engine more sensitive about timing.
	if avgTiming < 0.4 {
		adj.TimingSensitivity = 0.7
	}

	adj.TypePreferences = l.typePreferences(recs)

	logging.LearningDebug("thresholds updated: user=%s intervention=%.2f confidence=%.2f over %d records",
		userID, adj.InterventionThreshold, adj.ConfidenceThreshold, len(recs))
	return adj, nil
}

// typePreferences blends per-type success rate (60%) and average
// effectiveness (40%), clamped to [0.3, 0.9].
func (l *Loop) typePreferences(recs []types.FeedbackRecord) map[types.InterventionType]float64 {
	type agg struct {
		total     int
		successes int
		effSum    float64
	}
	byType := make(map[types.InterventionType]*agg)
	for _, rec := range recs {
		a := byType[rec.InterventionType]
		if a == nil {
			a = &agg{}
			byType[rec.InterventionType] = a
		}
		a.total++
		if successful(rec) {
			a.successes++
		}
		a.effSum += rec.Effectiveness.Overall
	}

	prefs := make(map[types.InterventionType]float64, len(byType))
	for t, a := range byType {
		successRate := float64(a.successes) / float64(a.total)
		avgEff := a.effSum / float64(a.total)
		pref := 0.6*successRate + 0.4*avgEff
		if pref < 0.3 {
			pref = 0.3
		}
		if pref > 0.9 {
			pref = 0.9
		}
		prefs[t] = pref
	}
	return prefs
}
