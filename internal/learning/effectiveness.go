// Package learning turns post-hoc user reactions into adjusted thresholds
// and type preferences without any model retraining. Feedback is the only
// write path; thresholds and metrics are recomputed on demand from the
// feedback store.
package learning

import (
	"meetsense/internal/types"
)

// Success is the effectiveness floor above which an intervention counts as
// successful for rates, trends, and pattern mining.
const successFloor = 0.6

// ComputeEffectiveness derives the four-dimensional effectiveness score
// from a reaction and a conversation outcome. Every sub-score starts at
// the neutral midpoint and is shifted by fixed deltas, then clamped to
// [0, 1].
func ComputeEffectiveness(reaction types.UserReaction, outcome types.ConversationOutcome) types.EffectivenessScore {
	s := types.EffectivenessScore{Overall: 0.5, Timing: 0.5, Relevance: 0.5, Tone: 0.5}

	switch reaction {
	case types.ReactionPositive:
		s.Overall += 0.3
		s.Tone += 0.3
	case types.ReactionAcknowledged:
		s.Overall += 0.1
	case types.ReactionNegative:
		s.Overall -= 0.3
		s.Tone -= 0.3
	case types.ReactionIgnored:
		s.Overall -= 0.1
		s.Relevance -= 0.2
	case types.ReactionDismissed:
		s.Overall -= 0.2
		s.Relevance -= 0.3
	}

	switch outcome {
	case types.OutcomeImproved:
		s.Overall += 0.3
		s.Timing += 0.2
	case types.OutcomeProvidedValue:
		s.Overall += 0.2
		s.Relevance += 0.3
	case types.OutcomeDisrupted:
		s.Overall -= 0.3
		s.Timing -= 0.3
	}

	s.Overall = types.Clamp01(s.Overall)
	s.Timing = types.Clamp01(s.Timing)
	s.Relevance = types.Clamp01(s.Relevance)
	s.Tone = types.Clamp01(s.Tone)
	return s
}

// successful reports whether a feedback record counts as a success.
func successful(rec types.FeedbackRecord) bool {
	return rec.Effectiveness.Overall > successFloor
}

// satisfaction maps a reaction to a scalar satisfaction contribution.
func satisfaction(reaction types.UserReaction) float64 {
	switch reaction {
	case types.ReactionPositive:
		return 1.0
	case types.ReactionAcknowledged:
		return 0.7
	case types.ReactionIgnored:
		return 0.4
	case types.ReactionDismissed:
		return 0.2
	default:
		return 0.0
	}
}
