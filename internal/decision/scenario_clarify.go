package decision

import (
	"fmt"

	"meetsense/internal/config"
	"meetsense/internal/types"
)

// clarificationEvaluator scores asking a clarifying question: lopsided
// participation, explicit confusion, and a flagging conversation each
// contribute.
type clarificationEvaluator struct {
	cfg config.DecisionConfig
}

func (e *clarificationEvaluator) Type() types.InterventionType {
	return types.InterventionClarification
}

func (e *clarificationEvaluator) Evaluate(sig Signals) Score {
	recent := sig.Convo.RecentMessages(5)
	if len(recent) == 0 {
		return Score{}
	}

	score := 0.0
	confused := 0

	if sig.Flow.Engagement.ParticipationBalance < 0.5 {
		score += 0.3
	}
	for _, m := range recent {
		if containsPhrase(m.Content, confusionPhrases) {
			score += 0.5
			confused++
		}
	}
	if sig.Flow.Momentum.Direction == types.MomentumDecreasing && sig.Flow.Momentum.Strength > 0.3 {
		score += 0.2
	}

	if score < e.cfg.ClarificationThreshold {
		return Score{}
	}
	return Score{
		Value: types.Clamp01(score),
		Reasoning: fmt.Sprintf("participation balance %.2f, %d confused messages, momentum %s",
			sig.Flow.Engagement.ParticipationBalance, confused, sig.Flow.Momentum.Direction),
	}
}
