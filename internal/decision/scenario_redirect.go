package decision

import (
	"fmt"

	"meetsense/internal/config"
	"meetsense/internal/types"
)

// topicRedirectEvaluator scores steering a drifting conversation back on
// topic. Instability is the raw signal; a decreasing momentum adds a
// penalty-turned-bonus (a flagging conversation is easier to redirect).
//
// The recency multiplier is applied before the threshold check, so a
// redirect that has not fired recently can clear the threshold on the
// recency bonus alone. That coupling is intentional and load-bearing:
// changing the order changes which drifts get caught.
type topicRedirectEvaluator struct {
	cfg config.DecisionConfig
}

func (e *topicRedirectEvaluator) Type() types.InterventionType {
	return types.InterventionTopicRedirect
}

func (e *topicRedirectEvaluator) Evaluate(sig Signals) Score {
	if len(sig.Convo.RecentMessages(3)) < 3 {
		return Score{}
	}

	score := 1 - sig.Flow.TopicStability
	if sig.Flow.Momentum.Direction == types.MomentumDecreasing {
		score += 0.3
	}

	recency := 1.2
	if firedWithin(sig.Convo, e.Type(), sig.Now, e.cfg.RedirectRecency) {
		recency = 0.5
	}
	score *= recency

	if score < e.cfg.TopicDriftThreshold {
		return Score{}
	}
	return Score{
		Value: types.Clamp01(score),
		Reasoning: fmt.Sprintf("topic stability %.2f with %d consecutive off-topic messages; redirect recency x%.1f",
			sig.Flow.TopicStability, sig.Flow.ConsecutiveOffTopic, recency),
	}
}
