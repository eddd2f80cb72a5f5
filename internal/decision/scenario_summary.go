package decision

import (
	"fmt"
	"time"

	"meetsense/internal/config"
	"meetsense/internal/types"
)

// summaryOfferEvaluator scores offering a recap. Long or meandering
// meetings accumulate increments from message count, duration, and topic
// churn.
type summaryOfferEvaluator struct {
	cfg config.DecisionConfig
}

func (e *summaryOfferEvaluator) Type() types.InterventionType {
	return types.InterventionSummaryOffer
}

func (e *summaryOfferEvaluator) Evaluate(sig Signals) Score {
	msgCount := len(sig.Convo.MessageHistory)
	if msgCount == 0 {
		return Score{}
	}
	duration := sig.Now.Sub(sig.Convo.StartTime)

	score := 0.0
	if msgCount > 20 {
		score += 0.3
	}
	if msgCount > 50 {
		score += 0.3
	}
	if duration > 15*time.Minute {
		score += 0.2
	}
	if duration > 30*time.Minute {
		score += 0.2
	}

	changes := topicChanges(sig.Convo.MessageHistory)
	if changes > 3 {
		score += 0.3
	}
	if score == 0 {
		return Score{}
	}

	if firedWithin(sig.Convo, e.Type(), sig.Now, e.cfg.SummaryRecency) {
		score *= 0.3
	}

	if score < e.cfg.SummaryThreshold {
		return Score{}
	}
	return Score{
		Value: types.Clamp01(score),
		Reasoning: fmt.Sprintf("%d messages over %s with %d topic changes",
			msgCount, duration.Round(time.Minute), changes),
	}
}

// topicChanges counts transitions between the primary topic annotations of
// consecutive messages. Unannotated messages are skipped.
func topicChanges(msgs []types.ProcessedMessage) int {
	changes := 0
	prev := ""
	for _, m := range msgs {
		if len(m.Topics) == 0 {
			continue
		}
		if prev != "" && m.Topics[0] != prev {
			changes++
		}
		prev = m.Topics[0]
	}
	return changes
}
