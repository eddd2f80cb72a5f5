package decision

import (
	"fmt"

	"meetsense/internal/config"
	"meetsense/internal/types"
)

// factCheckEvaluator scores verifying a factual claim: confident claim
// phrasing scores highest, hedged recollection and contradiction markers
// add smaller increments.
type factCheckEvaluator struct {
	cfg config.DecisionConfig
}

func (e *factCheckEvaluator) Type() types.InterventionType {
	return types.InterventionFactCheck
}

func (e *factCheckEvaluator) Evaluate(sig Signals) Score {
	recent := sig.Convo.RecentMessages(5)
	if len(recent) == 0 {
		return Score{}
	}

	score := 0.0
	claims := 0
	for _, m := range recent {
		if containsPhrase(m.Content, claimIndicators) {
			score += 0.4
			claims++
		}
		if containsPhrase(m.Content, factUncertaintyPhrases) {
			score += 0.3
		}
		if containsWord(m.Content, contradictionMarkers) {
			score += 0.2
		}
	}
	if score == 0 {
		return Score{}
	}

	if firedWithin(sig.Convo, e.Type(), sig.Now, e.cfg.FactCheckRecency) {
		score *= 0.4
	}

	if score < e.cfg.FactCheckThreshold {
		return Score{}
	}
	return Score{
		Value:     types.Clamp01(score),
		Reasoning: fmt.Sprintf("%d claim indicators among the last %d messages", claims, len(recent)),
	}
}
