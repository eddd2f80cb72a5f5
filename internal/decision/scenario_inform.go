package decision

import (
	"fmt"
	"strings"

	"meetsense/internal/config"
	"meetsense/internal/types"
)

// informationProvideEvaluator scores offering information the room is
// asking for: explicit questions, info-seeking phrasing, and hedged
// uncertainty all add up per message.
type informationProvideEvaluator struct {
	cfg config.DecisionConfig
}

func (e *informationProvideEvaluator) Type() types.InterventionType {
	return types.InterventionInformationProvide
}

func (e *informationProvideEvaluator) Evaluate(sig Signals) Score {
	recent := sig.Convo.RecentMessages(5)
	if len(recent) == 0 {
		return Score{}
	}

	score := 0.0
	signals := 0
	for _, m := range recent {
		if containsPhrase(m.Content, infoSeekingKeywords) {
			score += 0.3
			signals++
		}
		if strings.Contains(m.Content, "?") {
			score += 0.4
			signals++
		}
		if containsPhrase(m.Content, uncertaintyPhrases) {
			score += 0.2
			signals++
		}
	}
	if score == 0 {
		return Score{}
	}

	if prefs, ok := sig.Convo.PrimaryParticipant(); ok && len(prefs.Preferences.InformationInterests) > 0 {
		score *= 1.2
	}
	if firedWithin(sig.Convo, e.Type(), sig.Now, e.cfg.InfoRecency) {
		score *= 0.6
	}

	if score < e.cfg.InformationGapThreshold {
		return Score{}
	}
	return Score{
		Value:     types.Clamp01(score),
		Reasoning: fmt.Sprintf("%d information-gap signals in the last %d messages", signals, len(recent)),
	}
}
