// Package decision implements the single authority for whether the
// assistant speaks, about what, and with what confidence and priority.
// Five scenario evaluators score independently; the engine applies rate
// limits first, picks the best applicable scenario, and gives the manual
// control layer the last word.
package decision

import (
	"strings"
	"time"

	"meetsense/internal/types"
)

// Signals bundles everything one evaluation turn needs. Built fresh per
// turn by the session layer; evaluators must not mutate it.
type Signals struct {
	Convo *types.ConversationContext
	Flow  types.FlowAnalysis

	// Adjust carries the learning loop's per-user thresholds and type
	// preferences. Nil when no learning state is available.
	Adjust *types.ThresholdAdjustments

	Now time.Time
}

// Score is one evaluator's verdict: zero means not applicable, otherwise a
// value in (0, 1] with a human-readable justification.
type Score struct {
	Value     float64
	Reasoning string
}

// ScenarioEvaluator scores one candidate intervention scenario against the
// aggregated signals. New intervention types plug in here without touching
// the selection logic.
type ScenarioEvaluator interface {
	Type() types.InterventionType
	Evaluate(sig Signals) Score
}

// =============================================================================
// PHRASE TABLES
// =============================================================================

var infoSeekingKeywords = []string{
	"how do we", "how does", "what is", "what are", "need information",
	"does anyone know", "can someone explain", "any idea", "where can i find",
}

var uncertaintyPhrases = []string{
	"not sure", "maybe", "i think", "perhaps", "possibly", "no idea", "unsure",
}

var claimIndicators = []string{
	"studies show", "research shows", "according to", "statistics say",
	"the data shows", "everyone knows", "it's a fact", "proven that",
}

var factUncertaintyPhrases = []string{
	"i think it was", "if i remember", "if i recall", "don't quote me",
	"something like", "roughly", "i believe it was",
}

var contradictionMarkers = []string{"but", "however", "actually"}

var confusionPhrases = []string{
	"confused", "don't understand", "do not understand", "what do you mean",
	"unclear", "you lost me", "can you clarify", "not following",
}

// containsPhrase reports whether text contains any of the phrases,
// case-insensitively.
func containsPhrase(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// containsWord reports whether text contains any of the words as a whole
// token, case-insensitively. Used for short markers like "but" that would
// otherwise match inside longer words.
func containsWord(text string, words []string) bool {
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,;:!?\"'()")
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	return false
}

// firedWithin reports whether an intervention of type t was issued within
// the window before now.
func firedWithin(convo *types.ConversationContext, t types.InterventionType, now time.Time, window time.Duration) bool {
	rec, ok := convo.LastInterventionOfType(t)
	if !ok {
		return false
	}
	return now.Sub(rec.Timestamp) <= window
}
