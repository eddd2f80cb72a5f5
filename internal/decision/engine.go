package decision

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"meetsense/internal/config"
	"meetsense/internal/control"
	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// Engine evaluates intervention scenarios against aggregated signals and
// produces one InterventionDecision per turn. Preconditions (hourly cap,
// cooldown) run before any scoring; the manual control layer is consulted
// last with the raw should-respond boolean.
type Engine struct {
	cfg        config.DecisionConfig
	control    *control.Controller
	evaluators []ScenarioEvaluator
	clock      types.Clock
}

// NewEngine creates a decision engine with the five standard evaluators
// registered in order. A nil clock defaults to time.Now.
func NewEngine(cfg config.DecisionConfig, ctrl *control.Controller, clock types.Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	e := &Engine{cfg: cfg, control: ctrl, clock: clock}
	e.evaluators = []ScenarioEvaluator{
		&topicRedirectEvaluator{cfg: cfg},
		&informationProvideEvaluator{cfg: cfg},
		&factCheckEvaluator{cfg: cfg},
		&clarificationEvaluator{cfg: cfg},
		&summaryOfferEvaluator{cfg: cfg},
	}
	return e
}

// Register appends an additional scenario evaluator. Selection logic is
// untouched: the maximum positive score still wins.
func (e *Engine) Register(ev ScenarioEvaluator) {
	e.evaluators = append(e.evaluators, ev)
}

// frequencyMultiplier scales the base hourly cap by the user's preference.
func frequencyMultiplier(f types.InterventionFrequency) float64 {
	switch f {
	case types.FrequencyMinimal:
		return 0.3
	case types.FrequencyModerate:
		return 0.6
	case types.FrequencyVeryActive:
		return 1.5
	default:
		return 1.0
	}
}

// ShouldIntervene is the decision function. It is total over its input
// domain: invalid or empty contexts produce a reasoned no-intervention
// decision, never an error.
func (e *Engine) ShouldIntervene(sig Signals) types.InterventionDecision {
	timer := logging.StartTimer(logging.CategoryDecision, "Engine.ShouldIntervene")
	defer timer.Stop()

	if sig.Convo == nil || len(sig.Convo.MessageHistory) == 0 {
		return types.NoIntervention("no conversation history to evaluate")
	}
	if sig.Now.IsZero() {
		sig.Now = e.clock()
	}

	primary, ok := sig.Convo.PrimaryParticipant()
	if !ok {
		return types.NoIntervention("no participants in conversation")
	}

	// Precondition (a): frequency-scaled hourly cap.
	freq := primary.Preferences.Frequency
	if freq == "" {
		freq = types.FrequencyModerate
	}
	freq = e.control.AdjustInterventionFrequency(primary.ID, freq)
	hourlyCap := int(math.Round(float64(e.cfg.BaseHourlyCap) * frequencyMultiplier(freq)))
	if recent := sig.Convo.InterventionsSince(sig.Now.Add(-time.Hour)); recent >= hourlyCap {
		logging.Decision("declined: hourly cap user=%s count=%d cap=%d", primary.ID, recent, hourlyCap)
		return types.NoIntervention(fmt.Sprintf(
			"Intervention limit exceeded: %d interventions in the last hour (cap %d at %s frequency)", recent, hourlyCap, freq))
	}

	// Precondition (b): cooldown since the last intervention.
	if n := len(sig.Convo.InterventionHistory); n > 0 {
		since := sig.Now.Sub(sig.Convo.InterventionHistory[n-1].Timestamp)
		if since < e.cfg.Cooldown {
			logging.Decision("declined: cooldown since=%s", since)
			return types.NoIntervention(fmt.Sprintf(
				"Too soon since last intervention (%s ago, cooldown %s)", since.Round(time.Second), e.cfg.Cooldown))
		}
	}

	// Score every scenario; the maximum positive score wins.
	var best Score
	var bestType types.InterventionType
	for _, ev := range e.evaluators {
		s := ev.Evaluate(sig)
		if s.Value <= 0 {
			continue
		}
		s.Value = e.applyTypePreference(s.Value, ev.Type(), sig.Adjust)
		logging.DecisionDebug("scenario %s scored %.2f", ev.Type(), s.Value)
		if s.Value > best.Value {
			best = s
			bestType = ev.Type()
		}
	}

	raw := best.Value > 0 && best.Value >= e.effectiveThreshold(sig.Adjust)
	allowed := e.control.ShouldAllowIntervention(primary.ID, raw)

	switch {
	case raw && !allowed:
		logging.Decision("vetoed: manual override user=%s level=%s", primary.ID, e.control.ActivityLevel(primary.ID))
		return types.NoIntervention(fmt.Sprintf(
			"manual override: interventions suppressed by %s activity level", e.control.ActivityLevel(primary.ID)))
	case !raw && allowed && best.Value > 0:
		// An active-level user promoted a below-threshold scenario. Never
		// promote out of thin air: a scenario must have scored.
		return e.finalize(sig, bestType, best, true)
	case !raw:
		if best.Value == 0 {
			return types.NoIntervention("no intervention scenario matched current signals")
		}
		return types.NoIntervention(fmt.Sprintf(
			"best scenario %s scored %.2f, below threshold %.2f", bestType, best.Value, e.effectiveThreshold(sig.Adjust)))
	default:
		return e.finalize(sig, bestType, best, false)
	}
}

// effectiveThreshold prefers the learned per-user intervention threshold
// over the global confidence floor.
func (e *Engine) effectiveThreshold(adjust *types.ThresholdAdjustments) float64 {
	if adjust != nil && adjust.InterventionThreshold > 0 {
		return adjust.InterventionThreshold
	}
	return e.cfg.ConfidenceThreshold
}

// applyTypePreference scales a score by the user's learned preference for
// this intervention type. A neutral preference (0.5) leaves the score
// unchanged.
func (e *Engine) applyTypePreference(score float64, t types.InterventionType, adjust *types.ThresholdAdjustments) float64 {
	if adjust == nil || adjust.TypePreferences == nil {
		return score
	}
	pref, ok := adjust.TypePreferences[t]
	if !ok {
		return score
	}
	return score * (0.5 + pref)
}

func (e *Engine) finalize(sig Signals, t types.InterventionType, s Score, promoted bool) types.InterventionDecision {
	reasoning := s.Reasoning
	if promoted {
		reasoning = fmt.Sprintf("%s (promoted by active level)", reasoning)
	}

	trigger := ""
	if last, ok := sig.Convo.LastMessage(); ok {
		trigger = excerpt(last.Content, 120)
	}

	d := types.InterventionDecision{
		ShouldRespond: true,
		Type:          t,
		Confidence:    types.Clamp01(s.Value),
		Priority:      derivePriority(s.Value, t),
		Reasoning:     reasoning,
		Trigger:       trigger,
	}
	logging.Decision("intervene: type=%s confidence=%.2f priority=%s", d.Type, d.Confidence, d.Priority)
	return d
}

// derivePriority maps score and type to a priority tier.
func derivePriority(score float64, t types.InterventionType) types.Priority {
	switch {
	case score >= 0.9:
		return types.PriorityUrgent
	case score >= 0.7 || t == types.InterventionFactCheck || t == types.InterventionTopicRedirect:
		return types.PriorityHigh
	case score >= 0.5:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

// BuildRecord turns an affirmative decision into the InterventionRecord
// appended to the session's history.
func BuildRecord(d types.InterventionDecision, now time.Time) types.InterventionRecord {
	return types.InterventionRecord{
		ID:        uuid.NewString(),
		Timestamp: now,
		Type:      d.Type,
		Trigger:   d.Trigger,
	}
}

// excerpt truncates s to at most max bytes without splitting a rune.
func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
