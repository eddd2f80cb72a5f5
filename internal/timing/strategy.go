package timing

import (
	"fmt"
	"time"

	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// Strategy decides whether now is a good moment to intervene and how
// softly. Rules are ordered; the first match wins.
func (a *Analyzer) Strategy(convo *types.ConversationContext, flow types.FlowAnalysis) types.TimingStrategy {
	now := a.clock()
	momentum := flow.Momentum
	pauses := a.DetectPauses(convo.MessageHistory)

	var silence time.Duration
	if last, ok := convo.LastMessage(); ok {
		silence = now.Sub(last.Timestamp)
	}

	strat := a.decide(momentum, flow, pauses, silence, now)
	logging.TimingDebug("strategy: good=%v confidence=%.2f delay=%s reason=%q",
		strat.GoodTime, strat.Confidence, strat.SuggestedDelay, strat.Reason)
	return strat
}

func (a *Analyzer) decide(momentum types.ConversationMomentum, flow types.FlowAnalysis, pauses []types.ConversationPause, silence time.Duration, now time.Time) types.TimingStrategy {
	// (1) Busy conversation: wait out a medium pause.
	if momentum.Velocity > a.cfg.HighVelocity || momentum.Intensity > a.cfg.HighIntensity {
		return types.TimingStrategy{
			GoodTime:         false,
			Confidence:       0.8,
			SuggestedDelay:   a.cfg.MediumPause,
			Interruptibility: 0.2,
			Reason:           fmt.Sprintf("conversation too active (velocity %.1f/min, intensity %.2f)", momentum.Velocity, momentum.Intensity),
		}
	}

	// (2) A recent natural break is an opening.
	if p, ok := recentPauseOfType(pauses, types.PauseNaturalBreak, now, 2*time.Minute); ok {
		return types.TimingStrategy{
			GoodTime:         true,
			Confidence:       p.Confidence,
			Interruptibility: 0.7,
			Reason:           "natural break in conversation",
		}
	}

	// (3) Topic instability is itself an opportunity.
	if flow.TopicStability < a.cfg.StabilityOpportunity {
		return types.TimingStrategy{
			GoodTime:         true,
			Confidence:       0.6,
			Interruptibility: 0.6,
			Reason:           fmt.Sprintf("topic unstable (stability %.2f)", flow.TopicStability),
		}
	}

	// (4) Sustained silence: confidence grows with its length.
	if silence > a.cfg.MediumPause {
		conf := types.Clamp01(float64(silence) / float64(a.cfg.ExtendedSilence))
		if conf < 0.5 {
			conf = 0.5
		}
		return types.TimingStrategy{
			GoodTime:         true,
			Confidence:       conf,
			Interruptibility: 0.8,
			Reason:           fmt.Sprintf("silence for %s", silence.Round(time.Second)),
		}
	}

	// (5) A lull: low velocity and low intensity.
	if momentum.Velocity < a.cfg.LowVelocity && momentum.Intensity < a.cfg.LowIntensity {
		return types.TimingStrategy{
			GoodTime:         true,
			Confidence:       0.6,
			Interruptibility: 0.5,
			Reason:           "conversation in a lull",
		}
	}

	// (6) Default: good only once the short-pause threshold has elapsed.
	if silence >= a.cfg.ShortPause {
		return types.TimingStrategy{
			GoodTime:         true,
			Confidence:       0.5,
			Interruptibility: 0.4,
			Reason:           "short pause elapsed since last message",
		}
	}
	return types.TimingStrategy{
		GoodTime:         false,
		Confidence:       0.5,
		SuggestedDelay:   a.cfg.ShortPause - silence,
		Interruptibility: 0.3,
		Reason:           "waiting for a short pause",
	}
}

// recentPauseOfType returns the newest pause of the given type whose end
// falls within the recency window before now.
func recentPauseOfType(pauses []types.ConversationPause, t types.PauseType, now time.Time, within time.Duration) (types.ConversationPause, bool) {
	for i := len(pauses) - 1; i >= 0; i-- {
		p := pauses[i]
		if p.Type != t {
			continue
		}
		if now.Sub(p.StartedAt.Add(p.Duration)) <= within {
			return p, true
		}
		break
	}
	return types.ConversationPause{}, false
}
