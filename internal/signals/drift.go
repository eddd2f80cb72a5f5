package signals

import (
	"context"

	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// DetectDrift walks the recent window for consecutive off-topic messages
// and, when the drift window is reached, asks the external analyzer for a
// severity judgment. Analyzer failure degrades to "not drifting".
func (a *Aggregator) DetectDrift(ctx context.Context, convo *types.ConversationContext) types.TopicDriftResult {
	timer := logging.StartTimer(logging.CategorySignals, "Aggregator.DetectDrift")
	defer timer.Stop()

	recent := convo.RecentMessages(a.cfg.RecentWindow)
	result := types.TopicDriftResult{
		OriginalTopic: convo.CurrentTopic,
		Urgency:       types.DriftLow,
	}
	if len(recent) == 0 || convo.CurrentTopic == "" {
		return result
	}

	result.MessagesOffTopic = a.countOffTopic(ctx, recent, convo.CurrentTopic)
	if result.MessagesOffTopic >= a.cfg.DriftWindow {
		result.IsDrifting = true

		// Split at the drift point: everything before the off-topic run is
		// "earlier", the run itself is "recent".
		split := len(recent) - result.MessagesOffTopic
		if split < 0 {
			split = 0
		}
		assessment, err := a.analyzer.AnalyzeDrift(ctx, joinContents(recent[:split]), joinContents(recent[split:]))
		if err == nil {
			result.Severity = assessment.Severity
			result.Suggestion = assessment.Suggestion
		}
	}

	result.Urgency = a.driftUrgency(result.MessagesOffTopic, result.Severity)
	logging.SignalsDebug("drift: offTopic=%d severity=%.2f urgency=%s",
		result.MessagesOffTopic, result.Severity, result.Urgency)
	return result
}

// driftUrgency applies the configured urgency ladder.
func (a *Aggregator) driftUrgency(offTopic int, severity float64) types.DriftUrgency {
	switch {
	case offTopic >= a.cfg.DriftWindow+1 || severity > a.cfg.HighSeverity:
		return types.DriftHigh
	case offTopic >= a.cfg.DriftWindow || severity > a.cfg.MediumSeverity:
		return types.DriftMedium
	default:
		return types.DriftLow
	}
}
