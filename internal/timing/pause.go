package timing

import (
	"meetsense/internal/types"
)

// DetectPauses classifies the silences between adjacent messages. Gaps
// shorter than the short-pause threshold are not recorded at all.
//
// Extended silence is checked first: it carries the highest confidence and
// must not be shadowed by the lower rungs of the ladder.
func (a *Analyzer) DetectPauses(msgs []types.ProcessedMessage) []types.ConversationPause {
	var pauses []types.ConversationPause
	for i := 1; i < len(msgs); i++ {
		gap := msgs[i].Timestamp.Sub(msgs[i-1].Timestamp)
		if gap < a.cfg.ShortPause {
			continue
		}

		pause := types.ConversationPause{
			StartedAt: msgs[i-1].Timestamp,
			Duration:  gap,
		}

		switch {
		case gap >= a.cfg.ExtendedSilence:
			pause.Type = types.PauseExtendedSilence
			pause.Confidence = 0.9
		case gap >= a.cfg.MediumPause:
			// A long gap bracketed by different topics is a transition,
			// otherwise someone was thinking.
			if topicChanged(msgs[i-1], msgs[i]) {
				pause.Type = types.PauseTopicTransition
				pause.Confidence = 0.8
			} else {
				pause.Type = types.PauseThinking
				pause.Confidence = 0.7
			}
		default:
			pause.Type = types.PauseNaturalBreak
			pause.Confidence = 0.6
		}
		pauses = append(pauses, pause)
	}
	return pauses
}

// topicChanged compares the primary topic annotations of two messages.
func topicChanged(before, after types.ProcessedMessage) bool {
	if len(before.Topics) == 0 || len(after.Topics) == 0 {
		return false
	}
	return before.Topics[0] != after.Topics[0]
}
