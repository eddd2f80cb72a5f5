package signals

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetsense/internal/config"
	"meetsense/internal/timing"
	"meetsense/internal/types"
)

var testNow = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) types.Clock {
	return func() time.Time { return at }
}

// scriptedAnalyzer classifies by a single marker word and scores relevance
// by whether the text carries it.
type scriptedAnalyzer struct {
	marker      string // texts containing this classify as offTopic
	onTopic     string
	offTopic    string
	driftResult types.DriftAssessment
}

func (s *scriptedAnalyzer) ClassifyTopic(_ context.Context, text string) (string, error) {
	if strings.Contains(text, s.marker) {
		return s.offTopic, nil
	}
	return s.onTopic, nil
}

func (s *scriptedAnalyzer) ScoreRelevance(_ context.Context, text, topic string) (float64, error) {
	if strings.Contains(text, s.marker) {
		return 0.1, nil
	}
	return 0.9, nil
}

func (s *scriptedAnalyzer) AnalyzeDrift(_ context.Context, _, _ string) (types.DriftAssessment, error) {
	return s.driftResult, nil
}

func newTestAggregator(analyzer types.Analyzer) *Aggregator {
	cfg := config.DefaultSignalsConfig()
	momentum := timing.NewAnalyzer(config.DefaultTimingConfig(), fixedClock(testNow))
	return NewAggregator(cfg, analyzer, momentum, fixedClock(testNow))
}

func workChat(sender, content string, minutesAgo int) types.ProcessedMessage {
	return types.ProcessedMessage{
		SenderID:  sender,
		Content:   content,
		Timestamp: testNow.Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

func TestAnalyzeFlowEmptyConversation(t *testing.T) {
	a := newTestAggregator(&scriptedAnalyzer{onTopic: "work", offTopic: "pets", marker: "cat"})
	flow := a.AnalyzeFlow(context.Background(), &types.ConversationContext{CurrentTopic: "work"})

	assert.Equal(t, "work", flow.CurrentTopic)
	assert.Equal(t, 1.0, flow.TopicStability)
	assert.Zero(t, flow.ConsecutiveOffTopic)
}

func TestAnalyzeFlowStabilityAndOffTopic(t *testing.T) {
	a := newTestAggregator(&scriptedAnalyzer{onTopic: "work", offTopic: "pets", marker: "cat"})
	convo := &types.ConversationContext{
		CurrentTopic: "work",
		Participants: []types.Participant{{ID: "u1"}, {ID: "u2"}},
		MessageHistory: []types.ProcessedMessage{
			workChat("u1", "sprint status", 5),
			workChat("u2", "deploy pipeline", 4),
			workChat("u1", "release notes", 3),
			workChat("u2", "migration plan", 2),
			workChat("u1", "my cat is great", 1),
			workChat("u2", "cat photos anyone", 0),
		},
	}

	flow := a.AnalyzeFlow(context.Background(), convo)

	// Three windows of two; only the newest classifies as "pets".
	assert.Equal(t, "pets", flow.CurrentTopic)
	assert.InDelta(t, 1.0/3.0, flow.TopicStability, 1e-9)
	// The trailing run of marker messages against the session topic anchor.
	assert.Equal(t, 2, flow.ConsecutiveOffTopic)
	assert.Equal(t, 2, flow.Engagement.UniqueParticipants)
	assert.InDelta(t, 1.0, flow.Engagement.ParticipationBalance, 1e-9)
}

func TestAnalyzeFlowSingleSpeakerBalance(t *testing.T) {
	a := newTestAggregator(&scriptedAnalyzer{onTopic: "work", offTopic: "pets", marker: "cat"})
	convo := &types.ConversationContext{
		Participants: []types.Participant{{ID: "u1"}, {ID: "u2"}},
		MessageHistory: []types.ProcessedMessage{
			workChat("u1", "one", 2),
			workChat("u1", "two", 1),
			workChat("u1", "three", 0),
		},
	}

	flow := a.AnalyzeFlow(context.Background(), convo)
	assert.Zero(t, flow.Engagement.ParticipationBalance)
	assert.Equal(t, 1, flow.Engagement.UniqueParticipants)
}

func TestDetectDrift(t *testing.T) {
	t.Run("no current topic means no drift", func(t *testing.T) {
		a := newTestAggregator(&scriptedAnalyzer{onTopic: "work", offTopic: "pets", marker: "cat"})
		convo := &types.ConversationContext{
			MessageHistory: []types.ProcessedMessage{workChat("u1", "cat", 0)},
		}
		res := a.DetectDrift(context.Background(), convo)
		assert.False(t, res.IsDrifting)
		assert.Equal(t, types.DriftLow, res.Urgency)
	})

	t.Run("drift window reached", func(t *testing.T) {
		a := newTestAggregator(&scriptedAnalyzer{
			onTopic: "work", offTopic: "pets", marker: "cat",
			driftResult: types.DriftAssessment{IsDrifting: true, Severity: 0.6, Suggestion: "return to work"},
		})
		convo := &types.ConversationContext{
			CurrentTopic: "work",
			MessageHistory: []types.ProcessedMessage{
				workChat("u1", "sprint status", 2),
				workChat("u2", "my cat", 1),
				workChat("u1", "cat pics", 0),
			},
		}

		res := a.DetectDrift(context.Background(), convo)
		require.True(t, res.IsDrifting)
		assert.Equal(t, 2, res.MessagesOffTopic)
		assert.InDelta(t, 0.6, res.Severity, 1e-9)
		assert.Equal(t, "return to work", res.Suggestion)
		assert.Equal(t, types.DriftMedium, res.Urgency)
	})

	t.Run("urgency escalates past the window", func(t *testing.T) {
		a := newTestAggregator(&scriptedAnalyzer{
			onTopic: "work", offTopic: "pets", marker: "cat",
			driftResult: types.DriftAssessment{IsDrifting: true, Severity: 0.6},
		})
		convo := &types.ConversationContext{
			CurrentTopic: "work",
			MessageHistory: []types.ProcessedMessage{
				workChat("u1", "sprint status", 3),
				workChat("u2", "my cat", 2),
				workChat("u1", "cat pics", 1),
				workChat("u2", "more cat pics", 0),
			},
		}

		res := a.DetectDrift(context.Background(), convo)
		assert.Equal(t, 3, res.MessagesOffTopic)
		assert.Equal(t, types.DriftHigh, res.Urgency)
	})

	t.Run("high severity alone escalates", func(t *testing.T) {
		a := newTestAggregator(&scriptedAnalyzer{
			onTopic: "work", offTopic: "pets", marker: "cat",
			driftResult: types.DriftAssessment{IsDrifting: true, Severity: 0.9},
		})
		convo := &types.ConversationContext{
			CurrentTopic: "work",
			MessageHistory: []types.ProcessedMessage{
				workChat("u1", "sprint status", 2),
				workChat("u2", "my cat", 1),
				workChat("u1", "cat pics", 0),
			},
		}

		res := a.DetectDrift(context.Background(), convo)
		assert.Equal(t, 2, res.MessagesOffTopic)
		assert.Equal(t, types.DriftHigh, res.Urgency)
	})
}
