package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetsense/internal/config"
	"meetsense/internal/types"
)

func say(content string, minutesAgo int) types.ProcessedMessage {
	return types.ProcessedMessage{
		SenderID:  "alice",
		Content:   content,
		Timestamp: testNow.Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

func sigFor(msgs ...types.ProcessedMessage) Signals {
	convo := &types.ConversationContext{
		SessionID:      "s1",
		StartTime:      testNow.Add(-10 * time.Minute),
		Participants:   []types.Participant{{ID: "alice", Role: "organizer"}},
		MessageHistory: msgs,
	}
	return Signals{
		Convo: convo,
		Flow: types.FlowAnalysis{
			TopicStability: 1.0,
			Engagement:     types.EngagementMetrics{ParticipationBalance: 0.8},
			Momentum:       types.ConversationMomentum{Direction: types.MomentumStable},
		},
		Now: testNow,
	}
}

func TestInformationProvideEvaluator(t *testing.T) {
	e := &informationProvideEvaluator{cfg: config.DefaultDecisionConfig()}

	t.Run("questions and uncertainty add up", func(t *testing.T) {
		sig := sigFor(
			say("how does the rollout work?", 2), // keyword 0.3 + question 0.4
			say("not sure about the numbers", 1), // uncertainty 0.2
			say("fine otherwise", 0),
		)
		s := e.Evaluate(sig)
		assert.InDelta(t, 0.9, s.Value, 1e-9)
	})

	t.Run("interest boost", func(t *testing.T) {
		sig := sigFor(
			say("how does the rollout work?", 1),
			say("fine otherwise", 0),
		)
		sig.Convo.Participants[0].Preferences.InformationInterests = []string{"rollouts"}
		s := e.Evaluate(sig)
		// (0.3 + 0.4) * 1.2 = 0.84
		assert.InDelta(t, 0.84, s.Value, 1e-9)
	})

	t.Run("recent fire damps below threshold", func(t *testing.T) {
		sig := sigFor(
			say("how does the rollout work?", 1),
			say("fine otherwise", 0),
		)
		sig.Convo.InterventionHistory = []types.InterventionRecord{
			{Type: types.InterventionInformationProvide, Timestamp: testNow.Add(-3 * time.Minute)},
		}
		// 0.7 * 0.6 = 0.42 < 0.7 threshold.
		assert.Zero(t, e.Evaluate(sig).Value)
	})

	t.Run("no signals no score", func(t *testing.T) {
		assert.Zero(t, e.Evaluate(sigFor(say("all good here", 0))).Value)
	})
}

func TestFactCheckEvaluator(t *testing.T) {
	e := &factCheckEvaluator{cfg: config.DefaultDecisionConfig()}

	t.Run("confident claim plus hedge", func(t *testing.T) {
		sig := sigFor(
			say("studies show users love popups", 1), // claim 0.4
			say("i think it was around 40 percent", 0), // hedge 0.3
		)
		s := e.Evaluate(sig)
		assert.InDelta(t, 0.7, s.Value, 1e-9)
		assert.Contains(t, s.Reasoning, "claim indicators")
	})

	t.Run("contradiction markers match whole words only", func(t *testing.T) {
		// "butter" must not match "but".
		sig := sigFor(say("pass the butter please", 0))
		assert.Zero(t, e.Evaluate(sig).Value)

		sig = sigFor(
			say("the data shows we doubled signups", 1), // claim 0.4
			say("actually, that was last quarter", 0),   // contradiction 0.2
		)
		assert.InDelta(t, 0.6, e.Evaluate(sig).Value, 1e-9)
	})

	t.Run("recent fire damps hard", func(t *testing.T) {
		sig := sigFor(
			say("studies show users love popups", 1),
			say("according to the report it tripled", 0),
		)
		sig.Convo.InterventionHistory = []types.InterventionRecord{
			{Type: types.InterventionFactCheck, Timestamp: testNow.Add(-10 * time.Minute)},
		}
		// 0.8 * 0.4 = 0.32 < 0.5 threshold.
		assert.Zero(t, e.Evaluate(sig).Value)
	})
}

func TestClarificationEvaluator(t *testing.T) {
	e := &clarificationEvaluator{cfg: config.DefaultDecisionConfig()}

	t.Run("confusion plus imbalance", func(t *testing.T) {
		sig := sigFor(
			say("i'm confused about the new flow", 1), // 0.5
			say("same, you lost me", 0),               // 0.5
		)
		sig.Flow.Engagement.ParticipationBalance = 0.2 // +0.3
		s := e.Evaluate(sig)
		assert.InDelta(t, 1.0, s.Value, 1e-9)
	})

	t.Run("stalling momentum adds a little", func(t *testing.T) {
		sig := sigFor(say("what do you mean by that", 0)) // 0.5
		sig.Flow.Momentum = types.ConversationMomentum{
			Direction: types.MomentumDecreasing,
			Strength:  0.5,
		}
		assert.InDelta(t, 0.7, e.Evaluate(sig).Value, 1e-9)
	})

	t.Run("below threshold rejected", func(t *testing.T) {
		sig := sigFor(say("all clear on my side", 0))
		sig.Flow.Engagement.ParticipationBalance = 0.2 // only +0.3 < 0.4
		assert.Zero(t, e.Evaluate(sig).Value)
	})
}

func TestSummaryOfferEvaluator(t *testing.T) {
	e := &summaryOfferEvaluator{cfg: config.DefaultDecisionConfig()}

	longMeeting := func(msgs int, topics []string) Signals {
		var history []types.ProcessedMessage
		for i := 0; i < msgs; i++ {
			m := say("still talking", 0)
			m.Timestamp = testNow.Add(-time.Duration(msgs-i) * time.Minute)
			if len(topics) > 0 {
				m.Topics = []string{topics[i%len(topics)]}
			}
			history = append(history, m)
		}
		sig := sigFor(history...)
		sig.Convo.StartTime = history[0].Timestamp
		return sig
	}

	t.Run("long meandering meeting", func(t *testing.T) {
		// 25 messages over 25 minutes, alternating topics: 0.3 (count) +
		// 0.2 (duration) + 0.3 (churn) = 0.8.
		sig := longMeeting(25, []string{"budget review", "hiring"})
		s := e.Evaluate(sig)
		assert.InDelta(t, 0.8, s.Value, 1e-9)
		assert.Contains(t, s.Reasoning, "topic changes")
	})

	t.Run("short focused meeting scores nothing", func(t *testing.T) {
		sig := longMeeting(5, []string{"budget review"})
		assert.Zero(t, e.Evaluate(sig).Value)
	})

	t.Run("recent summary damps", func(t *testing.T) {
		sig := longMeeting(25, []string{"budget review", "hiring"})
		sig.Convo.InterventionHistory = []types.InterventionRecord{
			{Type: types.InterventionSummaryOffer, Timestamp: testNow.Add(-10 * time.Minute)},
		}
		// 0.8 * 0.3 = 0.24 < 0.5 threshold.
		assert.Zero(t, e.Evaluate(sig).Value)
	})
}

func TestRedirectNeedsThreeMessages(t *testing.T) {
	e := &topicRedirectEvaluator{cfg: config.DefaultDecisionConfig()}
	sig := sigFor(say("one", 1), say("two", 0))
	sig.Flow.TopicStability = 0.0
	assert.Zero(t, e.Evaluate(sig).Value)

	sig = sigFor(say("one", 2), say("two", 1), say("three", 0))
	sig.Flow.TopicStability = 0.0
	s := e.Evaluate(sig)
	require.Positive(t, s.Value)
	assert.InDelta(t, 1.0, s.Value, 1e-9) // 1.0 * 1.2 clamped
}

func TestRedirectDecreasingMomentumBonus(t *testing.T) {
	e := &topicRedirectEvaluator{cfg: config.DefaultDecisionConfig()}
	sig := sigFor(say("one", 2), say("two", 1), say("three", 0))
	sig.Flow.TopicStability = 0.6
	sig.Flow.Momentum.Direction = types.MomentumDecreasing

	// (0.4 + 0.3) * 1.2 = 0.84
	assert.InDelta(t, 0.84, e.Evaluate(sig).Value, 1e-9)
}
