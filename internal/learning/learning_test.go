package learning

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetsense/internal/config"
	"meetsense/internal/store"
	"meetsense/internal/types"
)

var testNow = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func newTestLoop() (*Loop, *store.MemoryFeedbackStore) {
	fs := store.NewMemoryFeedbackStore()
	return NewLoop(config.DefaultLearningConfig(), fs, func() time.Time { return testNow }), fs
}

func TestComputeEffectiveness(t *testing.T) {
	cases := []struct {
		reaction types.UserReaction
		outcome  types.ConversationOutcome
		overall  float64
	}{
		{types.ReactionPositive, types.OutcomeImproved, 1.0},      // 0.5+0.3+0.3 clamped
		{types.ReactionPositive, types.OutcomeNoChange, 0.8},
		{types.ReactionAcknowledged, types.OutcomeNoChange, 0.6},
		{types.ReactionIgnored, types.OutcomeNoChange, 0.4},
		{types.ReactionDismissed, types.OutcomeNoChange, 0.3},
		{types.ReactionNegative, types.OutcomeDisrupted, 0.0},     // 0.5-0.3-0.3 clamped
		{types.ReactionAcknowledged, types.OutcomeProvidedValue, 0.8},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%s", tc.reaction, tc.outcome), func(t *testing.T) {
			s := ComputeEffectiveness(tc.reaction, tc.outcome)
			assert.InDelta(t, tc.overall, s.Overall, 1e-9)
		})
	}

	t.Run("sub-scores", func(t *testing.T) {
		s := ComputeEffectiveness(types.ReactionPositive, types.OutcomeImproved)
		assert.InDelta(t, 0.7, s.Timing, 1e-9) // 0.5 + 0.2
		assert.InDelta(t, 0.8, s.Tone, 1e-9)   // 0.5 + 0.3
		assert.InDelta(t, 0.5, s.Relevance, 1e-9)

		s = ComputeEffectiveness(types.ReactionDismissed, types.OutcomeProvidedValue)
		assert.InDelta(t, 0.5, s.Relevance, 1e-9) // -0.3 + 0.3

		s = ComputeEffectiveness(types.ReactionNegative, types.OutcomeDisrupted)
		assert.InDelta(t, 0.2, s.Timing, 1e-9)
	})

	t.Run("every score stays in unit range", func(t *testing.T) {
		reactions := []types.UserReaction{
			types.ReactionPositive, types.ReactionAcknowledged, types.ReactionIgnored,
			types.ReactionDismissed, types.ReactionNegative,
		}
		outcomes := []types.ConversationOutcome{
			types.OutcomeImproved, types.OutcomeProvidedValue,
			types.OutcomeNoChange, types.OutcomeDisrupted,
		}
		for _, r := range reactions {
			for _, o := range outcomes {
				s := ComputeEffectiveness(r, o)
				for name, v := range map[string]float64{
					"overall": s.Overall, "timing": s.Timing,
					"relevance": s.Relevance, "tone": s.Tone,
				} {
					assert.GreaterOrEqual(t, v, 0.0, "%s/%s %s", r, o, name)
					assert.LessOrEqual(t, v, 1.0, "%s/%s %s", r, o, name)
				}
			}
		}
	})
}

func TestRecordOutcome(t *testing.T) {
	loop, fs := newTestLoop()
	ctx := context.Background()

	rec := &types.InterventionRecord{
		ID:      "i1",
		Type:    types.InterventionFactCheck,
		Trigger: "studies show everything",
	}

	fb, err := loop.RecordOutcome(ctx, "alice", rec, types.ReactionPositive, types.OutcomeImproved)
	require.NoError(t, err)

	assert.Equal(t, "alice", fb.UserID)
	assert.Equal(t, "i1", fb.InterventionID)
	assert.Equal(t, testNow, fb.RecordedAt)
	assert.InDelta(t, 1.0, fb.Effectiveness.Overall, 1e-9)

	// The intervention record is mutated exactly once.
	require.NotNil(t, rec.Effectiveness)
	assert.Equal(t, types.ReactionPositive, rec.Reaction)

	_, err = loop.RecordOutcome(ctx, "alice", rec, types.ReactionNegative, types.OutcomeDisrupted)
	assert.Error(t, err, "second feedback for the same intervention must fail")

	stored, err := fs.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRecordOutcomeNilRecord(t *testing.T) {
	loop, _ := newTestLoop()
	_, err := loop.RecordOutcome(context.Background(), "alice", nil, types.ReactionPositive, types.OutcomeImproved)
	assert.Error(t, err)
}

// seed appends n feedback records with the given reaction/outcome for alice.
func seed(t *testing.T, loop *Loop, n int, typ types.InterventionType, reaction types.UserReaction, outcome types.ConversationOutcome) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := &types.InterventionRecord{
			ID:      fmt.Sprintf("%s-%s-%d", typ, reaction, i),
			Type:    typ,
			Trigger: "let us discuss the budget numbers",
		}
		_, err := loop.RecordOutcome(context.Background(), "alice", rec, reaction, outcome)
		require.NoError(t, err)
	}
}

func TestUpdateThresholds(t *testing.T) {
	ctx := context.Background()

	t.Run("no history keeps defaults", func(t *testing.T) {
		loop, _ := newTestLoop()
		adj, err := loop.UpdateThresholds(ctx, "alice")
		require.NoError(t, err)
		assert.InDelta(t, 0.7, adj.InterventionThreshold, 1e-9)
		assert.InDelta(t, 0.6, adj.ConfidenceThreshold, 1e-9)
		assert.Empty(t, adj.TypePreferences)
	})

	t.Run("consistent success loosens the threshold", func(t *testing.T) {
		loop, _ := newTestLoop()
		seed(t, loop, 5, types.InterventionFactCheck, types.ReactionPositive, types.OutcomeProvidedValue)

		adj, err := loop.UpdateThresholds(ctx, "alice")
		require.NoError(t, err)
		assert.InDelta(t, 0.6, adj.InterventionThreshold, 1e-9)
		assert.Less(t, adj.InterventionThreshold, 0.7)
		// Effectiveness 1.0 > 0.7 also loosens confidence.
		assert.InDelta(t, 0.5, adj.ConfidenceThreshold, 1e-9)
	})

	t.Run("consistent failure tightens the threshold", func(t *testing.T) {
		loop, _ := newTestLoop()
		seed(t, loop, 5, types.InterventionFactCheck, types.ReactionNegative, types.OutcomeDisrupted)

		adj, err := loop.UpdateThresholds(ctx, "alice")
		require.NoError(t, err)
		assert.InDelta(t, 0.9, adj.InterventionThreshold, 1e-9)
		assert.InDelta(t, 0.8, adj.ConfidenceThreshold, 1e-9)
	})

	t.Run("type preferences blend success and effectiveness", func(t *testing.T) {
		loop, _ := newTestLoop()
		seed(t, loop, 4, types.InterventionFactCheck, types.ReactionPositive, types.OutcomeImproved)
		seed(t, loop, 4, types.InterventionSummaryOffer, types.ReactionDismissed, types.OutcomeNoChange)

		adj, err := loop.UpdateThresholds(ctx, "alice")
		require.NoError(t, err)

		// Fact check: success 1.0, effectiveness 1.0 -> 0.6 + 0.4 = 1.0, clamped to 0.9.
		assert.InDelta(t, 0.9, adj.TypePreferences[types.InterventionFactCheck], 1e-9)
		// Summary: success 0, effectiveness 0.3 -> 0.12, clamped up to 0.3.
		assert.InDelta(t, 0.3, adj.TypePreferences[types.InterventionSummaryOffer], 1e-9)
	})
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	loop, _ := newTestLoop()

	seed(t, loop, 3, types.InterventionFactCheck, types.ReactionPositive, types.OutcomeImproved)
	seed(t, loop, 1, types.InterventionFactCheck, types.ReactionIgnored, types.OutcomeNoChange)

	m, err := loop.Metrics(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalInterventions)
	assert.InDelta(t, 0.75, m.SuccessRate, 1e-9)
	// (3*1.0 + 0.4) / 4
	assert.InDelta(t, 0.85, m.AverageEffectiveness, 1e-9)
	// (3*1.0 + 0.4) / 4 satisfaction
	assert.InDelta(t, 0.85, m.Satisfaction, 1e-9)
	// Fewer records than two trend windows: trend is zero.
	assert.Zero(t, m.ImprovementTrend)
}

func TestMetricsImprovementTrend(t *testing.T) {
	ctx := context.Background()
	loop, _ := newTestLoop()

	// Ten poor outcomes then ten strong ones.
	seed(t, loop, 10, types.InterventionFactCheck, types.ReactionNegative, types.OutcomeDisrupted)
	seed(t, loop, 10, types.InterventionFactCheck, types.ReactionPositive, types.OutcomeImproved)

	m, err := loop.Metrics(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.ImprovementTrend, 1e-9)
}

func TestIdentifySuccessPatterns(t *testing.T) {
	ctx := context.Background()

	t.Run("needs enough samples", func(t *testing.T) {
		loop, _ := newTestLoop()
		seed(t, loop, 2, types.InterventionFactCheck, types.ReactionPositive, types.OutcomeImproved)

		patterns, err := loop.IdentifySuccessPatterns(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("needs a real success rate", func(t *testing.T) {
		loop, _ := newTestLoop()
		seed(t, loop, 5, types.InterventionFactCheck, types.ReactionNegative, types.OutcomeDisrupted)

		patterns, err := loop.IdentifySuccessPatterns(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("recurring success surfaces with blended confidence", func(t *testing.T) {
		loop, _ := newTestLoop()
		seed(t, loop, 5, types.InterventionFactCheck, types.ReactionPositive, types.OutcomeImproved)

		patterns, err := loop.IdentifySuccessPatterns(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, patterns, 1)

		p := patterns[0]
		assert.Equal(t, types.InterventionFactCheck, p.Type)
		assert.Equal(t, 5, p.SampleCount)
		assert.InDelta(t, 1.0, p.SuccessRate, 1e-9)
		// 0.5*(5/10) + 0.5*1.0
		assert.InDelta(t, 0.75, p.Confidence, 1e-9)
		assert.Equal(t, "fact_check:let us discuss", p.Key)
	})
}

func TestPatternKeyCoarsening(t *testing.T) {
	a := patternKey(types.InterventionFactCheck, "Let's discuss the BUDGET numbers!")
	b := patternKey(types.InterventionFactCheck, "lets discuss the budget again")
	assert.Equal(t, a, b)

	c := patternKey(types.InterventionSummaryOffer, "lets discuss the budget again")
	assert.NotEqual(t, a, c)
}
