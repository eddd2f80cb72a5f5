package control

import (
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

// fixedRand always returns the same value, pinning the probability gates.
type fixedRand struct{ v float64 }

func (r fixedRand) Float64() float64 { return r.v }

func newTestController(r types.RandSource) *Controller {
	return NewController(config.DefaultControlConfig(), store.NewMemoryActivityStore(), r,
		func() time.Time { return testNow })
}

func TestActivityLevelDefaultsToNormal(t *testing.T) {
	c := newTestController(fixedRand{0.5})
	assert.Equal(t, types.ActivityNormal, c.ActivityLevel("nobody"))
}

func TestSetActivityLevel(t *testing.T) {
	c := newTestController(fixedRand{0.5})

	require.NoError(t, c.SetActivityLevel("u1", types.ActivitySilent, "going into a board meeting"))
	assert.Equal(t, types.ActivitySilent, c.ActivityLevel("u1"))

	history := c.History("u1")
	require.Len(t, history, 1)
	assert.Equal(t, types.ActivityNormal, history[0].From)
	assert.Equal(t, types.ActivitySilent, history[0].To)
	assert.Equal(t, "going into a board meeting", history[0].Reason)
	assert.Equal(t, testNow, history[0].ChangedAt)
}

func TestSetActivityLevelRejectsInvalid(t *testing.T) {
	c := newTestController(fixedRand{0.5})
	assert.Error(t, c.SetActivityLevel("u1", types.ActivityLevel("shouty"), ""))
	assert.Empty(t, c.History("u1"))
}

func TestAuditLogIsBounded(t *testing.T) {
	c := newTestController(fixedRand{0.5})

	levels := []types.ActivityLevel{types.ActivityQuiet, types.ActivityActive}
	for i := 0; i < 60; i++ {
		require.NoError(t, c.SetActivityLevel("u1", levels[i%2], fmt.Sprintf("change %d", i)))
	}

	history := c.History("u1")
	assert.Len(t, history, 50)
	// Oldest entries were trimmed; the tail survives.
	assert.Equal(t, "change 59", history[len(history)-1].Reason)
	assert.Equal(t, "change 10", history[0].Reason)
}

func TestShouldAllowIntervention(t *testing.T) {
	t.Run("silent is absolute", func(t *testing.T) {
		// Even a rand of 0 (always below the gate) must not matter.
		c := newTestController(fixedRand{0.0})
		require.NoError(t, c.SetActivityLevel("u1", types.ActivitySilent, ""))

		assert.False(t, c.ShouldAllowIntervention("u1", true))
		assert.False(t, c.ShouldAllowIntervention("u1", false))
	})

	t.Run("normal passes the base decision through", func(t *testing.T) {
		c := newTestController(fixedRand{0.0})
		assert.True(t, c.ShouldAllowIntervention("u1", true))
		assert.False(t, c.ShouldAllowIntervention("u1", false))
	})

	t.Run("quiet gates positives", func(t *testing.T) {
		c := newTestController(fixedRand{0.1}) // below 0.3: gate passes
		require.NoError(t, c.SetActivityLevel("u1", types.ActivityQuiet, ""))
		assert.True(t, c.ShouldAllowIntervention("u1", true))
		assert.False(t, c.ShouldAllowIntervention("u1", false))

		c = newTestController(fixedRand{0.9}) // above 0.3: gate suppresses
		require.NoError(t, c.SetActivityLevel("u1", types.ActivityQuiet, ""))
		assert.False(t, c.ShouldAllowIntervention("u1", true))
	})

	t.Run("active promotes negatives", func(t *testing.T) {
		c := newTestController(fixedRand{0.1})
		require.NoError(t, c.SetActivityLevel("u1", types.ActivityActive, ""))
		assert.True(t, c.ShouldAllowIntervention("u1", true))
		assert.True(t, c.ShouldAllowIntervention("u1", false))

		c = newTestController(fixedRand{0.9})
		require.NoError(t, c.SetActivityLevel("u1", types.ActivityActive, ""))
		assert.True(t, c.ShouldAllowIntervention("u1", true))
		assert.False(t, c.ShouldAllowIntervention("u1", false))
	})
}

func TestAdjustInterventionFrequency(t *testing.T) {
	cases := []struct {
		level types.ActivityLevel
		base  types.InterventionFrequency
		want  types.InterventionFrequency
	}{
		{types.ActivityNormal, types.FrequencyModerate, types.FrequencyModerate},
		{types.ActivityQuiet, types.FrequencyModerate, types.FrequencyMinimal},
		{types.ActivityQuiet, types.FrequencyMinimal, types.FrequencyMinimal}, // saturates
		{types.ActivityActive, types.FrequencyModerate, types.FrequencyActive},
		{types.ActivityActive, types.FrequencyVeryActive, types.FrequencyVeryActive}, // saturates
		{types.ActivitySilent, types.FrequencyActive, types.FrequencyActive},         // silent does not shift
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%s", tc.level, tc.base), func(t *testing.T) {
			c := newTestController(fixedRand{0.5})
			require.NoError(t, c.SetActivityLevel("u1", tc.level, ""))
			assert.Equal(t, tc.want, c.AdjustInterventionFrequency("u1", tc.base))
		})
	}
}
