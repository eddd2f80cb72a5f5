package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"meetsense/internal/types"
)

const sampleTranscript = `
sessions:
  - id: standup-1
    meeting_type: standup
    topic: project planning
    activity_level: quiet
    participants:
      - id: alice
        name: Alice
        role: organizer
        preferences:
          frequency: moderate
    messages:
      - sender_id: alice
        content: "sprint status looks good"
        at: 2026-08-30T10:00:00Z
      - sender_id: alice
        content: "my cat learned a trick"
        at: 2026-08-30T10:01:00Z
        sentiment: 0.4
        topics: [pets]
    feedback:
      reaction: positive
      outcome: improved
`

func TestTranscriptDecoding(t *testing.T) {
	var tr transcript
	require.NoError(t, yaml.Unmarshal([]byte(sampleTranscript), &tr))
	require.Len(t, tr.Sessions, 1)

	s := tr.Sessions[0]
	assert.Equal(t, "standup-1", s.ID)
	assert.Equal(t, "quiet", s.ActivityLevel)
	require.Len(t, s.Participants, 1)
	assert.Equal(t, types.FrequencyModerate, s.Participants[0].Preferences.Frequency)

	require.Len(t, s.Messages, 2)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 1, 0, 0, time.UTC), s.Messages[1].At)
	assert.Equal(t, []string{"pets"}, s.Messages[1].Topics)

	require.NotNil(t, s.Feedback)
	assert.Equal(t, types.ReactionPositive, s.Feedback.Reaction)
	assert.Equal(t, types.OutcomeImproved, s.Feedback.Outcome)
}

func TestReplayClockNeverRewinds(t *testing.T) {
	c := &replayClock{}
	t1 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	c.advance(t2)
	assert.Equal(t, t2, c.Now())

	c.advance(t1) // out-of-order timestamps must not move time backwards
	assert.Equal(t, t2, c.Now())
}
