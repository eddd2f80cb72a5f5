// Package types provides shared type definitions used across meetsense packages.
// This package exists to break import cycles between signals, decision, and learning.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"time"
)

// =============================================================================
// INTERVENTION TYPES
// =============================================================================

// InterventionType identifies the kind of proactive contribution the
// assistant can make to a conversation.
type InterventionType string

const (
	InterventionTopicRedirect      InterventionType = "topic_redirect"
	InterventionInformationProvide InterventionType = "information_provide"
	InterventionFactCheck          InterventionType = "fact_check"
	InterventionClarification      InterventionType = "clarification_request"
	InterventionSummaryOffer       InterventionType = "summary_offer"
)

// AllInterventionTypes lists every known type in evaluation order.
func AllInterventionTypes() []InterventionType {
	return []InterventionType{
		InterventionTopicRedirect,
		InterventionInformationProvide,
		InterventionFactCheck,
		InterventionClarification,
		InterventionSummaryOffer,
	}
}

// Priority ranks how urgently an intervention should be delivered.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// =============================================================================
// CONVERSATION MODEL
// =============================================================================

// InterventionFrequency is a user's stated preference for how often the
// assistant should speak up, on a fixed ordinal scale.
type InterventionFrequency string

const (
	FrequencyMinimal    InterventionFrequency = "minimal"
	FrequencyModerate   InterventionFrequency = "moderate"
	FrequencyActive     InterventionFrequency = "active"
	FrequencyVeryActive InterventionFrequency = "very_active"
)

// FrequencyScale returns the ordinal scale from least to most frequent.
func FrequencyScale() []InterventionFrequency {
	return []InterventionFrequency{
		FrequencyMinimal,
		FrequencyModerate,
		FrequencyActive,
		FrequencyVeryActive,
	}
}

// UserPreferences captures per-participant tuning of assistant behavior.
type UserPreferences struct {
	Frequency InterventionFrequency `json:"frequency" yaml:"frequency"`

	// PreferredTypes, when non-empty, biases scenario selection.
	PreferredTypes []InterventionType `json:"preferred_types,omitempty" yaml:"preferred_types,omitempty"`

	// InformationInterests are topics the user asked to be briefed on.
	// A non-empty list boosts the information-provide scenario.
	InformationInterests []string `json:"information_interests,omitempty" yaml:"information_interests,omitempty"`
}

// Participant is one member of the meeting.
type Participant struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Role        string          `json:"role,omitempty" yaml:"role,omitempty"` // organizer, presenter, attendee
	Preferences UserPreferences `json:"preferences" yaml:"preferences"`
}

// ProcessedMessage is an immutable chat message plus the annotations the
// external analysis step attached to it. Never mutated after creation.
type ProcessedMessage struct {
	ID        string    `json:"id" yaml:"id"`
	SenderID  string    `json:"sender_id" yaml:"sender_id"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Derived annotations.
	Sentiment float64  `json:"sentiment" yaml:"sentiment"` // -1.0 to 1.0
	Topics    []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	Urgency   float64  `json:"urgency" yaml:"urgency"` // 0.0 to 1.0
}

// InterventionRecord is one intervention actually issued. It is created by
// the decision engine and mutated exactly once by the learning loop when
// feedback arrives.
type InterventionRecord struct {
	ID            string              `json:"id"`
	Timestamp     time.Time           `json:"timestamp"`
	Type          InterventionType    `json:"type"`
	Trigger       string              `json:"trigger"` // excerpt that triggered the intervention
	Reaction      UserReaction        `json:"reaction,omitempty"`
	Effectiveness *EffectivenessScore `json:"effectiveness,omitempty"`
}

// ConversationContext is the full per-session state. Owned exclusively by
// the session for its lifetime; dropped when the session ends.
type ConversationContext struct {
	SessionID    string        `json:"session_id"`
	MeetingType  string        `json:"meeting_type,omitempty"` // standup, planning, review, ...
	Participants []Participant `json:"participants"`
	CurrentTopic string        `json:"current_topic"`
	StartTime    time.Time     `json:"start_time"`

	// Append-only histories. InterventionHistory is monotonically
	// timestamp-increasing.
	MessageHistory      []ProcessedMessage   `json:"message_history"`
	InterventionHistory []InterventionRecord `json:"intervention_history"`
}

// Participant returns the participant with the given id, if present.
func (c *ConversationContext) Participant(id string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// PrimaryParticipant returns the participant whose manual-control state
// governs interventions: the organizer if one exists, otherwise the first
// participant.
func (c *ConversationContext) PrimaryParticipant() (Participant, bool) {
	if len(c.Participants) == 0 {
		return Participant{}, false
	}
	for _, p := range c.Participants {
		if p.Role == "organizer" {
			return p, true
		}
	}
	return c.Participants[0], true
}

// RecentMessages returns up to n messages from the tail of the history.
func (c *ConversationContext) RecentMessages(n int) []ProcessedMessage {
	if n <= 0 || len(c.MessageHistory) == 0 {
		return nil
	}
	if len(c.MessageHistory) <= n {
		return c.MessageHistory
	}
	return c.MessageHistory[len(c.MessageHistory)-n:]
}

// LastMessage returns the newest message, if any.
func (c *ConversationContext) LastMessage() (ProcessedMessage, bool) {
	if len(c.MessageHistory) == 0 {
		return ProcessedMessage{}, false
	}
	return c.MessageHistory[len(c.MessageHistory)-1], true
}

// LastInterventionOfType returns the newest intervention of the given type.
func (c *ConversationContext) LastInterventionOfType(t InterventionType) (InterventionRecord, bool) {
	for i := len(c.InterventionHistory) - 1; i >= 0; i-- {
		if c.InterventionHistory[i].Type == t {
			return c.InterventionHistory[i], true
		}
	}
	return InterventionRecord{}, false
}

// InterventionsSince counts interventions issued at or after the cutoff.
func (c *ConversationContext) InterventionsSince(cutoff time.Time) int {
	n := 0
	for i := len(c.InterventionHistory) - 1; i >= 0; i-- {
		if c.InterventionHistory[i].Timestamp.Before(cutoff) {
			break
		}
		n++
	}
	return n
}

// =============================================================================
// DECISION OUTPUT
// =============================================================================

// InterventionDecision is the transient result of one evaluation. Produced
// fresh every time; consumed by the timing analyzer and logging, never stored.
type InterventionDecision struct {
	ShouldRespond bool             `json:"should_respond"`
	Type          InterventionType `json:"type,omitempty"`
	Confidence    float64          `json:"confidence"` // 0.0 to 1.0
	Priority      Priority         `json:"priority"`
	Reasoning     string           `json:"reasoning"`
	Trigger       string           `json:"trigger,omitempty"`
}

// NoIntervention is the canonical declined decision with an explanatory
// reason. Policy refusals and degraded analysis are decision outcomes,
// not errors.
func NoIntervention(reason string) InterventionDecision {
	return InterventionDecision{
		ShouldRespond: false,
		Confidence:    0,
		Priority:      PriorityLow,
		Reasoning:     reason,
	}
}

// =============================================================================
// SIGNALS
// =============================================================================

// MomentumDirection describes the trend of conversational pace.
type MomentumDirection string

const (
	MomentumIncreasing MomentumDirection = "increasing"
	MomentumStable     MomentumDirection = "stable"
	MomentumDecreasing MomentumDirection = "decreasing"
)

// ConversationMomentum captures pace and trend of the message stream.
// Recomputed from the tail of the history on each evaluation.
type ConversationMomentum struct {
	Velocity     float64           `json:"velocity"`     // messages per minute
	Acceleration float64           `json:"acceleration"` // second-half velocity minus first-half
	Direction    MomentumDirection `json:"direction"`
	Strength     float64           `json:"strength"`  // normalized |acceleration|, 0.0-1.0
	Intensity    float64           `json:"intensity"` // blend of message length and velocity, 0.0-1.0
}

// EngagementMetrics describes how balanced and positive participation is.
type EngagementMetrics struct {
	ParticipationBalance float64 `json:"participation_balance"` // 0.0-1.0, 1.0 = perfectly even
	UniqueParticipants   int     `json:"unique_participants"`
	AverageSentiment     float64 `json:"average_sentiment"`
	Score                float64 `json:"score"` // blended engagement, 0.0-1.0
}

// FlowAnalysis is the signal aggregator's summary of the current state of
// the conversation.
type FlowAnalysis struct {
	CurrentTopic        string               `json:"current_topic"`
	TopicStability      float64              `json:"topic_stability"` // 0.0-1.0
	Engagement          EngagementMetrics    `json:"engagement"`
	Momentum            ConversationMomentum `json:"momentum"`
	ConsecutiveOffTopic int                  `json:"consecutive_off_topic"`
}

// DriftUrgency ranks how pressing a topic drift is.
type DriftUrgency string

const (
	DriftLow    DriftUrgency = "low"
	DriftMedium DriftUrgency = "medium"
	DriftHigh   DriftUrgency = "high"
)

// TopicDriftResult is the signal aggregator's on-demand drift assessment.
type TopicDriftResult struct {
	IsDrifting       bool         `json:"is_drifting"`
	Severity         float64      `json:"severity"` // 0.0-1.0
	Urgency          DriftUrgency `json:"urgency"`
	MessagesOffTopic int          `json:"messages_off_topic"`
	OriginalTopic    string       `json:"original_topic"`
	Suggestion       string       `json:"suggestion,omitempty"`
}

// DriftAssessment is the raw output of the external drift analysis call.
type DriftAssessment struct {
	IsDrifting bool    `json:"is_drifting"`
	Severity   float64 `json:"severity"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// =============================================================================
// TIMING
// =============================================================================

// PauseType classifies a silence in the message stream.
type PauseType string

const (
	PauseNaturalBreak    PauseType = "natural_break"
	PauseThinking        PauseType = "thinking_pause"
	PauseTopicTransition PauseType = "topic_transition"
	PauseExtendedSilence PauseType = "extended_silence"
)

// ConversationPause is one detected silence between adjacent messages.
type ConversationPause struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Type       PauseType     `json:"type"`
	Confidence float64       `json:"confidence"`
}

// TimingStrategy says when and how softly to intervene. Transient,
// recomputed on each evaluation.
type TimingStrategy struct {
	GoodTime       bool          `json:"good_time"`
	Confidence     float64       `json:"confidence"`
	SuggestedDelay time.Duration `json:"suggested_delay"`

	// Interruptibility is how willing the assistant should be to cut in,
	// 0.0 (wait for a clean opening) to 1.0 (interrupt freely).
	Interruptibility float64 `json:"interruptibility"`

	Reason string `json:"reason"`
}

// =============================================================================
// MANUAL CONTROL
// =============================================================================

// ActivityLevel is a user's explicit override of assistant proactivity.
type ActivityLevel string

const (
	ActivitySilent ActivityLevel = "silent"
	ActivityQuiet  ActivityLevel = "quiet"
	ActivityNormal ActivityLevel = "normal"
	ActivityActive ActivityLevel = "active"
)

// ValidActivityLevel reports whether l is one of the four known levels.
func ValidActivityLevel(l ActivityLevel) bool {
	switch l {
	case ActivitySilent, ActivityQuiet, ActivityNormal, ActivityActive:
		return true
	}
	return false
}

// ActivityLevelChange is one entry in a user's manual-control audit log.
type ActivityLevelChange struct {
	From      ActivityLevel `json:"from"`
	To        ActivityLevel `json:"to"`
	Reason    string        `json:"reason,omitempty"`
	ChangedAt time.Time     `json:"changed_at"`
}

// =============================================================================
// LEARNING
// =============================================================================

// UserReaction is the observed response to a past intervention.
type UserReaction string

const (
	ReactionPositive     UserReaction = "positive"
	ReactionAcknowledged UserReaction = "acknowledged"
	ReactionNegative     UserReaction = "negative"
	ReactionIgnored      UserReaction = "ignored"
	ReactionDismissed    UserReaction = "dismissed"
)

// ConversationOutcome is what happened to the conversation after an
// intervention, judged downstream.
type ConversationOutcome string

const (
	OutcomeImproved      ConversationOutcome = "improved"
	OutcomeProvidedValue ConversationOutcome = "provided_value"
	OutcomeNoChange      ConversationOutcome = "no_change"
	OutcomeDisrupted     ConversationOutcome = "disrupted"
)

// EffectivenessScore is a post-hoc, multi-dimensional rating of how well an
// intervention landed. Every sub-score lies in [0, 1].
type EffectivenessScore struct {
	Overall   float64 `json:"overall"`
	Timing    float64 `json:"timing"`
	Relevance float64 `json:"relevance"`
	Tone      float64 `json:"tone"`
}

// FeedbackRecord is one labeled outcome, the learning loop's unit of input.
type FeedbackRecord struct {
	ID               string              `json:"id"`
	UserID           string              `json:"user_id"`
	InterventionID   string              `json:"intervention_id"`
	InterventionType InterventionType    `json:"intervention_type"`
	Trigger          string              `json:"trigger"`
	Reaction         UserReaction        `json:"reaction"`
	Outcome          ConversationOutcome `json:"outcome"`
	Effectiveness    EffectivenessScore  `json:"effectiveness"`
	RecordedAt       time.Time           `json:"recorded_at"`
}

// ThresholdAdjustments are the per-user thresholds the decision engine
// consults. Recomputed on demand from feedback history, never hand-edited.
type ThresholdAdjustments struct {
	InterventionThreshold float64                      `json:"intervention_threshold"`
	ConfidenceThreshold   float64                      `json:"confidence_threshold"`
	TimingSensitivity     float64                      `json:"timing_sensitivity"`
	TypePreferences       map[InterventionType]float64 `json:"type_preferences,omitempty"`
}

// LearningMetrics are rolling per-user aggregates over feedback history.
type LearningMetrics struct {
	TotalInterventions   int     `json:"total_interventions"`
	SuccessRate          float64 `json:"success_rate"`
	AverageEffectiveness float64 `json:"average_effectiveness"`
	Satisfaction         float64 `json:"satisfaction"`

	// ImprovementTrend compares the most recent 10 interventions against
	// the prior 10; positive means the assistant is getting better.
	ImprovementTrend float64 `json:"improvement_trend"`
}

// InterventionPattern is a mined recurring situation in which interventions
// of one type succeed.
type InterventionPattern struct {
	Key         string           `json:"key"` // coarse trigger-text key
	Type        InterventionType `json:"type"`
	SampleCount int              `json:"sample_count"`
	SuccessRate float64          `json:"success_rate"`
	Confidence  float64          `json:"confidence"`
	Description string           `json:"description"`
}

// =============================================================================
// HELPERS
// =============================================================================

// Clamp01 bounds v to [0, 1]. Threshold and score invariants across the
// module rely on it.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
