package config

import "time"

// DecisionConfig configures the decision engine's rate limits, scenario
// thresholds, and recency windows.
type DecisionConfig struct {
	// BaseHourlyCap is the intervention budget per hour before the user's
	// frequency preference scales it.
	BaseHourlyCap int `yaml:"base_hourly_cap"`

	// Cooldown is the minimum gap between two interventions in one session.
	Cooldown time.Duration `yaml:"cooldown"`

	// ConfidenceThreshold is the global floor a winning scenario score must
	// clear before the engine responds.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// Per-scenario acceptance thresholds.
	TopicDriftThreshold     float64 `yaml:"topic_drift_threshold"`
	InformationGapThreshold float64 `yaml:"information_gap_threshold"`
	FactCheckThreshold      float64 `yaml:"fact_check_threshold"`
	ClarificationThreshold  float64 `yaml:"clarification_threshold"`
	SummaryThreshold        float64 `yaml:"summary_threshold"`

	// Recency windows that damp a scenario that fired recently.
	RedirectRecency  time.Duration `yaml:"redirect_recency"`
	InfoRecency      time.Duration `yaml:"info_recency"`
	FactCheckRecency time.Duration `yaml:"fact_check_recency"`
	SummaryRecency   time.Duration `yaml:"summary_recency"`
}

// DefaultDecisionConfig returns the tuned defaults.
func DefaultDecisionConfig() DecisionConfig {
	return DecisionConfig{
		BaseHourlyCap:           10,
		Cooldown:                2 * time.Minute,
		ConfidenceThreshold:     0.5,
		TopicDriftThreshold:     0.6,
		InformationGapThreshold: 0.7,
		FactCheckThreshold:      0.5,
		ClarificationThreshold:  0.4,
		SummaryThreshold:        0.5,
		RedirectRecency:         10 * time.Minute,
		InfoRecency:             5 * time.Minute,
		FactCheckRecency:        15 * time.Minute,
		SummaryRecency:          20 * time.Minute,
	}
}
