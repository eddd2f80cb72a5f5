package config

import "time"

// LearningConfig configures the feedback loop.
type LearningConfig struct {
	// Default thresholds for users with no feedback history.
	DefaultInterventionThreshold float64 `yaml:"default_intervention_threshold"`
	DefaultConfidenceThreshold   float64 `yaml:"default_confidence_threshold"`
	DefaultTimingSensitivity     float64 `yaml:"default_timing_sensitivity"`

	// TrailingWindow bounds how far back threshold recomputation looks.
	TrailingWindow time.Duration `yaml:"trailing_window"`

	// TrendWindow is how many recent interventions form one half of the
	// improvement-trend comparison.
	TrendWindow int `yaml:"trend_window"`

	// Pattern mining knobs.
	MinPatternSamples  int     `yaml:"min_pattern_samples"`
	PatternSuccessRate float64 `yaml:"pattern_success_rate"`
	PatternSaturation  int     `yaml:"pattern_saturation"` // samples at which confidence saturates

	// DatabasePath enables the SQLite feedback store when non-empty;
	// otherwise feedback lives in memory for the process lifetime.
	DatabasePath string `yaml:"database_path"`
}

// DefaultLearningConfig returns the tuned defaults.
func DefaultLearningConfig() LearningConfig {
	return LearningConfig{
		DefaultInterventionThreshold: 0.7,
		DefaultConfidenceThreshold:   0.6,
		DefaultTimingSensitivity:     0.5,
		TrailingWindow:               30 * 24 * time.Hour,
		TrendWindow:                  10,
		MinPatternSamples:            3,
		PatternSuccessRate:           0.6,
		PatternSaturation:            10,
	}
}
