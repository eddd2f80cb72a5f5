package config

// SignalsConfig configures the signal aggregator.
type SignalsConfig struct {
	// RecentWindow caps how many trailing messages feed flow analysis.
	RecentWindow int `yaml:"recent_window"`

	// TopicWindowSize is how many messages form one classification window.
	TopicWindowSize int `yaml:"topic_window_size"`

	// DriftWindow is how many consecutive off-topic messages count as
	// drift. Deliberately short: two off-topic messages in a row already
	// flag a meeting as drifting.
	DriftWindow int `yaml:"drift_window"`

	// RelevanceFloor is the relevance score at or below which a message is
	// considered off-topic.
	RelevanceFloor float64 `yaml:"relevance_floor"`

	// Urgency ladder severities.
	HighSeverity   float64 `yaml:"high_severity"`
	MediumSeverity float64 `yaml:"medium_severity"`
}

// DefaultSignalsConfig returns the tuned defaults.
func DefaultSignalsConfig() SignalsConfig {
	return SignalsConfig{
		RecentWindow:    12,
		TopicWindowSize: 2,
		DriftWindow:     2,
		RelevanceFloor:  0.4,
		HighSeverity:    0.8,
		MediumSeverity:  0.5,
	}
}
