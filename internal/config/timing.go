package config

import "time"

// TimingConfig configures pause detection and momentum analysis.
type TimingConfig struct {
	// Pause classification ladder, shortest first. Gaps below ShortPause
	// are not recorded as pauses at all.
	ShortPause      time.Duration `yaml:"short_pause"`
	MediumPause     time.Duration `yaml:"medium_pause"`
	LongPause       time.Duration `yaml:"long_pause"`
	ExtendedSilence time.Duration `yaml:"extended_silence"`

	// MomentumWindow is the trailing window for velocity computation.
	MomentumWindow time.Duration `yaml:"momentum_window"`

	// StableAccelBand is the |acceleration| band inside which direction is
	// "stable".
	StableAccelBand float64 `yaml:"stable_accel_band"`

	// Busy-conversation cutoffs: above either, it is not a good time.
	HighVelocity  float64 `yaml:"high_velocity"`  // messages per minute
	HighIntensity float64 `yaml:"high_intensity"` // 0.0-1.0

	// Lull cutoffs: below both, any time is a good time.
	LowVelocity  float64 `yaml:"low_velocity"`
	LowIntensity float64 `yaml:"low_intensity"`

	// StabilityOpportunity is the topic-stability level below which
	// instability itself is an opening to speak.
	StabilityOpportunity float64 `yaml:"stability_opportunity"`
}

// DefaultTimingConfig returns the tuned defaults.
func DefaultTimingConfig() TimingConfig {
	return TimingConfig{
		ShortPause:           10 * time.Second,
		MediumPause:          30 * time.Second,
		LongPause:            90 * time.Second,
		ExtendedSilence:      3 * time.Minute,
		MomentumWindow:       5 * time.Minute,
		StableAccelBand:      0.5,
		HighVelocity:         5.0,
		HighIntensity:        0.8,
		LowVelocity:          2.0,
		LowIntensity:         0.3,
		StabilityOpportunity: 0.5,
	}
}
