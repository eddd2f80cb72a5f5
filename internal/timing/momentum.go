// Package timing implements pause detection, momentum analysis, and the
// timing strategy that decides when the assistant should speak.
package timing

import (
	"math"
	"time"

	"meetsense/internal/config"
	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// Analyzer computes pauses, momentum, and timing strategies from the tail
// of a message history. Stateless apart from configuration; every value is
// recomputed per evaluation.
type Analyzer struct {
	cfg   config.TimingConfig
	clock types.Clock
}

// NewAnalyzer creates a timing analyzer. A nil clock defaults to time.Now.
func NewAnalyzer(cfg config.TimingConfig, clock types.Clock) *Analyzer {
	if clock == nil {
		clock = time.Now
	}
	return &Analyzer{cfg: cfg, clock: clock}
}

// Momentum computes velocity, acceleration, direction, and intensity over
// the trailing momentum window ending at now.
func (a *Analyzer) Momentum(msgs []types.ProcessedMessage, now time.Time) types.ConversationMomentum {
	windowStart := now.Add(-a.cfg.MomentumWindow)
	var window []types.ProcessedMessage
	for _, m := range msgs {
		if !m.Timestamp.Before(windowStart) && !m.Timestamp.After(now) {
			window = append(window, m)
		}
	}

	minutes := a.cfg.MomentumWindow.Minutes()
	if minutes <= 0 {
		minutes = 1
	}
	velocity := float64(len(window)) / minutes

	// Acceleration: velocity of the window's second half minus its first.
	mid := now.Add(-a.cfg.MomentumWindow / 2)
	firstCount, secondCount := 0, 0
	for _, m := range window {
		if m.Timestamp.Before(mid) {
			firstCount++
		} else {
			secondCount++
		}
	}
	halfMinutes := minutes / 2
	accel := float64(secondCount)/halfMinutes - float64(firstCount)/halfMinutes

	direction := types.MomentumStable
	if math.Abs(accel) >= a.cfg.StableAccelBand {
		if accel > 0 {
			direction = types.MomentumIncreasing
		} else {
			direction = types.MomentumDecreasing
		}
	}

	// Intensity blends normalized average message length and normalized
	// velocity, equally weighted.
	avgLen := 0.0
	if len(window) > 0 {
		total := 0
		for _, m := range window {
			total += len(m.Content)
		}
		avgLen = float64(total) / float64(len(window))
	}
	normLen := types.Clamp01(avgLen / 200.0)
	normVel := types.Clamp01(velocity / 10.0)
	intensity := 0.5*normLen + 0.5*normVel

	m := types.ConversationMomentum{
		Velocity:     velocity,
		Acceleration: accel,
		Direction:    direction,
		Strength:     types.Clamp01(math.Abs(accel) / 4.0),
		Intensity:    intensity,
	}
	logging.TimingDebug("momentum: velocity=%.2f accel=%.2f direction=%s intensity=%.2f",
		m.Velocity, m.Acceleration, m.Direction, m.Intensity)
	return m
}
