// Package control implements the per-user manual override of assistant
// proactivity. Activity levels are keyed globally by user id - a user keeps
// their setting across sessions - so state lives in an injected
// ActivityStore and mutation is serialized per controller.
package control

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"meetsense/internal/config"
	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// Controller is the per-user activity-level state machine. Transitions
// happen only on explicit user commands; every transition lands in a
// bounded audit log.
type Controller struct {
	cfg   config.ControlConfig
	store types.ActivityStore
	rand  types.RandSource
	clock types.Clock

	mu sync.Mutex // serializes read-modify-write of level + audit log
}

// NewController creates a controller over the given store. A nil rand
// defaults to a time-seeded source; a nil clock defaults to time.Now.
func NewController(cfg config.ControlConfig, store types.ActivityStore, randSrc types.RandSource, clock types.Clock) *Controller {
	if randSrc == nil {
		randSrc = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if clock == nil {
		clock = time.Now
	}
	return &Controller{cfg: cfg, store: store, rand: randSrc, clock: clock}
}

// ActivityLevel returns the user's current level, defaulting to normal.
func (c *Controller) ActivityLevel(userID string) types.ActivityLevel {
	if level, ok := c.store.Level(userID); ok {
		return level
	}
	return types.ActivityNormal
}

// SetActivityLevel transitions the user to a new level and records the
// change in the audit log.
func (c *Controller) SetActivityLevel(userID string, level types.ActivityLevel, reason string) error {
	if !types.ValidActivityLevel(level) {
		return fmt.Errorf("invalid activity level: %q", level)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.ActivityLevel(userID)
	c.store.SetLevel(userID, level)
	c.store.AppendChange(userID, types.ActivityLevelChange{
		From:      from,
		To:        level,
		Reason:    reason,
		ChangedAt: c.clock(),
	}, c.cfg.AuditLogMax)

	logging.Control("activity level changed: user=%s %s -> %s reason=%q", userID, from, level, reason)
	return nil
}

// History returns the user's audit log, oldest first.
func (c *Controller) History(userID string) []types.ActivityLevelChange {
	return c.store.Changes(userID)
}

// ShouldAllowIntervention applies the user's manual override to a base
// decision:
//
//	silent: always false, no randomness
//	quiet:  base AND a probability gate (most positives suppressed)
//	normal: base unchanged
//	active: base OR a probability gate (negatives sometimes promoted)
func (c *Controller) ShouldAllowIntervention(userID string, baseDecision bool) bool {
	switch c.ActivityLevel(userID) {
	case types.ActivitySilent:
		return false
	case types.ActivityQuiet:
		return baseDecision && c.rand.Float64() < c.cfg.GateProbability
	case types.ActivityActive:
		return baseDecision || c.rand.Float64() < c.cfg.GateProbability
	default:
		return baseDecision
	}
}

// AdjustInterventionFrequency shifts the user's base frequency preference
// one tier down under quiet and one tier up under active, saturating at the
// ends of the scale.
func (c *Controller) AdjustInterventionFrequency(userID string, base types.InterventionFrequency) types.InterventionFrequency {
	scale := types.FrequencyScale()
	idx := 0
	for i, f := range scale {
		if f == base {
			idx = i
			break
		}
	}

	switch c.ActivityLevel(userID) {
	case types.ActivityQuiet:
		idx--
	case types.ActivityActive:
		idx++
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(scale)-1 {
		idx = len(scale) - 1
	}
	return scale[idx]
}
