// Package config holds all meetsense configuration.
// One file per concern; DefaultConfig wires the tuned defaults the decision
// core ships with.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all meetsense configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// External text-analysis service
	LLM LLMConfig `yaml:"llm"`

	// Signal aggregation
	Signals SignalsConfig `yaml:"signals"`

	// Pause and momentum analysis
	Timing TimingConfig `yaml:"timing"`

	// Decision engine thresholds and rate limits
	Decision DecisionConfig `yaml:"decision"`

	// Learning loop
	Learning LearningConfig `yaml:"learning"`

	// Manual control
	Control ControlConfig `yaml:"control"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:     "meetsense",
		Version:  "0.3.0",
		LLM:      DefaultLLMConfig(),
		Signals:  DefaultSignalsConfig(),
		Timing:   DefaultTimingConfig(),
		Decision: DefaultDecisionConfig(),
		Learning: DefaultLearningConfig(),
		Control:  DefaultControlConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks threshold ranges. Every threshold and probability must
// lie in [0, 1].
func (c *Config) Validate() error {
	unit := map[string]float64{
		"decision.confidence_threshold":      c.Decision.ConfidenceThreshold,
		"decision.topic_drift_threshold":     c.Decision.TopicDriftThreshold,
		"decision.information_gap_threshold": c.Decision.InformationGapThreshold,
		"decision.fact_check_threshold":      c.Decision.FactCheckThreshold,
		"decision.clarification_threshold":   c.Decision.ClarificationThreshold,
		"decision.summary_threshold":         c.Decision.SummaryThreshold,
		"control.gate_probability":           c.Control.GateProbability,
		"signals.high_severity":              c.Signals.HighSeverity,
		"signals.medium_severity":            c.Signals.MediumSeverity,
	}
	for name, v := range unit {
		if v < 0 || v > 1 {
			return fmt.Errorf("config %s out of range [0,1]: %v", name, v)
		}
	}
	if c.Decision.BaseHourlyCap <= 0 {
		return fmt.Errorf("config decision.base_hourly_cap must be positive")
	}
	if c.Signals.DriftWindow < 1 {
		return fmt.Errorf("config signals.drift_window must be at least 1")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if key := os.Getenv("MEETSENSE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
}

// GetLLMTimeout returns the per-call analysis timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
