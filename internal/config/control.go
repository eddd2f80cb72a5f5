package config

// ControlConfig configures the manual control layer.
type ControlConfig struct {
	// AuditLogMax bounds the per-user activity-level audit log.
	AuditLogMax int `yaml:"audit_log_max"`

	// GateProbability is the chance the quiet/active probability gates
	// fire: quiet suppresses all but this fraction of positive decisions,
	// active promotes this fraction of negative ones.
	GateProbability float64 `yaml:"gate_probability"`
}

// DefaultControlConfig returns the tuned defaults.
func DefaultControlConfig() ControlConfig {
	return ControlConfig{
		AuditLogMax:     50,
		GateProbability: 0.3,
	}
}
