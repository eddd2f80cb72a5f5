package config

// LLMConfig configures the external text-analysis service.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, openai, static
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`

	// Timeout bounds each analysis call. On expiry the fail-safe wrapper
	// substitutes neutral defaults instead of surfacing the error.
	Timeout string `yaml:"timeout"`
}

// DefaultLLMConfig returns sensible defaults. The static provider needs no
// credentials and keeps offline hosts and tests deterministic.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider: "static",
		Model:    "gemini-2.0-flash",
		Timeout:  "10s",
	}
}
