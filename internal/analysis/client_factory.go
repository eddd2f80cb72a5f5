package analysis

import (
	"fmt"

	"meetsense/internal/config"
	"meetsense/internal/types"
)

// NewAnalyzer builds the configured provider client wrapped in FailSafe.
// The static provider is the default: no credentials, fully deterministic.
func NewAnalyzer(cfg *config.Config) (types.Analyzer, error) {
	var (
		inner types.Analyzer
		err   error
	)

	switch cfg.LLM.Provider {
	case "", "static":
		inner = NewStaticAnalyzer()
	case "gemini":
		inner, err = NewGeminiAnalyzer(cfg.LLM.APIKey, cfg.LLM.Model)
	case "openai":
		inner, err = NewOpenAIAnalyzer(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	default:
		return nil, fmt.Errorf("unknown analysis provider: %q", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewFailSafe(inner, cfg.GetLLMTimeout()), nil
}
