package analysis

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// GeminiAnalyzer implements types.Analyzer on the Google Gemini API.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// NewGeminiAnalyzer creates a Gemini-backed analyzer.
func NewGeminiAnalyzer(apiKey, model string) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiAnalyzer{client: client, model: model}, nil
}

func (g *GeminiAnalyzer) generate(ctx context.Context, prompt string) (string, error) {
	timer := logging.StartTimer(logging.CategoryAnalysis, "GeminiAnalyzer.generate")
	defer timer.Stop()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}
	return text, nil
}

// ClassifyTopic returns a short topic label for the text.
func (g *GeminiAnalyzer) ClassifyTopic(ctx context.Context, text string) (string, error) {
	reply, err := g.generate(ctx, fmt.Sprintf(classifyPrompt, text))
	if err != nil {
		return "", err
	}
	return normalizeTopic(reply), nil
}

// ScoreRelevance rates how relevant text is to the topic.
func (g *GeminiAnalyzer) ScoreRelevance(ctx context.Context, text, topic string) (float64, error) {
	reply, err := g.generate(ctx, fmt.Sprintf(relevancePrompt, topic, text))
	if err != nil {
		return 0, err
	}
	score, ok := parseScore(reply)
	if !ok {
		return 0, fmt.Errorf("unparseable relevance reply: %q", reply)
	}
	return score, nil
}

// AnalyzeDrift compares earlier vs recent conversation slices.
func (g *GeminiAnalyzer) AnalyzeDrift(ctx context.Context, earlier, recent string) (types.DriftAssessment, error) {
	reply, err := g.generate(ctx, fmt.Sprintf(driftPrompt, earlier, recent))
	if err != nil {
		return types.DriftAssessment{}, err
	}
	res, ok := parseDriftReply(reply)
	if !ok {
		return types.DriftAssessment{}, fmt.Errorf("unparseable drift reply: %q", reply)
	}
	return res, nil
}
