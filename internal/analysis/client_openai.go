package analysis

import (
	"context"
	"fmt"
	"strings"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// OpenAIAnalyzer implements types.Analyzer on an OpenAI-compatible
// chat-completions API.
type OpenAIAnalyzer struct {
	client openaigo.Client
	model  string
}

// NewOpenAIAnalyzer creates an OpenAI-backed analyzer. baseURL may be empty
// for the default endpoint, or point at any compatible server.
func NewOpenAIAnalyzer(apiKey, model, baseURL string) (*OpenAIAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")))
	}

	return &OpenAIAnalyzer{
		client: openaigo.NewClient(opts...),
		model:  model,
	}, nil
}

func (o *OpenAIAnalyzer) complete(ctx context.Context, prompt string) (string, error) {
	timer := logging.StartTimer(logging.CategoryAnalysis, "OpenAIAnalyzer.complete")
	defer timer.Stop()

	resp, err := o.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(o.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("openai returned empty response")
	}
	return text, nil
}

// ClassifyTopic returns a short topic label for the text.
func (o *OpenAIAnalyzer) ClassifyTopic(ctx context.Context, text string) (string, error) {
	reply, err := o.complete(ctx, fmt.Sprintf(classifyPrompt, text))
	if err != nil {
		return "", err
	}
	return normalizeTopic(reply), nil
}

// ScoreRelevance rates how relevant text is to the topic.
func (o *OpenAIAnalyzer) ScoreRelevance(ctx context.Context, text, topic string) (float64, error) {
	reply, err := o.complete(ctx, fmt.Sprintf(relevancePrompt, topic, text))
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
func (o *OpenAIAnalyzer) AnalyzeDrift(ctx context.Context, earlier, recent string) (types.DriftAssessment, error) {
	reply, err := o.complete(ctx, fmt.Sprintf(driftPrompt, earlier, recent))
	if err != nil {
		return types.DriftAssessment{}, err
	}
	res, ok := parseDriftReply(reply)
	if !ok {
		return types.DriftAssessment{}, fmt.Errorf("unparseable drift reply: %q", reply)
	}
	return res, nil
}
