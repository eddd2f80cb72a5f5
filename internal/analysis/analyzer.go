// Package analysis implements the boundary to the external text-analysis
// service. Provider clients (Gemini, OpenAI) live here alongside a
// deterministic static analyzer; the decision core only ever talks to the
// FailSafe wrapper, which substitutes neutral defaults when a provider
// errors or times out so a flaky service can never stall a conversation.
package analysis

import (
	"context"
	"strconv"
	"strings"
	"time"

	"meetsense/internal/logging"
	"meetsense/internal/types"
)

// Neutral defaults substituted on provider failure. Conservative on purpose:
// a failed call must read as "nothing noteworthy", never as a drift signal.
const (
	NeutralRelevance = 0.5
	NeutralTopic     = "general discussion"
)

// FailSafe decorates an Analyzer with a per-call timeout and neutral
// defaults. It never returns an error.
type FailSafe struct {
	inner   types.Analyzer
	timeout time.Duration
}

// NewFailSafe wraps inner. A non-positive timeout disables the deadline.
func NewFailSafe(inner types.Analyzer, timeout time.Duration) *FailSafe {
	return &FailSafe{inner: inner, timeout: timeout}
}

func (f *FailSafe) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, f.timeout)
}

// ClassifyTopic returns the provider's topic label, or NeutralTopic on failure.
func (f *FailSafe) ClassifyTopic(ctx context.Context, text string) (string, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	topic, err := f.inner.ClassifyTopic(ctx, text)
	if err != nil || strings.TrimSpace(topic) == "" {
		if err != nil {
			logging.AnalysisWarn("ClassifyTopic degraded to neutral default: %v", err)
		}
		return NeutralTopic, nil
	}
	return normalizeTopic(topic), nil
}

// ScoreRelevance returns the provider's relevance, or NeutralRelevance on
// failure. The result is clamped to [0, 1].
func (f *FailSafe) ScoreRelevance(ctx context.Context, text, topic string) (float64, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	score, err := f.inner.ScoreRelevance(ctx, text, topic)
	if err != nil {
		logging.AnalysisWarn("ScoreRelevance degraded to neutral default: %v", err)
		return NeutralRelevance, nil
	}
	return types.Clamp01(score), nil
}

// AnalyzeDrift returns the provider's drift assessment, or "not drifting"
// on failure.
func (f *FailSafe) AnalyzeDrift(ctx context.Context, earlier, recent string) (types.DriftAssessment, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	res, err := f.inner.AnalyzeDrift(ctx, earlier, recent)
	if err != nil {
		logging.AnalysisWarn("AnalyzeDrift degraded to neutral default: %v", err)
		return types.DriftAssessment{IsDrifting: false, Severity: 0}, nil
	}
	res.Severity = types.Clamp01(res.Severity)
	return res, nil
}

// normalizeTopic collapses a model's topic label to a short lowercase form.
func normalizeTopic(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	topic = strings.Trim(topic, `"'.`)
	if idx := strings.IndexByte(topic, '\n'); idx >= 0 {
		topic = topic[:idx]
	}
	// Models occasionally answer in a full sentence; keep the first few words.
	words := strings.Fields(topic)
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " ")
}

// parseScore extracts a float in [0, 1] from a model reply. Accepts bare
// numbers ("0.7"), percentages ("70%"), and numbers embedded in prose.
func parseScore(reply string) (float64, bool) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return 0, false
	}
	for _, field := range strings.Fields(reply) {
		field = strings.Trim(field, `"',.;:()`)
		if strings.HasSuffix(field, "%") {
			if v, err := strconv.ParseFloat(strings.TrimSuffix(field, "%"), 64); err == nil {
				return types.Clamp01(v / 100), true
			}
			continue
		}
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			if v > 1 && v <= 100 {
				v /= 100
			}
			return types.Clamp01(v), true
		}
	}
	return 0, false
}

// Prompts shared by the LLM-backed analyzers.
const (
	classifyPrompt = `Classify the dominant topic of this meeting excerpt in 2-4 lowercase words.
Reply with the topic label only, no punctuation.

Excerpt:
%s`

	relevancePrompt = `Rate how relevant this message is to the topic "%s" on a scale of 0.0 to 1.0.
Reply with the number only.

Message:
%s`

	driftPrompt = `Compare the earlier and recent parts of this meeting.
Reply with exactly two lines:
drifting: yes or no
severity: a number from 0.0 to 1.0

Earlier:
%s

Recent:
%s`
)

// parseDriftReply decodes the two-line drift reply format.
func parseDriftReply(reply string) (types.DriftAssessment, bool) {
	var out types.DriftAssessment
	found := false
	for _, line := range strings.Split(reply, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(line, "drifting:"):
			val := strings.TrimSpace(strings.TrimPrefix(line, "drifting:"))
			out.IsDrifting = strings.HasPrefix(val, "y") || strings.HasPrefix(val, "true")
			found = true
		case strings.HasPrefix(line, "severity:"):
			if v, ok := parseScore(strings.TrimPrefix(line, "severity:")); ok {
				out.Severity = v
			}
		case strings.HasPrefix(line, "suggestion:"):
			out.Suggestion = strings.TrimSpace(strings.TrimPrefix(line, "suggestion:"))
		}
	}
	return out, found
}
