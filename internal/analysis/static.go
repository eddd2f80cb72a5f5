package analysis

import (
	"context"
	"strings"

	"meetsense/internal/types"
)

// StaticAnalyzer is a deterministic, offline types.Analyzer. It classifies
// by keyword tables and never errors, which keeps tests and transcript
// replay reproducible without credentials.
type StaticAnalyzer struct {
	topics map[string][]string
}

// NewStaticAnalyzer creates an analyzer with the default topic tables.
func NewStaticAnalyzer() *StaticAnalyzer {
	return &StaticAnalyzer{
		topics: map[string][]string{
			"project planning":   {"roadmap", "milestone", "deadline", "sprint", "plan", "timeline", "scope", "estimate"},
			"budget review":      {"budget", "cost", "spend", "expense", "invoice", "quarter", "forecast", "revenue"},
			"product design":     {"design", "mockup", "prototype", "ux", "ui", "wireframe", "usability", "feature"},
			"engineering status": {"deploy", "bug", "release", "build", "test", "incident", "migration", "api"},
			"hiring":             {"candidate", "interview", "offer", "recruiter", "headcount", "onboarding"},
			"sales update":       {"customer", "deal", "pipeline", "contract", "renewal", "churn", "demo"},
		},
	}
}

// WithTopics replaces the topic tables. Tests use this to pin exact labels.
func (s *StaticAnalyzer) WithTopics(topics map[string][]string) *StaticAnalyzer {
	s.topics = topics
	return s
}

func (s *StaticAnalyzer) scoreTopic(text string, keywords []string) int {
	text = strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits
}

// ClassifyTopic picks the topic whose keyword table matches the text best.
func (s *StaticAnalyzer) ClassifyTopic(_ context.Context, text string) (string, error) {
	best, bestHits := NeutralTopic, 0
	for topic, keywords := range s.topics {
		if hits := s.scoreTopic(text, keywords); hits > bestHits || (hits == bestHits && hits > 0 && topic < best) {
			best, bestHits = topic, hits
		}
	}
	return best, nil
}

// ScoreRelevance rates text against a topic by keyword overlap. A message
// matching none of the topic's keywords still scores above zero when it
// shares plain words with the topic label itself.
func (s *StaticAnalyzer) ScoreRelevance(_ context.Context, text, topic string) (float64, error) {
	keywords, ok := s.topics[topic]
	if !ok {
		return NeutralRelevance, nil
	}
	hits := s.scoreTopic(text, keywords)
	if hits == 0 {
		lower := strings.ToLower(text)
		for _, word := range strings.Fields(topic) {
			if strings.Contains(lower, word) {
				hits = 1
				break
			}
		}
	}
	score := float64(hits) / 3.0
	return types.Clamp01(score), nil
}

// AnalyzeDrift classifies both slices and reports drift when their dominant
// topics differ.
func (s *StaticAnalyzer) AnalyzeDrift(ctx context.Context, earlier, recent string) (types.DriftAssessment, error) {
	earlierTopic, _ := s.ClassifyTopic(ctx, earlier)
	recentTopic, _ := s.ClassifyTopic(ctx, recent)

	if earlierTopic == recentTopic {
		return types.DriftAssessment{IsDrifting: false, Severity: 0}, nil
	}
	rel, _ := s.ScoreRelevance(ctx, recent, earlierTopic)
	return types.DriftAssessment{
		IsDrifting: true,
		Severity:   types.Clamp01(1 - rel),
		Suggestion: "return to " + earlierTopic,
	}, nil
}
