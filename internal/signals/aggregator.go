// Package signals turns raw message history into quantitative
// per-conversation signals: topic stability, momentum, engagement balance,
// and consecutive off-topic counts. One external classification call per
// window; failures degrade to neutral defaults so the pipeline never blocks.
package signals

import (
	"context"
	"strings"
	"time"

	"meetsense/internal/config"
	"meetsense/internal/logging"
	"meetsense/internal/timing"
	"meetsense/internal/types"
)

// Aggregator computes FlowAnalysis and TopicDriftResult values from a
// conversation context.
type Aggregator struct {
	cfg      config.SignalsConfig
	analyzer types.Analyzer
	momentum *timing.Analyzer
	clock    types.Clock
}

// NewAggregator creates a signal aggregator. A nil clock defaults to
// time.Now.
func NewAggregator(cfg config.SignalsConfig, analyzer types.Analyzer, momentum *timing.Analyzer, clock types.Clock) *Aggregator {
	if clock == nil {
		clock = time.Now
	}
	return &Aggregator{cfg: cfg, analyzer: analyzer, momentum: momentum, clock: clock}
}

// AnalyzeFlow summarizes the current conversational state from the recent
// message window.
func (a *Aggregator) AnalyzeFlow(ctx context.Context, convo *types.ConversationContext) types.FlowAnalysis {
	timer := logging.StartTimer(logging.CategorySignals, "Aggregator.AnalyzeFlow")
	defer timer.Stop()

	now := a.clock()
	recent := convo.RecentMessages(a.cfg.RecentWindow)

	flow := types.FlowAnalysis{
		CurrentTopic: convo.CurrentTopic,
		// With nothing to contradict it, the topic counts as stable.
		TopicStability: 1.0,
	}
	if len(recent) == 0 {
		return flow
	}

	currentTopic, stability := a.topicStability(ctx, recent)
	if currentTopic != "" {
		flow.CurrentTopic = currentTopic
	}
	flow.TopicStability = stability
	flow.Engagement = a.engagement(convo, recent)
	flow.Momentum = a.momentum.Momentum(convo.MessageHistory, now)

	anchor := convo.CurrentTopic
	if anchor == "" {
		anchor = currentTopic
	}
	flow.ConsecutiveOffTopic = a.countOffTopic(ctx, recent, anchor)

	logging.SignalsDebug("flow: topic=%q stability=%.2f offTopic=%d engagement=%.2f",
		flow.CurrentTopic, flow.TopicStability, flow.ConsecutiveOffTopic, flow.Engagement.Score)
	return flow
}

// topicStability partitions the recent window into fixed-size windows,
// classifies each, and reports the fraction matching the newest window's
// topic. Classification failure reads as agreement with the newest window.
func (a *Aggregator) topicStability(ctx context.Context, recent []types.ProcessedMessage) (string, float64) {
	size := a.cfg.TopicWindowSize
	if size < 1 {
		size = 1
	}

	var windows []string
	for start := 0; start < len(recent); start += size {
		end := start + size
		if end > len(recent) {
			end = len(recent)
		}
		windows = append(windows, joinContents(recent[start:end]))
	}

	labels := make([]string, len(windows))
	for i, w := range windows {
		label, err := a.analyzer.ClassifyTopic(ctx, w)
		if err != nil || label == "" {
			// Degrade to neutral: an unclassifiable window matches whatever
			// the newest window says.
			labels[i] = ""
			continue
		}
		labels[i] = label
	}

	currentTopic := labels[len(labels)-1]
	matching := 0
	for _, label := range labels {
		if label == "" || label == currentTopic {
			matching++
		}
	}
	return currentTopic, float64(matching) / float64(len(labels))
}

// countOffTopic walks backward from the newest message, scoring each
// against the anchor topic, and stops at the first on-topic message.
// Scoring failure reads as on-topic.
func (a *Aggregator) countOffTopic(ctx context.Context, recent []types.ProcessedMessage, anchor string) int {
	if anchor == "" {
		return 0
	}
	count := 0
	for i := len(recent) - 1; i >= 0; i-- {
		rel, err := a.analyzer.ScoreRelevance(ctx, recent[i].Content, anchor)
		if err != nil {
			break // assume on-topic
		}
		if rel > a.cfg.RelevanceFloor {
			break
		}
		count++
	}
	return count
}

// engagement blends participation evenness and average sentiment.
func (a *Aggregator) engagement(convo *types.ConversationContext, recent []types.ProcessedMessage) types.EngagementMetrics {
	senders := make(map[string]int)
	sentimentSum := 0.0
	for _, m := range recent {
		senders[m.SenderID]++
		sentimentSum += m.Sentiment
	}

	metrics := types.EngagementMetrics{
		UniqueParticipants: len(senders),
		AverageSentiment:   sentimentSum / float64(len(recent)),
	}

	// Evenness: 1.0 when every speaker contributed equally, approaching 0
	// as one voice dominates.
	if len(senders) > 1 {
		maxShare := 0.0
		for _, n := range senders {
			share := float64(n) / float64(len(recent))
			if share > maxShare {
				maxShare = share
			}
		}
		even := 1.0 / float64(len(senders))
		metrics.ParticipationBalance = types.Clamp01(1 - (maxShare-even)/(1-even))
	} else {
		metrics.ParticipationBalance = 0
	}

	uniqueRatio := 0.0
	if n := len(convo.Participants); n > 0 {
		uniqueRatio = types.Clamp01(float64(len(senders)) / float64(n))
	}
	// Map sentiment from [-1,1] into [0,1] before blending.
	sentiment01 := types.Clamp01((metrics.AverageSentiment + 1) / 2)
	metrics.Score = 0.5*uniqueRatio + 0.5*sentiment01
	return metrics
}

func joinContents(msgs []types.ProcessedMessage) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = m.Content
	}
	return strings.Join(parts, "\n")
}
