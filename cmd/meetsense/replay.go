package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"meetsense/internal/analysis"
	"meetsense/internal/session"
	"meetsense/internal/store"
	"meetsense/internal/types"
)

var replaySeed int64

// replayCmd feeds recorded transcripts through the decision engine
var replayCmd = &cobra.Command{
	Use:   "replay [transcript.yaml]",
	Short: "Replay recorded meeting transcripts through the decision engine",
	Long: `Reads one or more recorded sessions from a YAML transcript and evaluates
every message through the full pipeline, printing each decision with its
reasoning. Sessions replay concurrently; each runs on its own virtual clock
driven by message timestamps.

The static keyword analyzer is used unless an LLM provider is configured.

Example transcript:

  sessions:
    - id: standup-1
      meeting_type: standup
      topic: project planning
      participants:
        - id: alice
          name: Alice
          role: organizer
      messages:
        - sender_id: alice
          content: "Let's review the sprint backlog."
          at: 2026-08-30T10:00:00Z
      feedback:
        reaction: positive
        outcome: improved`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Int64Var(&replaySeed, "seed", 0, "Seed for probability gates (0 = time-seeded)")
}

// transcript is the YAML document the replay command consumes.
type transcript struct {
	Sessions []transcriptSession `yaml:"sessions"`
}

type transcriptSession struct {
	ID            string              `yaml:"id"`
	MeetingType   string              `yaml:"meeting_type"`
	Topic         string              `yaml:"topic"`
	ActivityLevel string              `yaml:"activity_level,omitempty"`
	Participants  []types.Participant `yaml:"participants"`
	Messages      []transcriptMessage `yaml:"messages"`

	// Feedback, when present, is applied to every intervention the replay
	// issues, exercising the learning loop.
	Feedback *transcriptFeedback `yaml:"feedback,omitempty"`
}

type transcriptMessage struct {
	SenderID  string    `yaml:"sender_id"`
	Content   string    `yaml:"content"`
	At        time.Time `yaml:"at"`
	Sentiment float64   `yaml:"sentiment,omitempty"`
	Topics    []string  `yaml:"topics,omitempty"`
	Urgency   float64   `yaml:"urgency,omitempty"`
}

type transcriptFeedback struct {
	Reaction types.UserReaction        `yaml:"reaction"`
	Outcome  types.ConversationOutcome `yaml:"outcome"`
}

// replayClock is a session-local virtual clock driven by the transcript's
// message timestamps.
type replayClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *replayClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *replayClock) advance(to time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if to.After(c.now) {
		c.now = to
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	var t transcript
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("failed to parse transcript: %w", err)
	}
	if len(t.Sessions) == 0 {
		return fmt.Errorf("transcript has no sessions")
	}

	analyzer, err := analysis.NewAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("failed to build analyzer: %w", err)
	}

	var feedbackStore types.FeedbackStore
	if path := cfg.Learning.DatabasePath; path != "" {
		feedbackStore, err = store.NewSQLiteFeedbackStore(path)
		if err != nil {
			return fmt.Errorf("failed to open feedback store: %w", err)
		}
		defer feedbackStore.Close()
	}

	seed := replaySeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("replaying transcript",
		zap.String("path", args[0]),
		zap.Int("sessions", len(t.Sessions)),
		zap.Int64("seed", seed))

	g, ctx := errgroup.WithContext(cmd.Context())
	reports := make([]string, len(t.Sessions))
	for i, ts := range t.Sessions {
		g.Go(func() error {
			report, err := replaySession(ctx, ts, analyzer, feedbackStore, seed+int64(i))
			if err != nil {
				return fmt.Errorf("session %s: %w", ts.ID, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range reports {
		fmt.Print(r)
	}
	return nil
}

// replaySession runs one recorded session through its own engine on a
// virtual clock and returns the printed report.
func replaySession(ctx context.Context, ts transcriptSession, analyzer types.Analyzer, feedbackStore types.FeedbackStore, seed int64) (string, error) {
	clock := &replayClock{}
	if len(ts.Messages) > 0 {
		clock.now = ts.Messages[0].At
	}

	eng := session.NewEngine(cfg, session.Options{
		Analyzer:      analyzer,
		FeedbackStore: feedbackStore,
		Clock:         clock.Now,
		Rand:          rand.New(rand.NewSource(seed)),
	})

	if err := eng.StartSession(ts.ID, ts.MeetingType, ts.Topic, ts.Participants); err != nil {
		return "", err
	}
	defer eng.EndSession(ts.ID)

	if ts.ActivityLevel != "" {
		primary := ""
		if len(ts.Participants) > 0 {
			primary = ts.Participants[0].ID
		}
		if err := eng.SetActivityLevel(primary, types.ActivityLevel(ts.ActivityLevel), "transcript preset"); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== session %s (%s) ===\n", ts.ID, ts.MeetingType)

	interventions := 0
	for i, m := range ts.Messages {
		clock.advance(m.At)
		d, err := eng.Evaluate(ctx, ts.ID, types.ProcessedMessage{
			ID:        fmt.Sprintf("%s-%d", ts.ID, i+1),
			SenderID:  m.SenderID,
			Content:   m.Content,
			Timestamp: m.At,
			Sentiment: m.Sentiment,
			Topics:    m.Topics,
			Urgency:   m.Urgency,
		})
		if err != nil {
			return "", err
		}

		if d.ShouldRespond {
			interventions++
			fmt.Fprintf(&b, "[%s] %s: %s\n", m.At.Format("15:04:05"), m.SenderID, m.Content)
			fmt.Fprintf(&b, "  -> INTERVENE %s priority=%s confidence=%.2f\n", d.Type, d.Priority, d.Confidence)
			fmt.Fprintf(&b, "     %s\n", d.Reasoning)

			strat, err := eng.ComputeTiming(ctx, ts.ID)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "     timing: good=%v (%s)\n", strat.GoodTime, strat.Reason)
		}
	}

	if ts.Feedback != nil {
		if err := applyFeedback(ctx, eng, ts, &b); err != nil {
			return "", err
		}
	}

	fmt.Fprintf(&b, "--- %d messages, %d interventions ---\n\n", len(ts.Messages), interventions)
	return b.String(), nil
}

// applyFeedback labels every issued intervention with the transcript's
// canned reaction and prints the resulting learning metrics.
func applyFeedback(ctx context.Context, eng *session.Engine, ts transcriptSession, b *strings.Builder) error {
	primary := ""
	for _, p := range ts.Participants {
		if p.Role == "organizer" {
			primary = p.ID
			break
		}
	}
	if primary == "" && len(ts.Participants) > 0 {
		primary = ts.Participants[0].ID
	}

	recs, err := eng.Interventions(ts.ID)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if _, err := eng.RecordOutcome(ctx, ts.ID, rec.ID, ts.Feedback.Reaction, ts.Feedback.Outcome); err != nil {
			return err
		}
	}

	m, err := eng.Metrics(ctx, primary)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "learning: success=%.2f effectiveness=%.2f satisfaction=%.2f over %d interventions\n",
		m.SuccessRate, m.AverageEffectiveness, m.Satisfaction, m.TotalInterventions)
	return nil
}
