// Package session is the orchestration facade over the decision core. It
// owns per-session conversation state and wires signal aggregation, timing,
// manual control, the decision engine, and the learning loop behind a small
// API the host embeds.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meetsense/internal/analysis"
	"meetsense/internal/config"
	"meetsense/internal/control"
	"meetsense/internal/decision"
	"meetsense/internal/learning"
	"meetsense/internal/logging"
	"meetsense/internal/signals"
	"meetsense/internal/store"
	"meetsense/internal/timing"
	"meetsense/internal/types"
)

// Options carries the injectable dependencies of an Engine. Zero values get
// production defaults: time.Now, a time-seeded random source, in-memory
// stores, and a fail-safe static analyzer.
type Options struct {
	Analyzer      types.Analyzer
	ActivityStore types.ActivityStore
	FeedbackStore types.FeedbackStore
	Clock         types.Clock
	Rand          types.RandSource
}

// Engine composes the decision core. One Engine serves many concurrent
// sessions; activity levels and learned thresholds are keyed by user and
// shared across them.
type Engine struct {
	cfg     *config.Config
	signals *signals.Aggregator
	timing  *timing.Analyzer
	control *control.Controller
	decider *decision.Engine
	learner *learning.Loop
	clock   types.Clock

	mu       sync.RWMutex // guards the sessions map, not the sessions
	sessions map[string]*sessionState
}

// sessionState is one live conversation. Its mutex serializes evaluation
// and feedback for the session so histories stay append-only and ordered.
type sessionState struct {
	mu    sync.Mutex
	convo *types.ConversationContext
}

// NewEngine wires the full decision core from configuration and options.
func NewEngine(cfg *config.Config, opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	if opts.Analyzer == nil {
		opts.Analyzer = analysis.NewFailSafe(analysis.NewStaticAnalyzer(), cfg.GetLLMTimeout())
	}
	if opts.ActivityStore == nil {
		opts.ActivityStore = store.NewMemoryActivityStore()
	}
	if opts.FeedbackStore == nil {
		opts.FeedbackStore = store.NewMemoryFeedbackStore()
	}

	timingAnalyzer := timing.NewAnalyzer(cfg.Timing, clock)
	ctrl := control.NewController(cfg.Control, opts.ActivityStore, opts.Rand, clock)

	return &Engine{
		cfg:      cfg,
		signals:  signals.NewAggregator(cfg.Signals, opts.Analyzer, timingAnalyzer, clock),
		timing:   timingAnalyzer,
		control:  ctrl,
		decider:  decision.NewEngine(cfg.Decision, ctrl, clock),
		learner:  learning.NewLoop(cfg.Learning, opts.FeedbackStore, clock),
		clock:    clock,
		sessions: make(map[string]*sessionState),
	}
}

// StartSession registers a new conversation. It fails if the session id is
// already live.
func (e *Engine) StartSession(sessionID, meetingType, topic string, participants []types.Participant) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.sessions[sessionID]; exists {
		return fmt.Errorf("session %s already active", sessionID)
	}
	e.sessions[sessionID] = &sessionState{
		convo: &types.ConversationContext{
			SessionID:    sessionID,
			MeetingType:  meetingType,
			CurrentTopic: topic,
			Participants: participants,
			StartTime:    e.clock(),
		},
	}
	logging.Session("session started: id=%s type=%s topic=%q participants=%d",
		sessionID, meetingType, topic, len(participants))
	return nil
}

// EndSession drops the session's state. Feedback already recorded survives
// in the feedback store; the conversation history does not.
func (e *Engine) EndSession(sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.sessions[sessionID]; !exists {
		return fmt.Errorf("session %s not found", sessionID)
	}
	delete(e.sessions, sessionID)
	logging.Session("session ended: id=%s", sessionID)
	return nil
}

// ActiveSessions returns the ids of live sessions.
func (e *Engine) ActiveSessions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (e *Engine) session(sessionID string) (*sessionState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	return s, nil
}

// Evaluate ingests an optional new message and runs one full decision pass:
// signal aggregation, learned-threshold lookup, scenario scoring, and the
// manual-control gate. Affirmative decisions are appended to the session's
// intervention history before returning.
func (e *Engine) Evaluate(ctx context.Context, sessionID string, msg types.ProcessedMessage) (types.InterventionDecision, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return types.InterventionDecision{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID != "" || msg.Content != "" {
		s.convo.MessageHistory = append(s.convo.MessageHistory, msg)
	}

	now := e.clock()
	flow := e.signals.AnalyzeFlow(ctx, s.convo)

	var adjust *types.ThresholdAdjustments
	if primary, ok := s.convo.PrimaryParticipant(); ok {
		a, err := e.learner.UpdateThresholds(ctx, primary.ID)
		if err != nil {
			// Degrade to defaults rather than block the decision.
			logging.SessionDebug("threshold lookup failed for %s: %v", primary.ID, err)
		} else {
			adjust = &a
		}
	}

	d := e.decider.ShouldIntervene(decision.Signals{
		Convo:  s.convo,
		Flow:   flow,
		Adjust: adjust,
		Now:    now,
	})

	if d.ShouldRespond {
		s.convo.InterventionHistory = append(s.convo.InterventionHistory, decision.BuildRecord(d, now))
	}
	return d, nil
}

// DetectDrift runs an on-demand drift assessment for the session. It is a
// diagnostic read: nothing is appended to the session's history.
func (e *Engine) DetectDrift(ctx context.Context, sessionID string) (types.TopicDriftResult, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return types.TopicDriftResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return e.signals.DetectDrift(ctx, s.convo), nil
}

// ComputeTiming reports whether now is a good moment to deliver an
// intervention in the session, independent of whether one is warranted.
func (e *Engine) ComputeTiming(ctx context.Context, sessionID string) (types.TimingStrategy, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return types.TimingStrategy{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow := e.signals.AnalyzeFlow(ctx, s.convo)
	return e.timing.Strategy(s.convo, flow), nil
}

// RecordOutcome attaches feedback to an intervention previously issued in
// the session and feeds it to the learning loop, keyed by the session's
// primary participant.
func (e *Engine) RecordOutcome(ctx context.Context, sessionID, interventionID string, reaction types.UserReaction, outcome types.ConversationOutcome) (types.FeedbackRecord, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return types.FeedbackRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec *types.InterventionRecord
	for i := range s.convo.InterventionHistory {
		if s.convo.InterventionHistory[i].ID == interventionID {
			rec = &s.convo.InterventionHistory[i]
			break
		}
	}
	if rec == nil {
		return types.FeedbackRecord{}, fmt.Errorf("intervention %s not found in session %s", interventionID, sessionID)
	}

	primary, ok := s.convo.PrimaryParticipant()
	if !ok {
		return types.FeedbackRecord{}, fmt.Errorf("session %s has no participants", sessionID)
	}
	return e.learner.RecordOutcome(ctx, primary.ID, rec, reaction, outcome)
}

// Interventions returns a copy of the session's intervention history,
// oldest first.
func (e *Engine) Interventions(sessionID string) ([]types.InterventionRecord, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.InterventionRecord, len(s.convo.InterventionHistory))
	copy(out, s.convo.InterventionHistory)
	return out, nil
}

// SetActivityLevel sets a user's manual activity level. The setting is
// global to the user, not scoped to any session.
func (e *Engine) SetActivityLevel(userID string, level types.ActivityLevel, reason string) error {
	return e.control.SetActivityLevel(userID, level, reason)
}

// ActivityLevel returns a user's current manual activity level.
func (e *Engine) ActivityLevel(userID string) types.ActivityLevel {
	return e.control.ActivityLevel(userID)
}

// ActivityHistory returns a user's audit log of level changes.
func (e *Engine) ActivityHistory(userID string) []types.ActivityLevelChange {
	return e.control.History(userID)
}

// Metrics returns a user's learning aggregates.
func (e *Engine) Metrics(ctx context.Context, userID string) (types.LearningMetrics, error) {
	return e.learner.Metrics(ctx, userID)
}

// SuccessPatterns returns mined success patterns for a user.
func (e *Engine) SuccessPatterns(ctx context.Context, userID string) ([]types.InterventionPattern, error) {
	return e.learner.IdentifySuccessPatterns(ctx, userID)
}
