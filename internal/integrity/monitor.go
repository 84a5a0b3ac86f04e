// Package integrity scores interview answers for signs of copied, scripted or
// assisted responses and keeps a cumulative integrity score per session.
package integrity

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

// AuditLogger receives one integrity_analysis event per analyzed answer.
type AuditLogger interface {
	LogEvent(ctx context.Context, sessionID, eventType, description string, severity domain.Severity, metadata map[string]any) string
}

// SuspiciousBrowserEvents are the browser event types that raise a flag.
var SuspiciousBrowserEvents = []string{"tab_switch", "window_focus_lost", "copy_paste_detected"}

type BrowserEvent struct {
	Type      string         `json:"type"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type answerRecord struct {
	questionID string
	text       string
	normalized string
	seconds    int
	score      float64
	flags      []string
	at         time.Time
}

type sessionData struct {
	mu sync.Mutex

	sessionID   string
	candidateID string
	startedAt   time.Time

	answers       []answerRecord
	browserEvents []BrowserEvent
	flags         []string
	// pendingBrowser holds browser flags raised since the last analyzed answer.
	pendingBrowser []string
}

// Monitor tracks integrity signals for many sessions. Sessions are
// independent; calls for one session are serialized.
type Monitor struct {
	cfg    Thresholds
	audit  AuditLogger
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionData
}

// NewMonitor creates a monitor. audit may be nil.
func NewMonitor(cfg Thresholds, audit AuditLogger, log *zap.Logger) *Monitor {
	return &Monitor{
		cfg:      cfg.withDefaults(),
		audit:    audit,
		logger:   logger.WithFields(log, zap.String("component", "integrity")),
		now:      time.Now,
		sessions: make(map[string]*sessionData),
	}
}

// StartSession initializes monitoring for sessionID. Starting an already
// monitored session resets its state.
func (m *Monitor) StartSession(sessionID, candidateID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = &sessionData{
		sessionID:   sessionID,
		candidateID: candidateID,
		startedAt:   m.now(),
		flags:       make([]string, 0),
	}

	logger.WithSession(m.logger, sessionID, candidateID).Info("integrity monitoring started")
}

// Release drops all monitoring data of sessionID.
func (m *Monitor) Release(sessionID string) {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok {
		m.logger.Info("integrity monitoring released", zap.String(logger.FieldSession, sessionID))
	}
}

// Sessions returns the number of monitored sessions.
func (m *Monitor) Sessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Monitor) session(sessionID string) (*sessionData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: integrity monitoring for %s", domain.ErrSessionNotFound, sessionID)
	}
	return s, nil
}

// AnalyzeAnswer scores answer against the text, timing and consistency
// heuristics and folds the result into the session score.
func (m *Monitor) AnalyzeAnswer(ctx context.Context, sessionID string, answer domain.Answer, questionText string) (domain.IntegrityMetrics, error) {
	s, err := m.session(sessionID)
	if err != nil {
		return domain.IntegrityMetrics{}, err
	}

	s.mu.Lock()
	text := m.analyzeText(answer.Text)
	timing := m.analyzeTiming(answer.TimeTakenSeconds, questionText)
	consistency := m.analyzeConsistency(answer.Text, s.answers)

	flags := slices.Concat(text.flags, timing.flags, consistency.flags)
	overall := (text.score + timing.score + consistency.score) / 3

	browser := s.pendingBrowser
	s.pendingBrowser = nil

	s.answers = append(s.answers, answerRecord{
		questionID: answer.QuestionID,
		text:       answer.Text,
		normalized: normalizeAnswer(answer.Text),
		seconds:    answer.TimeTakenSeconds,
		score:      overall,
		flags:      flags,
		at:         answer.SubmittedAt,
	})
	s.flags = append(s.flags, flags...)
	sessionScore := s.score()
	s.mu.Unlock()

	metrics := domain.IntegrityMetrics{
		CopyPasteDetected: hasFlagPrefix(flags, "copy_paste"),
		UnusualTiming:     hasFlagPrefix(flags, "timing"),
		BrowserAnomaly:    len(browser) > 0,
		TextScore:         utils.Round2(text.score),
		TimingScore:       utils.Round2(timing.score),
		ConsistencyScore:  utils.Round2(consistency.score),
		OverallScore:      utils.Round2(overall),
		Flags:             slices.Concat(flags, browser),
	}

	m.logger.Debug("answer integrity analyzed",
		zap.String(logger.FieldSession, sessionID),
		zap.String(logger.FieldQuestion, answer.QuestionID),
		zap.Float64("overall", metrics.OverallScore),
		zap.Float64("session_score", sessionScore),
		zap.Strings("flags", metrics.Flags),
	)

	m.logAnalysis(ctx, sessionID, metrics)

	return metrics, nil
}

func (m *Monitor) logAnalysis(ctx context.Context, sessionID string, metrics domain.IntegrityMetrics) {
	if m.audit == nil {
		return
	}

	severity := domain.SeverityLow
	if metrics.OverallScore < m.cfg.Threshold {
		severity = domain.SeverityHigh
	}

	m.audit.LogEvent(ctx, sessionID, domain.EventIntegrityAnalysis,
		fmt.Sprintf("Integrity analysis for session %s", sessionID),
		severity,
		map[string]any{
			"overall_integrity_score":  metrics.OverallScore,
			"copy_paste_detected":      metrics.CopyPasteDetected,
			"unusual_timing_patterns":  metrics.UnusualTiming,
			"browser_anomalies":        metrics.BrowserAnomaly,
			"answer_consistency_score": metrics.ConsistencyScore,
			"flags_count":              len(metrics.Flags),
		},
	)
}

// RecordBrowserEvent stores a client-side event. Suspicious event types add
// a browser_<type> flag. Already computed answer scores are not changed.
func (m *Monitor) RecordBrowserEvent(sessionID, eventType string, details map[string]any) error {
	s, err := m.session(sessionID)
	if err != nil {
		return err
	}

	eventType = strings.ToLower(strings.TrimSpace(eventType))
	if eventType == "" {
		return fmt.Errorf("%w: browser event type is required", domain.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.browserEvents = append(s.browserEvents, BrowserEvent{Type: eventType, Details: details, Timestamp: m.now()})
	if slices.Contains(SuspiciousBrowserEvents, eventType) {
		flag := "browser_" + eventType
		s.flags = append(s.flags, flag)
		s.pendingBrowser = append(s.pendingBrowser, flag)
		m.logger.Info("suspicious browser event",
			zap.String(logger.FieldSession, sessionID),
			zap.String("event", eventType),
		)
	}

	return nil
}

// SessionScore is the mean of all per-answer overall scores, 100 before the first answer.
func (m *Monitor) SessionScore(sessionID string) (float64, error) {
	s, err := m.session(sessionID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score(), nil
}

func (s *sessionData) score() float64 {
	if len(s.answers) == 0 {
		return 100
	}
	scores := make([]float64, 0, len(s.answers))
	for _, a := range s.answers {
		scores = append(scores, a.score)
	}
	return utils.Mean(scores)
}

func hasFlagPrefix(flags []string, prefix string) bool {
	for _, flag := range flags {
		if strings.HasPrefix(flag, prefix) {
			return true
		}
	}
	return false
}
