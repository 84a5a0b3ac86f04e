// Package interview runs adaptive technical interviews: it selects questions,
// scores answers, adapts difficulty and produces the final report.
package interview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/integrity"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

// QuestionSource is the catalog view used by the engine.
type QuestionSource interface {
	ByCategory(category string, difficulty domain.Difficulty) []domain.Question
	ByDifficulty(difficulty domain.Difficulty) []domain.Question
	BalancedSet(count int, categories []string) []domain.Question
	HasCategory(category string) bool
}

// IntegrityMonitor tracks suspicion signals per session.
type IntegrityMonitor interface {
	StartSession(sessionID, candidateID string)
	AnalyzeAnswer(ctx context.Context, sessionID string, answer domain.Answer, questionText string) (domain.IntegrityMetrics, error)
	RecordBrowserEvent(sessionID, eventType string, details map[string]any) error
	Report(sessionID string) (integrity.Report, error)
	Release(sessionID string)
}

// AuditLogger is a fire-and-forget event sink.
type AuditLogger interface {
	LogEvent(ctx context.Context, sessionID, eventType, description string, severity domain.Severity, metadata map[string]any) string
}

// Observer receives engine activity, typically for metrics.
type Observer interface {
	SessionStarted()
	AnswerEvaluated(questionType string, score, integrity float64, failed bool)
	SessionFinished(state, reason string, overallScore float64, duration time.Duration)
}

// Dependencies are the collaborators of an Engine. Catalog and Monitor are required.
type Dependencies struct {
	Catalog    QuestionSource
	Monitor    IntegrityMonitor
	Similarity Similarity
	Audit      AuditLogger
	Observer   Observer
	Logger     *zap.Logger
	// Now overrides the clock.
	Now func() time.Time
}

// Submission is one answer to the pending question.
type Submission struct {
	Text             string `json:"answer_text"`
	Code             string `json:"code_snippet,omitempty"`
	TimeTakenSeconds int    `json:"time_taken"`
}

type Progress struct {
	QuestionsAsked int               `json:"questions_asked"`
	MaxQuestions   int               `json:"max_questions"`
	Difficulty     domain.Difficulty `json:"current_difficulty"`
	AverageScore   float64           `json:"average_score"`
	ElapsedSeconds float64           `json:"time_elapsed"`
	IntegrityScore float64           `json:"integrity_score"`
}

// Outcome is returned by SubmitAnswer. Report is set only when Complete is true.
type Outcome struct {
	Score        float64                 `json:"answer_score"`
	Feedback     string                  `json:"answer_feedback"`
	Failure      string                  `json:"evaluation_failure,omitempty"`
	Integrity    domain.IntegrityMetrics `json:"integrity_metrics"`
	Complete     bool                    `json:"session_complete"`
	NextQuestion *domain.Question        `json:"next_question,omitempty"`
	Progress     Progress                `json:"session_progress"`
	Report       *domain.InterviewReport `json:"interview_report,omitempty"`
}

type Status struct {
	SessionID       string              `json:"session_id"`
	CandidateID     string              `json:"candidate_id"`
	JobID           string              `json:"job_id"`
	State           domain.SessionState `json:"state"`
	Active          bool                `json:"is_active"`
	CurrentQuestion *domain.Question    `json:"current_question,omitempty"`
	QuestionsAsked  int                 `json:"questions_asked"`
	Difficulty      domain.Difficulty   `json:"current_difficulty"`
	IntegrityScore  float64             `json:"integrity_score"`
	DurationSeconds float64             `json:"session_duration"`
}

// Termination reasons.
const (
	ReasonMaxQuestions   = "max_questions_reached"
	ReasonTimeout        = "time_limit_exceeded"
	ReasonLowPerformance = "performance_below_threshold"
	ReasonMastery        = "performance_above_threshold"
	ReasonNoQuestions    = "no_questions_available"
)

const integrityFailedFlag = "integrity_analysis_failed"

// Engine owns all live interview sessions.
type Engine struct {
	cfg      Config
	catalog  QuestionSource
	monitor  IntegrityMonitor
	audit    AuditLogger
	observer Observer
	rubrics  rubrics
	store    *Store
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewEngine(cfg Config, deps Dependencies) (*Engine, error) {
	if deps.Catalog == nil {
		return nil, errors.New("interview engine requires a question catalog")
	}
	if deps.Monitor == nil {
		return nil, errors.New("interview engine requires an integrity monitor")
	}

	log := logger.WithFields(deps.Logger, zap.String("component", "interview"))
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		cfg:      cfg.withDefaults(),
		catalog:  deps.Catalog,
		monitor:  deps.Monitor,
		audit:    deps.Audit,
		observer: deps.Observer,
		rubrics:  rubrics{similarity: deps.Similarity, logger: log},
		store:    NewStore(),
		logger:   log,
		now:      now,
		newID:    uuid.NewString,
	}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// ActiveSessions returns the number of sessions that have not terminated.
func (e *Engine) ActiveSessions() int {
	return e.store.Len()
}

// StartSession opens a session and attaches its first question. Without
// categories the configured default set is used. It fails with
// ErrCatalogExhausted when none of the categories has questions.
func (e *Engine) StartSession(ctx context.Context, candidateID, jobID string, categories []string) (domain.InterviewSession, error) {
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return domain.InterviewSession{}, fmt.Errorf("%w: candidate id is required", domain.ErrInvalidArgument)
	}

	requested := categories
	if len(requested) == 0 {
		requested = e.cfg.DefaultCategories
	}
	available := make([]string, 0, len(requested))
	for _, c := range requested {
		if e.catalog.HasCategory(c) && !slices.Contains(available, c) {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		return domain.InterviewSession{}, fmt.Errorf("%w: no questions for categories %v", domain.ErrCatalogExhausted, requested)
	}

	initial := e.catalog.BalancedSet(e.cfg.MinQuestions, available)
	if len(initial) == 0 {
		return domain.InterviewSession{}, fmt.Errorf("%w: no questions for categories %v", domain.ErrCatalogExhausted, requested)
	}

	id := e.newID()
	e.monitor.StartSession(id, candidateID)

	first := initial[0]
	session := domain.InterviewSession{
		ID:               id,
		CandidateID:      candidateID,
		JobID:            jobID,
		StartedAt:        e.now(),
		CurrentQuestion:  &first,
		Answers:          make([]domain.Answer, 0, e.cfg.MaxQuestions),
		Difficulty:       e.cfg.DefaultDifficulty,
		IntegrityScore:   100,
		ComplianceStatus: domain.Compliant,
		State:            domain.StateInProgress,
		Active:           true,
	}

	ent := &entry{
		session:        session,
		remaining:      initial[1:],
		asked:          map[string]bool{first.ID: true},
		categoryScores: make(map[string][]float64),
		logger:         logger.WithSession(e.logger, id, candidateID),
	}
	e.store.insert(id, ent)

	e.logEvent(ctx, id, domain.EventSessionStart,
		fmt.Sprintf("Started interview session for candidate %s", candidateID),
		domain.SeverityLow,
		map[string]any{
			"candidate_id":       candidateID,
			"job_id":             jobID,
			"target_categories":  available,
			"initial_difficulty": string(session.Difficulty),
			"initial_questions":  len(initial),
		},
	)
	if e.observer != nil {
		e.observer.SessionStarted()
	}

	ent.logger.Info("interview session started",
		zap.String("job_id", jobID),
		zap.Strings("categories", available),
		zap.Int("initial_questions", len(initial)),
	)

	return session.Snapshot(), nil
}

// SubmitAnswer scores the answer to the pending question, records integrity
// signals and either attaches the next question or terminates the session.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID string, sub Submission) (Outcome, error) {
	if sub.TimeTakenSeconds < 0 {
		return Outcome{}, fmt.Errorf("%w: time taken must not be negative", domain.ErrInvalidArgument)
	}

	ent, ok := e.store.lookup(sessionID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()

	if ent.closed || ent.session.State.Terminal() || ent.session.CurrentQuestion == nil {
		return Outcome{}, fmt.Errorf("%w: session %s", domain.ErrNoPendingQuestion, sessionID)
	}

	question := *ent.session.CurrentQuestion
	evaluation := e.rubrics.evaluate(ctx, question, sub.Text, sub.Code)

	answer := domain.Answer{
		QuestionID:       question.ID,
		Text:             sub.Text,
		Code:             sub.Code,
		TimeTakenSeconds: sub.TimeTakenSeconds,
		SubmittedAt:      e.now(),
		Score:            evaluation.Score,
		Feedback:         evaluation.Feedback,
	}

	metrics := e.analyzeIntegrity(ctx, ent, answer, question.Text)

	ent.session.Answers = append(ent.session.Answers, answer)
	ent.history = append(ent.history, performance{
		question:  question,
		score:     answer.Score,
		seconds:   answer.TimeTakenSeconds,
		integrity: metrics.OverallScore,
	})
	if _, seen := ent.categoryScores[question.Category]; !seen {
		ent.categories = append(ent.categories, question.Category)
	}
	ent.categoryScores[question.Category] = append(ent.categoryScores[question.Category], answer.Score)
	ent.metrics = append(ent.metrics, metrics)
	ent.session.IntegrityScore = utils.Round2(sessionIntegrity(ent.metrics))
	ent.session.ComplianceStatus = complianceStatus(ent.session.IntegrityScore, e.cfg.IntegrityThreshold)

	e.logEvent(ctx, sessionID, domain.EventAnswerSubmission,
		fmt.Sprintf("Answer submitted for question %s", question.ID),
		answerSeverity(metrics.OverallScore, e.cfg.IntegrityThreshold),
		map[string]any{
			"question_id":        question.ID,
			"score":              answer.Score,
			"time_taken":         answer.TimeTakenSeconds,
			"integrity_score":    metrics.OverallScore,
			"evaluation_failure": evaluation.Failure,
		},
	)
	if e.observer != nil {
		e.observer.AnswerEvaluated(string(question.Type), answer.Score, metrics.OverallScore, evaluation.Failure != "")
	}

	ent.logger.Info("answer evaluated",
		zap.String(logger.FieldQuestion, question.ID),
		zap.String("type", string(question.Type)),
		zap.Float64("score", answer.Score),
		zap.Float64("integrity", metrics.OverallScore),
	)

	outcome := Outcome{
		Score:     answer.Score,
		Feedback:  answer.Feedback,
		Failure:   evaluation.Failure,
		Integrity: metrics,
	}

	state, reason := e.decide(ent)
	if state == "" {
		next := *ent.session.CurrentQuestion
		outcome.NextQuestion = &next
		outcome.Progress = e.progress(ent)
		return outcome, nil
	}

	report := e.finish(ctx, ent, state, reason)
	outcome.Complete = true
	outcome.Progress = e.progress(ent)
	outcome.Report = &report
	return outcome, nil
}

// analyzeIntegrity never fails: errors and panics degrade to a neutral metric.
func (e *Engine) analyzeIntegrity(ctx context.Context, ent *entry, answer domain.Answer, questionText string) (metrics domain.IntegrityMetrics) {
	neutral := func() domain.IntegrityMetrics {
		score := ent.session.IntegrityScore
		return domain.IntegrityMetrics{
			TextScore:        score,
			TimingScore:      score,
			ConsistencyScore: score,
			OverallScore:     score,
			Flags:            []string{integrityFailedFlag},
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			ent.logger.Error("integrity analysis panicked", zap.Any("panic", rec))
			metrics = neutral()
		}
	}()

	m, err := e.monitor.AnalyzeAnswer(ctx, ent.session.ID, answer, questionText)
	if err != nil {
		ent.logger.Warn("integrity analysis failed", zap.Error(err))
		return neutral()
	}
	return m
}

// RecordBrowserEvent forwards a client-side event to the integrity monitor.
func (e *Engine) RecordBrowserEvent(ctx context.Context, sessionID, eventType string, details map[string]any) error {
	ent, ok := e.store.lookup(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	if ent.closed {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	if err := e.monitor.RecordBrowserEvent(sessionID, eventType, details); err != nil {
		return err
	}

	severity := domain.SeverityLow
	if slices.Contains(integrity.SuspiciousBrowserEvents, strings.ToLower(strings.TrimSpace(eventType))) {
		severity = domain.SeverityMedium
	}
	e.logEvent(ctx, sessionID, domain.EventBrowser,
		fmt.Sprintf("Browser event %s recorded", eventType),
		severity,
		map[string]any{"event_type": eventType, "details": details},
	)
	return nil
}

// GetSessionStatus reports a live session. A session past its time limit is
// reported as timed out but is only finalized by the next submission.
func (e *Engine) GetSessionStatus(sessionID string) (Status, error) {
	ent, ok := e.store.lookup(sessionID)
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	if ent.closed {
		return Status{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	s := ent.session.Snapshot()
	elapsed := e.now().Sub(s.StartedAt)
	state := s.State
	if !state.Terminal() && elapsed > e.cfg.MaxDuration {
		state = domain.StateTimedOut
	}

	return Status{
		SessionID:       s.ID,
		CandidateID:     s.CandidateID,
		JobID:           s.JobID,
		State:           state,
		Active:          s.Active,
		CurrentQuestion: s.CurrentQuestion,
		QuestionsAsked:  len(s.Answers),
		Difficulty:      s.Difficulty,
		IntegrityScore:  s.IntegrityScore,
		DurationSeconds: utils.Round2(elapsed.Seconds()),
	}, nil
}

func (e *Engine) progress(ent *entry) Progress {
	scores := make([]float64, 0, len(ent.history))
	for _, p := range ent.history {
		scores = append(scores, p.score)
	}
	return Progress{
		QuestionsAsked: len(ent.history),
		MaxQuestions:   e.cfg.MaxQuestions,
		Difficulty:     ent.session.Difficulty,
		AverageScore:   utils.Round2(utils.Mean(scores)),
		ElapsedSeconds: utils.Round2(e.now().Sub(ent.session.StartedAt).Seconds()),
		IntegrityScore: ent.session.IntegrityScore,
	}
}

// finish builds the report, closes the session and releases its resources.
func (e *Engine) finish(ctx context.Context, ent *entry, state domain.SessionState, reason string) domain.InterviewReport {
	ent.session.State = state
	ent.session.Active = false
	ent.session.CurrentQuestion = nil
	ent.closed = true

	report := e.buildReport(ent, reason)
	duration := e.now().Sub(ent.session.StartedAt)

	e.logEvent(ctx, ent.session.ID, domain.EventSessionEnd,
		fmt.Sprintf("Ended interview session for candidate %s", ent.session.CandidateID),
		endSeverity(report.Compliance.OverallStatus),
		map[string]any{
			"candidate_id":          ent.session.CandidateID,
			"state":                 string(state),
			"termination_reason":    reason,
			"questions_answered":    len(ent.session.Answers),
			"overall_score":         report.OverallScore,
			"domain_scores":         report.DomainScores,
			"final_integrity_score": ent.session.IntegrityScore,
			"compliance_status":     report.Compliance.OverallStatus,
			"duration_seconds":      utils.Round2(duration.Seconds()),
		},
	)

	e.monitor.Release(ent.session.ID)
	e.store.remove(ent.session.ID)

	if e.observer != nil {
		e.observer.SessionFinished(string(state), reason, report.OverallScore, duration)
	}

	ent.logger.Info("interview session ended",
		zap.String("state", string(state)),
		zap.String("reason", reason),
		zap.Float64("overall_score", report.OverallScore),
		zap.Duration("duration", duration),
	)

	return report
}

func (e *Engine) logEvent(ctx context.Context, sessionID, eventType, description string, severity domain.Severity, metadata map[string]any) {
	if e.audit == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn("audit logger panicked",
				zap.String(logger.FieldSession, sessionID),
				zap.String("event_type", eventType),
				zap.Any("panic", rec),
			)
		}
	}()
	e.audit.LogEvent(ctx, sessionID, eventType, description, severity, metadata)
}

func sessionIntegrity(metrics []domain.IntegrityMetrics) float64 {
	if len(metrics) == 0 {
		return 100
	}
	scores := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		scores = append(scores, m.OverallScore)
	}
	return utils.Mean(scores)
}

func complianceStatus(score, threshold float64) domain.ComplianceStatus {
	switch {
	case score >= threshold:
		return domain.Compliant
	case score >= 50:
		return domain.Warning
	default:
		return domain.Violation
	}
}

func answerSeverity(integrityScore, threshold float64) domain.Severity {
	switch {
	case integrityScore < 50:
		return domain.SeverityHigh
	case integrityScore < threshold:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func endSeverity(status string) domain.Severity {
	switch domain.ComplianceStatus(status) {
	case domain.Violation:
		return domain.SeverityHigh
	case domain.Warning:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
