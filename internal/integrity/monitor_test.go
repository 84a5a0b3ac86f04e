package integrity

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	explainQuestion = "Explain the bias-variance tradeoff."
	cleanAnswer     = "The tradeoff balances underfitting and overfitting. Simple models have high bias, while complex models have high variance."
)

type auditEvent struct {
	sessionID string
	eventType string
	severity  domain.Severity
	metadata  map[string]any
}

type stubAudit struct {
	mu     sync.Mutex
	events []auditEvent
}

func (s *stubAudit) LogEvent(_ context.Context, sessionID, eventType, _ string, severity domain.Severity, metadata map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, auditEvent{sessionID: sessionID, eventType: eventType, severity: severity, metadata: metadata})
	return "log-id"
}

func newTestMonitor(t *testing.T) (*Monitor, *stubAudit) {
	t.Helper()
	audit := &stubAudit{}
	m := NewMonitor(DefaultThresholds(), audit, zap.NewNop())
	m.StartSession("s1", "c1")
	return m, audit
}

func answer(text string, seconds int) domain.Answer {
	return domain.Answer{QuestionID: "q", Text: text, TimeTakenSeconds: seconds, SubmittedAt: time.Now()}
}

func TestCleanAnswerKeepsFullScore(t *testing.T) {
	t.Parallel()

	m, audit := newTestMonitor(t)
	metrics, err := m.AnalyzeAnswer(context.Background(), "s1", answer(cleanAnswer, 120), explainQuestion)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if metrics.OverallScore != 100 {
		t.Fatalf("expected 100, got %v with flags %v", metrics.OverallScore, metrics.Flags)
	}
	if metrics.CopyPasteDetected || metrics.UnusualTiming || metrics.BrowserAnomaly {
		t.Fatalf("expected no anomalies, got %+v", metrics)
	}

	if len(audit.events) != 1 || audit.events[0].eventType != domain.EventIntegrityAnalysis || audit.events[0].severity != domain.SeverityLow {
		t.Fatalf("unexpected audit events %+v", audit.events)
	}
}

func TestRepeatedAnswerLosesConsistency(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(t)
	ctx := context.Background()
	if _, err := m.AnalyzeAnswer(ctx, "s1", answer(cleanAnswer, 120), explainQuestion); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	repeated := "  " + strings.ToUpper(cleanAnswer[:1]) + strings.ReplaceAll(cleanAnswer[1:], " ", "   ") + "\n"
	metrics, err := m.AnalyzeAnswer(ctx, "s1", answer(repeated, 120), explainQuestion)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if !slices.Contains(metrics.Flags, "consistency_repeated_answer") {
		t.Fatalf("expected repeated answer flag, got %v", metrics.Flags)
	}
	if metrics.ConsistencyScore > 65 {
		t.Fatalf("expected consistency loss of at least 35, got %v", metrics.ConsistencyScore)
	}
}

func TestSessionScoreIsMeanOfAnswers(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(t)
	ctx := context.Background()

	inputs := []domain.Answer{
		answer(cleanAnswer, 120),
		answer("idk", 2),
		answer("Regularization such as L2 penalties reduces variance because it constrains weights. Therefore the model generalizes better.", 700),
	}

	var overall []float64
	for _, in := range inputs {
		metrics, err := m.AnalyzeAnswer(ctx, "s1", in, explainQuestion)
		if err != nil {
			t.Fatalf("analyze: %v", err)
		}
		overall = append(overall, metrics.OverallScore)
	}

	got, err := m.SessionScore("s1")
	if err != nil {
		t.Fatalf("session score: %v", err)
	}
	want := (overall[0] + overall[1] + overall[2]) / 3
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("expected mean %v of %v, got %v", want, overall, got)
	}
}

func TestSessionScoreUsesEveryAnswerEqually(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(t)
	s, err := m.session("s1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	for _, score := range []float64{100, 60, 20} {
		s.answers = append(s.answers, answerRecord{score: score})
	}

	got, err := m.SessionScore("s1")
	if err != nil {
		t.Fatalf("session score: %v", err)
	}
	if got != 60 {
		t.Fatalf("expected 60, got %v", got)
	}
}

func TestTextHeuristics(t *testing.T) {
	t.Parallel()

	m := NewMonitor(DefaultThresholds(), nil, nil)

	tests := []struct {
		name     string
		text     string
		flag     string
		maxScore float64
	}{
		{name: "empty", text: "  ", flag: "copy_paste_empty_answer", maxScore: 0},
		{name: "generic", text: "idk", flag: "copy_paste_detected", maxScore: 50},
		{name: "too long", text: strings.Repeat("word ", 500), flag: "copy_paste_too_long", maxScore: 85},
		{name: "code", text: "import os\ndef run():\n    print(os.getcwd())", flag: "copy_paste_suspicious_code", maxScore: 75},
		{name: "template", text: "This is a great question. In my experience caching helps a lot.", flag: "copy_paste_template_match", maxScore: 80},
		{name: "repetition", text: strings.Repeat("This sentence is long enough to count.\n", 3), flag: "repetition_detected", maxScore: 80},
		{name: "formatting", text: "The answer is @@@@ obviously correct here", flag: "formatting_anomalies_detected", maxScore: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := m.analyzeText(tt.text)
			if !slices.Contains(got.flags, tt.flag) {
				t.Fatalf("expected flag %s, got %v", tt.flag, got.flags)
			}
			if got.score > tt.maxScore {
				t.Fatalf("expected score <= %v, got %v", tt.maxScore, got.score)
			}
			if got.score < 0 {
				t.Fatalf("score below zero: %v", got.score)
			}
		})
	}
}

func TestTimingPenaltiesStack(t *testing.T) {
	t.Parallel()

	m := NewMonitor(DefaultThresholds(), nil, nil)

	fast := m.analyzeTiming(3, explainQuestion)
	for _, flag := range []string{"timing_suspiciously_fast", "timing_too_fast", "timing_unexpected_for_complexity"} {
		if !slices.Contains(fast.flags, flag) {
			t.Fatalf("expected %s in %v", flag, fast.flags)
		}
	}
	if fast.score != 25 {
		t.Fatalf("expected 25, got %v", fast.score)
	}

	slow := m.analyzeTiming(2000, explainQuestion)
	if slow.score != 40 {
		t.Fatalf("expected 40, got %v with %v", slow.score, slow.flags)
	}

	// Far beyond the time.Duration range.
	huge := m.analyzeTiming(10_000_000_000, explainQuestion)
	if !slices.Equal(huge.flags, []string{"timing_suspiciously_slow", "timing_too_slow", "timing_unexpected_for_complexity"}) {
		t.Fatalf("expected slow flags, got %v", huge.flags)
	}
	if huge.score != 40 {
		t.Fatalf("expected 40, got %v", huge.score)
	}

	onTime := m.analyzeTiming(120, explainQuestion)
	if onTime.score != 100 {
		t.Fatalf("expected 100, got %v with %v", onTime.score, onTime.flags)
	}
}

func TestEstimateComplexity(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"What is a tensor?":                       1,
		"Describe gradient descent.":              2,
		"Compare SQL and NoSQL stores.":           3,
		"Design a feature store.":                 4,
		"Optimize and architect a serving layer.": 5,
		"Tensors?": 1,
	}
	for question, want := range tests {
		if got := EstimateComplexity(question); got != want {
			t.Fatalf("%q: expected %d, got %d", question, want, got)
		}
	}
}

func TestBrowserEventsFlagNextAnswerOnly(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(t)
	ctx := context.Background()

	if err := m.RecordBrowserEvent("s1", "tab_switch", map[string]any{"count": 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := m.RecordBrowserEvent("s1", "mouse_move", nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	first, _ := m.AnalyzeAnswer(ctx, "s1", answer(cleanAnswer, 120), explainQuestion)
	if !first.BrowserAnomaly || !slices.Contains(first.Flags, "browser_tab_switch") {
		t.Fatalf("expected browser anomaly, got %+v", first)
	}
	if first.OverallScore != 100 {
		t.Fatalf("browser events must not change the score, got %v", first.OverallScore)
	}

	second, _ := m.AnalyzeAnswer(ctx, "s1", answer("Cross validation estimates generalization error on held out folds of the data.", 120), explainQuestion)
	if second.BrowserAnomaly {
		t.Fatalf("expected no browser anomaly on the following answer")
	}

	report, err := m.Report("s1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.BrowserEvents != 2 || report.SuspiciousCount != 1 {
		t.Fatalf("unexpected browser counts %+v", report)
	}
	if !slices.Contains(report.Recommendations, "Candidate switched browser tabs during interview") {
		t.Fatalf("expected tab switch recommendation, got %v", report.Recommendations)
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	m := NewMonitor(DefaultThresholds(), nil, zap.NewNop())
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }
	m.StartSession("s1", "c1")
	m.now = func() time.Time { return start.Add(90 * time.Second) }
	ctx := context.Background()

	_, _ = m.AnalyzeAnswer(ctx, "s1", answer("idk", 2), explainQuestion)
	_, _ = m.AnalyzeAnswer(ctx, "s1", answer("no idea", 3), explainQuestion)

	report, err := m.Report("s1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.RiskLevel != RiskHigh {
		t.Fatalf("expected high risk, got %s (score %v)", report.RiskLevel, report.OverallScore)
	}
	if report.DurationSeconds != 90 {
		t.Fatalf("expected 90 seconds, got %v", report.DurationSeconds)
	}
	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"session_duration":90`) {
		t.Fatalf("expected duration in seconds, got %s", raw)
	}
	if report.AnswerAnalysis == nil || report.AnswerAnalysis.Fastest != 2 || report.AnswerAnalysis.Slowest != 3 {
		t.Fatalf("unexpected answer analysis %+v", report.AnswerAnalysis)
	}
	for _, want := range []string{
		"Review session for potential integrity violations",
		"Multiple suspiciously fast answers detected",
		"Multiple low-integrity answers detected",
	} {
		if !slices.Contains(report.Recommendations, want) {
			t.Fatalf("missing recommendation %q in %v", want, report.Recommendations)
		}
	}
}

func TestUnknownAndReleasedSessions(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	m := NewMonitor(DefaultThresholds(), nil, zap.New(core))

	if _, err := m.AnalyzeAnswer(context.Background(), "missing", answer(cleanAnswer, 60), explainQuestion); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := m.RecordBrowserEvent("missing", "tab_switch", nil); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	m.StartSession("s2", "c2")
	if m.Sessions() != 1 {
		t.Fatalf("expected one monitored session")
	}
	m.Release("s2")
	if _, err := m.Report("s2"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after release, got %v", err)
	}
	if logs.FilterMessage("integrity monitoring released").Len() != 1 {
		t.Fatalf("expected release log entry")
	}
}
