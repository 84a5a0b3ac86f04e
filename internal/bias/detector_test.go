package bias

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/textanalysis"
)

type auditEvent struct {
	eventType string
	severity  domain.Severity
	metadata  map[string]any
}

type stubAudit struct {
	events []auditEvent
}

func (s *stubAudit) LogEvent(_ context.Context, _, eventType, _ string, severity domain.Severity, metadata map[string]any) string {
	s.events = append(s.events, auditEvent{eventType: eventType, severity: severity, metadata: metadata})
	return "id"
}

type panickingDetector struct{}

func (panickingDetector) DetectProtectedAttributes(string) []string {
	panic("dictionary not loaded")
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		overall     float64
		gender      float64
		age         float64
		cultural    float64
		requirement float64
		protected   []string
	}{
		{
			name:      "neutral",
			text:      "We build data pipelines in Python and SQL.",
			protected: []string{},
		},
		{
			name:      "masculine coded",
			text:      "We want an aggressive, competitive leader.",
			overall:   1,
			gender:    1,
			protected: []string{},
		},
		{
			name:        "age coded",
			text:        "Join our young dynamic team of energetic people.",
			overall:     0.6,
			age:         0.6,
			requirement: 0.4,
			protected:   []string{"age"},
		},
		{
			name:        "nationality",
			text:        "Must be a native speaker and local candidate.",
			overall:     0.7,
			cultural:    0.7,
			requirement: 0.4,
			protected:   []string{},
		},
		{
			name:        "excessive experience",
			text:        "Requires 12+ years of experience with Spark.",
			overall:     0.6,
			requirement: 0.6,
			protected:   []string{},
		},
		{
			name:        "high experience",
			text:        "Requires 8 years experience with Spark.",
			overall:     0.3,
			requirement: 0.3,
			protected:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := NewDetector(0, textanalysis.NewHeuristic(nil), nil, nil)
			r := d.Detect(context.Background(), tt.text, "job_description")

			got := []float64{r.OverallScore, r.Gender.Score, r.Age.Score, r.Cultural.Score, r.Requirement.Score}
			want := []float64{tt.overall, tt.gender, tt.age, tt.cultural, tt.requirement}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("scores [overall gender age cultural requirement] = %v, want %v", got, want)
			}
			if !reflect.DeepEqual(r.ProtectedAttributes, tt.protected) {
				t.Fatalf("protected = %v, want %v", r.ProtectedAttributes, tt.protected)
			}
			if (tt.overall > DefaultThreshold) != slices.Contains(r.Recommendations, "Have job descriptions reviewed by diversity and inclusion team") {
				t.Fatalf("unexpected recommendations %v", r.Recommendations)
			}
		})
	}
}

func TestDetectGenderIndicators(t *testing.T) {
	t.Parallel()

	d := NewDetector(0, nil, nil, nil)
	r := d.Detect(context.Background(), "A confident leader who is also supportive.", "job_description")

	if r.Gender.Score != 0.33 {
		t.Fatalf("gender score = %v, want 0.33", r.Gender.Score)
	}
	want := []string{
		"Masculine-coded language detected: 2 instances",
		"Feminine-coded language detected: 1 instances",
		"Significant gender imbalance detected (0.33)",
	}
	if !reflect.DeepEqual(r.Gender.Indicators, want) {
		t.Fatalf("indicators = %v", r.Gender.Indicators)
	}
	if r.Gender.Details["masculine_words"] != 2 {
		t.Fatalf("details = %v", r.Gender.Details)
	}
}

func TestDetectLogsAuditEvent(t *testing.T) {
	t.Parallel()

	audit := &stubAudit{}
	d := NewDetector(0.15, nil, audit, nil)
	d.Detect(context.Background(), "We want an aggressive leader.", "job_description")
	d.Detect(context.Background(), "We build pipelines.", "job_description")

	if len(audit.events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(audit.events))
	}
	if audit.events[0].eventType != domain.EventBiasDetection || audit.events[0].severity != domain.SeverityHigh {
		t.Fatalf("unexpected first event %+v", audit.events[0])
	}
	if !reflect.DeepEqual(audit.events[0].metadata["bias_types_detected"], []string{"gender_bias"}) {
		t.Fatalf("bias types = %v", audit.events[0].metadata["bias_types_detected"])
	}
	if audit.events[1].severity != domain.SeverityLow {
		t.Fatalf("unexpected second event %+v", audit.events[1])
	}
}

func TestDetectFailureIsConservative(t *testing.T) {
	t.Parallel()

	r := NewDetector(0, panickingDetector{}, nil, nil).Detect(context.Background(), "text", "resume")
	if r.OverallScore != 1 || !r.Failed {
		t.Fatalf("expected conservative failure result, got %+v", r)
	}
	if !slices.Contains(r.Recommendations, "Bias detection failed - manual review required") {
		t.Fatalf("recommendations = %v", r.Recommendations)
	}
}

func TestCompareAndReport(t *testing.T) {
	t.Parallel()

	d := NewDetector(0, textanalysis.NewHeuristic(nil), nil, nil)
	c := d.Compare(context.Background(),
		"We want an aggressive, competitive leader.",
		"We want a person who owns delivery.",
		"original", "revised",
	)
	if c.ScoreA != 1 || c.ScoreB != 0 || c.Difference != 1 {
		t.Fatalf("comparison = %+v", c)
	}
	if !reflect.DeepEqual(c.ImprovementAreas, []string{"gender_bias"}) {
		t.Fatalf("improvement areas = %v", c.ImprovementAreas)
	}

	report := d.Report(d.Detect(context.Background(), "Must be a native speaker.", "job_description"))
	for _, want := range []string{
		"Overall Bias Score: 0.70/1.0",
		"Risk Level: HIGH",
		"Cultural Bias:",
		"Nationality bias detected: native\\s*speaker",
		"- Remove nationality and cultural fit requirements",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}
