package audit

import (
	"fmt"
	"slices"
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/utils"
)

const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
	RiskLow    = "LOW"
)

type TimelineEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	EventType   string          `json:"event_type"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
}

type ComplianceReport struct {
	SessionID       string                  `json:"session_id"`
	GeneratedAt     time.Time               `json:"generated_at"`
	TotalEvents     int                     `json:"total_events"`
	ComplianceScore float64                 `json:"compliance_score"`
	RiskLevel       string                  `json:"risk_level"`
	EventTypes      map[string]int          `json:"event_types"`
	Severity        map[domain.Severity]int `json:"severity_breakdown"`
	Timeline        []TimelineEntry         `json:"timeline"`
	Recommendations []string                `json:"recommendations"`
}

// BuildReport summarizes logs of a single session. Every high severity
// percentage point costs two compliance points.
func BuildReport(sessionID string, logs []domain.ComplianceLog, now time.Time) (ComplianceReport, error) {
	if len(logs) == 0 {
		return ComplianceReport{}, fmt.Errorf("%w: no audit logs for session %s", domain.ErrSessionNotFound, sessionID)
	}

	report := ComplianceReport{
		SessionID:   sessionID,
		GeneratedAt: now.UTC(),
		TotalEvents: len(logs),
		EventTypes:  make(map[string]int),
		Severity:    severityCounts(),
		Timeline:    make([]TimelineEntry, 0, len(logs)),
	}

	for _, l := range logs {
		report.EventTypes[l.EventType]++
		report.Severity[l.Severity]++
		report.Timeline = append(report.Timeline, TimelineEntry{
			Timestamp:   l.Timestamp,
			EventType:   l.EventType,
			Description: l.Description,
			Severity:    l.Severity,
		})
	}
	slices.SortStableFunc(report.Timeline, func(a, b TimelineEntry) int { return a.Timestamp.Compare(b.Timestamp) })

	highShare := float64(report.Severity[domain.SeverityHigh]) / float64(len(logs)) * 100
	report.ComplianceScore = utils.Round2(max(0, 100-highShare*2))

	switch {
	case report.ComplianceScore < 70:
		report.RiskLevel = RiskHigh
	case report.ComplianceScore < 90:
		report.RiskLevel = RiskMedium
	default:
		report.RiskLevel = RiskLow
	}

	report.Recommendations = recommendations(report.Severity, report.EventTypes)
	return report, nil
}

func severityCounts() map[domain.Severity]int {
	return map[domain.Severity]int{
		domain.SeverityLow:    0,
		domain.SeverityMedium: 0,
		domain.SeverityHigh:   0,
	}
}

func recommendations(severity map[domain.Severity]int, events map[string]int) []string {
	out := make([]string, 0)

	if severity[domain.SeverityHigh] > 0 {
		out = append(out, "Review high severity events - immediate attention required")
	}
	if events[domain.EventBiasDetection] > 2 {
		out = append(out, "Multiple bias detection events - review content for discriminatory language")
	}
	if events[domain.EventIntegrityAnalysis] > 5 {
		out = append(out, "Frequent integrity issues - consider additional monitoring")
	}
	if events[domain.EventResumeCompliance] > 0 {
		out = append(out, "Resume compliance checks performed - review scoring fairness")
	}

	total := 0
	for _, n := range severity {
		total += n
	}
	if total > 20 {
		out = append(out, "High number of compliance events - consider process review")
	}

	return out
}
