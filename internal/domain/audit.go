package domain

import (
	"fmt"
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func ParseSeverity(raw string) (Severity, error) {
	switch s := Severity(strings.ToLower(strings.TrimSpace(raw))); s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidArgument, raw)
	}
}

// Audit event types.
const (
	EventSessionStart      = "interview_session_start"
	EventAnswerSubmission  = "answer_submission"
	EventSessionEnd        = "interview_session_end"
	EventIntegrityAnalysis = "integrity_analysis"
	EventBrowser           = "browser_event"
	EventResumeCompliance  = "resume_compliance_check"
	EventBiasDetection     = "bias_detection"
)

// ComplianceLog is a write-once audit record.
type ComplianceLog struct {
	ID          string         `json:"log_id"`
	SessionID   string         `json:"session_id,omitempty"`
	EventType   string         `json:"event_type"`
	Description string         `json:"description"`
	Severity    Severity       `json:"severity"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
