package domain

import (
	"slices"
	"time"
)

type SessionState string

const (
	StateCreated    SessionState = "created"
	StateInProgress SessionState = "in_progress"
	StateCompleted  SessionState = "completed"
	StateTimedOut   SessionState = "timed_out"
)

// Terminal reports whether no further transitions are possible.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateTimedOut
}

type ComplianceStatus string

const (
	Compliant ComplianceStatus = "compliant"
	Warning   ComplianceStatus = "warning"
	Violation ComplianceStatus = "violation"
)

// Answer is a single submission. It is created once and never modified.
type Answer struct {
	QuestionID       string    `json:"question_id"`
	Text             string    `json:"answer_text"`
	Code             string    `json:"code_snippet,omitempty"`
	TimeTakenSeconds int       `json:"time_taken"`
	SubmittedAt      time.Time `json:"submitted_at"`
	Score            float64   `json:"score"`
	Feedback         string    `json:"feedback"`
}

// InterviewSession is the aggregate owned by the interview engine.
type InterviewSession struct {
	ID               string           `json:"session_id"`
	CandidateID      string           `json:"candidate_id"`
	JobID            string           `json:"job_id"`
	StartedAt        time.Time        `json:"started_at"`
	CurrentQuestion  *Question        `json:"current_question,omitempty"`
	Answers          []Answer         `json:"answers"`
	Difficulty       Difficulty       `json:"difficulty_level"`
	IntegrityScore   float64          `json:"integrity_score"`
	ComplianceStatus ComplianceStatus `json:"compliance_status"`
	State            SessionState     `json:"state"`
	Active           bool             `json:"is_active"`
}

// Snapshot returns a deep copy safe to hand out of the engine.
func (s *InterviewSession) Snapshot() InterviewSession {
	out := *s
	out.Answers = slices.Clone(s.Answers)
	if s.CurrentQuestion != nil {
		q := s.CurrentQuestion.Clone()
		out.CurrentQuestion = &q
	}
	return out
}

// IntegrityMetrics is the per-answer integrity snapshot.
type IntegrityMetrics struct {
	CopyPasteDetected bool     `json:"copy_paste_detected"`
	UnusualTiming     bool     `json:"unusual_timing"`
	BrowserAnomaly    bool     `json:"browser_anomaly"`
	TextScore         float64  `json:"text_score"`
	TimingScore       float64  `json:"timing_score"`
	ConsistencyScore  float64  `json:"consistency_score"`
	OverallScore      float64  `json:"overall_integrity_score"`
	Flags             []string `json:"flags"`
}
