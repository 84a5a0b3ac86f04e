package domain

import "time"

type QuestionResult struct {
	QuestionID       string       `json:"question_id"`
	Question         string       `json:"question"`
	Type             QuestionType `json:"type"`
	Category         string       `json:"category"`
	Difficulty       Difficulty   `json:"difficulty"`
	Score            float64      `json:"score"`
	TimeTakenSeconds int          `json:"time_taken"`
	Feedback         string       `json:"feedback"`
}

type IntegritySummary struct {
	AverageScore       float64  `json:"average_integrity_score"`
	CopyPasteIncidents int      `json:"copy_paste_incidents"`
	TimingAnomalies    int      `json:"timing_anomalies"`
	BrowserAnomalies   int      `json:"browser_anomalies"`
	TotalFlags         int      `json:"total_flags"`
	RiskLevel          string   `json:"risk_level"`
	BrowserEvents      int      `json:"browser_events"`
	Flags              []string `json:"flags"`
}

type ComplianceSummary struct {
	OverallStatus  string  `json:"overall_status"`
	IntegrityScore float64 `json:"integrity_score"`
	Violations     int     `json:"violations"`
}

// InterviewReport is produced exactly once when a session terminates.
type InterviewReport struct {
	SessionID         string             `json:"session_id"`
	CandidateID       string             `json:"candidate_id"`
	JobID             string             `json:"job_id"`
	OverallScore      float64            `json:"overall_score"`
	DomainScores      map[string]float64 `json:"domain_scores"`
	QuestionResults   []QuestionResult   `json:"question_results"`
	Strengths         []string           `json:"strengths"`
	Weaknesses        []string           `json:"weaknesses"`
	Recommendations   []string           `json:"recommendations"`
	Integrity         IntegritySummary   `json:"integrity_metrics"`
	Compliance        ComplianceSummary  `json:"compliance_summary"`
	TerminationReason string             `json:"termination_reason"`
	GeneratedAt       time.Time          `json:"generated_at"`
}
