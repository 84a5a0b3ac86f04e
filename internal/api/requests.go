package api

import (
	"fmt"
	"strings"

	"github.com/spigell/candidate-assessor/internal/bias"
	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/evaluation"
	"github.com/spigell/candidate-assessor/internal/resume"
)

type startSessionRequest struct {
	CandidateID string   `json:"candidate_id"`
	JobID       string   `json:"job_id"`
	Categories  []string `json:"categories"`
}

func (r startSessionRequest) Validate() error {
	if strings.TrimSpace(r.CandidateID) == "" {
		return fmt.Errorf("%w: candidate_id is required", domain.ErrInvalidArgument)
	}
	return nil
}

type browserEventRequest struct {
	EventType string         `json:"event_type"`
	Details   map[string]any `json:"details"`
}

func (r browserEventRequest) Validate() error {
	if strings.TrimSpace(r.EventType) == "" {
		return fmt.Errorf("%w: event_type is required", domain.ErrInvalidArgument)
	}
	return nil
}

type scoreResumeRequest struct {
	CandidateID string `json:"candidate_id"`
	ResumeText  string `json:"resume_text"`
	JobTitle    string `json:"job_title"`
	JobText     string `json:"job_description"`
}

func (r scoreResumeRequest) Validate() error {
	if strings.TrimSpace(r.ResumeText) == "" || strings.TrimSpace(r.JobText) == "" {
		return fmt.Errorf("%w: resume_text and job_description are required", domain.ErrInvalidArgument)
	}
	return nil
}

type biasRequest struct {
	Text     string `json:"text"`
	TextType string `json:"text_type"`
}

func (r biasRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: text is required", domain.ErrInvalidArgument)
	}
	return nil
}

type sessionResponse struct {
	domain.InterviewSession
	Categories []string `json:"categories,omitempty"`
	Fallback   bool     `json:"categories_fallback,omitempty"`
}

type evaluationResponse struct {
	Evaluation evaluation.Evaluation `json:"evaluation"`
	Summary    string                `json:"summary"`
}

type scoreResumeResponse struct {
	Resume     domain.ResumeData       `json:"resume"`
	Job        domain.JobDescription   `json:"job"`
	Score      domain.ScoringResult    `json:"score"`
	Compliance resume.ComplianceResult `json:"compliance"`
}

type biasResponse struct {
	bias.Result
	Report string `json:"report"`
}
