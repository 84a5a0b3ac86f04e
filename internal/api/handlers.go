package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spigell/candidate-assessor/internal/audit"
	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/evaluation"
	"github.com/spigell/candidate-assessor/internal/interview"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.deps.Engine.ActiveSessions(),
	})
}

// startSession opens a session. When none of the requested categories has
// questions it retries with every category the catalog knows.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	categories := req.Categories
	session, err := s.deps.Engine.StartSession(r.Context(), req.CandidateID, req.JobID, categories)
	fallback := false
	if errors.Is(err, domain.ErrCatalogExhausted) {
		categories = s.deps.Catalog.Categories()
		s.logger.Warn("requested categories have no questions, falling back to the full catalog",
			zap.Strings("requested", req.Categories),
			zap.Strings("fallback", categories),
		)
		session, err = s.deps.Engine.StartSession(r.Context(), req.CandidateID, req.JobID, categories)
		fallback = true
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{InterviewSession: session, Categories: categories, Fallback: fallback})
}

func (s *Server) sessionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.deps.Engine.GetSessionStatus(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var sub interview.Submission
	if err := decode(r, &sub); err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.deps.Engine.SubmitAnswer(r.Context(), chi.URLParam(r, "id"), sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) recordEvent(w http.ResponseWriter, r *http.Request) {
	var req browserEventRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.deps.Engine.RecordBrowserEvent(r.Context(), chi.URLParam(r, "id"), req.EventType, req.Details); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// sessionAudit returns the compliance report of a session, or an export of
// its raw audit records when format is set.
func (s *Server) sessionAudit(w http.ResponseWriter, r *http.Request) {
	if s.deps.Audit == nil {
		s.writeError(w, r, fmt.Errorf("audit log is not configured"))
		return
	}
	id := chi.URLParam(r, "id")

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		report, err := s.deps.Audit.ComplianceReport(id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	body, err := s.deps.Audit.Export(id, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	contentType := "application/json"
	if format == audit.FormatCSV {
		contentType = "text/csv"
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "audit_"+id+".csv"))
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Evaluator == nil {
		s.writeError(w, r, fmt.Errorf("evaluator is not configured"))
		return
	}

	var report domain.InterviewReport
	if err := decode(r, &report); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(report.SessionID) == "" {
		s.writeError(w, r, fmt.Errorf("%w: session_id is required", domain.ErrInvalidArgument))
		return
	}

	ev := s.deps.Evaluator.Evaluate(report)
	writeJSON(w, http.StatusOK, evaluationResponse{Evaluation: ev, Summary: evaluation.Summary(ev)})
}

func (s *Server) scoreResume(w http.ResponseWriter, r *http.Request) {
	if s.deps.Parser == nil || s.deps.Scorer == nil || s.deps.Compliance == nil {
		s.writeError(w, r, fmt.Errorf("résumé scoring is not configured"))
		return
	}

	var req scoreResumeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := s.deps.Parser.ParseResume(req.ResumeText, req.CandidateID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.deps.Parser.ParseJob(req.JobText, req.JobTitle)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	score, err := s.deps.Scorer.Score(r.Context(), data, job)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreResumeResponse{
		Resume:     data,
		Job:        job,
		Score:      score,
		Compliance: s.deps.Compliance.Check(r.Context(), data, job),
	})
}

func (s *Server) detectBias(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bias == nil {
		s.writeError(w, r, fmt.Errorf("bias detection is not configured"))
		return
	}

	var req biasRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.TextType == "" {
		req.TextType = "job_description"
	}

	result := s.deps.Bias.Detect(r.Context(), req.Text, req.TextType)
	writeJSON(w, http.StatusOK, biasResponse{Result: result, Report: s.deps.Bias.Report(result)})
}

func (s *Server) questionStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.Statistics())
}
