// Package api exposes the interview engine, evaluator, résumé scoring and
// bias detection over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/spigell/candidate-assessor/internal/audit"
	"github.com/spigell/candidate-assessor/internal/bias"
	"github.com/spigell/candidate-assessor/internal/catalog"
	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/evaluation"
	"github.com/spigell/candidate-assessor/internal/interview"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/metrics"
	"github.com/spigell/candidate-assessor/internal/resume"
)

// Engine is the interview engine surface served over HTTP.
type Engine interface {
	StartSession(ctx context.Context, candidateID, jobID string, categories []string) (domain.InterviewSession, error)
	SubmitAnswer(ctx context.Context, sessionID string, sub interview.Submission) (interview.Outcome, error)
	RecordBrowserEvent(ctx context.Context, sessionID, eventType string, details map[string]any) error
	GetSessionStatus(sessionID string) (interview.Status, error)
	ActiveSessions() int
}

type Catalog interface {
	Categories() []string
	Statistics() catalog.Statistics
}

type AuditLog interface {
	ComplianceReport(sessionID string) (audit.ComplianceReport, error)
	Export(sessionID, format string) ([]byte, error)
}

type Evaluator interface {
	Evaluate(report domain.InterviewReport) evaluation.Evaluation
}

type ResumeParser interface {
	ParseResume(text, candidateID string) (domain.ResumeData, error)
	ParseJob(text, title string) (domain.JobDescription, error)
}

type ResumeScorer interface {
	Score(ctx context.Context, r domain.ResumeData, job domain.JobDescription) (domain.ScoringResult, error)
}

type ComplianceChecker interface {
	Check(ctx context.Context, r domain.ResumeData, job domain.JobDescription) resume.ComplianceResult
}

type BiasDetector interface {
	Detect(ctx context.Context, text, textType string) bias.Result
	Report(r bias.Result) string
}

// Deps are the collaborators of the HTTP server. Engine and Catalog are required.
type Deps struct {
	Engine     Engine
	Catalog    Catalog
	Audit      AuditLog
	Evaluator  Evaluator
	Parser     ResumeParser
	Scorer     ResumeScorer
	Compliance ComplianceChecker
	Bias       BiasDetector
	Logger     *zap.Logger
}

type Config struct {
	CORSOrigins    []string      `mapstructure:"cors-origins"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
}

type Server struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, deps Deps) *Server {
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	return &Server{
		deps:   deps,
		cfg:    cfg,
		logger: logger.WithFields(deps.Logger, zap.String("component", "api")),
	}
}

// Handler builds the router with every route and middleware attached.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	router.Use(middleware.RequestID, middleware.RealIP, requestLogger(s.logger), middleware.Recoverer, metrics.Middleware)

	router.Get("/healthz", s.health)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.startSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.sessionStatus)
				r.Post("/answers", s.submitAnswer)
				r.Post("/events", s.recordEvent)
				r.Get("/audit", s.sessionAudit)
			})
		})
		r.Post("/evaluations", s.evaluate)
		r.Post("/resumes/score", s.scoreResume)
		r.Post("/bias", s.detectBias)
		r.Get("/questions/stats", s.questionStats)
	})

	return router
}

// requestLogger logs every request with zap once the response is written.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
