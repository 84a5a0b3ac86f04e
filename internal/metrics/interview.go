package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Interview counts engine activity. It satisfies interview.Observer.
type Interview struct {
	sessionsStarted  prometheus.Counter
	sessionsFinished *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	answers          *prometheus.CounterVec
	answerScores     *prometheus.HistogramVec
	answerIntegrity  prometheus.Histogram
	sessionScores    prometheus.Histogram
	sessionDuration  prometheus.Histogram
}

var scoreBuckets = prometheus.LinearBuckets(10, 10, 10)

// NewInterview registers the interview collectors with reg. A nil reg uses
// the default registry.
func NewInterview(reg prometheus.Registerer) *Interview {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Interview{
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_sessions_started_total",
			Help:      "Interview sessions started",
		}),
		sessionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_sessions_finished_total",
			Help:      "Interview sessions finished by final state and reason",
		}, []string{"state", "reason"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "interview_active_sessions",
			Help:      "Interview sessions currently in progress",
		}),
		answers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_answers_total",
			Help:      "Evaluated answers by question type and outcome",
		}, []string{"question_type", "outcome"}),
		answerScores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interview_answer_score",
			Help:      "Answer scores on the 0-100 scale",
			Buckets:   scoreBuckets,
		}, []string{"question_type"}),
		answerIntegrity: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interview_answer_integrity_score",
			Help:      "Per-answer integrity scores on the 0-100 scale",
			Buckets:   scoreBuckets,
		}),
		sessionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interview_session_overall_score",
			Help:      "Overall score of finished sessions",
			Buckets:   scoreBuckets,
		}),
		sessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interview_session_duration_seconds",
			Help:      "Wall-clock duration of finished sessions",
			Buckets:   prometheus.ExponentialBuckets(60, 2, 8),
		}),
	}
}

func (m *Interview) SessionStarted() {
	m.sessionsStarted.Inc()
	m.activeSessions.Inc()
}

func (m *Interview) AnswerEvaluated(questionType string, score, integrity float64, failed bool) {
	outcome := "scored"
	if failed {
		outcome = "evaluation_failed"
	}
	m.answers.WithLabelValues(questionType, outcome).Inc()
	m.answerScores.WithLabelValues(questionType).Observe(score)
	m.answerIntegrity.Observe(integrity)
}

func (m *Interview) SessionFinished(state, reason string, overallScore float64, duration time.Duration) {
	m.activeSessions.Dec()
	m.sessionsFinished.WithLabelValues(state, reason).Inc()
	m.sessionScores.Observe(overallScore)
	m.sessionDuration.Observe(duration.Seconds())
}
