package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spigell/candidate-assessor/internal/domain"
)

// Audit counts recorded compliance events. Register Observe with
// audit.Recorder.OnEvent.
type Audit struct {
	events *prometheus.CounterVec
}

func NewAudit(reg prometheus.Registerer) *Audit {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &Audit{
		events: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_total",
			Help:      "Recorded audit events by type and severity",
		}, []string{"event_type", "severity"}),
	}
}

func (a *Audit) Observe(entry domain.ComplianceLog) {
	a.events.WithLabelValues(entry.EventType, string(entry.Severity)).Inc()
}
