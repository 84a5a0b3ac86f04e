// Package audit records compliance events and fans them out to durable sinks.
package audit

import (
	"context"
	"errors"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/logger"
	"go.uber.org/zap"
)

// Sink persists audit records.
type Sink interface {
	Name() string
	Write(ctx context.Context, entry domain.ComplianceLog) error
}

// Purger is implemented by sinks that support retention cleanup.
type Purger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// Recorder keeps audit records of live sessions in memory and forwards every
// record to its sinks. Sink failures are logged and never returned.
type Recorder struct {
	sinks  []Sink
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	mu       sync.RWMutex
	sessions map[string][]domain.ComplianceLog
	// observe is called after every recorded event.
	observe func(domain.ComplianceLog)
}

func NewRecorder(log *zap.Logger, sinks ...Sink) *Recorder {
	return &Recorder{
		sinks:    sinks,
		logger:   logger.WithFields(log, zap.String("component", "audit")),
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string][]domain.ComplianceLog),
	}
}

// OnEvent registers a callback invoked for every recorded event.
func (r *Recorder) OnEvent(fn func(domain.ComplianceLog)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observe = fn
}

// LogEvent records an event and returns its id. sessionID may be empty for
// events that do not belong to an interview session.
func (r *Recorder) LogEvent(ctx context.Context, sessionID, eventType, description string, severity domain.Severity, metadata map[string]any) string {
	entry := domain.ComplianceLog{
		ID:          r.newID(),
		SessionID:   sessionID,
		EventType:   eventType,
		Description: description,
		Severity:    severity,
		Metadata:    maps.Clone(metadata),
		Timestamp:   r.now().UTC(),
	}
	if entry.Severity == "" {
		entry.Severity = domain.SeverityLow
	}

	r.mu.Lock()
	if sessionID != "" {
		r.sessions[sessionID] = append(r.sessions[sessionID], entry)
	}
	observe := r.observe
	r.mu.Unlock()

	for _, sink := range r.sinks {
		if err := sink.Write(ctx, entry); err != nil {
			r.logger.Warn("failed to write audit event",
				zap.String("sink", sink.Name()),
				zap.String("event_type", eventType),
				zap.String(logger.FieldSession, sessionID),
				zap.Error(err),
			)
		}
	}

	if observe != nil {
		observe(entry)
	}

	r.logger.Debug("audit event recorded",
		zap.String("log_id", entry.ID),
		zap.String("event_type", eventType),
		zap.String("severity", string(entry.Severity)),
		zap.String(logger.FieldSession, sessionID),
	)

	return entry.ID
}

// SessionLogs returns the in-memory records of sessionID in recording order.
func (r *Recorder) SessionLogs(sessionID string) []domain.ComplianceLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.sessions[sessionID])
}

// ClearSession drops the in-memory records of sessionID. Sinks keep theirs.
func (r *Recorder) ClearSession(sessionID string) {
	r.mu.Lock()
	_, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if ok {
		r.logger.Info("cleared session audit logs from memory", zap.String(logger.FieldSession, sessionID))
	}
}

// ComplianceReport builds a report from the in-memory records of sessionID.
func (r *Recorder) ComplianceReport(sessionID string) (ComplianceReport, error) {
	return BuildReport(sessionID, r.SessionLogs(sessionID), r.now())
}

// Export renders the in-memory records of sessionID as json or csv.
func (r *Recorder) Export(sessionID, format string) ([]byte, error) {
	return Export(r.SessionLogs(sessionID), format)
}

// Purge removes records older than before from memory and from every sink
// that supports retention. It returns the number of records removed from sinks.
func (r *Recorder) Purge(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	for id, logs := range r.sessions {
		kept := slices.DeleteFunc(logs, func(l domain.ComplianceLog) bool { return l.Timestamp.Before(before) })
		if len(kept) == 0 {
			delete(r.sessions, id)
			continue
		}
		r.sessions[id] = kept
	}
	r.mu.Unlock()

	var (
		total int64
		errs  []error
	)
	for _, sink := range r.sinks {
		purger, ok := sink.(Purger)
		if !ok {
			continue
		}
		n, err := purger.Purge(ctx, before)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += n
		r.logger.Info("purged audit records", zap.String("sink", sink.Name()), zap.Int64("removed", n), zap.Time("before", before))
	}

	return total, errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (r *Recorder) Close() error {
	var errs []error
	for _, sink := range r.sinks {
		if closer, ok := sink.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
