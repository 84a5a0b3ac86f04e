package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var csvHeader = []string{"log_id", "session_id", "event_type", "description", "severity", "timestamp"}

// Export renders logs as an indented JSON array or as CSV without metadata.
func Export(logs []domain.ComplianceLog, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		if logs == nil {
			logs = []domain.ComplianceLog{}
		}
		return json.MarshalIndent(logs, "", "  ")
	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(csvHeader); err != nil {
			return nil, err
		}
		for _, l := range logs {
			record := []string{l.ID, l.SessionID, l.EventType, l.Description, string(l.Severity), l.Timestamp.Format(time.RFC3339Nano)}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidArgument, format)
	}
}

type archive struct {
	SessionID  string                 `json:"session_id"`
	ArchivedAt time.Time              `json:"archived_at"`
	Logs       []domain.ComplianceLog `json:"logs"`
}

// Archive writes the in-memory records of sessionID to path as one JSON document.
func (r *Recorder) Archive(sessionID, path string) error {
	logs := r.SessionLogs(sessionID)
	if len(logs) == 0 {
		return fmt.Errorf("%w: no audit logs for session %s", domain.ErrSessionNotFound, sessionID)
	}

	data, err := json.MarshalIndent(archive{SessionID: sessionID, ArchivedAt: r.now().UTC(), Logs: logs}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
