package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps audit records in a SQLite database and answers queries over them.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ Sink   = (*SQLiteStore)(nil)
	_ Purger = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (and creates when missing) the database at path.
// Use ":memory:" for a throwaway store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS compliance_logs (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			event_type TEXT NOT NULL,
			description TEXT NOT NULL,
			severity TEXT NOT NULL,
			metadata TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_compliance_logs_session ON compliance_logs(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_compliance_logs_event_type ON compliance_logs(event_type)`,
		`CREATE INDEX IF NOT EXISTS idx_compliance_logs_created ON compliance_logs(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Name() string {
	return "sqlite"
}

func (s *SQLiteStore) Write(ctx context.Context, entry domain.ComplianceLog) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `INSERT INTO compliance_logs (id, session_id, event_type, description, severity, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		nullString(entry.SessionID),
		entry.EventType,
		entry.Description,
		string(entry.Severity),
		string(metadata),
		entry.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// Filter narrows a Query. Zero fields do not constrain the result.
type Filter struct {
	SessionID string
	EventType string
	Severity  domain.Severity
	Since     time.Time
	Until     time.Time
	// Limit keeps the newest records when positive.
	Limit int
}

// Query returns matching records ordered by time.
func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]domain.ComplianceLog, error) {
	var (
		where []string
		args  []any
	)
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.EventType != "" {
		where = append(where, "event_type = ?")
		args = append(args, f.EventType)
	}
	if f.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, string(f.Severity))
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.Since.UnixNano())
	}
	if !f.Until.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, f.Until.UnixNano())
	}

	query := `SELECT id, session_id, event_type, description, severity, metadata, created_at FROM compliance_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.ComplianceLog, 0)
	for rows.Next() {
		var (
			l         domain.ComplianceLog
			sessionID sql.NullString
			severity  string
			metadata  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&l.ID, &sessionID, &l.EventType, &l.Description, &severity, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		l.SessionID = sessionID.String
		l.Severity = domain.Severity(severity)
		l.Timestamp = time.Unix(0, createdAt).UTC()
		if metadata.Valid && metadata.String != "" && metadata.String != "null" {
			if err := json.Unmarshal([]byte(metadata.String), &l.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata of %s: %w", l.ID, err)
			}
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Oldest first.
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// HighSeverity returns high severity records of the last window.
func (s *SQLiteStore) HighSeverity(ctx context.Context, window time.Duration) ([]domain.ComplianceLog, error) {
	return s.Query(ctx, Filter{Severity: domain.SeverityHigh, Since: s.now().Add(-window)})
}

// Statistics summarizes the records of the last days.
func (s *SQLiteStore) Statistics(ctx context.Context, days int) (Statistics, error) {
	if days <= 0 {
		days = 7
	}
	logs, err := s.Query(ctx, Filter{Since: s.now().AddDate(0, 0, -days)})
	if err != nil {
		return Statistics{}, err
	}
	return ComputeStatistics(logs, days), nil
}

func (s *SQLiteStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM compliance_logs WHERE created_at < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit events: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
