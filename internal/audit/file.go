package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spigell/candidate-assessor/internal/domain"
)

// FileSink appends one JSON document per line to a file.
type FileSink struct {
	path string

	mu   sync.Mutex
	file *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log %q: %w", path, err)
	}

	return &FileSink{path: path, file: f}, nil
}

func (s *FileSink) Name() string {
	return "file"
}

func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Write(_ context.Context, entry domain.ComplianceLog) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errors.New("audit log file is closed")
	}
	_, err = s.file.Write(line)
	return err
}

// ReadAll returns every record of the file. Malformed lines are skipped.
func (s *FileSink) ReadAll() ([]domain.ComplianceLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readJSONL(s.path)
}

// Purge rewrites the file keeping only records at or after before.
func (s *FileSink) Purge(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := readJSONL(s.path)
	if err != nil {
		return 0, err
	}

	tmp := s.path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("creating %q: %w", tmp, err)
	}

	var removed int64
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for _, l := range logs {
		if l.Timestamp.Before(before) {
			removed++
			continue
		}
		if err := enc.Encode(l); err != nil {
			out.Close()
			return 0, err
		}
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	if s.file != nil {
		s.file.Close()
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return 0, fmt.Errorf("replacing audit log: %w", err)
	}

	s.file, err = os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return removed, fmt.Errorf("reopening audit log: %w", err)
	}

	return removed, nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func readJSONL(path string) ([]domain.ComplianceLog, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.ComplianceLog{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	logs := make([]domain.ComplianceLog, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var l domain.ComplianceLog
		if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
			continue
		}
		logs = append(logs, l)
	}

	return logs, scanner.Err()
}
