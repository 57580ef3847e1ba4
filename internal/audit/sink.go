package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

// Sink persists captured entries.
type Sink interface {
	Write(ctx context.Context, entry models.AuditEntry) error
	Close() error
}

const (
	SinkDatabase = "database"
	SinkFile     = "file"
	SinkNone     = "none"
)

// OpenSink builds the sink named by kind. path is only used by the file sink.
func OpenSink(kind, path string, logs repository.AuditLogs) (Sink, error) {
	switch kind {
	case SinkDatabase, "":
		return &DatabaseSink{Logs: logs}, nil
	case SinkFile:
		f, err := NewFileSink(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case SinkNone:
		return Discard, nil
	}
	return nil, fmt.Errorf("unknown audit sink %q", kind)
}

// DatabaseSink stores every entry as a JSON document in the api_logs table.
type DatabaseSink struct {
	Logs repository.AuditLogs
}

func (s *DatabaseSink) Write(ctx context.Context, entry models.AuditEntry) error {
	return s.Logs.Append(ctx, entry)
}

func (s *DatabaseSink) Close() error { return nil }

// FileSink appends entries to a file as JSON lines.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("audit file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	return &FileSink{file: f}, nil
}

func (s *FileSink) Write(_ context.Context, entry models.AuditEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.file.Write(append(b, '\n'))
	return err
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

type discardSink struct{}

func (discardSink) Write(context.Context, models.AuditEntry) error { return nil }
func (discardSink) Close() error                                    { return nil }

// Discard drops every entry.
var Discard Sink = discardSink{}
