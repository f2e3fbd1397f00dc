package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// WriterLogger writes events as JSON lines
type WriterLogger struct {
	mu      sync.Mutex
	encoder *json.Encoder
	closer  io.Closer
}

// NewWriterLogger writes events to w. Close does not close w.
func NewWriterLogger(w io.Writer) *WriterLogger {
	return &WriterLogger{encoder: json.NewEncoder(w)}
}

// NewFileLogger appends events to the file at path, creating it and its
// directory when missing
func NewFileLogger(path string) (*WriterLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &WriterLogger{encoder: json.NewEncoder(file), closer: file}, nil
}

// Log writes the event as a single JSON line
func (l *WriterLogger) Log(ctx context.Context, event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// Close closes the underlying file, if any
func (l *WriterLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
