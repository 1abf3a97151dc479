package filestore

import (
	"context"
	"log/slog"
	"time"
)

// AuditEntry represents a logged file operation
type AuditEntry struct {
	Timestamp    time.Time
	Operation    string
	Path         string
	Result       string // "success" or "error"
	Duration     time.Duration
	BytesRead    int64
	BytesWritten int64
	Error        string // if Result == "error"
}

// AuditLogger logs file operations
type AuditLogger interface {
	Log(entry AuditEntry)
}

// SlogAuditLogger implements AuditLogger using structured logging with slog
type SlogAuditLogger struct {
	logger *slog.Logger
}

// NewSlogAuditLogger creates an audit logger that uses slog
func NewSlogAuditLogger(logger *slog.Logger) *SlogAuditLogger {
	return &SlogAuditLogger{
		logger: logger,
	}
}

// Log writes an audit entry at debug level. Failures are reported by the
// pipeline, so they are not repeated at error level here.
func (l *SlogAuditLogger) Log(entry AuditEntry) {
	if l.logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("operation", entry.Operation),
		slog.String("path", entry.Path),
		slog.String("result", entry.Result),
		slog.Duration("duration", entry.Duration),
	}

	if entry.BytesRead > 0 {
		attrs = append(attrs, slog.Int64("bytes_read", entry.BytesRead))
	}
	if entry.BytesWritten > 0 {
		attrs = append(attrs, slog.Int64("bytes_written", entry.BytesWritten))
	}
	if entry.Error != "" {
		attrs = append(attrs, slog.String("error", entry.Error))
	}

	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "file operation", attrs...)
}

// NoopAuditLogger is a no-op implementation for when auditing is disabled
type NoopAuditLogger struct{}

// Log does nothing
func (n *NoopAuditLogger) Log(entry AuditEntry) {}
