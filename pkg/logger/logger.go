package logger

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/fin-training-governance/internal/model"
	"github.com/R3E-Network/fin-training-governance/pkg/config"
)

// Logger is a wrapper around logrus.Logger
type Logger struct {
	*logrus.Logger
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePrefix string `mapstructure:"file_prefix"`
}

// New creates a new logger instance. retention is the audit chain's
// retention table (spec §6): file output is routed under a directory
// named for the chain's default retention floor, so an operator's
// filesystem-level log-rotation policy for logs/ can be pointed at the
// same retention horizon the audit chain itself enforces.
func New(cfg LoggingConfig, retention config.RetentionConfig) *Logger {
	// Create logger
	logger := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Set log format
	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	// Set log output
	switch strings.ToLower(cfg.Output) {
	case "file":
		if cfg.FilePrefix == "" {
			cfg.FilePrefix = "governance"
		}
		logDir := filepath.Join("logs", retentionBucket(retention))
		err := os.MkdirAll(logDir, 0755)
		if err != nil {
			logger.Errorf("Failed to create logs directory: %v", err)
		} else {
			logPath := filepath.Join(logDir, cfg.FilePrefix+".log")
			file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				logger.Errorf("Failed to open log file: %v", err)
			} else {
				logger.SetOutput(io.MultiWriter(os.Stdout, file))
			}
		}
	default:
		// Use stdout by default
		logger.SetOutput(os.Stdout)
	}

	return &Logger{
		Logger: logger,
	}
}

// retentionBucket turns the retention table's default duration into a
// directory name ("7y", "90d", "unscoped" when it can't be parsed), so
// file-output logs sit under a path that names the same horizon
// auditchain.Chain.ShouldArchive enforces for the event log itself.
func retentionBucket(retention config.RetentionConfig) string {
	d, err := time.ParseDuration(retention.Default)
	if err != nil || d <= 0 {
		return "unscoped"
	}
	years := d.Hours() / 24 / 365
	if years >= 1 {
		return fmt.Sprintf("%dy", int(math.Round(years)))
	}
	days := d.Hours() / 24
	return fmt.Sprintf("%dd", int(math.Round(days)))
}

// NewDefault creates a new logger instance with default configuration
func NewDefault(name string) *Logger {
	// Create logger with default configuration
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	return &Logger{
		Logger: logger,
	}
}

// WithField returns a new log entry with a field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.Logger.WithField(key, value)
}

// WithFields returns a new log entry with multiple fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

// WithAuditEvent correlates an application log line with a hash-chained
// AuditEvent (C7) by its chain sequence number, so an operator grepping
// application logs for a request can jump straight to the matching
// entry in auditchain.Chain.Events.
func (l *Logger) WithAuditEvent(event model.AuditEvent) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"audit_seq":     event.Seq,
		"audit_id":      event.ID,
		"event_type":    event.EventType,
		"actor_id":      event.ActorID,
		"tenant_id":     event.TenantID,
		"resource_type": event.ResourceType,
		"resource_id":   event.ResourceID,
	})
}
