package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Fields = logrus.Fields

type Config struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}

type Logger struct {
	entry *logrus.Entry
}

func New(cfg Config) (*Logger, error) {
	base := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	base.SetLevel(level)

	if cfg.Format == "text" {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	var out io.Writer
	switch cfg.Output {
	case "file":
		out = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
	case "stderr":
		out = os.Stderr
	default:
		out = os.Stdout
	}
	base.SetOutput(out)

	return &Logger{entry: logrus.NewEntry(base)}, nil
}

func (log *Logger) WithFields(fields Fields) *Logger {
	return &Logger{entry: log.entry.WithFields(fields)}
}

func (log *Logger) WithError(err error) *Logger {
	return &Logger{entry: log.entry.WithError(err)}
}

func kvFields(keysAndValues []any) Fields {
	fields := Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

func (log *Logger) Debug(msg string, keysAndValues ...any) {
	log.entry.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (log *Logger) Info(msg string, keysAndValues ...any) {
	log.entry.WithFields(kvFields(keysAndValues)).Info(msg)
}

func (log *Logger) Warn(msg string, keysAndValues ...any) {
	log.entry.WithFields(kvFields(keysAndValues)).Warn(msg)
}

func (log *Logger) Error(msg string, keysAndValues ...any) {
	log.entry.WithFields(kvFields(keysAndValues)).Error(msg)
}

// LogService records one store or adapter operation with its duration.
func (log *Logger) LogService(service, operation string, duration time.Duration, fields map[string]any, err error) {
	entry := log.entry.WithFields(Fields{
		"service":     service,
		"operation":   operation,
		"duration_ms": duration.Milliseconds(),
	})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	if err != nil {
		entry.WithError(err).Error("service operation failed")
		return
	}
	entry.Debug("service operation completed")
}

// LogAgentRun records a dispatcher-level run event.
func (log *Logger) LogAgentRun(agentID, event string, duration time.Duration, err error) {
	entry := log.entry.WithFields(Fields{
		"agent_id":    agentID,
		"event":       event,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("agent run event")
		return
	}
	entry.Info("agent run event")
}
