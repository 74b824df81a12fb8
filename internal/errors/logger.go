package errors

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggerConfig controls logger construction.
type LoggerConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	Output string `json:"output" yaml:"output"`
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// NewLogger creates a configured logrus logger with secret redaction
// installed. Diagnostics must never carry secret keys, signing keys or
// signed tokens, so the redaction hook runs on every entry.
func NewLogger(config *LoggerConfig) (*logrus.Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}

	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", config.Level, err)
	}
	logger.SetLevel(level)

	formatter, err := createFormatter(config.Format)
	if err != nil {
		return nil, err
	}
	logger.SetFormatter(formatter)

	output, err := createOutput(config.Output)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(output)

	logger.AddHook(&redactionHook{})
	return logger, nil
}

func createFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		}, nil
	case "text":
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func createOutput(output string) (*os.File, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	default:
		// #nosec G304 - log file path comes from configuration, not user input
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		return file, nil
	}
}

// redactedFieldNames are field keys whose values are always masked.
var redactedFieldNames = map[string]struct{}{
	"secret":            {},
	"secret_access_key": {},
	"secret_key":        {},
	"password":          {},
	"token":             {},
	"auth_token":        {},
	"session_token":     {},
	"signing_key":       {},
}

// redactionHook masks secret-bearing fields and any value that looks like a
// signed token before the entry is formatted.
type redactionHook struct{}

func (h *redactionHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *redactionHook) Fire(entry *logrus.Entry) error {
	for key, value := range entry.Data {
		if _, ok := redactedFieldNames[strings.ToLower(key)]; ok {
			entry.Data[key] = "[REDACTED]"
			continue
		}
		if s, ok := value.(string); ok && looksLikeToken(s) {
			entry.Data[key] = "[REDACTED]"
		}
	}
	return nil
}

// looksLikeToken detects a signed auth token by its signature parameter.
func looksLikeToken(s string) bool {
	return strings.Contains(s, "X-Amz-Signature=")
}
