// Package logger defines the logging contract used across paygate and
// a zap-backed implementation of it.
package logger

// Logger is the structured logging contract. Fields carry request
// context such as the proof hash, network, and failure reason; nil
// fields are valid.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

var _ Logger = NoopLogger{}

// NoopLogger discards everything. It is the default when no logger is
// configured, so callers never nil-check.
type NoopLogger struct{}

func (NoopLogger) Debug(string, map[string]any) {}
func (NoopLogger) Info(string, map[string]any)  {}
func (NoopLogger) Warn(string, map[string]any)  {}
func (NoopLogger) Error(string, map[string]any) {}
