package logger

import "github.com/user/vidreview/pkg/ports"

// NoopLogger discards every message. Used by tests and --quiet.
type NoopLogger struct{}

func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

func (l *NoopLogger) Debug(msg string, args ...interface{}) {}
func (l *NoopLogger) Info(msg string, args ...interface{})  {}
func (l *NoopLogger) Warn(msg string, args ...interface{})  {}
func (l *NoopLogger) Error(msg string, args ...interface{}) {}

func (l *NoopLogger) WithComponent(component string) ports.Logger {
	return l
}
