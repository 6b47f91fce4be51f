package cmd

import (
	"log/slog"

	"github.com/giantswarm/mcp-proxmox/internal/server"
)

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport       string
	HTTPAddr        string
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	// Safety settings
	NonDestructiveMode  bool
	RequireConfirmation bool
	AllowedOperations   []string
	RestrictedNodes     []string

	// Logging settings
	Debug    bool
	LogLevel string

	// Metrics settings
	Metrics MetricsServeConfig
}

// MetricsServeConfig controls the standalone Prometheus metrics listener.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}

// slogServerLogger adapts a *slog.Logger to the server.Logger interface.
type slogServerLogger struct {
	logger *slog.Logger
}

func newServerLogger(logger *slog.Logger) server.Logger {
	return &slogServerLogger{logger: logger}
}

func (l *slogServerLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debug(msg, args...)
}

func (l *slogServerLogger) Info(msg string, args ...interface{}) {
	l.logger.Info(msg, args...)
}

func (l *slogServerLogger) Warn(msg string, args ...interface{}) {
	l.logger.Warn(msg, args...)
}

func (l *slogServerLogger) Error(msg string, args ...interface{}) {
	l.logger.Error(msg, args...)
}

func (l *slogServerLogger) With(args ...interface{}) server.Logger {
	return &slogServerLogger{logger: l.logger.With(args...)}
}
