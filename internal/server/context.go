package server

import (
	"context"
	"sync"

	"github.com/giantswarm/mcp-proxmox/internal/cluster"
	"github.com/giantswarm/mcp-proxmox/internal/instrumentation"
	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
)

// ServerContext encapsulates all dependencies needed by the MCP server
// and provides a clean abstraction for dependency injection and lifecycle management.
type ServerContext struct {
	// Core dependencies
	registry cluster.ClusterRegistry
	logger   Logger
	config   *Config

	// Observability
	instrumentationProvider *instrumentation.Provider

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Lifecycle management
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new ServerContext with default values.
// Use the provided functional options to customize the context.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	// Create a cancellable context
	serverCtx, cancel := context.WithCancel(ctx)

	// Initialize with defaults
	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: NewDefaultLogger(),
	}

	// Apply functional options
	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	// Validate required dependencies
	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// Registry returns the cluster registry used to resolve and connect to
// Proxmox clusters.
func (sc *ServerContext) Registry() cluster.ClusterRegistry {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.registry
}

// ClientFor resolves a Proxmox client for the given explicit cluster name
// and/or resource name using the registry's selection policy. It returns the
// client together with the name of the cluster that was selected.
func (sc *ServerContext) ClientFor(ctx context.Context, clusterName, resourceName string) (proxmox.Client, string, error) {
	sc.mu.RLock()
	registry := sc.registry
	sc.mu.RUnlock()

	return registry.GetClient(ctx, clusterName, resourceName)
}

// InstrumentationProvider returns the OpenTelemetry instrumentation provider,
// or nil when instrumentation was not configured.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// Logger returns the logger interface.
func (sc *ServerContext) Logger() Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// MultiCluster reports whether more than one Proxmox cluster is configured.
func (sc *ServerContext) MultiCluster() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.registry == nil {
		return false
	}
	return len(sc.registry.ListClusters()) > 1
}

// Shutdown gracefully shuts down the server context.
// This cancels the context and releases any resources, including cached
// Proxmox clients held by the registry.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("Shutting down server context")

	if sc.registry != nil {
		if err := sc.registry.Close(); err != nil {
			sc.logger.Warn("Failed to close cluster registry", "error", err)
		}
	}

	// Cancel the context
	if sc.cancel != nil {
		sc.cancel()
	}

	// Mark as shutdown
	sc.shutdown = true

	sc.logger.Info("Server context shutdown complete")
	return nil
}

// IsShutdown returns true if the server context has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures all required dependencies are set.
func (sc *ServerContext) validate() error {
	if sc.registry == nil {
		return ErrMissingRegistry
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Logger defines the interface for logging operations.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, args ...interface{})

	// Debug logs a debug message.
	Debug(msg string, args ...interface{})

	// Warn logs a warning message.
	Warn(msg string, args ...interface{})

	// Error logs an error message.
	Error(msg string, args ...interface{})

	// With returns a new logger with additional context fields.
	With(args ...interface{}) Logger
}

// Config holds the server configuration.
type Config struct {
	// Server settings
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	// Non-destructive mode settings
	NonDestructiveMode  bool `json:"nonDestructiveMode"`
	RequireConfirmation bool `json:"requireConfirmation"`

	// Logging settings
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`

	// Safety settings
	AllowedOperations []string `json:"allowedOperations"`
	RestrictedNodes   []string `json:"restrictedNodes"`
}

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:          "mcp-proxmox",
		Version:             "0.1.0",
		NonDestructiveMode:  true,
		RequireConfirmation: false,
		LogLevel:            "info",
		LogFormat:           "json",
		AllowedOperations:   []string{"get", "list", "status"},
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c

	// Deep copy slices
	if c.AllowedOperations != nil {
		clone.AllowedOperations = make([]string, len(c.AllowedOperations))
		copy(clone.AllowedOperations, c.AllowedOperations)
	}

	if c.RestrictedNodes != nil {
		clone.RestrictedNodes = make([]string, len(c.RestrictedNodes))
		copy(clone.RestrictedNodes, c.RestrictedNodes)
	}

	return &clone
}
