// Package server provides the ServerContext pattern and related infrastructure
// for the MCP Proxmox server.
//
// This package implements the core server architecture patterns including:
//
//   - ServerContext: Encapsulates all server dependencies and lifecycle management
//   - Functional Options: Clean dependency injection and configuration
//   - Logger Interface: Abstraction for logging operations
//   - Configuration Management: Centralized server configuration
//   - Health Endpoints: Liveness, readiness and detailed health handlers
//   - MetricsServer: Standalone Prometheus metrics listener
//
// The ServerContext Pattern:
//
// The ServerContext struct follows the context pattern commonly used in Go
// applications to encapsulate dependencies and provide clean separation of
// concerns. It includes:
//
//   - Cluster registry for resolving Proxmox API clients
//   - Logger interface
//   - Configuration settings
//   - Context for cancellation and timeouts
//   - Lifecycle management (shutdown, cleanup)
//
// All dependencies are injected using functional options, making the code
// highly testable and modular.
//
// Example usage:
//
//	// Create a server context with custom configuration
//	ctx := context.Background()
//	serverCtx, err := NewServerContext(ctx,
//		WithRegistry(registry),
//		WithLogger(customLogger),
//		WithNonDestructiveMode(true),
//		WithLogLevel("debug"),
//	)
//	if err != nil {
//		return err
//	}
//	defer serverCtx.Shutdown()
//
//	// Use the context in MCP tools
//	client, selected, err := serverCtx.ClientFor(ctx, "", "prod-web-01")
//	logger := serverCtx.Logger()
//	config := serverCtx.Config()
//
//	// Check if server is shutting down
//	if serverCtx.IsShutdown() {
//		return ErrServerShutdown
//	}
//
// Configuration Management:
//
// The Config struct provides centralized configuration with sensible defaults
// and support for:
//
//   - Server identity (name, version)
//   - Non-destructive mode and confirmation requirements
//   - Logging configuration (level, format)
//   - Safety settings (allowed operations, restricted nodes)
//
// The configuration supports deep cloning to prevent accidental mutations
// and follows immutable patterns where possible.
package server
