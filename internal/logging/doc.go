// Package logging provides structured logging utilities for the mcp-proxmox application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Credential masking (API token secrets are never logged)
//   - Host/URL sanitization for security
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "vm.list")
//	logger.Info("listing virtual machines",
//	    logging.Cluster("production"),
//	    logging.Node("pve1"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("connecting to cluster",
//	    logging.Host(apiURL),
//	    "token", logging.SanitizeToken(secret))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - API token secrets are masked to a length indicator only
//   - Cluster API URLs have IP addresses redacted to prevent topology leakage
//   - Credentials are never logged directly
package logging
