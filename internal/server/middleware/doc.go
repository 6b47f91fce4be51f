// Package middleware provides HTTP middleware for the MCP Proxmox server.
// These middleware functions handle security headers, CORS, request metrics,
// and other cross-cutting concerns.
package middleware
