// Package output bounds MCP tool response sizes.
//
// Guest and storage listings across several clusters can return more data
// than an LLM context window comfortably holds. This package applies
// per-query item limits and attaches a warning when results were truncated
// so agents know the listing is partial and how to narrow it.
package output
