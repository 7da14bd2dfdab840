// Package main is the entry point for the log viewer backend.
//
// The server exposes a read-only view of log directories inside the
// configured roots, with optional filtering by file content and
// modification date.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - An optional YAML access policy
//
// Usage:
//
//	# Expose /var/log only
//	LOG_VIEWER_ROOTS=/var/log ./server -port 8000
//
//	# Policy file with include and exclude globs
//	./server -policy /etc/log-viewer/policy.yaml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
