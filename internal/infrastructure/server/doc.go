// Package server wires configuration, logging, metrics, tracing, the access
// policy and the navigator into one HTTP server.
//
// Middleware order: recovery, tracing, metrics, CORS, then rate limiting
// when enabled. /metrics serves the Prometheus registry.
package server
