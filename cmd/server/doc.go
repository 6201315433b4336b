// Package main is the entry point for the canvas server.
//
// The server hosts one node-graph editing session: content cards with tabs
// that can be reordered, moved between cards, or dragged out onto the canvas
// to become new cards.
//
// The server provides:
//   - REST API for nodes, tabs, content and layout
//   - WebSocket stream for drag events and snapshots
//   - Prometheus metrics
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server --port 8000
//
//	# Development mode (colored logs, debug level)
//	./server --dev --log-level debug --palette palette.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, pending edits are committed
package main
