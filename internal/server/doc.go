// Package server wires the canvas server together.
//
// This package orchestrates all components:
//   - Canvas workspace with the configured timings, ID format and palette
//   - HTTP routing with Gin framework
//   - Middleware stack (recovery, request id, access log, metrics, CORS, rate limiting)
//   - WebSocket drag-event stream
//   - Prometheus endpoint
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Load the palette and create the workspace
//  4. Setup HTTP routes and middleware
//  5. Serve until the context is cancelled
//  6. Stop accepting requests, disconnect streams, commit pending edits
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
