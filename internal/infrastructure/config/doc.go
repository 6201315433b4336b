// Package config provides 12-factor configuration management for the canvas server.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, shutdown timeout)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Editor: Debounce and animation timings, spawn margin, ID format
//   - Palette: Optional YAML palette file
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - PERSIST_DELAY, TEXT_DELAY, ANIMATION_DURATION, SPAWN_MARGIN, ID_STRATEGY
//   - PALETTE_FILE
package config
