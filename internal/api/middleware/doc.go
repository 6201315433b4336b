// Package middleware provides the HTTP middleware of the canvas server.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing, WebSocket upgrades allowed
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//   - RequestID: X-Request-ID propagation
//   - Logger: One structured zap line per request
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
