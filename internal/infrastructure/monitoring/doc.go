/*
Package monitoring provides Prometheus metrics for the canvas server.

# Overview

Metrics are registered on a private registry so several servers (and tests)
can coexist in one process. The collector satisfies the recorder interfaces
of the graph facade, the pending scheduler and the drag controllers, so one
instance observes the whole editing pipeline.

# Features

- HTTP request metrics (latency, throughput) labelled by route
- Commits by operation and nodes removed by normalization
- Debounced writes by field and outcome
- Drag sessions by outcome
- WebSocket connections and messages
- Go runtime, process and uptime metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	ws := canvas.New(store, canvas.Options{Metrics: metrics})
*/
package monitoring
