package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "canvas"

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Graph metrics
	Commits      *prometheus.CounterVec
	NodesRemoved prometheus.Counter
	NodesActive  prometheus.Gauge

	// Debounced writes
	ScheduledWrites *prometheus.CounterVec

	// Drag sessions
	DragOutcomes *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	UptimeSeconds     float64          `json:"uptime_seconds"`
	TotalRequests     int64            `json:"total_requests"`
	TotalErrors       int64            `json:"total_errors"`
	AvgLatencyMS      float64          `json:"avg_latency_ms"`
	Commits           int64            `json:"commits"`
	NodesActive       int64            `json:"nodes_active"`
	ActiveConnections int64            `json:"active_connections"`
	DragOutcomes      map[string]int64 `json:"drag_outcomes"`

	totalDuration float64
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),
		snapshot:  Snapshot{DragOutcomes: make(map[string]int64)},

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),

		Commits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_commits_total",
				Help:      "Total number of node collection commits",
			},
			[]string{"op"},
		),
		NodesRemoved: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_nodes_removed_total",
				Help:      "Nodes removed by commits, including empty cards",
			},
		),
		NodesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_nodes",
				Help:      "Number of nodes on the canvas",
			},
		),

		ScheduledWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pending_writes_total",
				Help:      "Debounced writes by field and outcome",
			},
			[]string{"field", "outcome"},
		),

		DragOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drag_sessions_total",
				Help:      "Finished tab drags by outcome",
			},
			[]string{"outcome"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordCommit records one node collection commit and the nodes it removed
func (m *Metrics) RecordCommit(op string, removed int) {
	m.Commits.WithLabelValues(op).Inc()
	if removed > 0 {
		m.NodesRemoved.Add(float64(removed))
	}

	m.mu.Lock()
	m.snapshot.Commits++
	m.mu.Unlock()
}

// RecordScheduled records a debounced write transition
func (m *Metrics) RecordScheduled(field, outcome string) {
	m.ScheduledWrites.WithLabelValues(field, outcome).Inc()
}

// RecordDragOutcome records how a drag session finished
func (m *Metrics) RecordDragOutcome(outcome string) {
	m.DragOutcomes.WithLabelValues(outcome).Inc()

	m.mu.Lock()
	m.snapshot.DragOutcomes[outcome]++
	m.mu.Unlock()
}

// SetNodesActive sets the number of nodes on the canvas
func (m *Metrics) SetNodesActive(count int) {
	m.NodesActive.Set(float64(count))

	m.mu.Lock()
	m.snapshot.NodesActive = int64(count)
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	if s.TotalRequests > 0 {
		s.AvgLatencyMS = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.DragOutcomes = make(map[string]int64, len(m.snapshot.DragOutcomes))
	for k, v := range m.snapshot.DragOutcomes {
		s.DragOutcomes[k] = v
	}
	return s
}
