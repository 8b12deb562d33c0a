package service

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taqyim-dev/taqyim-api/internal/models"
	"github.com/taqyim-dev/taqyim-api/pkg/genai"
)

// MetricsService encapsulates Prometheus instrumentation and provides
// lightweight snapshots for API consumption.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	refreshDuration    prometheus.Histogram
	generationDuration *prometheus.HistogramVec

	requestCount         uint64
	requestDurationTotal uint64
	refreshCount         uint64
	generationCount      uint64
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	refreshDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_refresh_duration_seconds",
		Help:    "Duration of full snapshot refreshes",
		Buckets: prometheus.DefBuckets,
	})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "message_generation_duration_seconds",
		Help:    "Duration of parent-message generation calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, refreshDuration, generationDuration, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		refreshDuration:    refreshDuration,
		generationDuration: generationDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveSnapshotRefresh records the duration of one full refresh.
func (m *MetricsService) ObserveSnapshotRefresh(duration time.Duration) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.refreshCount, 1)
}

// ObserveGeneration records the duration and outcome of one generation call.
func (m *MetricsService) ObserveGeneration(duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.generationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.generationCount, 1)
}

// Snapshot returns aggregated metrics for operational endpoints.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		SnapshotRefreshes:        atomic.LoadUint64(&m.refreshCount),
		MessageGenerations:       atomic.LoadUint64(&m.generationCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

// InstrumentedGenerator wraps a text generator with call-duration metrics.
type InstrumentedGenerator struct {
	Next    genai.Generator
	Metrics *MetricsService
}

// GenerateText delegates to the wrapped generator, timing the call.
func (g InstrumentedGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := g.Next.GenerateText(ctx, prompt)
	g.Metrics.ObserveGeneration(time.Since(start), err)
	return text, err
}
