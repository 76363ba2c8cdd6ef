package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the console's Prometheus collectors.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	gatewayTotal    *prometheus.CounterVec
	listLoads       *prometheus.CounterVec
	workspaces      prometheus.Gauge
}

// NewMetricsService registers the collectors on a private registry.
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

	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_call_duration_seconds",
		Help:    "Duration of academic backend calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	gatewayTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_calls_total",
		Help: "Academic backend calls by operation and outcome",
	}, []string{"operation", "outcome"})

	listLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_loads_total",
		Help: "Applied list loads by entity and resulting state",
	}, []string{"entity", "state"})

	workspaces := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_workspaces",
		Help: "Browser workspaces currently held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, gatewayDuration, gatewayTotal, listLoads, workspaces, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		gatewayDuration: gatewayDuration,
		gatewayTotal:    gatewayTotal,
		listLoads:       listLoads,
		workspaces:      workspaces,
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

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records one handled request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveGatewayCall records one backend round trip.
func (m *MetricsService) ObserveGatewayCall(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.gatewayDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.gatewayTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveListLoad records the state a list load resolved to.
func (m *MetricsService) ObserveListLoad(entity, state string) {
	if m == nil {
		return
	}
	m.listLoads.WithLabelValues(entity, state).Inc()
}

// SetWorkspaces updates the live workspace gauge.
func (m *MetricsService) SetWorkspaces(n int) {
	if m == nil {
		return
	}
	m.workspaces.Set(float64(n))
}
