// Package metrics provides Prometheus metrics export for the shopping assistant.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "neusearch"
	subsystem = "ai"
)

// PrometheusExporter exports assistant metrics in Prometheus format.
// All Record methods are safe to call on a nil exporter.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Chat metrics
	chatLatency  *prometheus.HistogramVec
	chatRequests *prometheus.CounterVec

	// Retrieval metrics
	retrievalResults  *prometheus.HistogramVec
	embeddingFailures *prometheus.CounterVec

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// LLM metrics
	llmTokensUsed *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec

	// Ingestion metrics
	ingestProducts *prometheus.CounterVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.chatLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chat_latency_seconds",
			Help:      "Chat request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"route"},
	)

	e.chatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chat_requests_total",
			Help:      "Total number of chat requests",
		},
		[]string{"route", "status"},
	)

	e.retrievalResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "retrieval_results",
			Help:      "Number of products returned by hybrid retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		},
		[]string{"mode"},
	)

	e.embeddingFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "embedding_failures_total",
			Help:      "Total number of failed embedding calls",
		},
		[]string{"stage"},
	)

	e.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	e.cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	e.llmTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"model", "token_type"},
	)

	e.llmLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "llm_latency_seconds",
			Help:      "LLM request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"model", "purpose"},
	)

	e.ingestProducts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "products_total",
			Help:      "Total number of products processed by ingestion",
		},
		[]string{"status"},
	)

	registry.MustRegister(
		e.chatLatency,
		e.chatRequests,
		e.retrievalResults,
		e.embeddingFailures,
		e.cacheHits,
		e.cacheMisses,
		e.llmTokensUsed,
		e.llmLatency,
		e.ingestProducts,
	)

	return e
}

// RecordChatRequest records a chat request metric.
func (e *PrometheusExporter) RecordChatRequest(route string, latency time.Duration, success bool) {
	if e == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}

	e.chatRequests.WithLabelValues(route, status).Inc()
	e.chatLatency.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordRetrieval records how many products a retrieval returned.
func (e *PrometheusExporter) RecordRetrieval(mode string, count int) {
	if e == nil {
		return
	}
	e.retrievalResults.WithLabelValues(mode).Observe(float64(count))
}

// RecordEmbeddingFailure records a failed embedding call for a stage (query, ingest).
func (e *PrometheusExporter) RecordEmbeddingFailure(stage string) {
	if e == nil {
		return
	}
	e.embeddingFailures.WithLabelValues(stage).Inc()
}

// RecordCacheHit records a cache hit.
func (e *PrometheusExporter) RecordCacheHit(cacheType string) {
	if e == nil {
		return
	}
	e.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss.
func (e *PrometheusExporter) RecordCacheMiss(cacheType string) {
	if e == nil {
		return
	}
	e.cacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordLLMCall records latency and token usage of one LLM call.
func (e *PrometheusExporter) RecordLLMCall(model, purpose string, latency time.Duration, promptTokens, completionTokens int) {
	if e == nil {
		return
	}
	e.llmLatency.WithLabelValues(model, purpose).Observe(latency.Seconds())
	if promptTokens > 0 {
		e.llmTokensUsed.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		e.llmTokensUsed.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}

// RecordIngest records the outcome of one ingestion run.
func (e *PrometheusExporter) RecordIngest(succeeded, failed int) {
	if e == nil {
		return
	}
	e.ingestProducts.WithLabelValues("success").Add(float64(succeeded))
	e.ingestProducts.WithLabelValues("failed").Add(float64(failed))
}

// Handler returns the HTTP handler for Prometheus metrics.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// ServeHTTP implements http.Handler for the metrics endpoint.
func (e *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Handler().ServeHTTP(w, r)
}

// Registry returns the Prometheus registry.
func (e *PrometheusExporter) Registry() *prometheus.Registry {
	return e.registry
}
