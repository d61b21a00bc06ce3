package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "worklocal_mcp"

// Collector records tool invocations and the WorkLocal API requests they trigger.
type Collector struct {
	registry           *prometheus.Registry
	toolCalls          *prometheus.CounterVec
	toolCallErrors     *prometheus.CounterVec
	toolCallDuration   *prometheus.HistogramVec
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Number of MCP tool calls by tool name.",
		}, []string{"tool"}),
		toolCallErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_call_errors_total",
			Help:      "Number of MCP tool calls that returned an error result.",
		}, []string{"tool"}),
		toolCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of MCP tool calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Number of requests issued to the WorkLocal API by operation, method and status code.",
		}, []string{"operation", "method", "code"}),
		apiRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of requests issued to the WorkLocal API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	c.registry.MustRegister(
		c.toolCalls,
		c.toolCallErrors,
		c.toolCallDuration,
		c.apiRequests,
		c.apiRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

var (
	defaultCollector     *Collector
	defaultCollectorOnce sync.Once
)

// Default returns the process wide collector served on the /metrics endpoint.
func Default() *Collector {
	defaultCollectorOnce.Do(func() {
		defaultCollector = NewCollector()
	})
	return defaultCollector
}

func (c *Collector) RecordToolCall(_ context.Context, name string, duration time.Duration, err error) {
	c.toolCalls.WithLabelValues(name).Inc()
	c.toolCallDuration.WithLabelValues(name).Observe(duration.Seconds())
	if err != nil {
		c.toolCallErrors.WithLabelValues(name).Inc()
	}
}

// RecordAPIRequest records a request to the WorkLocal API.
// A zero status means the request failed before a response was received.
func (c *Collector) RecordAPIRequest(_ context.Context, operation, method string, status int, duration time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	c.apiRequests.WithLabelValues(operation, method, code).Inc()
	c.apiRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
