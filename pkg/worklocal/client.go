package worklocal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"

	"github.com/worklocal/worklocal-mcp-server/pkg/config"
	"github.com/worklocal/worklocal-mcp-server/pkg/metrics"
	"github.com/worklocal/worklocal-mcp-server/pkg/version"
)

const tracerName = "github.com/worklocal/worklocal-mcp-server/pkg/worklocal"

// Client is a stateless facade over the WorkLocal Studio infrastructure API.
// It is immutable after construction and safe for concurrent use.
type Client struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	tracer     trace.Tracer
	metrics    *metrics.Collector
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is overridden by the configured request timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

func NewClient(cfg *config.WorkLocalConfig, opts ...Option) *Client {
	if cfg == nil {
		cfg = &config.WorkLocalConfig{}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		headers:    cfg.RequestHeaders(),
		httpClient: &http.Client{},
		tracer:     otel.Tracer(tracerName),
		metrics:    metrics.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	httpClient := *c.httpClient
	httpClient.Timeout = cfg.RequestTimeout()
	c.httpClient = &httpClient
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Headers returns a copy of the static headers sent with every request.
func (c *Client) Headers() map[string]string {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return headers
}

// request describes a single call to the API and how to render its response.
type request struct {
	// operation names the call in logs, metrics and traces
	operation string
	method    string
	path      string
	query     url.Values
	body      any
	// success lists the status codes rendered by render
	success []int
	render  func(body []byte) (string, error)
	// notFound is returned on 404, empty when 404 has no special meaning
	notFound string
	failure  func(status int, body string) string
	// action completes "Error <action>: ..." for transport failures
	action string
}

// call issues the request and translates the outcome into text.
// It never fails: transport errors, unexpected status codes and undecodable bodies are all rendered.
func (c *Client) call(ctx context.Context, r request) string {
	ctx, span := c.tracer.Start(ctx, "worklocal."+r.operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", r.method),
		attribute.String("url.path", r.path),
	)

	start := time.Now()
	status, body, err := c.do(ctx, r)
	duration := time.Since(start)
	c.metrics.RecordAPIRequest(ctx, r.operation, r.method, status, duration)
	if err != nil {
		klog.V(1).Infof("WorkLocal %s %s failed after %s: %v", r.method, r.path, duration, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Sprintf("❌ Error %s: %v", r.action, err)
	}
	klog.V(2).Infof("WorkLocal %s %s returned %d in %s", r.method, r.path, status, duration)
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	switch {
	case slices.Contains(r.success, status):
		text, err := r.render(body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Sprintf("❌ Error %s: %v", r.action, err)
		}
		return text
	case status == http.StatusNotFound && r.notFound != "":
		span.SetStatus(codes.Error, "not found")
		return r.notFound
	default:
		span.SetStatus(codes.Error, http.StatusText(status))
		return r.failure(status, string(body))
	}
}

func (c *Client) do(ctx context.Context, r request) (int, []byte, error) {
	var payload io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.url(r.path, r.query), payload)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s/%s", version.BinaryName, version.Version))
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func apiStatusFailure(status int, body string) string {
	return fmt.Sprintf("⚠️ API returned status code: %d\nResponse: %s", status, body)
}

func statusFailure(what string) func(int, string) string {
	return func(status int, body string) string {
		return fmt.Sprintf("⚠️ %s. Status: %d\nResponse: %s", what, status, body)
	}
}

func notFound(resourceID string) string {
	return fmt.Sprintf("❌ Resource with ID '%s' not found", resourceID)
}

func resourcePath(resourceID string, segments ...string) string {
	path := "/resources/" + url.PathEscape(resourceID)
	for _, s := range segments {
		path += "/" + s
	}
	return path
}
