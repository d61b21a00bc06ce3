package http

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"github.com/worklocal/worklocal-mcp-server/pkg/config"
	"github.com/worklocal/worklocal-mcp-server/pkg/mcp"
	"github.com/worklocal/worklocal-mcp-server/pkg/metrics"
)

const (
	defaultHealthEndpoint     = "/healthz"
	defaultMetricsEndpoint    = "/metrics"
	defaultMcpEndpoint        = "/mcp"
	defaultSseEndpoint        = "/sse"
	defaultSseMessageEndpoint = "/message"
)

// getEndpointOrDefault returns the endpoint value, otherwise returns the default value.
func getEndpointOrDefault(configValue, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return defaultValue
}

// NewHandler routes the Streamable HTTP, SSE, health and metrics endpoints.
func NewHandler(mcpServer *mcp.Server, staticConfig *config.StaticConfig, httpServer *http.Server) http.Handler {
	mux := http.NewServeMux()

	healthEndpoint := getEndpointOrDefault(staticConfig.HealthEndpoint, defaultHealthEndpoint)
	mcpEndpoint := getEndpointOrDefault(staticConfig.StreamableHttpEndpoint, defaultMcpEndpoint)
	sseEndpoint := getEndpointOrDefault(staticConfig.SSEEndpoint, defaultSseEndpoint)
	sseMessageEndpoint := getEndpointOrDefault(staticConfig.SSEMessageEndpoint, defaultSseMessageEndpoint)

	sseServer := mcpServer.ServeSse(staticConfig.SSEBaseURL, sseEndpoint, sseMessageEndpoint, httpServer)
	streamableHttpServer := mcpServer.ServeHTTP(httpServer)
	mux.Handle(sseEndpoint, sseServer)
	mux.Handle(sseMessageEndpoint, sseServer)
	mux.Handle(mcpEndpoint, streamableHttpServer)
	mux.HandleFunc(healthEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle(defaultMetricsEndpoint, metrics.Default().Handler())

	return RequestMiddleware(CORSMiddleware(staticConfig.CORS)(mux))
}

func Serve(ctx context.Context, mcpServer *mcp.Server, staticConfig *config.StaticConfig) error {
	httpServer := &http.Server{
		Addr:              ":" + staticConfig.Port,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer.Handler = NewHandler(mcpServer, staticConfig, httpServer)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErr := make(chan error, 1)
	go func() {
		klog.V(0).Infof("Streaming and SSE HTTP servers starting on port %s and paths %s, %s, %s",
			staticConfig.Port,
			getEndpointOrDefault(staticConfig.StreamableHttpEndpoint, defaultMcpEndpoint),
			getEndpointOrDefault(staticConfig.SSEEndpoint, defaultSseEndpoint),
			getEndpointOrDefault(staticConfig.SSEMessageEndpoint, defaultSseMessageEndpoint))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		klog.V(0).Infof("Received signal %v, initiating graceful shutdown", sig)
		cancel()
	case <-ctx.Done():
		klog.V(0).Infof("Context cancelled, initiating graceful shutdown")
	case err := <-serverErr:
		klog.Errorf("HTTP server error: %v", err)
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	klog.V(0).Infof("Shutting down HTTP server gracefully...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		klog.Errorf("HTTP server shutdown error: %v", err)
		return err
	}

	klog.V(0).Infof("HTTP server shutdown complete")
	return nil
}
