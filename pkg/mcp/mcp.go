package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"k8s.io/klog/v2"

	"github.com/worklocal/worklocal-mcp-server/pkg/api"
	"github.com/worklocal/worklocal-mcp-server/pkg/config"
	"github.com/worklocal/worklocal-mcp-server/pkg/metrics"
	"github.com/worklocal/worklocal-mcp-server/pkg/toolsets"
	"github.com/worklocal/worklocal-mcp-server/pkg/version"
	"github.com/worklocal/worklocal-mcp-server/pkg/worklocal"
)

type Configuration struct {
	*config.StaticConfig
	// ConfigPath and ConfigDir are the sources reloaded on SIGHUP or file changes
	ConfigPath string
	ConfigDir  string
	// Overrides is re-applied on top of every reloaded configuration (e.g. command-line flags)
	Overrides func(*config.StaticConfig)
}

func (c *Configuration) Toolsets() []api.Toolset {
	var ts []api.Toolset
	for _, name := range c.StaticConfig.Toolsets {
		if toolset := toolsets.ToolsetFromString(name); toolset != nil {
			ts = append(ts, toolset)
		}
	}
	return ts
}

func (c *Configuration) toolFilter() ToolFilter {
	return CompositeFilter(
		ShouldIncludeReadOnly(c.ReadOnly),
		ShouldIncludeNonDestructive(c.DisableDestructive),
		ShouldIncludeEnabled(c.EnabledTools),
		ShouldExcludeDisabled(c.DisabledTools),
	)
}

type Server struct {
	configuration atomic.Pointer[Configuration]
	client        atomic.Pointer[worklocal.Client]
	clientOptions []worklocal.Option
	server        *server.MCPServer
	enabledTools  []string
	toolsMu       sync.RWMutex
	reloadMu      sync.Mutex
	sigHupCh      chan os.Signal
	done          chan struct{}
	closeOnce     sync.Once
}

func NewServer(configuration Configuration, clientOptions ...worklocal.Option) (*Server, error) {
	s := &Server{
		clientOptions: clientOptions,
		sigHupCh:      make(chan os.Signal, 1),
		done:          make(chan struct{}),
	}
	s.server = server.NewMCPServer(
		version.BinaryName,
		version.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithInstructions(configuration.ServerInstructions),
		server.WithToolHandlerMiddleware(toolCallLoggingMiddleware),
		server.WithToolHandlerMiddleware(toolCallTracingMiddleware),
		server.WithToolHandlerMiddleware(toolCallMetricsMiddleware(metrics.Default())),
	)
	if err := s.applyConfiguration(&configuration); err != nil {
		return nil, err
	}
	if configuration.ConfigPath != "" || configuration.ConfigDir != "" {
		signal.Notify(s.sigHupCh, syscall.SIGHUP)
	}
	go s.handleSigHup()
	return s, nil
}

// applyConfiguration builds the API client and the tool set for configuration and swaps them in.
func (s *Server) applyConfiguration(configuration *Configuration) error {
	if err := toolsets.Validate(configuration.StaticConfig.Toolsets); err != nil {
		return err
	}
	if err := configuration.WorkLocal.Validate(); err != nil {
		return err
	}
	client := worklocal.NewClient(&configuration.WorkLocal, s.clientOptions...)
	filter := configuration.toolFilter()
	var applicableTools []api.ServerTool
	for _, toolset := range configuration.Toolsets() {
		for _, tool := range toolset.GetTools() {
			if filter(tool) {
				applicableTools = append(applicableTools, tool)
			}
		}
	}
	m3labsServerTools, err := ServerToolToM3LabsServerTool(s, applicableTools)
	if err != nil {
		return fmt.Errorf("failed to convert tools: %w", err)
	}
	enabledTools := make([]string, 0, len(applicableTools))
	for _, tool := range applicableTools {
		enabledTools = append(enabledTools, tool.Tool.Name)
	}

	s.configuration.Store(configuration)
	s.client.Store(client)
	s.toolsMu.Lock()
	s.enabledTools = enabledTools
	s.toolsMu.Unlock()
	s.server.SetTools(m3labsServerTools...)
	klog.V(1).Infof("WorkLocal API %s, enabled tools: %v", client.BaseURL(), enabledTools)
	return nil
}

// reloadConfiguration re-reads the configuration sources and applies them.
// The running configuration is kept when the new one cannot be loaded.
func (s *Server) reloadConfiguration() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	current := s.configuration.Load()
	cfg, err := config.Read(current.ConfigPath, current.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	if current.Overrides != nil {
		current.Overrides(cfg)
	}
	if err = s.applyConfiguration(&Configuration{
		StaticConfig: cfg,
		ConfigPath:   current.ConfigPath,
		ConfigDir:    current.ConfigDir,
		Overrides:    current.Overrides,
	}); err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	klog.V(0).Infof("Configuration reloaded")
	return nil
}

func (s *Server) handleSigHup() {
	for {
		select {
		case <-s.done:
			return
		case <-s.sigHupCh:
			klog.V(0).Infof("Received SIGHUP, reloading configuration")
			if err := s.reloadConfiguration(); err != nil {
				klog.Errorf("%v", err)
			}
		}
	}
}

// Configuration returns the configuration currently in effect.
func (s *Server) Configuration() *Configuration {
	return s.configuration.Load()
}

// Client returns the WorkLocal API client currently in effect.
func (s *Server) Client() *worklocal.Client {
	return s.client.Load()
}

func (s *Server) GetEnabledTools() []string {
	s.toolsMu.RLock()
	defer s.toolsMu.RUnlock()
	return slices.Clone(s.enabledTools)
}

func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	return server.NewStdioServer(s.server).Listen(ctx, stdin, stdout)
}

func (s *Server) ServeSse(baseUrl, sseEndpoint, messageEndpoint string, httpServer *http.Server) *server.SSEServer {
	options := []server.SSEOption{
		server.WithHTTPServer(httpServer),
		server.WithSSEEndpoint(sseEndpoint),
		server.WithMessageEndpoint(messageEndpoint),
	}
	if baseUrl != "" {
		options = append(options, server.WithBaseURL(baseUrl))
	}
	return server.NewSSEServer(s.server, options...)
}

func (s *Server) ServeHTTP(httpServer *http.Server) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.server, server.WithStreamableHTTPServer(httpServer))
}

// MCPServer exposes the underlying protocol server, mainly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.server
}

func (s *Server) Close() {
	s.closeOnce.Do(func() {
		signal.Stop(s.sigHupCh)
		close(s.done)
	})
}

func NewTextResult(content string, err error) *mcp.CallToolResult {
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: err.Error(),
				},
			},
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: content,
			},
		},
	}
}

func ServerToolToM3LabsServerTool(s *Server, tools []api.ServerTool) ([]server.ServerTool, error) {
	m3labTools := make([]server.ServerTool, 0, len(tools))
	for _, tool := range tools {
		schema, err := json.Marshal(tool.Tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tool input schema for tool %s: %v", tool.Tool.Name, err)
		}
		m3labTool := mcp.NewToolWithRawSchema(tool.Tool.Name, tool.Tool.Description, schema)
		m3labTool.Annotations = mcp.ToolAnnotation{
			Title:           tool.Tool.Annotations.Title,
			ReadOnlyHint:    tool.Tool.Annotations.ReadOnlyHint,
			DestructiveHint: tool.Tool.Annotations.DestructiveHint,
			IdempotentHint:  tool.Tool.Annotations.IdempotentHint,
			OpenWorldHint:   tool.Tool.Annotations.OpenWorldHint,
		}
		handler := tool.Handler
		m3labHandler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := handler(api.ToolHandlerParams{
				Context:         ctx,
				Client:          s.Client(),
				ToolCallRequest: request,
			})
			if err != nil {
				return nil, err
			}
			return NewTextResult(result.Content, result.Error), nil
		}
		m3labTools = append(m3labTools, server.ServerTool{Tool: m3labTool, Handler: m3labHandler})
	}
	return m3labTools, nil
}
