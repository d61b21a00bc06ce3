package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/textlogger"

	"github.com/worklocal/worklocal-mcp-server/pkg/config"
	internalhttp "github.com/worklocal/worklocal-mcp-server/pkg/http"
	"github.com/worklocal/worklocal-mcp-server/pkg/mcp"
	"github.com/worklocal/worklocal-mcp-server/pkg/toolsets"
	"github.com/worklocal/worklocal-mcp-server/pkg/version"
)

var (
	long     = `WorkLocal Studio Model Context Protocol (MCP) server`
	examples = `
# show this help
worklocal-mcp-server -h

# shows version information
worklocal-mcp-server --version

# start STDIO server
worklocal-mcp-server

# start a Streamable HTTP and SSE server on port 8080
worklocal-mcp-server --port 8080

# point the server at a different WorkLocal Studio API
WORKLOCAL_API_KEY=secret worklocal-mcp-server --base-url https://staging.worklocal.app

# start a server exposing only read-only tools
worklocal-mcp-server --read-only
`
)

type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

type MCPServerOptions struct {
	Version            bool
	LogLevel           int
	Port               string
	SSEBaseUrl         string
	BaseURL            string
	APIKey             string
	Toolsets           []string
	ListToolsets       bool
	ReadOnly           bool
	DisableDestructive bool

	ConfigPath   string
	ConfigDir    string
	StaticConfig *config.StaticConfig

	flagOverrides func(*config.StaticConfig)

	IOStreams
}

func NewMCPServerOptions(streams IOStreams) *MCPServerOptions {
	return &MCPServerOptions{
		IOStreams: streams,
	}
}

func NewMCPServer(streams IOStreams) *cobra.Command {
	return newCommand(NewMCPServerOptions(streams))
}

func newCommand(o *MCPServerOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     version.BinaryName + " [command] [options]",
		Short:   "WorkLocal Studio Model Context Protocol (MCP) server",
		Long:    long,
		Example: examples,
		RunE: func(c *cobra.Command, args []string) error {
			if err := o.Complete(c); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run(c.Context())
		},
		SilenceUsage: true,
	}

	cmd.SetIn(o.In)
	cmd.SetOut(o.Out)
	cmd.SetErr(o.ErrOut)

	cmd.Flags().BoolVar(&o.Version, "version", o.Version, "Print version information and quit")
	cmd.Flags().IntVar(&o.LogLevel, "log-level", o.LogLevel, "Set the log level (from 0 to 9)")
	cmd.Flags().StringVar(&o.ConfigPath, "config", o.ConfigPath, "Path of the config file.")
	cmd.Flags().StringVar(&o.ConfigDir, "config-dir", o.ConfigDir, "Path to drop-in configuration directory (files loaded in lexical order).")
	cmd.Flags().StringVar(&o.Port, "port", o.Port, "Start a streamable HTTP and SSE HTTP server on the specified port (e.g. 8080)")
	cmd.Flags().StringVar(&o.SSEBaseUrl, "sse-base-url", o.SSEBaseUrl, "SSE public base URL to use when sending the endpoint message (e.g. https://example.com)")
	cmd.Flags().StringVar(&o.BaseURL, "base-url", o.BaseURL, "Base URL of the WorkLocal Studio API (overrides "+config.EnvBaseURL+")")
	cmd.Flags().StringVar(&o.APIKey, "api-key", o.APIKey, "API key sent to the WorkLocal Studio API (overrides "+config.EnvAPIKey+")")
	cmd.Flags().StringSliceVar(&o.Toolsets, "toolsets", o.Toolsets, "Comma-separated list of MCP toolsets to use (available toolsets: "+strings.Join(toolsets.ToolsetNames(), ", ")+"). Defaults to "+strings.Join(config.Default().Toolsets, ", ")+".")
	cmd.Flags().BoolVar(&o.ListToolsets, "list-toolsets", o.ListToolsets, "Print the available toolsets and quit")
	cmd.Flags().BoolVar(&o.ReadOnly, "read-only", o.ReadOnly, "If true, only tools annotated with readOnlyHint=true are exposed")
	cmd.Flags().BoolVar(&o.DisableDestructive, "disable-destructive", o.DisableDestructive, "If true, tools annotated with destructiveHint=true are disabled")

	return cmd
}

func (m *MCPServerOptions) Complete(cmd *cobra.Command) error {
	if m.ConfigPath != "" || m.ConfigDir != "" {
		cnf, err := config.Read(m.ConfigPath, m.ConfigDir)
		if err != nil {
			return err
		}
		m.StaticConfig = cnf
	} else {
		m.StaticConfig = config.Default()
		m.StaticConfig.ApplyEnv()
	}

	m.loadFlags(cmd)

	m.initializeLogging()

	return nil
}

// loadFlags overrides the configuration with the flags explicitly set on the command line.
// The same overrides are kept for configuration reloads.
func (m *MCPServerOptions) loadFlags(cmd *cobra.Command) {
	var overrides []func(*config.StaticConfig)
	override := func(name string, apply func(*config.StaticConfig)) {
		if cmd.Flag(name).Changed {
			overrides = append(overrides, apply)
		}
	}
	override("log-level", func(c *config.StaticConfig) { c.LogLevel = m.LogLevel })
	override("port", func(c *config.StaticConfig) { c.Port = m.Port })
	override("sse-base-url", func(c *config.StaticConfig) { c.SSEBaseURL = m.SSEBaseUrl })
	override("base-url", func(c *config.StaticConfig) { c.WorkLocal.BaseURL = m.BaseURL })
	override("api-key", func(c *config.StaticConfig) { c.WorkLocal.APIKey = m.APIKey })
	override("toolsets", func(c *config.StaticConfig) { c.Toolsets = slices.Clone(m.Toolsets) })
	override("read-only", func(c *config.StaticConfig) { c.ReadOnly = m.ReadOnly })
	override("disable-destructive", func(c *config.StaticConfig) { c.DisableDestructive = m.DisableDestructive })
	m.flagOverrides = func(c *config.StaticConfig) {
		for _, apply := range overrides {
			apply(c)
		}
	}
	m.flagOverrides(m.StaticConfig)
}

func (m *MCPServerOptions) initializeLogging() {
	flagSet := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(flagSet)
	loggerOptions := []textlogger.ConfigOption{textlogger.Output(m.ErrOut)}
	if level := m.StaticConfig.LogLevel; level >= 0 {
		loggerOptions = append(loggerOptions, textlogger.Verbosity(level))
		_ = flagSet.Parse([]string{"--v", strconv.Itoa(level)})
	}
	logger := textlogger.NewLogger(textlogger.NewConfig(loggerOptions...))
	klog.SetLoggerWithOptions(logger)
}

func (m *MCPServerOptions) Validate() error {
	if m.Version || m.ListToolsets {
		return nil
	}
	if m.StaticConfig.SSEBaseURL != "" && m.StaticConfig.Port == "" {
		return errors.New("--sse-base-url requires --port to be set")
	}
	if port := m.StaticConfig.Port; port != "" {
		if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid port %q", port)
		}
	}
	if err := toolsets.Validate(m.StaticConfig.Toolsets); err != nil {
		return err
	}
	return m.StaticConfig.Validate()
}

func (m *MCPServerOptions) Run(ctx context.Context) error {
	if m.Version {
		_, _ = fmt.Fprintf(m.Out, "%s\n", version.Version)
		return nil
	}
	if m.ListToolsets {
		for _, toolset := range toolsets.Toolsets() {
			_, _ = fmt.Fprintf(m.Out, "%s\t%s\n", toolset.GetName(), toolset.GetDescription())
		}
		return nil
	}

	klog.V(1).Info("Starting " + version.BinaryName + " " + version.Version)
	klog.V(1).Infof(" - Toolsets: %s", strings.Join(m.StaticConfig.Toolsets, ", "))
	klog.V(1).Infof(" - WorkLocal API: %s", m.StaticConfig.WorkLocal.BaseURL)
	klog.V(1).Infof(" - Read-only mode: %t", m.StaticConfig.ReadOnly)
	klog.V(1).Infof(" - Disable destructive tools: %t", m.StaticConfig.DisableDestructive)

	mcpServer, err := mcp.NewServer(mcp.Configuration{
		StaticConfig: m.StaticConfig,
		ConfigPath:   m.ConfigPath,
		ConfigDir:    m.ConfigDir,
		Overrides:    m.flagOverrides,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize MCP server: %w", err)
	}
	defer mcpServer.Close()
	klog.V(1).Infof(" - Enabled tools: %s", strings.Join(mcpServer.GetEnabledTools(), ", "))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, cancelServe := context.WithCancel(gctx)
	defer cancelServe()
	g.Go(func() error {
		// Serving ends the process, stop watching the configuration as well
		defer cancelServe()
		if m.StaticConfig.Port != "" {
			return internalhttp.Serve(serveCtx, mcpServer, m.StaticConfig)
		}
		if err := mcpServer.ServeStdio(serveCtx, m.In, m.Out); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return mcpServer.WatchConfig(serveCtx)
	})
	return g.Wait()
}
