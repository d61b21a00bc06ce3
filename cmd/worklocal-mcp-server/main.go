package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/worklocal/worklocal-mcp-server/pkg/telemetry"
	_ "github.com/worklocal/worklocal-mcp-server/pkg/toolsets/worklocal"
	"github.com/worklocal/worklocal-mcp-server/pkg/version"
	"github.com/worklocal/worklocal-mcp-server/pkg/worklocal-mcp-server/cmd"
)

func main() {
	// Initialize OpenTelemetry tracing
	cleanup, _ := telemetry.InitTracer(version.BinaryName, version.Version)
	// Tracing is optional - errors are logged in InitTracer but don't prevent startup
	defer cleanup()

	flags := pflag.NewFlagSet(version.BinaryName, pflag.ExitOnError)
	pflag.CommandLine = flags

	root := cmd.NewMCPServer(cmd.IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
