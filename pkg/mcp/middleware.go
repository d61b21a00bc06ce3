package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"

	"github.com/worklocal/worklocal-mcp-server/pkg/metrics"
)

const tracerName = "github.com/worklocal/worklocal-mcp-server/pkg/mcp"

var errToolResult = errors.New("tool returned an error result")

func toolCallLoggingMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, ctr mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		klog.V(5).Infof("mcp tool call: %s(%v)", ctr.Params.Name, ctr.GetArguments())
		return next(ctx, ctr)
	}
}

func toolCallTracingMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, ctr mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := otel.Tracer(tracerName).Start(ctx, "tools/call "+ctr.Params.Name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool.name", ctr.Params.Name)),
		)
		defer span.End()
		result, err := next(ctx, ctr)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if result != nil && result.IsError {
			span.SetStatus(codes.Error, errToolResult.Error())
		}
		return result, err
	}
}

func toolCallMetricsMiddleware(collector *metrics.Collector) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, ctr mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, ctr)
			recordErr := err
			if recordErr == nil && result != nil && result.IsError {
				recordErr = errToolResult
			}
			collector.RecordToolCall(ctx, ctr.Params.Name, time.Since(start), recordErr)
			return result, err
		}
	}
}
