package telemetry

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"k8s.io/klog/v2"
)

// Enabled reports whether an OTLP endpoint is configured through the standard OTEL_* environment variables.
func Enabled() bool {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" || os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") != ""
}

// InitTracer installs a global tracer provider exporting spans over OTLP/HTTP.
// When no endpoint is configured the global no-op provider is left in place.
// The returned cleanup function flushes pending spans and is always safe to call.
func InitTracer(serviceName, serviceVersion string) (func(), error) {
	if !Enabled() {
		klog.V(2).Info("OpenTelemetry tracing disabled, no OTLP endpoint configured")
		return func() {}, nil
	}

	exporter, err := otlptracehttp.New(context.Background())
	if err != nil {
		klog.Errorf("Failed to create OTLP trace exporter: %v", err)
		return func() {}, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		)),
	)
	otel.SetTracerProvider(tp)
	klog.V(1).Infof("OpenTelemetry tracing enabled for %s %s", serviceName, serviceVersion)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			klog.Errorf("Failed to shutdown tracer provider: %v", err)
		}
	}, nil
}
