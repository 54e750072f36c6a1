package tracing

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is reported when Options.ServiceName is empty.
const DefaultServiceName = "vertexchat"

const (
	instrumentationScope = "vertexchat-go"
	defaultBatchTimeout  = 5 * time.Second
)

// Options configures the OTLP/gRPC trace exporter.
type Options struct {
	// Endpoint is host:port, optionally prefixed with http:// or https://,
	// which then decides transport security. Empty disables tracing.
	Endpoint    string
	Insecure    bool
	ServiceName string
	Version     string
	// SampleRatio outside (0,1) samples every root span.
	SampleRatio  float64
	BatchTimeout time.Duration
}

var (
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
)

// ErrAlreadyInitialized is returned by a second Init while a provider is
// installed.
var ErrAlreadyInitialized = errors.New("tracing: provider already initialized")

func noopShutdown(context.Context) error { return nil }

// Init installs a global tracer provider exporting to opts.Endpoint. The
// returned shutdown is never nil; without an endpoint it does nothing and
// spans stay non-recording.
func Init(ctx context.Context, opts Options) (func(context.Context) error, error) {
	host, insecure := exporterTarget(opts.Endpoint, opts.Insecure)
	if host == "" {
		return noopShutdown, nil
	}

	mu.Lock()
	defer mu.Unlock()
	if provider != nil {
		return noopShutdown, ErrAlreadyInitialized
	}

	exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(host)}
	if insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return noopShutdown, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(serviceAttributes(opts)...),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
	)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return noopShutdown, err
	}

	batchTimeout := opts.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = defaultBatchTimeout
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(batchTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(opts.SampleRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	provider = tp

	return func(ctx context.Context) error {
		mu.Lock()
		if provider == tp {
			provider = nil
		}
		mu.Unlock()
		return tp.Shutdown(ctx)
	}, nil
}

// exporterTarget strips an URL scheme from endpoint. http:// forces a
// plaintext connection and https:// forces TLS; a bare host keeps insecure.
func exporterTarget(endpoint string, insecure bool) (string, bool) {
	host := strings.TrimSpace(endpoint)
	switch {
	case strings.HasPrefix(host, "http://"):
		host, insecure = strings.TrimPrefix(host, "http://"), true
	case strings.HasPrefix(host, "https://"):
		host, insecure = strings.TrimPrefix(host, "https://"), false
	}
	return strings.TrimRight(host, "/"), insecure
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func serviceAttributes(opts Options) []attribute.KeyValue {
	name := strings.TrimSpace(opts.ServiceName)
	if name == "" {
		name = DefaultServiceName
	}
	attrs := []attribute.KeyValue{
		attribute.String("service.name", name),
		attribute.String("service.instance.id", hostname()),
	}
	if opts.Version != "" {
		attrs = append(attrs, attribute.String("service.version", opts.Version))
	}
	return attrs
}

// Tracer returns the tracer for one component of the client.
func Tracer(component string) trace.Tracer {
	name := instrumentationScope
	if c := strings.TrimSpace(component); c != "" {
		name += "/" + c
	}
	return otel.Tracer(name)
}

// StartSpan is a convenience wrapper around Tracer(component).Start.
func StartSpan(ctx context.Context, component, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(component).Start(ctx, spanName, opts...)
}

func hostname() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
