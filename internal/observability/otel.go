package observability

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/platform/envutil"
)

const tracerName = "github.com/yungbote/cqox-backend"

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
	Enabled     bool
	Endpoint    string
	Insecure    bool
	SampleRatio float64
	Headers     map[string]string
}

// OtelConfigFromEnv reads the OTEL_* variables.
func OtelConfigFromEnv(serviceName string) OtelConfig {
	return OtelConfig{
		ServiceName: envutil.String("OTEL_SERVICE_NAME", serviceName),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", ""),
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		SampleRatio: clampRatio(envutil.Float("OTEL_SAMPLER_RATIO", 0.1)),
		Headers:     parseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
	}
}

var (
	otelOnce     sync.Once
	otelShutdown = func(context.Context) error { return nil }
)

// InitOTel installs the global tracer provider. With tracing disabled the
// no-op provider stays in place and the returned shutdown does nothing.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	otelOnce.Do(func() {
		if !cfg.Enabled {
			return
		}
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "cqox-backend"
		}
		res, err := resource.New(
			ctx,
			resource.WithAttributes(
				semconv.ServiceNameKey.String(serviceName),
				attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
				semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			),
		)
		if err != nil && log != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
			sdktrace.WithResource(res),
		}
		exporter, expErr := buildTraceExporter(ctx, log, cfg)
		if expErr != nil && log != nil {
			log.Warn("otel exporter init failed (continuing)", "error", expErr)
		}
		if exporter != nil {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}
		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		if log != nil {
			log.Info("otel tracing initialized", "service", serviceName, "endpoint", cfg.Endpoint)
		}
	})
	return otelShutdown
}

// Tracer returns the module tracer from the current global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

func buildTraceExporter(ctx context.Context, log *logger.Logger, cfg OtelConfig) (sdktrace.SpanExporter, error) {
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		return otlptracehttp.New(ctx, opts...)
	}
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.Warn("otel using stdout exporter (no OTLP endpoint configured)")
	}
	return exp, nil
}

func clampRatio(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// parseHeaders reads "k1=v1,k2=v2".
func parseHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	headers := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		if key == "" || val == "" {
			continue
		}
		headers[key] = val
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}
