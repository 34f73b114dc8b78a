package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/config"
)

// Config holds OpenTelemetry settings
type Config struct {
	ServiceName     string
	ServiceVersion  string
	Environment     string
	OTLPEndpoint    string
	MetricsInterval time.Duration
}

// ConfigFrom derives the telemetry settings from the application config
func ConfigFrom(cfg *config.Config, version string) Config {
	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return Config{
		ServiceName:     "patient-intake",
		ServiceVersion:  version,
		Environment:     cfg.Environment,
		OTLPEndpoint:    cfg.OTLPEndpoint,
		MetricsInterval: interval,
	}
}

// Provider holds the OpenTelemetry providers
type Provider struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
	log            *zap.Logger
}

// InitProvider sets up tracing and metrics export.
// An unreachable collector only disables export; the application keeps running.
func InitProvider(ctx context.Context, cfg Config, log *zap.Logger) (*Provider, error) {
	log.Info("initializing OpenTelemetry", zap.String("endpoint", cfg.OTLPEndpoint))

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p := &Provider{log: log}

	tracerProvider, err := initTracerProvider(ctx, cfg, res)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	} else {
		otel.SetTracerProvider(tracerProvider)
		p.TracerProvider = tracerProvider
	}

	meterProvider, err := initMeterProvider(ctx, cfg, res)
	if err != nil {
		log.Warn("metrics export disabled", zap.Error(err))
	} else {
		otel.SetMeterProvider(meterProvider)
		p.MeterProvider = meterProvider
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

func initTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*trace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		otlptracegrpc.WithTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithBatcher(exporter, trace.WithBatchTimeout(5*time.Second)),
	), nil
}

func initMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*metric.MeterProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		otlpmetricgrpc.WithTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(cfg.MetricsInterval))),
	), nil
}

// Shutdown flushes and stops both providers
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error

	if p.TracerProvider != nil {
		if shutdownErr := p.TracerProvider.Shutdown(ctx); shutdownErr != nil {
			p.log.Error("error shutting down tracer provider", zap.Error(shutdownErr))
			err = shutdownErr
		}
	}

	if p.MeterProvider != nil {
		if shutdownErr := p.MeterProvider.Shutdown(ctx); shutdownErr != nil {
			p.log.Error("error shutting down meter provider", zap.Error(shutdownErr))
			if err == nil {
				err = shutdownErr
			}
		}
	}

	return err
}
