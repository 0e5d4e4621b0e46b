package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration // Default: 60s
	ServiceName       string
	Insecure          bool
}

// MeterProvider wraps the SDK meter provider with lifecycle management
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   MetricsConfig
}

// NewMeterProvider creates the OTLP meter provider and installs it globally
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger, config: cfg}
	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval == 0 {
		interval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Shutdown flushes pending metrics
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.logger.Info("OpenTelemetry MeterProvider shutdown complete")
	return nil
}

// Meter returns a named meter
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled reports whether metrics are exported
func (mp *MeterProvider) IsEnabled() bool {
	return mp.config.Enabled && mp.provider != nil
}

// Report outcome values for the status attribute
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeRenderError     = "render_error"
)

// ReportDurationBuckets are histogram boundaries for report generation (seconds)
var ReportDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// ReportMetrics records report generation counters and durations
type ReportMetrics struct {
	generated metric.Int64Counter
	warnings  metric.Int64Counter
	duration  metric.Float64Histogram
	size      metric.Int64Histogram
}

// NewReportMetrics registers the report instruments on meter
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	generated, err := meter.Int64Counter("gym.reports.generated",
		metric.WithDescription("Report generation attempts by type and outcome"),
		metric.WithUnit("{report}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter gym.reports.generated: %w", err)
	}
	warnings, err := meter.Int64Counter("gym.reports.warnings",
		metric.WithDescription("Data sources that degraded to empty data"),
		metric.WithUnit("{warning}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter gym.reports.warnings: %w", err)
	}
	duration, err := meter.Float64Histogram("gym.reports.duration",
		metric.WithDescription("End-to-end report generation time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ReportDurationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram gym.reports.duration: %w", err)
	}
	size, err := meter.Int64Histogram("gym.reports.size",
		metric.WithDescription("Size of rendered PDF documents"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram gym.reports.size: %w", err)
	}
	return &ReportMetrics{generated: generated, warnings: warnings, duration: duration, size: size}, nil
}

// NewNoopReportMetrics returns metrics bound to the global provider,
// which is a no-op until telemetry is configured.
func NewNoopReportMetrics() *ReportMetrics {
	m, err := NewReportMetrics(otel.GetMeterProvider().Meter(TracerName))
	if err != nil {
		return nil
	}
	return m
}

// RecordGeneration counts one generation attempt and its duration
func (m *ReportMetrics) RecordGeneration(ctx context.Context, reportType, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrReportType.String(reportType),
		AttrReportOutcome.String(outcome),
	)
	m.generated.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordWarning counts a degraded data source
func (m *ReportMetrics) RecordWarning(ctx context.Context, reportType, entity string) {
	if m == nil {
		return
	}
	m.warnings.Add(ctx, 1, metric.WithAttributes(
		AttrReportType.String(reportType),
		AttrFetchEntity.String(entity),
	))
}

// RecordSize records the rendered PDF size
func (m *ReportMetrics) RecordSize(ctx context.Context, reportType string, bytes int) {
	if m == nil {
		return
	}
	m.size.Record(ctx, int64(bytes), metric.WithAttributes(AttrReportType.String(reportType)))
}
