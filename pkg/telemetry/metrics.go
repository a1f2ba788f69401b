package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// MetricsConfig configures the OTLP/HTTP metric exporter.
type MetricsConfig struct {
	// Endpoint is host:port of the collector. Empty disables export.
	Endpoint    string
	Insecure    bool
	ServiceName string
	Interval    time.Duration
}

// Metrics holds the instruments recorded by the HTTP layer and the order flow.
type Metrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	OrdersPlaced     metric.Int64Counter
	OrdersCancelled  metric.Int64Counter
	CheckoutFailures metric.Int64Counter
	RevenueTotal     metric.Float64Counter

	serviceName string
}

// InitMetrics wires a meter provider exporting to cfg.Endpoint every cfg.Interval and
// registers it globally. The returned function flushes and stops the provider.
// With no endpoint configured it returns no-op instruments.
func InitMetrics(ctx context.Context, cfg MetricsConfig) (*Metrics, func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return NewNoopMetrics(), func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build metrics resource: %w", err)
	}

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)

	m, err := newMetrics(provider.Meter(cfg.ServiceName), cfg.ServiceName)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, nil, err
	}
	return m, provider.Shutdown, nil
}

// NewNoopMetrics returns instruments that record nothing. Used in tests and when no
// collector is configured.
func NewNoopMetrics() *Metrics {
	m, _ := newMetrics(noop.NewMeterProvider().Meter("storefront"), "storefront")
	return m
}

func newMetrics(meter metric.Meter, serviceName string) (*Metrics, error) {
	// Milliseconds, same boundaries the collector dashboards expect.
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000}

	httpRequestsTotal, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	ordersPlaced, err := meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Total number of orders placed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders placed counter: %w", err)
	}

	ordersCancelled, err := meter.Int64Counter(
		"orders_cancelled_total",
		metric.WithDescription("Total number of orders cancelled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders cancelled counter: %w", err)
	}

	checkoutFailures, err := meter.Int64Counter(
		"checkout_failures_total",
		metric.WithDescription("Checkouts rejected or rolled back, by reason"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout failures counter: %w", err)
	}

	revenueTotal, err := meter.Float64Counter(
		"revenue_total",
		metric.WithDescription("Total amount of placed orders"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}

	return &Metrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		OrdersPlaced:        ordersPlaced,
		OrdersCancelled:     ordersCancelled,
		CheckoutFailures:    checkoutFailures,
		RevenueTotal:        revenueTotal,
		serviceName:         serviceName,
	}, nil
}

func (m *Metrics) attrs(kv ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(append(kv, attribute.String("service.name", m.serviceName))...)
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	opt := m.attrs(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, opt)
	m.HTTPRequestDuration.Record(ctx, float64(elapsed.Microseconds())/1000, opt)
}

// RecordOrderPlaced counts a committed order. source is "cart" or "buy_now".
func (m *Metrics) RecordOrderPlaced(ctx context.Context, source string, total decimal.Decimal) {
	opt := m.attrs(attribute.String("order.source", source))
	m.OrdersPlaced.Add(ctx, 1, opt)
	m.RevenueTotal.Add(ctx, total.InexactFloat64(), opt)
}

func (m *Metrics) RecordOrderCancelled(ctx context.Context) {
	m.OrdersCancelled.Add(ctx, 1, m.attrs())
}

func (m *Metrics) RecordCheckoutFailure(ctx context.Context, source, reason string) {
	m.CheckoutFailures.Add(ctx, 1, m.attrs(
		attribute.String("order.source", source),
		attribute.String("reason", reason),
	))
}
