package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(tt.level)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestInitMetrics_NoEndpointIsNoop(t *testing.T) {
	m, shutdown, err := InitMetrics(context.Background(), MetricsConfig{ServiceName: "storefront"})
	require.NoError(t, err)
	require.NotNil(t, m)
	m.RecordOrderPlaced(context.Background(), "cart", decimal.NewFromInt(10))
	assert.NoError(t, shutdown(context.Background()))
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) any {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return nil
}

func TestMetrics_RecordsOrderFlow(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := newMetrics(provider.Meter("test"), "storefront")
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOrderPlaced(ctx, "cart", decimal.RequireFromString("23.00"))
	m.RecordOrderPlaced(ctx, "buy_now", decimal.RequireFromString("7.50"))
	m.RecordOrderCancelled(ctx)
	m.RecordCheckoutFailure(ctx, "cart", "insufficient_stock")
	m.RecordHTTPRequest(ctx, "POST", "/api/v1/order/place", 201, 12*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	placed := sumOf(t, rm, "orders_placed_total").(metricdata.Sum[int64])
	var total int64
	for _, dp := range placed.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	revenue := sumOf(t, rm, "revenue_total").(metricdata.Sum[float64])
	var amount float64
	for _, dp := range revenue.DataPoints {
		amount += dp.Value
	}
	assert.InDelta(t, 30.5, amount, 0.0001)

	cancelled := sumOf(t, rm, "orders_cancelled_total").(metricdata.Sum[int64])
	require.Len(t, cancelled.DataPoints, 1)
	assert.Equal(t, int64(1), cancelled.DataPoints[0].Value)

	duration := sumOf(t, rm, "http.server.request.duration").(metricdata.Histogram[float64])
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(1), duration.DataPoints[0].Count)
}
