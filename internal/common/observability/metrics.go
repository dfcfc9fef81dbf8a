// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records dispatch-engine metrics through an OpenTelemetry
// meter exported to Prometheus.
type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	sendCounter    otelmetric.Int64Counter
	bannerCounter  otelmetric.Int64Counter
	bannerDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	sendCounter, _ := meter.Int64Counter(
		"notifications.sends",
		otelmetric.WithDescription("Number of notification sends attempted"),
	)

	bannerCounter, _ := meter.Int64Counter(
		"notifications.banner.generations",
		otelmetric.WithDescription("Number of banner generation attempts"),
	)

	bannerDuration, _ := meter.Float64Histogram(
		"notifications.banner.duration",
		otelmetric.WithDescription("Banner sub-pipeline duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		sendCounter:    sendCounter,
		bannerCounter:  bannerCounter,
		bannerDuration: bannerDuration,
	}
}

// RecordSend counts one attempted send per (channel, audience, status) cell.
func (o *Observability) RecordSend(ctx context.Context, channel, audience, status string) {
	if o.sendCounter != nil {
		o.sendCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("audience", audience),
			attribute.String("status", status),
		))
	}
}

// RecordBanner counts one banner attempt; outcome is one of
// "uploaded", "data_url", "text_only", "fetch_failed", "vision_failed".
func (o *Observability) RecordBanner(ctx context.Context, outcome string, duration time.Duration) {
	if o.bannerCounter != nil {
		o.bannerCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
	if o.bannerDuration != nil {
		o.bannerDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
