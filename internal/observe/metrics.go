// Package observe records civcards metrics through the OpenTelemetry
// metrics API and exposes them to Prometheus.
//
// Tests should build a [Metrics] with [NewMetrics] over their own
// [metric.MeterProvider] instead of relying on the global one.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ziadkadry99/civcards"

// Status attribute values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the metric instruments. All fields are safe for concurrent
// use.
type Metrics struct {
	// HTTPRequestDuration has attributes method, route and status.
	HTTPRequestDuration metric.Float64Histogram

	// Events counts viewer events by event and status.
	Events metric.Int64Counter

	// EventDuration tracks event handling including the re-render.
	EventDuration metric.Float64Histogram

	// DatasetLoads counts dataset loads by civ and status.
	DatasetLoads metric.Int64Counter
}

var latencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.HTTPRequestDuration, err = m.Float64Histogram("civcards.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Events, err = m.Int64Counter("civcards.viewer.events",
		metric.WithDescription("Viewer events by type and status."),
	); err != nil {
		return nil, err
	}
	if met.EventDuration, err = m.Float64Histogram("civcards.viewer.event.duration",
		metric.WithDescription("Time to apply a viewer event and render the frame."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DatasetLoads, err = m.Int64Counter("civcards.dataset.loads",
		metric.WithDescription("Dataset loads by civilization and status."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// RecordEvent counts one viewer event and its duration.
func (m *Metrics) RecordEvent(ctx context.Context, event string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("status", status(err)),
	)
	m.Events.Add(ctx, 1, attrs)
	m.EventDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordDatasetLoad counts one finished dataset load.
func (m *Metrics) RecordDatasetLoad(ctx context.Context, civ string, err error) {
	m.DatasetLoads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("civ", civ),
		attribute.String("status", status(err)),
	))
}
