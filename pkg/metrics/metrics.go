// Package metrics defines the bot's instruments on top of the OpenTelemetry
// metric API. Exported to Prometheus they read as
// linkfixer_submissions_total, linkfixer_units_total,
// linkfixer_post_attempts_total and linkfixer_post_duration_seconds.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

const meterName = "linkfixer"

// Submission stages counted by Submission.
const (
	StageSeen    = "seen"
	StageMatched = "matched"
)

// Metrics holds the bot's instruments. The zero value is not usable; use New
// or Noop.
type Metrics struct {
	submissions  metric.Int64Counter
	units        metric.Int64Counter
	postAttempts metric.Int64Counter
	postDuration metric.Float64Histogram
}

// New creates the instruments on the given provider.
func New(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)

	submissions, err := meter.Int64Counter("linkfixer_submissions",
		metric.WithDescription("Submissions read from the feed, by stage."))
	if err != nil {
		return nil, fmt.Errorf("could not create submissions counter: %w", err)
	}
	units, err := meter.Int64Counter("linkfixer_units",
		metric.WithDescription("Finished units of work, by outcome."))
	if err != nil {
		return nil, fmt.Errorf("could not create units counter: %w", err)
	}
	postAttempts, err := meter.Int64Counter("linkfixer_post_attempts",
		metric.WithDescription("Comment post attempts, by result class."))
	if err != nil {
		return nil, fmt.Errorf("could not create post attempts counter: %w", err)
	}
	postDuration, err := meter.Float64Histogram("linkfixer_post_duration",
		metric.WithDescription("Latency of comment post calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create post duration histogram: %w", err)
	}

	return &Metrics{
		submissions:  submissions,
		units:        units,
		postAttempts: postAttempts,
		postDuration: postDuration,
	}, nil
}

// Noop returns instruments that record nothing.
func Noop() *Metrics {
	m, _ := New(noop.NewMeterProvider())

	return m
}

// NewPrometheusProvider returns a meter provider whose instruments are
// exposed through the given Prometheus registerer.
func NewPrometheusProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Submission counts a feed submission reaching stage.
func (m *Metrics) Submission(ctx context.Context, stage string) {
	m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// Unit counts a finished unit of work.
func (m *Metrics) Unit(ctx context.Context, outcome string) {
	m.units.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// PostAttempt records one comment post call and its latency.
func (m *Metrics) PostAttempt(ctx context.Context, class string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("class", class))
	m.postAttempts.Add(ctx, 1, attrs)
	m.postDuration.Record(ctx, seconds, attrs)
}
