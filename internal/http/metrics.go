package http

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/fyrsmithlabs/folio/internal/http"

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// httpMetrics records per-route request counts, latency and requests in flight.
type httpMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

// newHTTPMetrics registers the instruments on meter. Instruments that fail to
// register are replaced by no-ops and reported in the returned error; the
// result is always usable.
func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	var (
		m    httpMetrics
		errs []error
		err  error
	)

	if m.requests, err = meter.Int64Counter("folio.http.requests_total",
		metric.WithDescription("HTTP requests by method, route and status"),
		metric.WithUnit("{request}"),
	); err != nil {
		m.requests = noop.Int64Counter{}
		errs = append(errs, err)
	}

	if m.latency, err = meter.Float64Histogram("folio.http.request_duration_seconds",
		metric.WithDescription("HTTP request latency by method, route and status"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		m.latency = noop.Float64Histogram{}
		errs = append(errs, err)
	}

	if m.inFlight, err = meter.Int64UpDownCounter("folio.http.active_requests",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		m.inFlight = noop.Int64UpDownCounter{}
		errs = append(errs, err)
	}

	return &m, errors.Join(errs...)
}

// middleware observes every request once the inner handlers have set the status.
func (m *httpMetrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		start := time.Now()
		m.inFlight.Add(ctx, 1)
		defer m.inFlight.Add(ctx, -1)

		err := next(c)

		labels := metric.WithAttributes(
			attribute.String("method", c.Request().Method),
			attribute.String("route", routeLabel(c.Path())),
			attribute.Int("status", c.Response().Status),
		)
		m.requests.Add(ctx, 1, labels)
		m.latency.Record(ctx, time.Since(start).Seconds(), labels)
		return err
	}
}

// routeLabel returns the matched route template, e.g. /api/admin/patterns/:id,
// so ids never become label values. Unrouted requests share one label.
func routeLabel(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}
