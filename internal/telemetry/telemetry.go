package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry owns the SDK tracer and meter providers for the process.
//
// A provider that cannot be built is recorded as a degradation reason and
// left unset; its users then get the global no-op provider and folio keeps
// serving.
type Telemetry struct {
	cfg *Config
	tp  *sdktrace.TracerProvider
	mp  *sdkmetric.MeterProvider
	lp  log.LoggerProvider

	mu      sync.RWMutex
	stopped bool
	reasons []string
}

// New validates cfg and, when enabled, registers the providers as the otel
// globals along with the W3C trace context and baggage propagators.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}
	t := &Telemetry{cfg: cfg}
	if !cfg.Enabled {
		return t, nil
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	res := newResource(cfg)

	if tp, err := newTracerProvider(ctx, cfg, res, o); err != nil {
		t.setDegraded("tracer provider failed: %v", err)
	} else {
		t.tp = tp
		otel.SetTracerProvider(tp)
	}

	if mp, err := newMeterProvider(ctx, cfg, res, o); err != nil {
		t.setDegraded("meter provider failed: %v", err)
	} else if mp != nil {
		t.mp = mp
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return t, nil
}

func (t *Telemetry) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if t == nil || t.tp == nil {
		return otel.Tracer(name, opts...)
	}
	return t.tp.Tracer(name, opts...)
}

func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.mp == nil {
		return otel.Meter(name, opts...)
	}
	return t.mp.Meter(name, opts...)
}

// LoggerProvider feeds the zap bridge. Unless SetLoggerProvider was called
// this is the global provider, a no-op until a log SDK registers itself.
func (t *Telemetry) LoggerProvider() log.LoggerProvider {
	switch {
	case t == nil:
		return nil
	case t.lp != nil:
		return t.lp
	default:
		return global.GetLoggerProvider()
	}
}

func (t *Telemetry) SetLoggerProvider(lp log.LoggerProvider) {
	if t != nil {
		t.lp = lp
	}
}

// provider is the lifecycle both SDK providers share.
type provider interface {
	ForceFlush(context.Context) error
	Shutdown(context.Context) error
}

// each applies fn to the providers that were built and joins the errors.
func (t *Telemetry) each(fn func(provider) error) error {
	var errs []error
	if t.tp != nil {
		if err := fn(t.tp); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if t.mp != nil {
		if err := fn(t.mp); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops the providers. If ctx has no deadline the
// configured shutdown timeout bounds the call.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok && t.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.ShutdownTimeout)
		defer cancel()
	}

	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()

	return t.each(func(p provider) error { return p.Shutdown(ctx) })
}

// ForceFlush exports everything buffered so far.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.each(func(p provider) error { return p.ForceFlush(ctx) })
}

// HealthStatus reports whether telemetry is exporting.
// Healthy turns false after Shutdown; Degraded lists the providers that
// could not be built.
type HealthStatus struct {
	Healthy  bool
	Degraded bool
	Reasons  []string
}

func (t *Telemetry) Health() HealthStatus {
	if t == nil {
		return HealthStatus{Degraded: true}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return HealthStatus{
		Healthy:  !t.stopped,
		Degraded: len(t.reasons) > 0,
		Reasons:  append([]string(nil), t.reasons...),
	}
}

// IsEnabled reports whether telemetry was configured on and is not shut down.
func (t *Telemetry) IsEnabled() bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg.Enabled && !t.stopped
}

func (t *Telemetry) setDegraded(format string, args ...any) {
	t.mu.Lock()
	t.reasons = append(t.reasons, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}
