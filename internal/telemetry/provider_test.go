package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/sdk/trace"
)

func TestNewResource(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ServiceVersion = "2.0.1"

	attrs := map[string]string{}
	for _, kv := range newResource(cfg).Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "folio", attrs["service.name"])
	assert.Equal(t, "2.0.1", attrs["service.version"])
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), trace.AlwaysSample().Description())
	assert.Contains(t, sampler(0).Description(), trace.NeverSample().Description())
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased{0.5}")
	assert.Contains(t, sampler(0.5).Description(), "ParentBased")
}

func TestOptions(t *testing.T) {
	var o options
	assert.Nil(t, o.traceExporter)
	assert.Nil(t, o.metricExporter)

	WithTraceExporter(nil)(&o)
	WithMetricExporter(nil)(&o)
	assert.Nil(t, o.traceExporter)
	assert.Nil(t, o.metricExporter)
}
