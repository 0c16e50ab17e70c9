package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/folio/internal/config"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, ProtocolGRPC, cfg.Protocol)
	assert.Equal(t, "folio", cfg.ServiceName)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SamplingRate)
	assert.Equal(t, 15*time.Second, cfg.ExportInterval)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestFromAppConfig(t *testing.T) {
	app := config.Default().Telemetry
	app.Enabled = true
	app.Endpoint = "otel.internal:4318"
	app.Protocol = ProtocolHTTP
	app.SamplingRate = 0.25
	app.TLSSkipVerify = true
	app.Shutdown = config.Duration(2 * time.Second)

	cfg := FromAppConfig(app, "1.4.0")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "otel.internal:4318", cfg.Endpoint)
	assert.Equal(t, ProtocolHTTP, cfg.Protocol)
	assert.Equal(t, "folio", cfg.ServiceName)
	assert.Equal(t, "1.4.0", cfg.ServiceVersion)
	assert.False(t, cfg.Insecure)
	assert.True(t, cfg.TLSSkipVerify)
	assert.Equal(t, 0.25, cfg.SamplingRate)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "dev", FromAppConfig(app, "").ServiceVersion)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, "endpoint is required"},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, "service_name is required"},
		{"missing service version", func(c *Config) { c.ServiceVersion = "" }, "service_version is required"},
		{"unknown protocol", func(c *Config) { c.Protocol = "thrift" }, "protocol must be"},
		{"insecure remote", func(c *Config) { c.Endpoint = "collector.prod:4317" }, "insecure connections"},
		{"sampling too low", func(c *Config) { c.SamplingRate = -0.1 }, "sampling rate"},
		{"sampling too high", func(c *Config) { c.SamplingRate = 1.1 }, "sampling rate"},
		{"zero export interval", func(c *Config) { c.ExportInterval = 0 }, "export interval"},
		{"zero shutdown", func(c *Config) { c.ShutdownTimeout = 0 }, "shutdown timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Enabled = true
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("disabled skips validation", func(t *testing.T) {
		assert.NoError(t, (&Config{}).Validate())
	})

	t.Run("metrics disabled ignores interval", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Enabled = true
		cfg.MetricsEnabled = false
		cfg.ExportInterval = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("remote with TLS", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Enabled = true
		cfg.Endpoint = "https://collector.prod:4318"
		cfg.Protocol = ProtocolHTTP
		cfg.Insecure = false
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_IsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"localhost:4317", true},
		{"localhost", true},
		{"127.0.0.1:4317", true},
		{"127.0.0.2:4317", true},
		{"[::1]:4317", true},
		{"::1", true},
		{"http://localhost:4318", true},
		{"collector.prod:4317", false},
		{"10.0.0.5:4317", false},
		{"localhost.evil.com:4317", false},
		{"[2001:db8::1]:4317", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			cfg := &Config{Endpoint: tt.endpoint}
			assert.Equal(t, tt.want, cfg.isLocalEndpoint())
		})
	}
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "collector:4318", stripScheme("https://collector:4318"))
	assert.Equal(t, "collector:4318", stripScheme("http://collector:4318"))
	assert.Equal(t, "collector:4317", stripScheme("collector:4317"))
}
