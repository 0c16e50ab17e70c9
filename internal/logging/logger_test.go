package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/folio/internal/config"
)

func TestNewDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, zapcore.InfoLevel, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "folio", cfg.Fields["service"])
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad format", func(c *Config) { c.Format = "xml" }, "format must be"},
		{"no outputs", func(c *Config) { c.Output.Stdout = false }, "at least one output"},
		{"zero tick", func(c *Config) { c.Sampling.Tick = 0 }, "sampling tick"},
		{"negative caller skip", func(c *Config) { c.Caller.Skip = -1 }, "caller skip"},
		{"bad pattern", func(c *Config) { c.Redaction.Patterns = []string{"(["} }, "invalid redaction pattern"},
		{"empty field value", func(c *Config) { c.Fields["env"] = "" }, "empty value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(config.LoggingConfig{Level: "trace", Format: "console"}, false)
	require.NoError(t, err)
	assert.Equal(t, TraceLevel, cfg.Level)
	assert.Equal(t, "console", cfg.Format)

	_, err = FromAppConfig(config.LoggingConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestLevelFromString(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"trace": TraceLevel,
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		got, err := LevelFromString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := LevelFromString("nope")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig(), nil)
	require.NoError(t, err)
	assert.NotNil(t, logger.Underlying())
	assert.True(t, logger.Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Enabled(zapcore.DebugLevel))

	bad := NewDefaultConfig()
	bad.Format = "xml"
	_, err = NewLogger(bad, nil)
	assert.Error(t, err)
}

func TestContextFields(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		assert.Empty(t, ContextFields(context.Background()))
	})

	t.Run("request id and client ip", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req_abc-123")
		ctx = WithClientIP(ctx, "203.0.113.7")

		fields := ContextFields(ctx)
		keys := make(map[string]string)
		for _, f := range fields {
			keys[f.Key] = f.String
		}
		assert.Equal(t, "req_abc-123", keys["request.id"])
		assert.Equal(t, "203.0.113.7", keys["client.ip"])
	})

	t.Run("invalid request id ignored", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "bad id\n")
		assert.Empty(t, RequestIDFromContext(ctx))
		ctx = WithRequestID(ctx, strings.Repeat("a", maxIDLen+1))
		assert.Empty(t, RequestIDFromContext(ctx))
	})

	t.Run("trace correlation", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		fields := ContextFields(ctx)
		require.Len(t, fields, 3)
		assert.Equal(t, "trace_id", fields[0].Key)
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields[0].String)
		assert.Equal(t, "span_id", fields[1].Key)
		assert.Equal(t, "trace_sampled", fields[2].Key)
	})
}

// newBufferedLogger builds a logger that writes redacted JSON into buf.
func newBufferedLogger(t *testing.T, buf *bytes.Buffer) *zap.Logger {
	t.Helper()
	enc, err := NewRedactingEncoder(newEncoder("json"), NewDefaultConfig().Redaction)
	require.NoError(t, err)
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(buf), zapcore.DebugLevel))
}

func TestRedactingEncoder(t *testing.T) {
	t.Run("sensitive keys", func(t *testing.T) {
		var buf bytes.Buffer
		newBufferedLogger(t, &buf).Info("login", zap.String("password", "hunter2"), zap.String("user", "ada"))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "[REDACTED]", entry["password"])
		assert.Equal(t, "ada", entry["user"])
	})

	t.Run("value patterns", func(t *testing.T) {
		var buf bytes.Buffer
		newBufferedLogger(t, &buf).Info("call", zap.String("header", "Bearer abc.def.ghi"))

		assert.NotContains(t, buf.String(), "abc.def.ghi")
		assert.Contains(t, buf.String(), "[REDACTED:pattern]")
	})

	t.Run("fields added via With", func(t *testing.T) {
		var buf bytes.Buffer
		newBufferedLogger(t, &buf).With(zap.String("token", "tok_live_1")).Info("with")

		assert.NotContains(t, buf.String(), "tok_live_1")
	})

	t.Run("disabled passes through", func(t *testing.T) {
		enc, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{Enabled: false})
		require.NoError(t, err)
		var buf bytes.Buffer
		zap.New(zapcore.NewCore(enc, zapcore.AddSync(&buf), zapcore.InfoLevel)).
			Info("x", zap.String("password", "visible"))
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{Enabled: true, Patterns: []string{"(["}})
		assert.Error(t, err)
	})
}

func TestSampledCore_ErrorsNeverSampled(t *testing.T) {
	logger := NewTestLogger()
	cfg := SamplingConfig{Enabled: true, Tick: config.Duration(1e9), Initial: 1, Thereafter: 0}
	core := newSampledCore(logger.Underlying().Core(), cfg)
	z := zap.New(core)

	for i := 0; i < 5; i++ {
		z.Info("repeated")
		z.Error("failure")
	}

	assert.Len(t, logger.FilterMessage("repeated").All(), 1)
	assert.Len(t, logger.FilterMessage("failure").All(), 5)
}

func TestTestLogger(t *testing.T) {
	logger := NewTestLogger()
	ctx := WithRequestID(context.Background(), "req_1")

	logger.Info(ctx, "diagnosis served", zap.Bool("matched", true), zap.String("pattern_id", "p1"), zap.Int("score", 2))
	logger.Trace(ctx, "rule scored")

	logger.AssertLogged(t, zapcore.InfoLevel, "diagnosis served")
	logger.AssertLogged(t, TraceLevel, "rule scored")
	logger.AssertNotLogged(t, zapcore.ErrorLevel, "diagnosis served")
	logger.AssertField(t, "diagnosis served", "pattern_id", "p1")
	logger.AssertField(t, "diagnosis served", "matched", true)
	logger.AssertField(t, "diagnosis served", "request.id", "req_1")
	logger.AssertField(t, "diagnosis served", "score", 2)

	logger.Reset()
	assert.Empty(t, logger.All())
}

func TestIsStdoutSyncError(t *testing.T) {
	assert.True(t, isStdoutSyncError(syscall.EINVAL))
	assert.True(t, isStdoutSyncError(syscall.ENOTTY))
	assert.False(t, isStdoutSyncError(errors.New("disk full")))
}
