// Package logging provides structured logging with OpenTelemetry integration.
//
// # Overview
//
// The package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Dual output (stdout + OpenTelemetry via the otelzap bridge)
//   - Automatic context field injection (trace_id, span_id, request.id, client.ip)
//   - Redaction of sensitive keys and value patterns
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "req_123")
//	logger.Info(ctx, "diagnosis served", zap.Bool("matched", true))
//
// Services that only need a plain logger take *zap.Logger; pass logger.Underlying().
//
// # Testing
//
//	logger := logging.NewTestLogger()
//	svc := diagnose.NewService(..., logger.Underlying())
//	logger.AssertLogged(t, zapcore.InfoLevel, "diagnosis served")
package logging
