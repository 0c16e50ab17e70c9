// Package telemetry provides OpenTelemetry instrumentation for folio.
//
// # Overview
//
// Traces and metrics are exported over OTLP (gRPC or HTTP/protobuf) to a
// collector. The diagnose service and the HTTP layer resolve their tracers
// and meters from the otel globals, which New installs.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry, version))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: "grpc"          # or http/protobuf
//	  insecure: true            # loopback endpoints only
//	  sampling_rate: 1.0
//	  shutdown_timeout: "5s"
//
// # Error Handling
//
// Exporter setup failures do not stop the server. The instance is marked
// degraded, Health reports the reasons, and the no-op globals stay in place.
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	tt.Install(t)
//	svc, _ := diagnose.NewService(...)
//	// exercise svc
//	tt.AssertSpanExists(t, "diagnose.diagnose")
package telemetry
