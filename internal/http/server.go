// Package http provides the folio HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/diagnose"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server provides HTTP endpoints for folio.
type Server struct {
	echo    *echo.Echo
	svc     diagnose.Service
	health  Pinger
	logger  *zap.Logger
	config  *Config
	limiter *ipRateLimiter
	metrics *httpMetrics
}

// Config holds HTTP server configuration.
type Config struct {
	Host      string
	Port      int
	BodyLimit string

	// AdminToken guards /api/admin. Unset disables the admin routes.
	AdminToken config.Secret

	RateLimit config.RateLimitConfig
}

// ConfigFrom maps application config onto server config.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		BodyLimit:  cfg.Server.BodyLimit,
		AdminToken: cfg.Admin.Token,
		RateLimit:  cfg.RateLimit,
	}
}

// NewServer creates a new HTTP server. health may be nil.
func NewServer(svc diagnose.Service, health Pinger, logger *zap.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("diagnose service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:      "localhost",
			Port:      8080,
			BodyLimit: "64K",
			RateLimit: config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 10},
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		svc:     svc,
		health:  health,
		logger:  logger,
		config:  cfg,
	}
	metrics, err := newHTTPMetrics(otel.Meter(meterName))
	if err != nil {
		logger.Warn("some http metrics are unavailable", zap.Error(err))
	}
	s.metrics = metrics
	if cfg.RateLimit.Enabled {
		s.limiter = newIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	e.HTTPErrorHandler = s.handleError

	// Middleware. The logger renders errors itself, so metrics sit outside it
	// and Recover sits inside it to see final status codes.
	e.Use(middleware.RequestID())
	e.Use(s.requestContext)
	e.Use(s.metrics.middleware)
	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.POST("/diagnose", s.handleDiagnose, s.rateLimit)
	api.GET("/stats", s.handleStats)

	if !s.config.AdminToken.IsSet() {
		s.logger.Info("admin token not configured, admin API disabled")
		return
	}
	admin := api.Group("/admin", s.adminAuth())
	admin.GET("/patterns", s.handleListPatterns)
	admin.POST("/patterns", s.handleCreatePattern)
	admin.GET("/patterns/:id", s.handleGetPattern)
	admin.PUT("/patterns/:id", s.handleUpdatePattern)
	admin.DELETE("/patterns/:id", s.handleDeletePattern)
	admin.GET("/diagnostics", s.handleListLogs)
	admin.GET("/diagnostics/:id", s.handleGetLog)
	admin.POST("/diagnostics/:id/convert", s.handleConvertLog)
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server. It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
