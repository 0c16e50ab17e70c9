package http

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/logging"
)

// requestContext copies the request id and client IP into the request context
// so that downstream logs carry them.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := logging.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
		ctx = logging.WithClientIP(ctx, clientIP(req))
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// Render now so the logged status matches what the client sees.
			c.Error(err)
		}

		fields := append(logging.ContextFields(c.Request().Context()),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		s.logger.Info("http request", fields...)
		return nil
	}
}

// rateLimit applies the per-IP limiter. It is a no-op when rate limiting is disabled.
func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.limiter == nil {
			return next(c)
		}
		ip := clientIP(c.Request())
		if !s.limiter.allow(ip) {
			s.logger.Warn("rate limit exceeded", zap.String("client_ip", ip), zap.String("path", c.Path()))
			return echo.NewHTTPError(http.StatusTooManyRequests, msgTooManyRequests)
		}
		return next(c)
	}
}

// adminAuth checks "Authorization: Bearer <token>" in constant time.
func (s *Server) adminAuth() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return s.config.AdminToken.Equal(key), nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			s.logger.Warn("admin auth rejected",
				zap.String("client_ip", clientIP(c.Request())),
				zap.String("path", c.Path()),
			)
			return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
		},
	})
}

// clientIP extracts the client IP address from the request.
func clientIP(r *http.Request) string {
	// Check X-Forwarded-For header (proxy/load balancer)
	if xff := r.Header.Get(echo.HeaderXForwardedFor); xff != "" {
		// Take first IP in the comma-separated list
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get(echo.HeaderXRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
