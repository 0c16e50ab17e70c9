package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/diagnose"
)

// handleHealth reports liveness, and database reachability when a pinger is set.
func (s *Server) handleHealth(c echo.Context) error {
	if s.health != nil {
		if err := s.health.Ping(c.Request().Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleDiagnose matches a visitor's problem description.
func (s *Server) handleDiagnose(c echo.Context) error {
	var req diagnose.Request
	if err := c.Bind(&req); err != nil {
		s.logger.Debug("invalid diagnose request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	result, err := s.svc.Diagnose(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// handleStats returns aggregate diagnostic counters.
func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleListPatterns(c echo.Context) error {
	patterns, err := s.svc.ListPatterns(c.Request().Context())
	if err != nil {
		return err
	}
	if patterns == nil {
		patterns = []diagnose.IssuePattern{}
	}
	return c.JSON(http.StatusOK, PatternListResponse{Patterns: patterns, Count: len(patterns)})
}

func (s *Server) handleGetPattern(c echo.Context) error {
	p, err := s.svc.GetPattern(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreatePattern(c echo.Context) error {
	var req PatternRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	p, err := s.svc.CreatePattern(c.Request().Context(), req.toPattern())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdatePattern(c echo.Context) error {
	var req PatternRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	p, err := s.svc.UpdatePattern(c.Request().Context(), c.Param("id"), req.toPattern())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeletePattern(c echo.Context) error {
	if err := s.svc.DeletePattern(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleListLogs supports ?unmatched=true and ?limit=N.
func (s *Server) handleListLogs(c echo.Context) error {
	var filter diagnose.LogFilter
	if v := c.QueryParam("unmatched"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unmatched must be true or false")
		}
		filter.UnmatchedOnly = b
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		filter.Limit = n
	}

	logs, err := s.svc.ListLogs(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if logs == nil {
		logs = []diagnose.DiagnosticLog{}
	}
	return c.JSON(http.StatusOK, LogListResponse{Diagnostics: logs, Count: len(logs)})
}

func (s *Server) handleGetLog(c echo.Context) error {
	l, err := s.svc.GetLog(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

// handleConvertLog authors a new pattern from an unmatched diagnostic log.
func (s *Server) handleConvertLog(c echo.Context) error {
	var req PatternRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	p, err := s.svc.ConvertLog(c.Request().Context(), c.Param("id"), req.toPattern())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}
