package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/diagnose"
	"github.com/fyrsmithlabs/folio/internal/logging"
)

// statusFor maps an error to an HTTP status and a client-safe message.
// Internal details never reach the response body.
func statusFor(err error) (int, string) {
	var (
		he   *echo.HTTPError
		verr *diagnose.ValidationError
	)
	switch {
	case errors.As(err, &he):
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		if he.Code >= http.StatusInternalServerError {
			msg = msgInternal
		}
		return he.Code, msg
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, diagnose.ErrValidation):
		return http.StatusBadRequest, diagnose.MsgDescriptionRequired
	case errors.Is(err, diagnose.ErrInvalidPattern):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, diagnose.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, diagnose.ErrAlreadyMatched):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// handleError is the echo HTTPErrorHandler. Every error is rendered as {"error": "..."}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		fields := append(logging.ContextFields(c.Request().Context()),
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
		)
		s.logger.Error("request failed", fields...)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, ErrorResponse{Error: msg})
	}
	if werr != nil {
		s.logger.Warn("failed to write error response", zap.Error(fmt.Errorf("status %d: %w", status, werr)))
	}
}
