package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/response"
)

// ErrorHandler is the only place errors become HTTP responses. Handlers
// record failures with c.Error and return; full detail is logged here and
// the client only sees the safe message for the error's kind.
func ErrorHandler(log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "error_handler").Logger()

	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		err := last.Err

		ev := log.Error()
		if e, ok := apperr.As(err); ok && e.Kind != apperr.KindStorage {
			// expected outcomes, not server faults
			ev = log.Warn()
		}
		ev.Err(err).
			Str("request_id", c.GetString(response.ContextKeyRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Interface("params", c.Params).
			Msg("Request failed")

		e, ok := apperr.As(err)
		if !ok {
			response.Fail(c, http.StatusInternalServerError, response.ErrUnexpected, "")
			return
		}

		switch e.Kind {
		case apperr.KindValidation:
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, e.Message, e.Fields)
		case apperr.KindNotFound:
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, e.Message)
		case apperr.KindConflict:
			// a parent deleted under us reads as an absent subject
			if e.Reason == apperr.ReasonMissingParent {
				response.Fail(c, http.StatusNotFound, response.ErrNotFound, e.Message)
				return
			}
			var fields map[string]string
			if e.Field != "" {
				fields = map[string]string{e.Field: e.Message}
			}
			response.FailWithFields(c, http.StatusBadRequest, response.ErrConflict, e.Message, fields)
		case apperr.KindStorage:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "")
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrUnexpected, "")
		}
	}
}

// RouteNotFound answers unknown routes with the standard envelope.
func RouteNotFound(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Warn().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Route not found")
		response.AbortFail(c, http.StatusNotFound, response.ErrRouteNotFound,
			fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path))
	}
}

// Recovery turns a panic into a 500 envelope.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")
		response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal, "")
	})
}
