package api

import (
	"fmt"
	"net/http"

	"shareit/internal/domain"
	"shareit/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation, domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err in the shared error shape. Internal failures are
// logged and hidden from the client.
func writeError(c *gin.Context, logger *zerolog.Logger, err error) {
	kind := domain.KindOf(err)
	status := statusOf(kind)
	if kind == domain.KindInternal {
		logger.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		middleware.Abort(c, status, kind.String(), "internal error")
		return
	}
	middleware.Abort(c, status, kind.String(), err.Error())
}

func badRequest(c *gin.Context, format string, args ...any) {
	middleware.Abort(c, http.StatusBadRequest, domain.KindBadRequest.String(), fmt.Sprintf(format, args...))
}
