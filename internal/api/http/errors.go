package http

import (
	"net/http"

	"github.com/GriffinCanCode/termhost/internal/domain/terminal"
	"github.com/gin-gonic/gin"
)

// StatusFor maps a session error to an HTTP status.
func StatusFor(err error) int {
	switch terminal.ErrorCode(err) {
	case terminal.CodeNotFound:
		return http.StatusNotFound
	case terminal.CodeUnsupported:
		return http.StatusNotImplemented
	case terminal.CodeLimitReached:
		return http.StatusTooManyRequests
	case terminal.CodeShuttingDown:
		return http.StatusServiceUnavailable
	case terminal.CodeSpawnFailed:
		return http.StatusUnprocessableEntity
	case terminal.CodeWriteFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(StatusFor(err), gin.H{
		"error": err.Error(),
		"code":  terminal.ErrorCode(err),
	})
}
