package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/commissioner/pkg/api/types"
	"github.com/urmzd/commissioner/pkg/device"
)

// writeError maps sentinel errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, device.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, device.ErrInvalidIdentity):
		status, code = http.StatusBadRequest, "invalid_identity"
	case errors.Is(err, device.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, device.ErrSessionNotFound):
		status, code = http.StatusNotFound, "session_not_found"
	case errors.Is(err, device.ErrSessionActive):
		status, code = http.StatusConflict, "session_active"
	case errors.Is(err, device.ErrAdapterUnavailable):
		status, code = http.StatusServiceUnavailable, "adapter_unavailable"
	case errors.Is(err, device.ErrProbeFailed):
		status, code = http.StatusBadGateway, "probe_failed"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
	}
	c.JSON(status, types.ErrorResponse{Error: code, Message: err.Error()})
}
