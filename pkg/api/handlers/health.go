package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/urmzd/commissioner/pkg/api/types"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/dongle"
)

// DongleDetector lists attached USB radio dongles.
type DongleDetector interface {
	Detect() ([]dongle.Dongle, error)
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	scanner      device.Scanner
	commissioner device.Commissioner
	dongles      DongleDetector
	logger       zerolog.Logger
}

// NewHealthHandler creates a new health handler. dongles may be nil.
func NewHealthHandler(scanner device.Scanner, commissioner device.Commissioner, dongles DongleDetector, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{scanner: scanner, commissioner: commissioner, dongles: dongles, logger: logger}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Reports adapter and pairing tool availability plus attached USB radio dongles
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "Service is degraded"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	resp := types.HealthResponse{
		Status:      "healthy",
		Adapter:     "unavailable",
		PairingTool: "unavailable",
		Dongles:     []dongle.Dongle{},
		Timestamp:   time.Now(),
	}
	if h.scanner.IsAdapterAvailable(ctx) {
		resp.Adapter = "available"
	}
	if h.commissioner.IsToolAvailable(ctx) {
		resp.PairingTool = "available"
	}
	if h.dongles != nil {
		found, err := h.dongles.Detect()
		if err != nil {
			h.logger.Warn().Err(err).Msg("Dongle detection failed")
		} else if found != nil {
			resp.Dongles = found
		}
	}

	httpStatus := http.StatusOK
	if resp.Adapter != "available" || resp.PairingTool != "available" {
		resp.Status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, resp)
}
