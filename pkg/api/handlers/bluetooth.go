package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/commissioner/pkg/api/types"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/device/schema"
)

// BluetoothHandler handles adapter, scan and link endpoints. Scans and
// link changes share one adapter and are serialized.
type BluetoothHandler struct {
	scanner         device.Scanner
	validator       *schema.Validator
	defaultDuration int
	adapter         sync.Mutex
}

// NewBluetoothHandler creates a new bluetooth handler
func NewBluetoothHandler(scanner device.Scanner, validator *schema.Validator, defaultDuration int) *BluetoothHandler {
	return &BluetoothHandler{scanner: scanner, validator: validator, defaultDuration: defaultDuration}
}

// Adapter handles GET /adapter
// @Summary      Adapter status
// @Description  Reports whether the local radio adapter is usable
// @Tags         bluetooth
// @Produce      json
// @Success      200  {object}  types.AdapterResponse
// @Router       /adapter [get]
func (h *BluetoothHandler) Adapter(c *gin.Context) {
	c.JSON(http.StatusOK, types.AdapterResponse{
		Available: h.scanner.IsAdapterAvailable(c.Request.Context()),
	})
}

// Scan handles POST /scan
// @Summary      Scan for devices
// @Description  Runs one discovery pass and returns every device the adapter saw
// @Tags         bluetooth
// @Accept       json
// @Produce      json
// @Param        request  body      types.ScanRequest  false  "Scan duration in seconds (1-120)"
// @Success      200      {object}  types.ScanResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid duration"
// @Failure      409      {object}  types.ErrorResponse  "Adapter busy"
// @Failure      502      {object}  types.ErrorResponse  "Adapter command failed"
// @Failure      503      {object}  types.ErrorResponse  "Adapter unavailable"
// @Router       /scan [post]
func (h *BluetoothHandler) Scan(c *gin.Context) {
	duration := h.defaultDuration

	body, err := c.GetRawData()
	if err != nil {
		writeError(c, fmt.Errorf("%w: %v", device.ErrValidation, err))
		return
	}
	if len(body) > 0 {
		payload, err := decodeBody(body)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := h.validator.ValidateScan(payload); err != nil {
			writeError(c, err)
			return
		}
		if v, ok := payload["duration_seconds"].(float64); ok {
			duration = int(v)
		}
	}

	if !h.adapter.TryLock() {
		c.JSON(http.StatusConflict, types.ErrorResponse{
			Error:   "adapter_busy",
			Message: "Another adapter operation is in progress",
		})
		return
	}
	defer h.adapter.Unlock()

	devices, err := h.scanner.Scan(c.Request.Context(), duration)
	if err != nil {
		writeError(c, err)
		return
	}

	targets := 0
	for _, d := range devices {
		if d.IsTarget {
			targets++
		}
	}
	if devices == nil {
		devices = []device.DiscoveredDevice{}
	}
	c.JSON(http.StatusOK, types.ScanResponse{
		Devices:         devices,
		Count:           len(devices),
		TargetCount:     targets,
		DurationSeconds: duration,
	})
}

// GetDevice handles GET /devices/:address
// @Summary      Get device details
// @Description  Returns the adapter's details for one hardware address
// @Tags         bluetooth
// @Produce      json
// @Param        address  path      string  true  "Hardware address"
// @Success      200      {object}  types.DeviceResponse
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Router       /devices/{address} [get]
func (h *BluetoothHandler) GetDevice(c *gin.Context) {
	d, err := h.scanner.DeviceInfo(c.Request.Context(), c.Param("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DeviceResponse{Device: *d})
}

// Connect handles POST /devices/:address/connect
// @Summary      Connect to a device
// @Tags         bluetooth
// @Produce      json
// @Param        address  path      string  true  "Hardware address"
// @Success      200      {object}  types.LinkResponse
// @Failure      409      {object}  types.ErrorResponse  "Adapter busy"
// @Router       /devices/{address}/connect [post]
func (h *BluetoothHandler) Connect(c *gin.Context) {
	h.link(c, h.scanner.Connect)
}

// Disconnect handles POST /devices/:address/disconnect
// @Summary      Disconnect from a device
// @Tags         bluetooth
// @Produce      json
// @Param        address  path      string  true  "Hardware address"
// @Success      200      {object}  types.LinkResponse
// @Failure      409      {object}  types.ErrorResponse  "Adapter busy"
// @Router       /devices/{address}/disconnect [post]
func (h *BluetoothHandler) Disconnect(c *gin.Context) {
	h.link(c, h.scanner.Disconnect)
}

func (h *BluetoothHandler) link(c *gin.Context, op func(context.Context, string) bool) {
	address := c.Param("address")

	if !h.adapter.TryLock() {
		c.JSON(http.StatusConflict, types.ErrorResponse{
			Error:   "adapter_busy",
			Message: "Another adapter operation is in progress",
		})
		return
	}
	defer h.adapter.Unlock()

	c.JSON(http.StatusOK, types.LinkResponse{
		Address:   address,
		Succeeded: op(c.Request.Context(), address),
	})
}

// decodeBody parses a JSON object body for schema validation.
func decodeBody(body []byte) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", device.ErrValidation)
	}
	return payload, nil
}
