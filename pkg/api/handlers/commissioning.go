package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/commissioner/pkg/api/types"
	"github.com/urmzd/commissioner/pkg/commission"
	"github.com/urmzd/commissioner/pkg/db"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/device/schema"
)

// SessionTracker runs commissioning sessions in the background.
type SessionTracker interface {
	Start(req device.CommissioningRequest, sessionID string) (string, error)
	Get(sessionID string) (commission.Session, error)
	List() []commission.Session
	Cancel(sessionID string) error
}

// IdentityLister lists issued identities.
type IdentityLister interface {
	List(ctx context.Context) ([]*db.IssuedIdentity, error)
}

// CommissioningHandler handles commissioning endpoints
type CommissioningHandler struct {
	tracker      SessionTracker
	commissioner device.Commissioner
	validator    *schema.Validator
	identities   IdentityLister
}

// NewCommissioningHandler creates a new commissioning handler. identities may be nil.
func NewCommissioningHandler(tracker SessionTracker, commissioner device.Commissioner, validator *schema.Validator, identities IdentityLister) *CommissioningHandler {
	return &CommissioningHandler{
		tracker:      tracker,
		commissioner: commissioner,
		validator:    validator,
		identities:   identities,
	}
}

// Start handles POST /commissioning
// @Summary      Start commissioning
// @Description  Validates the request and starts a background commissioning session. Progress is streamed on /events.
// @Tags         commissioning
// @Accept       json
// @Produce      json
// @Param        session_id  query     string                       false  "Caller-chosen session id"
// @Param        request     body      device.CommissioningRequest  true   "Commissioning request"
// @Success      202         {object}  types.StartCommissioningResponse
// @Failure      400         {object}  types.ErrorResponse  "Invalid request"
// @Failure      409         {object}  types.ErrorResponse  "Session already running"
// @Router       /commissioning [post]
func (h *CommissioningHandler) Start(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, fmt.Errorf("%w: %v", device.ErrValidation, err))
		return
	}
	req, err := h.validator.DecodeCommissioning(body)
	if err != nil {
		writeError(c, err)
		return
	}
	if req.AssignedIdentity != "" {
		if req.AssignedIdentity, err = commission.NormalizeIdentity(req.AssignedIdentity); err != nil {
			writeError(c, err)
			return
		}
	}

	id, err := h.tracker.Start(req, c.Query("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, types.StartCommissioningResponse{SessionID: id, Status: string(commission.SessionRunning)})
}

// List handles GET /commissioning
// @Summary      List sessions
// @Tags         commissioning
// @Produce      json
// @Success      200  {object}  types.ListSessionsResponse
// @Router       /commissioning [get]
func (h *CommissioningHandler) List(c *gin.Context) {
	sessions := h.tracker.List()
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartedAt.Before(sessions[j].StartedAt) })
	c.JSON(http.StatusOK, types.ListSessionsResponse{Sessions: sessions, Count: len(sessions)})
}

// Get handles GET /commissioning/:id
// @Summary      Get session
// @Description  Returns the state of a session and its result once finished
// @Tags         commissioning
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  types.SessionResponse
// @Failure      404  {object}  types.ErrorResponse  "Session not found"
// @Router       /commissioning/{id} [get]
func (h *CommissioningHandler) Get(c *gin.Context) {
	s, err := h.tracker.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SessionResponse{Session: s})
}

// Cancel handles DELETE /commissioning/:id
// @Summary      Cancel session
// @Description  Cancels a running session. The pipeline stops at the next step boundary.
// @Tags         commissioning
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      202  {object}  types.SessionResponse
// @Failure      404  {object}  types.ErrorResponse  "Session not found"
// @Router       /commissioning/{id} [delete]
func (h *CommissioningHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if err := h.tracker.Cancel(id); err != nil {
		writeError(c, err)
		return
	}
	s, err := h.tracker.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, types.SessionResponse{Session: s})
}

// TestConnection handles POST /commissioning/test-connection
// @Summary      Test device connection
// @Description  Reads the on/off attribute of a commissioned device
// @Tags         commissioning
// @Accept       json
// @Produce      json
// @Param        request  body      types.TestConnectionRequest  true  "Device identity"
// @Success      200      {object}  device.ProbeResult
// @Failure      400      {object}  types.ErrorResponse  "Invalid identity"
// @Router       /commissioning/test-connection [post]
func (h *CommissioningHandler) TestConnection(c *gin.Context) {
	var req types.TestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", device.ErrValidation, err))
		return
	}
	identity, err := commission.NormalizeIdentity(req.Identity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.commissioner.TestConnection(c.Request.Context(), identity))
}

// Transfer handles POST /commissioning/transfer
// @Summary      Hand off to controller
// @Description  Probes the controller host over the remote shell
// @Tags         commissioning
// @Accept       json
// @Produce      json
// @Param        request  body      types.TransferRequest  true  "Identity and controller"
// @Success      200      {object}  types.TransferResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Router       /commissioning/transfer [post]
func (h *CommissioningHandler) Transfer(c *gin.Context) {
	var req types.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", device.ErrValidation, err))
		return
	}
	identity, err := commission.NormalizeIdentity(req.Identity)
	if err != nil {
		writeError(c, err)
		return
	}
	ok := h.commissioner.TransferToController(c.Request.Context(), identity, req.ControllerHost, req.ControllerUser)
	c.JSON(http.StatusOK, types.TransferResponse{Identity: identity, Host: req.ControllerHost, Succeeded: ok})
}

// Identities handles GET /identities
// @Summary      List issued identities
// @Tags         commissioning
// @Produce      json
// @Success      200  {object}  types.ListIdentitiesResponse
// @Failure      503  {object}  types.ErrorResponse  "Registry disabled"
// @Router       /identities [get]
func (h *CommissioningHandler) Identities(c *gin.Context) {
	if h.identities == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{
			Error:   "registry_disabled",
			Message: "Identity registry is not configured",
		})
		return
	}
	list, err := h.identities.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []*db.IssuedIdentity{}
	}
	c.JSON(http.StatusOK, types.ListIdentitiesResponse{Identities: list, Count: len(list)})
}
