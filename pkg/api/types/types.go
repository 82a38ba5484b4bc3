package types

import (
	"time"

	"github.com/urmzd/commissioner/pkg/commission"
	"github.com/urmzd/commissioner/pkg/db"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/dongle"
)

// --- Request DTOs ---

// ScanRequest is the optional request body for POST /scan
type ScanRequest struct {
	DurationSeconds int `json:"duration_seconds"`
}

// TestConnectionRequest is the request body for POST /commissioning/test-connection
type TestConnectionRequest struct {
	Identity string `json:"identity" binding:"required"`
}

// TransferRequest is the request body for POST /commissioning/transfer
type TransferRequest struct {
	Identity       string `json:"identity" binding:"required"`
	ControllerHost string `json:"controller_host" binding:"required"`
	ControllerUser string `json:"controller_user"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status      string          `json:"status"`
	Adapter     string          `json:"adapter"`
	PairingTool string          `json:"pairing_tool"`
	Dongles     []dongle.Dongle `json:"dongles"`
	Timestamp   time.Time       `json:"timestamp"`
}

// AdapterResponse is returned from GET /adapter
type AdapterResponse struct {
	Available bool `json:"available"`
}

// ScanResponse is returned from POST /scan
type ScanResponse struct {
	Devices         []device.DiscoveredDevice `json:"devices"`
	Count           int                       `json:"count"`
	TargetCount     int                       `json:"target_count"`
	DurationSeconds int                       `json:"duration_seconds"`
}

// DeviceResponse is returned from GET /devices/:address
type DeviceResponse struct {
	Device device.DiscoveredDevice `json:"device"`
}

// LinkResponse is returned from connect and disconnect
type LinkResponse struct {
	Address   string `json:"address"`
	Succeeded bool   `json:"succeeded"`
}

// StartCommissioningResponse is returned from POST /commissioning
type StartCommissioningResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// SessionResponse is returned from GET /commissioning/:id
type SessionResponse struct {
	Session commission.Session `json:"session"`
}

// ListSessionsResponse is returned from GET /commissioning
type ListSessionsResponse struct {
	Sessions []commission.Session `json:"sessions"`
	Count    int                  `json:"count"`
}

// TransferResponse is returned from POST /commissioning/transfer
type TransferResponse struct {
	Identity  string `json:"identity"`
	Host      string `json:"host"`
	Succeeded bool   `json:"succeeded"`
}

// ListIdentitiesResponse is returned from GET /identities
type ListIdentitiesResponse struct {
	Identities []*db.IssuedIdentity `json:"identities"`
	Count      int                  `json:"count"`
}
