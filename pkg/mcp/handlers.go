package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/commissioner/pkg/commission"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/dongle"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetHealthOutput{
		Status:      "healthy",
		Adapter:     "unavailable",
		PairingTool: "unavailable",
		Dongles:     []dongle.Dongle{},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if s.scanner.IsAdapterAvailable(ctx) {
		out.Adapter = "available"
	}
	if s.commissioner.IsToolAvailable(ctx) {
		out.PairingTool = "available"
	}
	if s.dongles != nil {
		if found, err := s.dongles.Detect(); err != nil {
			s.logger.Warn().Err(err).Msg("Dongle detection failed")
		} else if found != nil {
			out.Dongles = found
		}
	}
	if out.Adapter != "available" || out.PairingTool != "available" {
		out.Status = "degraded"
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleCheckAdapter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := CheckAdapterOutput{Available: s.scanner.IsAdapterAvailable(ctx)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleScanDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if err := s.validator.ValidateScan(args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	duration := s.scanDuration
	if v, ok := args["duration_seconds"].(float64); ok {
		duration = int(v)
	}

	if !s.adapter.TryLock() {
		return mcp.NewToolResultError("another adapter operation is in progress"), nil
	}
	defer s.adapter.Unlock()

	devices, err := s.scanner.Scan(ctx, duration)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %s", err)), nil
	}

	out := ScanDevicesOutput{
		Devices:         devices,
		Count:           len(devices),
		DurationSeconds: duration,
	}
	if out.Devices == nil {
		out.Devices = []device.DiscoveredDevice{}
	}
	for _, d := range devices {
		if d.IsTarget {
			out.TargetCount++
		}
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetDeviceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := requiredString(request, "address")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := s.scanner.DeviceInfo(ctx, address)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJSON(d)), nil
}

func (s *Server) handleConnectDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.link(ctx, request, s.scanner.Connect)
}

func (s *Server) handleDisconnectDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.link(ctx, request, s.scanner.Disconnect)
}

func (s *Server) link(ctx context.Context, request mcp.CallToolRequest, op func(context.Context, string) bool) (*mcp.CallToolResult, error) {
	address, err := requiredString(request, "address")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !s.adapter.TryLock() {
		return mcp.NewToolResultError("another adapter operation is in progress"), nil
	}
	defer s.adapter.Unlock()

	out := LinkOutput{Address: address, Succeeded: op(ctx, address)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleCommissionDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if err := s.validator.ValidateCommissioning(args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	var req device.CommissioningRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	if req.AssignedIdentity != "" {
		if req.AssignedIdentity, err = commission.NormalizeIdentity(req.AssignedIdentity); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	sessionID := uuid.NewString()
	s.logger.Info().Str("session", sessionID).Str("device", req.DeviceName).Msg("Commissioning via MCP")

	result := s.commissioner.Commission(ctx, req, sessionID)

	out := mcp.NewToolResultText(formatJSON(result))
	out.IsError = !result.Succeeded
	return out, nil
}

func (s *Server) handleTestConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, err := requiredString(request, "identity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if identity, err = commission.NormalizeIdentity(identity); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	probe := s.commissioner.TestConnection(ctx, identity)
	out := mcp.NewToolResultText(formatJSON(probe))
	out.IsError = !probe.Succeeded
	return out, nil
}

func (s *Server) handleTransferDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identity, err := requiredString(request, "identity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if identity, err = commission.NormalizeIdentity(identity); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	host, err := requiredString(request, "controller_host")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	user, _ := request.GetArguments()["controller_user"].(string)

	out := TransferOutput{
		Identity:  identity,
		Host:      host,
		Succeeded: s.commissioner.TransferToController(ctx, identity, host, user),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
