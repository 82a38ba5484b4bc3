package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check radio adapter and pairing tool availability and list attached USB radio dongles"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("check_adapter",
			mcp.WithDescription("Report whether the local short-range radio adapter is usable"),
		),
		s.handleCheckAdapter,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("scan_devices",
			mcp.WithDescription("Scan for nearby devices and flag the ones that look commissionable"),
			mcp.WithNumber("duration_seconds",
				mcp.Description("Scan duration in seconds, 1-120 (default from configuration)"),
			),
		),
		s.handleScanDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_device_info",
			mcp.WithDescription("Get the adapter's details for one device"),
			mcp.WithString("address",
				mcp.Required(),
				mcp.Description("Hardware address, e.g. AA:BB:CC:DD:EE:FF"),
			),
		),
		s.handleGetDeviceInfo,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("connect_device",
			mcp.WithDescription("Open a link to a device"),
			mcp.WithString("address",
				mcp.Required(),
				mcp.Description("Hardware address"),
			),
		),
		s.handleConnectDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("disconnect_device",
			mcp.WithDescription("Close the link to a device"),
			mcp.WithString("address",
				mcp.Required(),
				mcp.Description("Hardware address"),
			),
		),
		s.handleDisconnectDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("commission_device",
			mcp.WithDescription("Pair a device onto a wireless network, verify it and hand it off to the controller host. Blocks until the attempt finishes."),
			mcp.WithString("device_name", mcp.Description("Advertised device name")),
			mcp.WithString("device_address", mcp.Description("Hardware address")),
			mcp.WithString("network_name",
				mcp.Required(),
				mcp.Description("Wireless network name the device should join"),
			),
			mcp.WithString("network_secret", mcp.Description("Wireless network password")),
			mcp.WithString("passcode",
				mcp.Required(),
				mcp.Description("8-digit setup passcode from the device label"),
			),
			mcp.WithString("discriminator",
				mcp.Required(),
				mcp.Description("Setup discriminator, 0-4095"),
			),
			mcp.WithString("assigned_identity", mcp.Description("Device identity as hex; generated when omitted")),
			mcp.WithString("controller_host", mcp.Description("Controller host for hand-off")),
			mcp.WithString("controller_user", mcp.Description("Controller user for hand-off")),
		),
		s.handleCommissionDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("test_connection",
			mcp.WithDescription("Read the on/off attribute of a commissioned device"),
			mcp.WithString("identity",
				mcp.Required(),
				mcp.Description("Device identity as hex"),
			),
		),
		s.handleTestConnection,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("transfer_device",
			mcp.WithDescription("Probe the controller host over the remote shell for a commissioned device"),
			mcp.WithString("identity",
				mcp.Required(),
				mcp.Description("Device identity as hex"),
			),
			mcp.WithString("controller_host",
				mcp.Required(),
				mcp.Description("Controller host"),
			),
			mcp.WithString("controller_user", mcp.Description("Controller user")),
		),
		s.handleTransferDevice,
	)
}
