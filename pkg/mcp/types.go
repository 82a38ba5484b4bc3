package mcp

import (
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/dongle"
)

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status      string          `json:"status" jsonschema:"description=Overall health status (healthy or degraded)"`
	Adapter     string          `json:"adapter" jsonschema:"description=Radio adapter status"`
	PairingTool string          `json:"pairing_tool" jsonschema:"description=Pairing tool status"`
	Dongles     []dongle.Dongle `json:"dongles" jsonschema:"description=Attached USB radio dongles"`
	Timestamp   string          `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// CheckAdapterOutput is the output for the check_adapter tool
type CheckAdapterOutput struct {
	Available bool `json:"available" jsonschema:"description=Whether the adapter lists a controller"`
}

// ScanDevicesOutput is the output for the scan_devices tool
type ScanDevicesOutput struct {
	Devices         []device.DiscoveredDevice `json:"devices" jsonschema:"description=Devices seen during the scan"`
	Count           int                       `json:"count" jsonschema:"description=Number of devices"`
	TargetCount     int                       `json:"target_count" jsonschema:"description=Number of likely commissionable devices"`
	DurationSeconds int                       `json:"duration_seconds" jsonschema:"description=Scan duration used"`
}

// LinkOutput is the output for connect_device and disconnect_device
type LinkOutput struct {
	Address   string `json:"address" jsonschema:"description=Hardware address"`
	Succeeded bool   `json:"succeeded" jsonschema:"description=Whether the adapter accepted the command"`
}

// TransferOutput is the output for the transfer_device tool
type TransferOutput struct {
	Identity  string `json:"identity" jsonschema:"description=Device identity"`
	Host      string `json:"host" jsonschema:"description=Controller host"`
	Succeeded bool   `json:"succeeded" jsonschema:"description=Whether the controller answered"`
}
