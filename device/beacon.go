package device

import "github.com/Mauddib28/bleep-tool-sub001/eddystone"

// classifyBeacon inspects serviceData for the Eddystone service UUID and,
// when present, decodes its UID/URL/TLM frame via the eddystone package,
// returning a short device-type hint string (or "" when nothing decodes).
func classifyBeacon(serviceData map[string][]byte) string {
	return ClassifyBeaconHint(serviceData)
}

// ClassifyBeaconHint is classifyBeacon exported for callers outside the
// device package (the scan orchestrator) that learn a device's
// ServiceData directly off a live Device1 rather than through
// Device.SetServiceData.
func ClassifyBeaconHint(serviceData map[string][]byte) string {
	beacon, ok := eddystone.ClassifyServiceData(serviceData)
	if !ok {
		return ""
	}
	return beacon.DeviceTypeHint()
}
