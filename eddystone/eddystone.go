// Package eddystone enriches device-type classification by decoding
// Eddystone (UID/URL/TLM) frames out of a device's ServiceData, a feature
// left as a bare UUID constant in the original's bt_ref/constants.py and
// never implemented past that stub. Grounded on
// bleep/ble_ops/scan_modes.py's get_device_type(scan_mode=...) extension
// point, decoding via github.com/suapapa/go_eddystone.
package eddystone

import (
	"fmt"

	goeddystone "github.com/suapapa/go_eddystone"
)

// ServiceUUID is the 16-bit Eddystone GATT service UUID, expanded to its
// full 128-bit form as it appears in a device's ServiceData map.
const ServiceUUID = "0000feaa-0000-1000-8000-00805f9b34fb"

// FrameKind distinguishes the three Eddystone frame types.
type FrameKind int

const (
	FrameUnknown FrameKind = iota
	FrameUID
	FrameURL
	FrameTLM
)

func (k FrameKind) String() string {
	switch k {
	case FrameUID:
		return "uid"
	case FrameURL:
		return "url"
	case FrameTLM:
		return "tlm"
	default:
		return "unknown"
	}
}

// Beacon is the decoded result of one Eddystone frame, enriching the
// device-type classifier beyond plain GATT-profile sniffing.
type Beacon struct {
	Kind FrameKind

	TxPower int8

	NamespaceID string // UID frame
	InstanceID  string // UID frame

	URL string // URL frame

	Voltage     uint16  // TLM frame, millivolts
	Temperature float32 // TLM frame, degrees Celsius
	AdvCount    uint32  // TLM frame
	UptimeSec   uint32  // TLM frame, go_eddystone's SecCnt copied as decoded, no unit conversion
}

// Classify decodes raw Eddystone service-data bytes (the value found under
// ServiceUUID, frame-type byte included) into a Beacon. It returns
// ok=false when raw is not a recognized Eddystone frame rather than an
// error, since an unrecognized frame is routine for a non-beacon device
// that happens to expose an empty/foreign ServiceData entry.
func Classify(raw []byte) (*Beacon, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	frame, err := goeddystone.Parse(raw)
	if err != nil {
		return nil, false
	}
	switch f := frame.(type) {
	case *goeddystone.UID:
		return &Beacon{
			Kind:        FrameUID,
			TxPower:     f.TxPower,
			NamespaceID: fmt.Sprintf("%x", f.NamespaceID),
			InstanceID:  fmt.Sprintf("%x", f.InstanceID),
		}, true
	case *goeddystone.URL:
		return &Beacon{Kind: FrameURL, TxPower: f.TxPower, URL: f.URL}, true
	case *goeddystone.TLM:
		return &Beacon{
			Kind:        FrameTLM,
			Voltage:     f.VBatt,
			Temperature: f.Temp,
			AdvCount:    f.AdvCnt,
			UptimeSec:   f.SecCnt,
		}, true
	default:
		return nil, false
	}
}

// ClassifyServiceData looks up ServiceUUID in serviceData (keyed by
// lowercase full UUID, as device.Device.ServiceData is populated) and
// decodes it if present.
func ClassifyServiceData(serviceData map[string][]byte) (*Beacon, bool) {
	raw, ok := serviceData[ServiceUUID]
	if !ok {
		return nil, false
	}
	return Classify(raw)
}

// DeviceTypeHint renders a short device-type string for the enumeration
// engine to fold into its plain GATT-profile classification, mirroring
// what get_device_type(scan_mode=...) would append had it not been left
// as an extension point.
func (b *Beacon) DeviceTypeHint() string {
	if b == nil {
		return ""
	}
	switch b.Kind {
	case FrameUID:
		return fmt.Sprintf("eddystone-uid(%s:%s)", b.NamespaceID, b.InstanceID)
	case FrameURL:
		return fmt.Sprintf("eddystone-url(%s)", b.URL)
	case FrameTLM:
		return "eddystone-tlm"
	default:
		return ""
	}
}
