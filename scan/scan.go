// Package scan implements the four enumeration strategies the recon
// pipeline picks between: passive (fast, single attempt), naggy
// (persistent retry with jittered backoff), pokey (patient, extended
// timeouts), and bruteforce (pokey plus a handle-range sweep). Grounded
// on bleep/ble_ops/scan_modes.py's passive_scan_and_connect/
// naggy_scan_and_connect/pokey_scan_and_connect/bruteforce_scan_and_connect.
package scan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/godbus/dbus"

	"github.com/Mauddib28/bleep-tool-sub001/bleepcfg"
	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
	"github.com/Mauddib28/bleep-tool-sub001/device"
	bzdevice "github.com/Mauddib28/bleep-tool-sub001/bluez/profile/device"
	"github.com/Mauddib28/bleep-tool-sub001/facade"
	"github.com/Mauddib28/bleep-tool-sub001/gatt"
)

// Mode names one of the four enumeration strategies.
type Mode string

const (
	ModePassive    Mode = "ble_passive"
	ModeNaggy      Mode = "ble_naggy"
	ModePokey      Mode = "ble_pokey"
	ModeBruteforce Mode = "ble_bruteforce"
)

// ErrDeviceNotFound is returned when a target address never becomes
// visible within the attempted discovery window.
var ErrDeviceNotFound = errors.New("scan: device not found")

// ErrServicesNotResolved is returned when a device connects but
// ServicesResolved never flips true within the mode's timeout.
var ErrServicesNotResolved = errors.New("scan: services not resolved")

const zeroUUID = "00000000-0000-0000-0000-000000000000"

// Options configures the discovery phase shared by every mode.
type Options struct {
	// Transport filters discovery to "le" or "bredr"; "auto" (the zero
	// value) leaves BlueZ's default in place.
	Transport string
}

// Result is a completed device enumeration: its GATT tree plus the
// classification maps built while probing it.
type Result struct {
	DevicePath  dbus.ObjectPath
	Services    []*device.Service
	Permissions *device.PermissionMap
	Landmines   *device.LandmineMap
	Attributes  *device.AttributeMap
	BeaconHint  string
}

func adapterPath(cfg *bleepcfg.Config) dbus.ObjectPath {
	return dbus.ObjectPath("/org/bluez/" + cfg.AdapterID)
}

// waitUntilVisible drives discovery on the configured adapter until a
// device with the given address appears in GetManagedObjects, or
// maxAttempts*perAttempt elapses. Mirrors scan_modes.py's
// _scan_until_visible.
func waitUntilVisible(ctx context.Context, host facade.Host, cfg *bleepcfg.Config, address string, maxAttempts int, perAttempt time.Duration, opts Options) (dbus.ObjectPath, error) {
	target := strings.ToUpper(strings.TrimSpace(address))

	adapter, err := host.Adapter(adapterPath(cfg))
	if err != nil {
		return "", fmt.Errorf("scan: adapter unavailable: %w", err)
	}
	if opts.Transport == "le" || opts.Transport == "bredr" {
		_ = adapter.SetDiscoveryFilter(map[string]interface{}{"Transport": opts.Transport})
	}

	if path, ok := findByAddress(ctx, host, target); ok {
		return path, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		bleeplog.Enum(fmt.Sprintf("scan attempt %d/%d for %s", attempt+1, maxAttempts, target))
		if err := adapter.StartDiscovery(); err != nil {
			return "", fmt.Errorf("scan: start discovery: %w", err)
		}

		deadline := time.Now().Add(perAttempt)
		for time.Now().Before(deadline) {
			if path, ok := findByAddress(ctx, host, target); ok {
				return path, nil
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(250 * time.Millisecond):
			}
		}
	}
	return "", ErrDeviceNotFound
}

func findByAddress(ctx context.Context, host facade.Host, target string) (dbus.ObjectPath, bool) {
	snapshot, err := host.GetManagedObjects(ctx)
	if err != nil {
		return "", false
	}
	return matchAddress(snapshot, target)
}

// matchAddress is the pure lookup findByAddress wraps: scan a snapshot for
// a Device1 object whose Address property matches target (case-insensitive).
// Kept separate so the matching logic is testable without a bus connection.
func matchAddress(snapshot map[dbus.ObjectPath]facade.ManagedObject, target string) (dbus.ObjectPath, bool) {
	for path, obj := range snapshot {
		props, ok := obj["org.bluez.Device1"]
		if !ok {
			continue
		}
		variant, ok := props["Address"]
		if !ok {
			continue
		}
		addr, ok := variant.Value().(string)
		if !ok {
			continue
		}
		if strings.ToUpper(addr) == target {
			return path, true
		}
	}
	return "", false
}

// waitForServicesResolved polls the device's ServicesResolved property
// until it flips true or timeout elapses. Mirrors scan_modes.py's
// _wait_for_services.
func waitForServicesResolved(ctx context.Context, dev1 *bzdevice.Device1, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if properties, err := dev1.GetProperties(); err == nil && properties.ServicesResolved {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(250 * time.Millisecond):
		}
	}
	return false
}

func probeDevice(ctx context.Context, host facade.Host, devicePath dbus.ObjectPath, cfg *bleepcfg.Config) (*Result, error) {
	probed, err := gatt.Probe(ctx, host, devicePath, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{
		DevicePath:  devicePath,
		Services:    probed.Services,
		Permissions: probed.Permissions,
		Landmines:   probed.Landmines,
		Attributes:  probed.Attributes,
		BeaconHint:  beaconHintFor(host, devicePath),
	}, nil
}

// beaconHintFor fetches devicePath's advertised ServiceData and runs
// Eddystone classification over it. A device with no ServiceData, or one
// host can no longer resolve, simply yields no hint.
func beaconHintFor(host facade.Host, devicePath dbus.ObjectPath) string {
	dev1, err := host.Device(devicePath)
	if err != nil {
		return ""
	}
	props, err := dev1.GetProperties()
	if err != nil {
		return ""
	}
	return device.ClassifyBeaconHint(serviceDataBytes(props.ServiceData))
}

// serviceDataBytes unwraps a ServiceData property's dbus.Variant values
// into plain bytes, pure and extracted for offline testing.
func serviceDataBytes(variants map[string]dbus.Variant) map[string][]byte {
	out := make(map[string][]byte, len(variants))
	for uuid, variant := range variants {
		if raw, ok := variant.Value().([]byte); ok {
			out[uuid] = raw
		}
	}
	return out
}

// Passive performs a single-attempt scan, connect, and GATT probe. It has
// no retry mechanism and fails quickly on any connection trouble.
func Passive(ctx context.Context, host facade.Host, address string, cfg *bleepcfg.Config, opts Options) (*Result, error) {
	if cfg == nil {
		cfg = bleepcfg.Load()
	}

	devicePath, err := waitUntilVisible(ctx, host, cfg, address, 3, 5*time.Second, opts)
	if err != nil {
		return nil, err
	}

	dev1, err := host.Device(devicePath)
	if err != nil {
		return nil, err
	}

	if err := device.Connect(ctx, dev1, device.ConnectOptions{Retries: 1}); err != nil {
		return nil, err
	}
	if !waitForServicesResolved(ctx, dev1, 5*time.Second) {
		return nil, ErrServicesNotResolved
	}
	return probeDevice(ctx, host, devicePath, cfg)
}

// Naggy persistently retries the connect step with jittered exponential
// backoff (capped at 30s, up to 10 outer attempts), for unreliable
// devices or noisy RF environments.
func Naggy(ctx context.Context, host facade.Host, address string, cfg *bleepcfg.Config, opts Options) (*Result, error) {
	if cfg == nil {
		cfg = bleepcfg.Load()
	}

	const maxRetries = 10

	devicePath, err := waitUntilVisible(ctx, host, cfg, address, 5, 8*time.Second, opts)
	if err != nil {
		return nil, err
	}

	dev1, err := host.Device(devicePath)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(0.5*math.Pow(2, float64(attempt))*float64(time.Second)) +
				time.Duration(rand.Float64()*0.5*float64(time.Second))
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			bleeplog.Enum(fmt.Sprintf("naggy backoff %s before attempt %d/%d", backoff, attempt+1, maxRetries))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := device.Connect(ctx, dev1, device.ConnectOptions{Retries: 2}); err != nil {
			lastErr = err
			continue
		}
		if !waitForServicesResolved(ctx, dev1, 20*time.Second) {
			lastErr = ErrServicesNotResolved
			continue
		}
		return probeDevice(ctx, host, devicePath, cfg)
	}
	return nil, fmt.Errorf("scan: naggy exhausted %d attempts: %w", maxRetries, lastErr)
}

// Pokey is a slow, thorough enumeration for complex devices with many
// services or slow response times: extended discovery, connect, and
// service-resolution timeouts, followed by the full GATT probe.
func Pokey(ctx context.Context, host facade.Host, address string, cfg *bleepcfg.Config, opts Options) (*Result, error) {
	if cfg == nil {
		cfg = bleepcfg.Load()
	}

	devicePath, err := waitUntilVisible(ctx, host, cfg, address, 3, 10*time.Second, opts)
	if err != nil {
		return nil, err
	}

	dev1, err := host.Device(devicePath)
	if err != nil {
		return nil, err
	}

	if err := device.Connect(ctx, dev1, device.ConnectOptions{Retries: 5}); err != nil {
		return nil, err
	}
	if !waitForServicesResolved(ctx, dev1, 30*time.Second) {
		return nil, ErrServicesNotResolved
	}
	return probeDevice(ctx, host, devicePath, cfg)
}

// Bruteforce runs Pokey to establish the standard enumeration, then
// sweeps every attribute handle BlueZ exposed up to cfg.BruteforceMaxHandle
// (default 0x00FF), synthesizing an "unknown-NNNN" UUID label for any
// handle BlueZ reported without resolving a UUID for it. BlueZ's object
// model only ever exposes handles it already parsed out of the GATT
// database, so unlike the raw-ATT handle sweep this mode is named for,
// there is nothing beyond that declared set left to probe; this is the
// BlueZ-idiomatic rendition of the same intent.
func Bruteforce(ctx context.Context, host facade.Host, address string, cfg *bleepcfg.Config, opts Options) (*Result, error) {
	if cfg == nil {
		cfg = bleepcfg.Load()
	}

	result, err := Pokey(ctx, host, address, cfg, opts)
	if err != nil {
		return nil, err
	}

	maxHandle := cfg.BruteforceMaxHandle
	if maxHandle == 0 || maxHandle == 0xFFFF {
		maxHandle = 0x00FF
	}

	discovered := sweepUnknownHandles(result.Attributes, maxHandle)
	bleeplog.Enum(fmt.Sprintf("bruteforce sweep labeled %d handle(s) up to 0x%04x", discovered, maxHandle))
	return result, nil
}

// sweepUnknownHandles relabels every attribute in attrs whose handle falls
// in [1, maxHandle] and whose UUID never resolved, giving it a synthetic
// "unknown-NNNN" UUID keyed on its handle. Returns the count relabeled.
func sweepUnknownHandles(attrs *device.AttributeMap, maxHandle uint16) int {
	discovered := 0
	for _, rec := range attrs.All() {
		if rec.Handle == 0 || rec.Handle > maxHandle {
			continue
		}
		if rec.UUID != "" && rec.UUID != zeroUUID {
			continue
		}
		rec.UUID = fmt.Sprintf("unknown-%04x", rec.Handle)
		attrs.Put(rec)
		discovered++
	}
	return discovered
}

// Dispatch selects among the four enumeration strategies by name, falling
// back to Passive for an unrecognized mode. This is a programmatic
// selector over in-process functions, not an argv/subcommand parser.
func Dispatch(ctx context.Context, mode Mode, host facade.Host, address string, cfg *bleepcfg.Config, opts Options) (*Result, error) {
	switch mode {
	case ModeNaggy:
		return Naggy(ctx, host, address, cfg, opts)
	case ModePokey:
		return Pokey(ctx, host, address, cfg, opts)
	case ModeBruteforce:
		return Bruteforce(ctx, host, address, cfg, opts)
	default:
		return Passive(ctx, host, address, cfg, opts)
	}
}
