// Package facade collects the ad hoc org.bluez D-Bus object construction
// that device_le.py, device_classic.py, and manager.py each perform
// inline into one seam: a narrow interface over the host Bluetooth stack
// through which gatt, scan and the agent look up managed objects and
// obtain typed bindings. Host returns bluez/profile/* types, so those
// layers (and device) still import bluez/profile/* packages. Production
// code binds Host to real BlueZ proxies; Fake satisfies only Snapshotter.
package facade

import (
	"context"

	"github.com/godbus/dbus"

	adapterpkg "github.com/Mauddib28/bleep-tool-sub001/bluez/profile/adapter"
	agentpkg "github.com/Mauddib28/bleep-tool-sub001/bluez/profile/agent"
	devicepkg "github.com/Mauddib28/bleep-tool-sub001/bluez/profile/device"
	gattpkg "github.com/Mauddib28/bleep-tool-sub001/bluez/profile/gatt"
)

// ManagedObject is one entry of GetManagedObjects: interface name to its
// property bag.
type ManagedObject map[string]map[string]dbus.Variant

// Snapshotter is the subset of Host the GATT walker and classification
// engine need: a point-in-time view of every managed object. It is kept
// separate from Host so tests can satisfy it with Fake without having to
// stub out the typed per-interface constructors.
type Snapshotter interface {
	GetManagedObjects(ctx context.Context) (map[dbus.ObjectPath]ManagedObject, error)
}

// Host is the narrow surface the recon pipeline drives. Every method
// corresponds 1:1 to a D-Bus call the Python original makes through its
// hand-built dbus.Interface wrappers.
type Host interface {
	Snapshotter

	Adapter(path dbus.ObjectPath) (*adapterpkg.Adapter1, error)
	Device(path dbus.ObjectPath) (*devicepkg.Device1, error)
	Service(path dbus.ObjectPath) (*gattpkg.GattService1, error)
	Characteristic(path dbus.ObjectPath) (*gattpkg.GattCharacteristic1, error)
	Descriptor(path dbus.ObjectPath) (*gattpkg.GattDescriptor1, error)
	AgentManager() (*agentpkg.AgentManager1, error)

	WatchObjectManager() (chan *dbus.Signal, error)
}

// host is the production Host implementation, backed by the real system
// bus via bluez/profile/*.
type host struct {
	om func() (map[dbus.ObjectPath]ManagedObject, error)
}

// NewHost returns the production Host.
func NewHost() Host {
	return &host{}
}

func (h *host) GetManagedObjects(ctx context.Context) (map[dbus.ObjectPath]ManagedObject, error) {
	om, err := getObjectManager()
	if err != nil {
		return nil, err
	}
	raw, err := om.GetManagedObjects()
	if err != nil {
		return nil, err
	}
	out := make(map[dbus.ObjectPath]ManagedObject, len(raw))
	for path, ifaces := range raw {
		out[path] = ManagedObject(ifaces)
	}
	return out, nil
}

func (h *host) Adapter(path dbus.ObjectPath) (*adapterpkg.Adapter1, error) {
	return adapterpkg.NewAdapter1(path)
}

func (h *host) Device(path dbus.ObjectPath) (*devicepkg.Device1, error) {
	return devicepkg.NewDevice1(path)
}

func (h *host) Service(path dbus.ObjectPath) (*gattpkg.GattService1, error) {
	return gattpkg.NewGattService1(path)
}

func (h *host) Characteristic(path dbus.ObjectPath) (*gattpkg.GattCharacteristic1, error) {
	return gattpkg.NewGattCharacteristic1(path)
}

func (h *host) Descriptor(path dbus.ObjectPath) (*gattpkg.GattDescriptor1, error) {
	return gattpkg.NewGattDescriptor1(path)
}

func (h *host) AgentManager() (*agentpkg.AgentManager1, error) {
	return agentpkg.NewAgentManager1()
}

func (h *host) WatchObjectManager() (chan *dbus.Signal, error) {
	om, err := getObjectManager()
	if err != nil {
		return nil, err
	}
	return om.Register()
}
