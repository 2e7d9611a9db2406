// Package device holds the enumeration engine's data model (Adapter,
// Device, Service, Characteristic, Descriptor and the attribute/
// permission/landmine maps derived from walking them) plus the connection
// lifecycle that drives a Device through discovery, connect, and GATT
// resolution. Grounded on bleep/dbuslayer/device_le.py and
// device_classic.py.
package device

import (
	"sync"
	"time"
)

// TransportKind distinguishes the radio/profile family a Device was
// discovered over.
type TransportKind int

const (
	TransportLE TransportKind = iota
	TransportClassic
	TransportDual
)

func (t TransportKind) String() string {
	switch t {
	case TransportLE:
		return "le"
	case TransportClassic:
		return "classic"
	case TransportDual:
		return "dual"
	default:
		return "unknown"
	}
}

// Adapter is a snapshot of one local Bluetooth controller.
type Adapter struct {
	Path         string
	Address      string
	Name         string
	Alias        string
	Powered      bool
	Discoverable bool
	Discovering  bool
	UUIDs        []string
}

// Descriptor is a snapshot of one GATT descriptor.
type Descriptor struct {
	Path   string
	UUID   string
	Handle uint16
	Flags  []string
	Value  []byte
}

// Characteristic is a snapshot of one GATT characteristic plus the
// descriptors discovered beneath it.
type Characteristic struct {
	Path        string
	UUID        string
	Handle      uint16
	Flags       []string
	Value       []byte
	Notifying   bool
	Descriptors []*Descriptor

	mu                sync.Mutex
	notificationHistory [][]byte
}

const notificationHistoryLimit = 10

// RecordNotification appends value to the characteristic's rolling
// notification history, bounded to the last 10 entries.
func (c *Characteristic) RecordNotification(value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notificationHistory = append(c.notificationHistory, value)
	if len(c.notificationHistory) > notificationHistoryLimit {
		c.notificationHistory = c.notificationHistory[len(c.notificationHistory)-notificationHistoryLimit:]
	}
}

// NotificationHistory returns a copy of the recorded notification values,
// oldest first.
func (c *Characteristic) NotificationHistory() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.notificationHistory))
	copy(out, c.notificationHistory)
	return out
}

// HasFlag reports whether the characteristic advertises flag (e.g.
// "read", "write", "notify", "indicate").
func (c *Characteristic) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Service is a snapshot of one GATT service plus its characteristics.
type Service struct {
	Path            string
	UUID            string
	Primary         bool
	Characteristics []*Characteristic
}

// PairingData records the outcome of a pairing attempt for a device.
type PairingData struct {
	Paired    bool
	Bonded    bool
	Method    string
	StartedAt time.Time
	EndedAt   time.Time
}

// RecoveryState records the most recent recovery escalation applied to a
// device.
type RecoveryState struct {
	LastStage   string
	LastAttempt time.Time
	LastError   string
}

// Device is a snapshot of one remote Bluetooth device plus everything the
// enumeration engine has learned by walking it.
type Device struct {
	mu sync.RWMutex

	Path      string
	Address   string
	Name      string
	Alias     string
	Transport TransportKind

	Connected bool
	Paired    bool
	Trusted   bool
	RSSI      int16
	UUIDs     []string

	Services []*Service

	Attributes *AttributeMap
	Permissions *PermissionMap
	Landmines   *LandmineMap

	Pairing  PairingData
	Recovery RecoveryState

	ServiceData map[string][]byte
	BeaconHint  string
}

// New creates an empty Device for address/path, with initialized
// attribute/permission/landmine maps.
func New(path, address string) *Device {
	return &Device{
		Path:        path,
		Address:     address,
		Attributes:  NewAttributeMap(),
		Permissions: NewPermissionMap(),
		Landmines:   NewLandmineMap(),
	}
}

// FindCharacteristic looks up a characteristic by UUID (normalized)
// across all services.
func (d *Device) FindCharacteristic(uuid string) *Characteristic {
	d.mu.RLock()
	defer d.mu.RUnlock()
	norm := NormalizeUUID(uuid)
	for _, svc := range d.Services {
		for _, ch := range svc.Characteristics {
			if NormalizeUUID(ch.UUID) == norm {
				return ch
			}
		}
	}
	return nil
}

// SetServices replaces the device's service tree, as produced by a
// gatt.Walk pass.
func (d *Device) SetServices(services []*Service) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Services = services
}

// SetServiceData records the device's advertised ServiceData and runs
// classifyBeacon over it, enriching device-type classification beyond
// plain GATT-profile sniffing whenever the device advertises the
// Eddystone service.
func (d *Device) SetServiceData(serviceData map[string][]byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ServiceData = serviceData
	d.BeaconHint = classifyBeacon(serviceData)
}
