// Package signalhub correlates D-Bus signals (PropertiesChanged,
// InterfacesAdded/Removed) with synthetic read/write events so that
// downstream code can treat a characteristic read, a write, and an async
// notification as points on the same timeline. Grounded on
// bleep/dbuslayer/signals.py's SignalCapture/SignalCorrelator/
// PropertyMonitor/system_dbus__bluez_signals.
package signalhub

import (
	"sync"
	"time"

	"github.com/godbus/dbus"
)

// Source distinguishes where a Capture originated.
type Source string

const (
	SourceNotification Source = "notification"
	SourceRead          Source = "read"
	SourceWrite         Source = "write"
	SourcePropertyChange Source = "property_change"
	SourceInterfacesAdded Source = "interfaces_added"
	SourceInterfacesRemoved Source = "interfaces_removed"
)

// Capture records one observed signal or synthetic event.
type Capture struct {
	Interface  string
	Path       dbus.ObjectPath
	SignalName string
	Args       map[string]interface{}
	Timestamp  time.Time
	Source     Source
}

const correlationWindow = 30 * time.Second

// correlator keeps a rolling window of captures for After-the-fact
// correlation queries.
type correlator struct {
	mu       sync.Mutex
	captures []Capture
}

func (c *correlator) add(cap Capture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := cap.Timestamp
	c.captures = append(c.captures, cap)
	kept := c.captures[:0]
	for _, existing := range c.captures {
		if now.Sub(existing.Timestamp) < correlationWindow {
			kept = append(kept, existing)
		}
	}
	c.captures = kept
}

func (c *correlator) related(ref Capture, window time.Duration) []Capture {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Capture
	for _, existing := range c.captures {
		if existing.Path != ref.Path {
			continue
		}
		if existing.Timestamp.Equal(ref.Timestamp) && existing.SignalName == ref.SignalName {
			continue
		}
		delta := existing.Timestamp.Sub(ref.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta <= window {
			out = append(out, existing)
		}
	}
	return out
}

// propertyKey identifies a watched (path, property) pair.
type propertyKey struct {
	path     dbus.ObjectPath
	property string
}

// NotificationCallback receives a characteristic's notified/indicated
// value.
type NotificationCallback func(value []byte)

// PropertyCallback receives a property's new value.
type PropertyCallback func(old, new interface{})

// Hub is the correlated signal dispatch point: it opens no signal channels
// of its own; callers hand it decoded ObjectManager and Properties signals
// through the Dispatch* methods. It fans PropertiesChanged out to per-path
// watchers, and lets callers inject synthetic read/write events onto the
// same timeline as real notifications.
type Hub struct {
	corr *correlator

	mu                 sync.Mutex
	notifyCallbacks    map[dbus.ObjectPath][]NotificationCallback
	propertyCallbacks  map[propertyKey][]PropertyCallback
	propertyHistory    map[propertyKey][]historyEntry
	interfacesAdded    map[string][]func(dbus.ObjectPath, map[string]map[string]dbus.Variant)
	interfacesRemoved  map[string][]func(dbus.ObjectPath, []string)

	stop chan struct{}
}

type historyEntry struct {
	at    time.Time
	value interface{}
}

// New creates an empty Hub. Callers feed it signals via Dispatch*.
func New() *Hub {
	return &Hub{
		corr:              &correlator{},
		notifyCallbacks:   map[dbus.ObjectPath][]NotificationCallback{},
		propertyCallbacks: map[propertyKey][]PropertyCallback{},
		propertyHistory:   map[propertyKey][]historyEntry{},
		interfacesAdded:   map[string][]func(dbus.ObjectPath, map[string]map[string]dbus.Variant){},
		interfacesRemoved: map[string][]func(dbus.ObjectPath, []string){},
		stop:              make(chan struct{}),
	}
}

// RegisterNotificationCallback subscribes cb to value-changed events for
// the characteristic at path.
func (h *Hub) RegisterNotificationCallback(path dbus.ObjectPath, cb NotificationCallback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifyCallbacks[path] = append(h.notifyCallbacks[path], cb)
}

// WatchProperty subscribes cb to changes of property at path.
func (h *Hub) WatchProperty(path dbus.ObjectPath, property string, cb PropertyCallback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := propertyKey{path, property}
	h.propertyCallbacks[key] = append(h.propertyCallbacks[key], cb)
}

// GetPropertyHistory returns the recorded (timestamp, value) pairs
// observed for property at path.
func (h *Hub) GetPropertyHistory(path dbus.ObjectPath, property string) []historyEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]historyEntry(nil), h.propertyHistory[propertyKey{path, property}]...)
}

// DispatchPropertiesChanged handles one decoded PropertiesChanged signal:
// records it for correlation, updates property history, fires any
// registered property/notification callbacks (a "Value" property change
// on a GattCharacteristic1 path is also treated as a notification).
func (h *Hub) DispatchPropertiesChanged(iface string, path dbus.ObjectPath, changed map[string]interface{}) {
	now := time.Now()
	h.corr.add(Capture{Interface: iface, Path: path, SignalName: "PropertiesChanged", Args: changed, Timestamp: now, Source: SourcePropertyChange})

	h.mu.Lock()
	defer h.mu.Unlock()
	for name, val := range changed {
		key := propertyKey{path, name}
		h.propertyHistory[key] = append(h.propertyHistory[key], historyEntry{at: now, value: val})
		for _, cb := range h.propertyCallbacks[key] {
			cb(nil, val)
		}
		if name == "Value" {
			if b, ok := val.([]byte); ok {
				for _, cb := range h.notifyCallbacks[path] {
					cb(b)
				}
			}
		}
	}
}

// DispatchInterfacesAdded forwards an InterfacesAdded signal to callbacks
// registered for any interface key present in ifaces. No path filtering
// happens here; the caller filters by adapter/device root before calling.
func (h *Hub) DispatchInterfacesAdded(path dbus.ObjectPath, ifaces map[string]map[string]dbus.Variant) {
	h.corr.add(Capture{Path: path, SignalName: "InterfacesAdded", Timestamp: time.Now(), Source: SourceInterfacesAdded})
	h.mu.Lock()
	defer h.mu.Unlock()
	for name := range ifaces {
		for _, cb := range h.interfacesAdded[name] {
			cb(path, ifaces)
		}
	}
}

// DispatchInterfacesRemoved forwards an InterfacesRemoved signal.
func (h *Hub) DispatchInterfacesRemoved(path dbus.ObjectPath, ifaces []string) {
	h.corr.add(Capture{Path: path, SignalName: "InterfacesRemoved", Timestamp: time.Now(), Source: SourceInterfacesRemoved})
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, name := range ifaces {
		for _, cb := range h.interfacesRemoved[name] {
			cb(path, ifaces)
		}
	}
}

// OnInterfacesAdded registers cb for InterfacesAdded signals naming iface.
func (h *Hub) OnInterfacesAdded(iface string, cb func(dbus.ObjectPath, map[string]map[string]dbus.Variant)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.interfacesAdded[iface] = append(h.interfacesAdded[iface], cb)
}

// OnInterfacesRemoved registers cb for InterfacesRemoved signals naming iface.
func (h *Hub) OnInterfacesRemoved(iface string, cb func(dbus.ObjectPath, []string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.interfacesRemoved[iface] = append(h.interfacesRemoved[iface], cb)
}

// RecordRead injects a synthetic read event onto the correlation timeline.
// RelatedCaptures correlates it exactly like an async notification on the
// same path; the capture itself is tagged SourceRead.
func (h *Hub) RecordRead(path dbus.ObjectPath, value []byte) {
	h.corr.add(Capture{Path: path, SignalName: "ReadValue", Args: map[string]interface{}{"Value": value}, Timestamp: time.Now(), Source: SourceRead})
}

// RecordWrite injects a synthetic write event onto the correlation
// timeline.
func (h *Hub) RecordWrite(path dbus.ObjectPath, value []byte) {
	h.corr.add(Capture{Path: path, SignalName: "WriteValue", Args: map[string]interface{}{"Value": value}, Timestamp: time.Now(), Source: SourceWrite})
}

// RelatedCaptures returns every capture on ref.Path within window of
// ref.Timestamp, excluding ref itself.
func (h *Hub) RelatedCaptures(ref Capture, window time.Duration) []Capture {
	return h.corr.related(ref, window)
}
