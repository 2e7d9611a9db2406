// Package health watches the org.bluez service's availability on the
// system bus, grounded on bleep/dbuslayer/bluez_monitor.py's
// BlueZServiceMonitor: a periodic heartbeat plus a NameOwnerChanged watch,
// both rate-limited to one notification per stream per minute.
package health

import (
	"sync"
	"time"

	"github.com/godbus/dbus"

	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
)

// EventKind identifies which health stream an Event belongs to.
type EventKind int

const (
	EventStall EventKind = iota
	EventRestart
	EventAvailability
)

// Event is delivered on Monitor's output channel.
type Event struct {
	Kind      EventKind
	Available bool
	At        time.Time
}

const rateLimit = time.Minute

// Monitor periodically pings the ObjectManager and watches NameOwnerChanged
// for "org.bluez" to detect daemon stalls, restarts, and availability
// flips.
type Monitor struct {
	conn          *dbus.Conn
	checkInterval time.Duration

	mu            sync.Mutex
	lastSuccess   time.Time
	available     bool
	lastEmit      map[EventKind]time.Time

	events chan Event
	stop   chan struct{}
}

// New creates a Monitor bound to conn with the given heartbeat interval
// (bluez_monitor.py's check_interval defaults to 5s).
func New(conn *dbus.Conn, checkInterval time.Duration) *Monitor {
	if checkInterval <= 0 {
		checkInterval = 5 * time.Second
	}
	return &Monitor{
		conn:          conn,
		checkInterval: checkInterval,
		available:     true,
		lastEmit:      map[EventKind]time.Time{},
		events:        make(chan Event, 16),
		stop:          make(chan struct{}),
	}
}

// Events returns the channel health events are delivered on.
func (m *Monitor) Events() <-chan Event { return m.events }

// Start begins the heartbeat loop and the NameOwnerChanged watch.
func (m *Monitor) Start() error {
	rule := "type='signal',interface='org.freedesktop.DBus',member='NameOwnerChanged',arg0='org.bluez'"
	if err := m.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Store(); err != nil {
		return err
	}
	sigCh := make(chan *dbus.Signal, 8)
	m.conn.Signal(sigCh)

	go m.monitorLoop()
	go m.watchNameOwner(sigCh)
	return nil
}

// Stop halts both loops.
func (m *Monitor) Stop() { close(m.stop) }

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.checkServiceHealth()
		}
	}
}

func (m *Monitor) checkServiceHealth() {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	err := m.conn.Object("org.bluez", "/").Call("org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0).Store(&objects)
	healthy := err == nil

	m.mu.Lock()
	wasAvailable := m.available
	if healthy {
		m.lastSuccess = time.Now()
	}
	m.available = healthy
	m.mu.Unlock()

	if !healthy {
		m.emit(EventStall, false)
	} else if !wasAvailable {
		m.emit(EventRestart, true)
	}
}

func (m *Monitor) watchNameOwner(sigCh chan *dbus.Signal) {
	for {
		select {
		case <-m.stop:
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			if len(sig.Body) < 3 {
				continue
			}
			newOwner, _ := sig.Body[2].(string)
			available := newOwner != ""
			m.mu.Lock()
			m.available = available
			m.mu.Unlock()
			m.emit(EventAvailability, available)
		}
	}
}

func (m *Monitor) emit(kind EventKind, available bool) {
	m.mu.Lock()
	last, seen := m.lastEmit[kind]
	now := time.Now()
	if seen && now.Sub(last) < rateLimit {
		m.mu.Unlock()
		return
	}
	m.lastEmit[kind] = now
	m.mu.Unlock()

	bleeplog.Debug("health: event", kind, available)
	select {
	case m.events <- Event{Kind: kind, Available: available, At: now}:
	default:
	}
}

// IsAvailable reports the last observed org.bluez availability.
func (m *Monitor) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// LastSuccessfulCheck returns the time of the last successful heartbeat.
func (m *Monitor) LastSuccessfulCheck() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSuccess
}
