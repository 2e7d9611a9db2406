package bluez

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus"
)

const (
	objectManagerDest  = "org.bluez"
	objectManagerPath  = dbus.ObjectPath("/")
	objectManagerIface = "org.freedesktop.DBus.ObjectManager"
)

// ObjectManager mirrors org.freedesktop.DBus.ObjectManager rooted at "/" on
// the org.bluez service. Every adapter/device/GATT object discovery in the
// stack funnels through GetManagedObjects or the InterfacesAdded/Removed
// signals this type exposes.
type ObjectManager struct {
	conn *dbus.Conn

	mu   sync.Mutex
	sig  chan *dbus.Signal
}

var (
	defaultObjectManager     *ObjectManager
	defaultObjectManagerOnce sync.Once
	defaultObjectManagerErr  error
)

// GetObjectManager returns the process-wide ObjectManager bound to the
// system bus, dialing it once on first use.
func GetObjectManager() (*ObjectManager, error) {
	defaultObjectManagerOnce.Do(func() {
		conn, err := connFor(SystemBus)
		if err != nil {
			defaultObjectManagerErr = err
			return
		}
		defaultObjectManager = &ObjectManager{conn: conn}
	})
	return defaultObjectManager, defaultObjectManagerErr
}

// GetManagedObjects returns the full object/interface/property tree BlueZ
// currently exposes.
func (om *ObjectManager) GetManagedObjects() (map[dbus.ObjectPath]map[string]map[string]dbus.Variant, error) {
	obj := om.conn.Object(objectManagerDest, objectManagerPath)
	var result map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := obj.Call(objectManagerIface+".GetManagedObjects", 0).Store(&result); err != nil {
		return nil, fmt.Errorf("bluez: GetManagedObjects: %w", err)
	}
	return result, nil
}

// Register starts delivering InterfacesAdded/InterfacesRemoved signals on
// the returned channel. Callers must Unregister when done.
func (om *ObjectManager) Register() (chan *dbus.Signal, error) {
	om.mu.Lock()
	defer om.mu.Unlock()

	rule := fmt.Sprintf("type='signal',path='%s',interface='%s'", objectManagerPath, objectManagerIface)
	if err := om.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Store(); err != nil {
		return nil, fmt.Errorf("bluez: AddMatch: %w", err)
	}
	ch := make(chan *dbus.Signal, 32)
	om.conn.Signal(ch)
	om.sig = ch
	return ch, nil
}

// Unregister stops delivering signals on ch.
func (om *ObjectManager) Unregister(ch chan *dbus.Signal) {
	om.mu.Lock()
	defer om.mu.Unlock()
	om.conn.RemoveSignal(ch)
	close(ch)
	if om.sig == ch {
		om.sig = nil
	}
}
