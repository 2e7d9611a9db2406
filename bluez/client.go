// Package bluez provides the low-level D-Bus plumbing shared by the
// generated org.bluez.* interface bindings under bluez/profile/.
package bluez

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus"
	log "github.com/sirupsen/logrus"

	"github.com/Mauddib28/bleep-tool-sub001/util"
)

// Bus identifies which D-Bus bus a Client talks to.
type Bus int

const (
	SystemBus Bus = iota
	SessionBus
)

// PropertiesInterface is the standard org.freedesktop.DBus.Properties name.
const PropertiesInterface = "org.freedesktop.DBus.Properties"

// Config describes the D-Bus service/path/interface a Client binds to.
type Config struct {
	Name  string
	Iface string
	Path  dbus.ObjectPath
	Bus   Bus
}

// Properties is implemented by every generated *Properties struct so the
// client can take/release the struct's lock while populating it.
type Properties interface {
	Lock()
	Unlock()
}

var (
	systemConn   *dbus.Conn
	sessionConn  *dbus.Conn
	connMu       sync.Mutex
)

func connFor(b Bus) (*dbus.Conn, error) {
	connMu.Lock()
	defer connMu.Unlock()

	switch b {
	case SessionBus:
		if sessionConn == nil {
			c, err := dbus.SessionBus()
			if err != nil {
				return nil, fmt.Errorf("bluez: session bus connect: %w", err)
			}
			sessionConn = c
		}
		return sessionConn, nil
	default:
		if systemConn == nil {
			c, err := dbus.SystemBus()
			if err != nil {
				return nil, fmt.Errorf("bluez: system bus connect: %w", err)
			}
			systemConn = c
		}
		return systemConn, nil
	}
}

// Client wraps a single (service, path, interface) triple on one bus.
type Client struct {
	Config *Config

	mu   sync.Mutex
	conn *dbus.Conn
}

// NewClient creates a Client bound to cfg. The underlying bus connection is
// shared process-wide per Bus kind (see connFor) and lazily dialed.
func NewClient(cfg *Config) *Client {
	return &Client{Config: cfg}
}

func (c *Client) getConn() (*dbus.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := connFor(c.Config.Bus)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return conn, nil
}

func (c *Client) object() (dbus.BusObject, error) {
	conn, err := c.getConn()
	if err != nil {
		return nil, err
	}
	return conn.Object(c.Config.Name, c.Config.Path), nil
}

// Call issues method on the client's configured object/interface.
func (c *Client) Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	obj, err := c.object()
	if err != nil {
		return &dbus.Call{Err: err}
	}
	log.WithFields(log.Fields{
		"path":   c.Config.Path,
		"iface":  c.Config.Iface,
		"method": method,
	}).Debug("bluez: call")
	return obj.Call(c.Config.Iface+"."+method, flags, args...)
}

// GetProperties populates props via GetAll on the Properties interface.
func (c *Client) GetProperties(props Properties) error {
	obj, err := c.object()
	if err != nil {
		return err
	}
	var result map[string]dbus.Variant
	if err := obj.Call(PropertiesInterface+".GetAll", 0, c.Config.Iface).Store(&result); err != nil {
		return fmt.Errorf("bluez: GetAll %s: %w", c.Config.Iface, err)
	}
	return util.MapToStruct(props, result)
}

// GetProperty fetches a single property by name.
func (c *Client) GetProperty(name string) (dbus.Variant, error) {
	obj, err := c.object()
	if err != nil {
		return dbus.Variant{}, err
	}
	var result dbus.Variant
	err = obj.Call(PropertiesInterface+".Get", 0, c.Config.Iface, name).Store(&result)
	return result, err
}

// SetProperty sets a single property by name.
func (c *Client) SetProperty(name string, value interface{}) error {
	obj, err := c.object()
	if err != nil {
		return err
	}
	return obj.Call(PropertiesInterface+".Set", 0, c.Config.Iface, name, dbus.MakeVariant(value)).Store()
}

// Register subscribes to signals on path/iface and returns a channel fed by
// the shared bus connection's signal dispatcher. Sending nil on the
// returned channel is the convention used by generated bindings to request
// unregistration.
func (c *Client) Register(path dbus.ObjectPath, iface string) (chan *dbus.Signal, error) {
	conn, err := c.getConn()
	if err != nil {
		return nil, err
	}
	rule := fmt.Sprintf("type='signal',path='%s',interface='%s'", path, iface)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Store(); err != nil {
		return nil, fmt.Errorf("bluez: AddMatch: %w", err)
	}
	ch := make(chan *dbus.Signal, 32)
	conn.Signal(ch)
	return ch, nil
}

// Disconnect releases the client's reference to the shared bus connection.
// The connection itself is process-wide and is not closed here.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
}

// SystemConn returns the process-wide system bus connection, dialing it on
// first use. Exported for callers that need to Export an object on the bus
// themselves (the pairing agent's org.bluez.Agent1 implementation) rather
// than issue Calls against an existing remote object.
func SystemConn() (*dbus.Conn, error) {
	return connFor(SystemBus)
}
