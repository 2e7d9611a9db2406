package bluez

import (
	"fmt"

	"github.com/godbus/dbus"
)

// PropertyChanged describes one decoded PropertiesChanged signal.
type PropertyChanged struct {
	Interface string
	Name      string
	Value     interface{}
}

// watchable is implemented by every generated *1 binding (Adapter1,
// Device1, GattService1, ...). WatchProperties/UnwatchProperties are
// written once here instead of once per generated file.
type watchable interface {
	Path() dbus.ObjectPath
	Interface() string
	Client() *Client
	GetWatchPropertiesChannel() chan *dbus.Signal
	SetWatchPropertiesChannel(chan *dbus.Signal)
}

// WatchProperties starts forwarding decoded PropertiesChanged signals for a
// as *PropertyChanged values on the returned channel.
func WatchProperties(a watchable) (chan *PropertyChanged, error) {
	ch := a.GetWatchPropertiesChannel()
	if ch == nil {
		sig, err := a.Client().Register(a.Path(), PropertiesInterface)
		if err != nil {
			return nil, fmt.Errorf("bluez: WatchProperties register: %w", err)
		}
		a.SetWatchPropertiesChannel(sig)
		ch = sig
	}

	out := make(chan *PropertyChanged)
	go func() {
		defer close(out)
		for sig := range ch {
			if sig == nil {
				return
			}
			if sig.Name != PropertiesInterface+".PropertiesChanged" {
				continue
			}
			if len(sig.Body) < 2 {
				continue
			}
			iface, _ := sig.Body[0].(string)
			changed, _ := sig.Body[1].(map[string]dbus.Variant)
			for name, v := range changed {
				out <- &PropertyChanged{Interface: iface, Name: name, Value: v.Value()}
			}
		}
	}()
	return out, nil
}

// UnwatchProperties stops the background forwarder started by
// WatchProperties and releases the underlying signal channel.
func UnwatchProperties(a watchable, ch chan *PropertyChanged) error {
	sig := a.GetWatchPropertiesChannel()
	if sig != nil {
		sig <- nil
		a.SetWatchPropertiesChannel(nil)
	}
	return nil
}
