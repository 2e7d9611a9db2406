package facade

import (
	"context"

	"github.com/godbus/dbus"
)

// Fake is an in-memory Snapshotter for exercising snapshot consumers such
// as the GATT walker's Tree without a real system bus.
type Fake struct {
	Objects map[dbus.ObjectPath]ManagedObject
}

// NewFake creates an empty Fake host.
func NewFake() *Fake {
	return &Fake{Objects: map[dbus.ObjectPath]ManagedObject{}}
}

// AddObject registers path with the given interface/property bag.
func (f *Fake) AddObject(path dbus.ObjectPath, obj ManagedObject) {
	f.Objects[path] = obj
}

func (f *Fake) GetManagedObjects(ctx context.Context) (map[dbus.ObjectPath]ManagedObject, error) {
	out := make(map[dbus.ObjectPath]ManagedObject, len(f.Objects))
	for k, v := range f.Objects {
		out[k] = v
	}
	return out, nil
}

var _ Snapshotter = (*Fake)(nil)
