package gatt

import (
	"context"

	"github.com/godbus/dbus"

	"github.com/Mauddib28/bleep-tool-sub001/bleepcfg"
	"github.com/Mauddib28/bleep-tool-sub001/device"
	"github.com/Mauddib28/bleep-tool-sub001/errtax"
	"github.com/Mauddib28/bleep-tool-sub001/facade"
)

// Result is the outcome of probing one device's GATT tree end to end.
type Result struct {
	Services    []*device.Service
	Permissions *device.PermissionMap
	Landmines   *device.LandmineMap
	Attributes  *device.AttributeMap
}

// Probe walks devicePath's GATT tree through host, reading every
// read/write-flagged characteristic and descriptor, and returns the
// populated tree plus the classification maps built from what it saw.
// Grounded on device_le.py's _deep_enumerate_gatt: the tree is discovered
// once via GetManagedObjects, every eligible attribute is probed, and
// classification happens once at the end over the whole aggregated set of
// failures.
func Probe(ctx context.Context, host facade.Host, devicePath dbus.ObjectPath, cfg *bleepcfg.Config) (*Result, error) {
	if cfg == nil {
		cfg = bleepcfg.Load()
	}

	snapshot, err := host.GetManagedObjects(ctx)
	if err != nil {
		return nil, err
	}
	objects := make(map[dbus.ObjectPath]facade.ManagedObject, len(snapshot))
	for path, obj := range snapshot {
		objects[path] = obj
	}

	services := Tree(objects, devicePath)
	attrs := device.NewAttributeMap()
	agg := NewAggregator()

	for _, svc := range services {
		attrs.Put(&device.AttributeRecord{UUID: svc.UUID, Kind: "service"})

		for _, ch := range svc.Characteristics {
			if ShouldProbe(ch.Flags) {
				probeCharacteristic(ctx, host, ch, agg, cfg)
			}
			attrs.Put(&device.AttributeRecord{UUID: ch.UUID, Kind: "characteristic", Flags: ch.Flags, Handle: ch.Handle, Value: ch.Value})

			for _, desc := range ch.Descriptors {
				if ShouldProbe(desc.Flags) {
					probeDescriptor(ctx, host, desc, agg, cfg)
				}
				attrs.Put(&device.AttributeRecord{UUID: desc.UUID, Kind: "descriptor", Flags: desc.Flags, Handle: desc.Handle, Value: desc.Value})
			}
		}
	}

	perm := device.NewPermissionMap()
	mine := device.NewLandmineMap()
	agg.Finalize(perm, mine)

	return &Result{
		Services:    services,
		Permissions: perm,
		Landmines:   mine,
		Attributes:  attrs,
	}, nil
}

func probeCharacteristic(ctx context.Context, host facade.Host, ch *device.Characteristic, agg *Aggregator, cfg *bleepcfg.Config) {
	binding, err := host.Characteristic(dbus.ObjectPath(ch.Path))
	if err != nil {
		return
	}
	value, class := SafeReadCharacteristic(ctx, binding, cfg.SafeReadRetries, cfg.SafeReadDelay)
	if class != nil {
		agg.Observe(errtax.KindCharacteristic, "characteristic", device.NormalizeUUID(ch.UUID), class)
		return
	}
	ch.Value = value
}

func probeDescriptor(ctx context.Context, host facade.Host, desc *device.Descriptor, agg *Aggregator, cfg *bleepcfg.Config) {
	binding, err := host.Descriptor(dbus.ObjectPath(desc.Path))
	if err != nil {
		return
	}
	getValueProperty := func() ([]byte, error) {
		variant, propErr := binding.GetProperty("Value")
		if propErr != nil {
			return nil, propErr
		}
		if b, ok := variant.Value().([]byte); ok {
			return b, nil
		}
		return nil, nil
	}
	value, class := SafeReadDescriptor(ctx, binding, getValueProperty, cfg.SafeReadRetries, cfg.SafeReadDelay)
	if class != nil {
		agg.Observe(errtax.KindDescriptor, "descriptor", device.NormalizeUUID(desc.UUID), class)
		return
	}
	desc.Value = value
}
