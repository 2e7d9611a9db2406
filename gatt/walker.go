// Package gatt walks a connected device's service->characteristic->
// descriptor tree, probing readable/writable attributes and feeding
// failures into the errtax classification engine. Grounded on
// bleep/dbuslayer/device_le.py's _deep_enumerate_gatt and
// characteristic.py/descriptor.py's safe_read_with_retry.
package gatt

import (
	"context"
	"sort"
	"time"

	"github.com/godbus/dbus"

	"github.com/Mauddib28/bleep-tool-sub001/classify"
	"github.com/Mauddib28/bleep-tool-sub001/device"
	"github.com/Mauddib28/bleep-tool-sub001/errtax"
	"github.com/Mauddib28/bleep-tool-sub001/facade"
)

// characteristicReader is the subset of GattCharacteristic1 the walker
// needs, narrowed so tests can supply a fake.
type characteristicReader interface {
	ReadValue(options map[string]interface{}) ([]byte, error)
}

// descriptorReader is the subset of GattDescriptor1 the walker needs.
type descriptorReader interface {
	ReadValue(options map[string]interface{}) ([]byte, error)
}

// SafeReadCharacteristic retries ReadValue up to retries times, sleeping
// delay between attempts only when the failure classifies as
// action_in_progress; any other classification breaks immediately.
// Mirrors characteristic.py's safe_read_with_retry.
func SafeReadCharacteristic(ctx context.Context, ch characteristicReader, retries int, delay time.Duration) ([]byte, *errtax.Classification) {
	var lastClass errtax.Classification
	for attempt := 0; attempt < retries; attempt++ {
		data, err := ch.ReadValue(map[string]interface{}{})
		if err == nil {
			return data, nil
		}
		class := errtax.Classify(err, errtax.KindCharacteristic, errtax.OpRead)
		lastClass = class
		if class.Category == errtax.CategoryActionInProgress {
			select {
			case <-ctx.Done():
				return nil, &lastClass
			case <-time.After(delay):
			}
			continue
		}
		break
	}
	return nil, &lastClass
}

// readDescriptorWithQuirks implements descriptor.py's read_value quirk
// cascade: ReadValue({"offset":0}) -> ReadValue({}) on an empty/zero
// result -> Properties.Get("Value") -> a guaranteed single 0x00 byte.
// This fallback is descriptor-only: the characteristic read path has no
// equivalent "never return nothing" guarantee.
func readDescriptorWithQuirks(d descriptorReader, getValueProperty func() ([]byte, error)) []byte {
	result, err := d.ReadValue(map[string]interface{}{"offset": uint16(0)})
	if err != nil || len(result) == 0 || (len(result) == 1 && result[0] == 0x00) {
		if alt, altErr := d.ReadValue(map[string]interface{}{}); altErr == nil && len(alt) > 0 {
			result = alt
		}
	}
	if len(result) == 0 && getValueProperty != nil {
		if propVal, propErr := getValueProperty(); propErr == nil && len(propVal) > 0 {
			result = propVal
		}
	}
	if len(result) == 0 {
		return []byte{0x00}
	}
	return result
}

// SafeReadDescriptor applies the quirk-cascade read, retrying up to
// retries times with delay backoff only on action_in_progress
// classifications raised by the initial offset read; any other
// classification is returned immediately, mirroring descriptor.py's
// safe_read_with_retry.
func SafeReadDescriptor(ctx context.Context, d descriptorReader, getValueProperty func() ([]byte, error), retries int, delay time.Duration) ([]byte, *errtax.Classification) {
	var lastClass errtax.Classification
	for attempt := 0; attempt < retries; attempt++ {
		_, err := d.ReadValue(map[string]interface{}{"offset": uint16(0)})
		if err == nil {
			return readDescriptorWithQuirks(d, getValueProperty), nil
		}
		class := errtax.Classify(err, errtax.KindDescriptor, errtax.OpRead)
		lastClass = class
		if class.Category == errtax.CategoryActionInProgress {
			select {
			case <-ctx.Done():
				return nil, &lastClass
			case <-time.After(delay):
			}
			continue
		}
		return nil, &lastClass
	}
	return nil, &lastClass
}

// Tree is the statically-discoverable shape of a device's GATT tree, as
// read out of a facade.Snapshotter's ManagedObjects result. Building the
// tree never touches the bus, so it can be exercised offline against
// facade.Fake fixtures.
func Tree(snapshot map[dbus.ObjectPath]facade.ManagedObject, devicePath dbus.ObjectPath) []*device.Service {
	servicePaths := childPathsWithInterface(snapshot, devicePath, "org.bluez.GattService1")
	sort.Slice(servicePaths, func(i, j int) bool { return servicePaths[i] < servicePaths[j] })

	var services []*device.Service
	for _, svcPath := range servicePaths {
		svcProps := snapshot[svcPath]["org.bluez.GattService1"]
		svc := &device.Service{
			Path:    string(svcPath),
			UUID:    stringProp(svcProps, "UUID"),
			Primary: boolProp(svcProps, "Primary"),
		}

		charPaths := childPathsWithInterface(snapshot, svcPath, "org.bluez.GattCharacteristic1")
		sort.Slice(charPaths, func(i, j int) bool { return charPaths[i] < charPaths[j] })

		for _, charPath := range charPaths {
			charProps := snapshot[charPath]["org.bluez.GattCharacteristic1"]
			ch := &device.Characteristic{
				Path:   string(charPath),
				UUID:   stringProp(charProps, "UUID"),
				Flags:  stringSliceProp(charProps, "Flags"),
				Handle: uint16Prop(charProps, "Handle"),
			}

			descPaths := childPathsWithInterface(snapshot, charPath, "org.bluez.GattDescriptor1")
			sort.Slice(descPaths, func(i, j int) bool { return descPaths[i] < descPaths[j] })
			for _, descPath := range descPaths {
				descProps := snapshot[descPath]["org.bluez.GattDescriptor1"]
				ch.Descriptors = append(ch.Descriptors, &device.Descriptor{
					Path:   string(descPath),
					UUID:   stringProp(descProps, "UUID"),
					Flags:  stringSliceProp(descProps, "Flags"),
					Handle: uint16Prop(descProps, "Handle"),
				})
			}

			svc.Characteristics = append(svc.Characteristics, ch)
		}

		services = append(services, svc)
	}
	return services
}

// ShouldProbe reports whether an attribute with the given Flags should be
// read/write probed at all: the walker never touches an attribute that
// advertises neither read nor write.
func ShouldProbe(flags []string) bool {
	return hasAny(flags, "read", "write", "encrypt-read", "encrypt-write",
		"encrypt-authenticated-read", "encrypt-authenticated-write")
}

// aggregatedErrors accumulates every RESULT_ERR_* code seen for one UUID
// across a walk, mirroring _deep_enumerate_gatt's agg_errors dict:
// classification happens once, after the whole tree has been probed, so a
// UUID never gets assigned to two different categories out of order.
type aggregatedErrors struct {
	kind  errtax.ObjectKind
	label string
	codes []errtax.Code
}

// Aggregator collects per-UUID error codes during a live probe and
// resolves them into a device's PermissionMap/LandmineMap once probing
// finishes, via classify.Classify, matching device_le.py's
// classify-once-at-the-end behavior.
type Aggregator struct {
	byUUID map[string]*aggregatedErrors
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byUUID: map[string]*aggregatedErrors{}}
}

// Observe records one probe outcome for uuid/label (the attribute kind as
// device.PermissionMap/LandmineMap index it: "service", "characteristic",
// or "descriptor"). Pass a nil class for a clean read/write (no error
// observed); Observe is then a no-op.
func (a *Aggregator) Observe(kind errtax.ObjectKind, label, uuid string, class *errtax.Classification) {
	if class == nil {
		return
	}
	entry, ok := a.byUUID[uuid]
	if !ok {
		entry = &aggregatedErrors{kind: kind, label: label}
		a.byUUID[uuid] = entry
	}
	entry.codes = append(entry.codes, class.Code)
}

// Finalize resolves every observed UUID's accumulated error codes into
// perm/mine via classify.Classify. A UUID whose codes never resolved to a
// named category on either axis is parked under in_review/uncategorized
// pending manual triage.
func (a *Aggregator) Finalize(perm *device.PermissionMap, mine *device.LandmineMap) {
	for uuid, entry := range a.byUUID {
		permCat, mineCat := classify.Classify(entry.codes, entry.kind)
		if permCat != nil {
			perm.Record(entry.label, *permCat, uuid)
		}
		if mineCat != nil {
			mine.Record(entry.label, *mineCat, uuid)
		}
		if permCat == nil && mineCat == nil {
			perm.RecordInReview(uuid)
			mine.RecordInReview(uuid)
		}
	}
}

func hasAny(flags []string, want ...string) bool {
	for _, f := range flags {
		for _, w := range want {
			if f == w {
				return true
			}
		}
	}
	return false
}

func childPathsWithInterface(snapshot map[dbus.ObjectPath]facade.ManagedObject, parent dbus.ObjectPath, iface string) []dbus.ObjectPath {
	var out []dbus.ObjectPath
	prefix := string(parent) + "/"
	for path, obj := range snapshot {
		if _, ok := obj[iface]; !ok {
			continue
		}
		if len(string(path)) > len(prefix) && string(path)[:len(prefix)] == prefix {
			out = append(out, path)
		}
	}
	return out
}

func stringProp(props map[string]dbus.Variant, name string) string {
	if v, ok := props[name]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

func boolProp(props map[string]dbus.Variant, name string) bool {
	if v, ok := props[name]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

func uint16Prop(props map[string]dbus.Variant, name string) uint16 {
	if v, ok := props[name]; ok {
		switch n := v.Value().(type) {
		case uint16:
			return n
		case uint32:
			return uint16(n)
		}
	}
	return 0
}

func stringSliceProp(props map[string]dbus.Variant, name string) []string {
	if v, ok := props[name]; ok {
		if s, ok := v.Value().([]string); ok {
			return s
		}
	}
	return nil
}
