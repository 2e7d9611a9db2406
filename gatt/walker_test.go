package gatt

import (
	"context"
	"testing"
	"time"

	"github.com/godbus/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mauddib28/bleep-tool-sub001/device"
	"github.com/Mauddib28/bleep-tool-sub001/errtax"
	"github.com/Mauddib28/bleep-tool-sub001/facade"
)

func deviceSnapshot() map[dbus.ObjectPath]facade.ManagedObject {
	devicePath := dbus.ObjectPath("/org/bluez/hci0/dev_AA_BB")
	svcPath := devicePath + "/service0001"
	charPath := svcPath + "/char0001"
	descPath := charPath + "/desc0001"

	return map[dbus.ObjectPath]facade.ManagedObject{
		svcPath: {
			"org.bluez.GattService1": {
				"UUID":    dbus.MakeVariant("0000180d-0000-1000-8000-00805f9b34fb"),
				"Primary": dbus.MakeVariant(true),
			},
		},
		charPath: {
			"org.bluez.GattCharacteristic1": {
				"UUID":  dbus.MakeVariant("00002a37-0000-1000-8000-00805f9b34fb"),
				"Flags": dbus.MakeVariant([]string{"read", "notify"}),
			},
		},
		descPath: {
			"org.bluez.GattDescriptor1": {
				"UUID":  dbus.MakeVariant("00002902-0000-1000-8000-00805f9b34fb"),
				"Flags": dbus.MakeVariant([]string{"read", "write"}),
			},
		},
	}
}

func TestTreeWalksServicesCharacteristicsDescriptorsInOrder(t *testing.T) {
	devicePath := dbus.ObjectPath("/org/bluez/hci0/dev_AA_BB")
	services := Tree(deviceSnapshot(), devicePath)

	require.Len(t, services, 1)
	svc := services[0]
	assert.Equal(t, "0000180d-0000-1000-8000-00805f9b34fb", svc.UUID)
	assert.True(t, svc.Primary)

	require.Len(t, svc.Characteristics, 1)
	ch := svc.Characteristics[0]
	assert.Equal(t, "00002a37-0000-1000-8000-00805f9b34fb", ch.UUID)
	assert.True(t, ch.HasFlag("notify"))

	require.Len(t, ch.Descriptors, 1)
	assert.Equal(t, "00002902-0000-1000-8000-00805f9b34fb", ch.Descriptors[0].UUID)
}

func TestShouldProbeRequiresReadOrWrite(t *testing.T) {
	assert.True(t, ShouldProbe([]string{"read"}))
	assert.False(t, ShouldProbe([]string{"write-without-response"}))
	assert.False(t, ShouldProbe([]string{"notify"}))
	assert.True(t, ShouldProbe([]string{"encrypt-read"}))
}

type fakeCharReader struct {
	results []struct {
		data []byte
		err  error
	}
	calls int
}

func (f *fakeCharReader) ReadValue(map[string]interface{}) ([]byte, error) {
	r := f.results[f.calls]
	f.calls++
	return r.data, r.err
}

func TestSafeReadCharacteristicRetriesOnlyActionInProgress(t *testing.T) {
	inProgress := dbus.Error{Name: "org.bluez.Error.InProgress", Body: []interface{}{"operation already in progress"}}

	reader := &fakeCharReader{results: []struct {
		data []byte
		err  error
	}{
		{nil, inProgress},
		{[]byte{0x2a}, nil},
	}}

	value, class := SafeReadCharacteristic(context.Background(), reader, 3, time.Millisecond)
	assert.Nil(t, class)
	assert.Equal(t, []byte{0x2a}, value)
	assert.Equal(t, 2, reader.calls)
}

func TestSafeReadCharacteristicBreaksOnPermissionError(t *testing.T) {
	notPermitted := dbus.Error{Name: "org.bluez.Error.NotPermitted", Body: []interface{}{"Read not permitted"}}

	reader := &fakeCharReader{results: []struct {
		data []byte
		err  error
	}{
		{nil, notPermitted},
		{[]byte{0xff}, nil},
	}}

	value, class := SafeReadCharacteristic(context.Background(), reader, 3, time.Millisecond)
	require.NotNil(t, class)
	assert.Equal(t, errtax.AxisPermission, class.Axis)
	assert.Equal(t, errtax.CategoryReadNotPermitted, class.Category)
	assert.Nil(t, value)
	assert.Equal(t, 1, reader.calls)
}

type fakeDescReader struct {
	offsetResult []byte
	offsetErr    error
	emptyResult  []byte
}

func (f *fakeDescReader) ReadValue(opts map[string]interface{}) ([]byte, error) {
	if _, ok := opts["offset"]; ok {
		return f.offsetResult, f.offsetErr
	}
	return f.emptyResult, nil
}

func TestReadDescriptorWithQuirksFallsBackThroughCascade(t *testing.T) {
	d := &fakeDescReader{offsetResult: nil, emptyResult: []byte{0x01, 0x00}}
	got := readDescriptorWithQuirks(d, nil)
	assert.Equal(t, []byte{0x01, 0x00}, got)
}

func TestReadDescriptorWithQuirksFallsBackToValueProperty(t *testing.T) {
	d := &fakeDescReader{offsetResult: nil, emptyResult: nil}
	got := readDescriptorWithQuirks(d, func() ([]byte, error) { return []byte{0x42}, nil })
	assert.Equal(t, []byte{0x42}, got)
}

func TestReadDescriptorWithQuirksGuaranteesOneByteFallback(t *testing.T) {
	d := &fakeDescReader{offsetResult: nil, emptyResult: nil}
	got := readDescriptorWithQuirks(d, nil)
	assert.Equal(t, []byte{0x00}, got)
}

func TestAggregatorAppliesPermissionPrecedence(t *testing.T) {
	agg := NewAggregator()
	agg.Observe(errtax.KindCharacteristic, "characteristic", "uuid-1", &errtax.Classification{Code: errtax.ResultErrNotSupported})
	agg.Observe(errtax.KindCharacteristic, "characteristic", "uuid-1", &errtax.Classification{Code: errtax.ResultErrReadNotPermitted})

	perm := device.NewPermissionMap()
	mine := device.NewLandmineMap()
	agg.Finalize(perm, mine)

	byKind, _ := perm.Report()
	assert.Contains(t, byKind["characteristic"][errtax.CategoryReadNotPermitted], "uuid-1")
	assert.NotContains(t, byKind["characteristic"][errtax.CategoryNotSupported], "uuid-1")
}

func TestAggregatorParksUnresolvedInReview(t *testing.T) {
	agg := NewAggregator()
	agg.Observe(errtax.KindDescriptor, "descriptor", "uuid-2", &errtax.Classification{Code: errtax.ResultErr})

	perm := device.NewPermissionMap()
	mine := device.NewLandmineMap()
	agg.Finalize(perm, mine)

	_, review := mine.Report()
	assert.Contains(t, review["uncategorized"], "uuid-2")
}
