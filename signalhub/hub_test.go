package signalhub

import (
	"testing"
	"time"

	"github.com/godbus/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devPath = dbus.ObjectPath("/org/bluez/hci0/dev_AA_BB/service0001/char0002")

func TestDispatchPropertiesChangedRecordsHistoryAndFiresCallback(t *testing.T) {
	h := New()
	var got interface{}
	h.WatchProperty(devPath, "Value", func(old, new interface{}) { got = new })

	h.DispatchPropertiesChanged("org.bluez.GattCharacteristic1", devPath, map[string]interface{}{"Value": []byte{0x01}})

	assert.Equal(t, []byte{0x01}, got)
	history := h.GetPropertyHistory(devPath, "Value")
	require.Len(t, history, 1)
	assert.Equal(t, []byte{0x01}, history[0].value)
}

func TestDispatchPropertiesChangedTreatsValueChangeAsNotification(t *testing.T) {
	h := New()
	var notified []byte
	h.RegisterNotificationCallback(devPath, func(value []byte) { notified = value })

	h.DispatchPropertiesChanged("org.bluez.GattCharacteristic1", devPath, map[string]interface{}{"Value": []byte{0xAB}})

	assert.Equal(t, []byte{0xAB}, notified)
}

func TestDispatchPropertiesChangedIgnoresNonByteValueForNotification(t *testing.T) {
	h := New()
	called := false
	h.RegisterNotificationCallback(devPath, func(value []byte) { called = true })

	h.DispatchPropertiesChanged("org.bluez.GattCharacteristic1", devPath, map[string]interface{}{"Value": "not bytes"})

	assert.False(t, called)
}

func TestGetPropertyHistoryReturnsACopy(t *testing.T) {
	h := New()
	h.DispatchPropertiesChanged("org.bluez.GattCharacteristic1", devPath, map[string]interface{}{"Value": []byte{0x01}})

	history := h.GetPropertyHistory(devPath, "Value")
	history[0].value = []byte{0xFF}

	again := h.GetPropertyHistory(devPath, "Value")
	assert.Equal(t, []byte{0x01}, again[0].value)
}

func TestDispatchInterfacesAddedFiresRegisteredCallback(t *testing.T) {
	h := New()
	var gotPath dbus.ObjectPath
	h.OnInterfacesAdded("org.bluez.Device1", func(path dbus.ObjectPath, ifaces map[string]map[string]dbus.Variant) {
		gotPath = path
	})

	h.DispatchInterfacesAdded(devPath, map[string]map[string]dbus.Variant{
		"org.bluez.Device1": {"Address": dbus.MakeVariant("aa:bb:cc:dd:ee:ff")},
	})

	assert.Equal(t, devPath, gotPath)
}

func TestDispatchInterfacesRemovedFiresRegisteredCallback(t *testing.T) {
	h := New()
	fired := false
	h.OnInterfacesRemoved("org.bluez.Device1", func(path dbus.ObjectPath, ifaces []string) { fired = true })

	h.DispatchInterfacesRemoved(devPath, []string{"org.bluez.Device1"})

	assert.True(t, fired)
}

func TestRelatedCapturesFindsReadAndWriteWithinWindow(t *testing.T) {
	h := New()
	h.RecordRead(devPath, []byte{0x01})
	h.RecordWrite(devPath, []byte{0x02})

	captures := h.corr.captures
	require.Len(t, captures, 2)

	related := h.RelatedCaptures(captures[0], 5*time.Second)
	require.Len(t, related, 1)
	assert.Equal(t, SourceWrite, related[0].Source)
}

func TestRelatedCapturesExcludesDifferentPaths(t *testing.T) {
	h := New()
	h.RecordRead(devPath, []byte{0x01})
	h.RecordWrite("/org/bluez/hci0/dev_AA_BB/service0001/char0003", []byte{0x02})

	related := h.RelatedCaptures(h.corr.captures[0], 5*time.Second)
	assert.Empty(t, related)
}

func TestRelatedCapturesExcludesBeyondWindow(t *testing.T) {
	h := New()
	ref := Capture{Path: devPath, SignalName: "ReadValue", Timestamp: time.Now()}
	h.corr.add(ref)
	h.corr.add(Capture{Path: devPath, SignalName: "WriteValue", Timestamp: ref.Timestamp.Add(10 * time.Second)})

	related := h.RelatedCaptures(ref, time.Second)
	assert.Empty(t, related)
}

func TestCorrelatorAddPrunesCapturesOutsideWindow(t *testing.T) {
	c := &correlator{}
	old := Capture{Path: devPath, SignalName: "ReadValue", Timestamp: time.Now()}
	c.add(old)

	fresh := Capture{Path: devPath, SignalName: "WriteValue", Timestamp: old.Timestamp.Add(correlationWindow + time.Second)}
	c.add(fresh)

	assert.Len(t, c.captures, 1)
	assert.Equal(t, "WriteValue", c.captures[0].SignalName)
}
