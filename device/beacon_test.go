package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetServiceDataWithoutEddystoneLeavesHintEmpty(t *testing.T) {
	d := New("/org/bluez/hci0/dev_AA", "AA:BB:CC:DD:EE:FF")

	d.SetServiceData(map[string][]byte{
		"0000180d-0000-1000-8000-00805f9b34fb": {0x01, 0x02},
	})

	assert.Empty(t, d.BeaconHint)
}

func TestSetServiceDataWithEmptyEddystonePayloadLeavesHintEmpty(t *testing.T) {
	d := New("/org/bluez/hci0/dev_AA", "AA:BB:CC:DD:EE:FF")

	d.SetServiceData(map[string][]byte{
		"0000feaa-0000-1000-8000-00805f9b34fb": {},
	})

	assert.Empty(t, d.BeaconHint)
}

func TestSetServiceDataNilMapLeavesHintEmpty(t *testing.T) {
	d := New("/org/bluez/hci0/dev_AA", "AA:BB:CC:DD:EE:FF")

	d.SetServiceData(nil)

	assert.Empty(t, d.BeaconHint)
}
