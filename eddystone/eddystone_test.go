package eddystone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameKindStringNames(t *testing.T) {
	assert.Equal(t, "uid", FrameUID.String())
	assert.Equal(t, "url", FrameURL.String())
	assert.Equal(t, "tlm", FrameTLM.String())
	assert.Equal(t, "unknown", FrameUnknown.String())
	assert.Equal(t, "unknown", FrameKind(99).String())
}

func TestClassifyEmptyPayloadIsNotABeacon(t *testing.T) {
	beacon, ok := Classify(nil)

	assert.False(t, ok)
	assert.Nil(t, beacon)
}

func TestClassifyServiceDataMissingUUIDIsNotABeacon(t *testing.T) {
	beacon, ok := ClassifyServiceData(map[string][]byte{
		"0000180d-0000-1000-8000-00805f9b34fb": {0x01, 0x02},
	})

	assert.False(t, ok)
	assert.Nil(t, beacon)
}

func TestClassifyServiceDataUnrecognizedFrameIsNotABeacon(t *testing.T) {
	beacon, ok := ClassifyServiceData(map[string][]byte{
		ServiceUUID: {0xFF, 0xFF, 0xFF},
	})

	assert.False(t, ok)
	assert.Nil(t, beacon)
}

func TestDeviceTypeHintOnNilBeaconIsEmpty(t *testing.T) {
	var beacon *Beacon
	assert.Empty(t, beacon.DeviceTypeHint())
}

func TestDeviceTypeHintFormatsEachFrameKind(t *testing.T) {
	uid := &Beacon{Kind: FrameUID, NamespaceID: "aabbccddeeff00112233", InstanceID: "445566778899"}
	assert.Equal(t, "eddystone-uid(aabbccddeeff00112233:445566778899)", uid.DeviceTypeHint())

	url := &Beacon{Kind: FrameURL, URL: "https://example.com"}
	assert.Equal(t, "eddystone-url(https://example.com)", url.DeviceTypeHint())

	tlm := &Beacon{Kind: FrameTLM}
	assert.Equal(t, "eddystone-tlm", tlm.DeviceTypeHint())

	unknown := &Beacon{Kind: FrameUnknown}
	assert.Empty(t, unknown.DeviceTypeHint())
}
