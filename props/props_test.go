package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCharacteristicProperties struct {
	UUID    string `dbus:""`
	Address string `dbus:"ignore"`
	Trusted bool   `dbus:"omitEmpty,writable"`
	Handle  uint16 `dbus:"omitEmpty"`
}

func TestToMapSkipsIgnoredFields(t *testing.T) {
	v := &fakeCharacteristicProperties{UUID: "0000180d-0000-1000-8000-00805f9b34fb", Address: "aa:bb:cc:dd:ee:ff"}

	out := ToMap(v)

	_, present := out["Address"]
	assert.False(t, present)
	assert.Equal(t, "0000180d-0000-1000-8000-00805f9b34fb", out["UUID"])
}

func TestToMapSkipsZeroValuedOmitEmptyFields(t *testing.T) {
	v := &fakeCharacteristicProperties{UUID: "x"}

	out := ToMap(v)

	_, trustedPresent := out["Trusted"]
	_, handlePresent := out["Handle"]
	assert.False(t, trustedPresent)
	assert.False(t, handlePresent)
}

func TestToMapKeepsNonZeroOmitEmptyFields(t *testing.T) {
	v := &fakeCharacteristicProperties{UUID: "x", Trusted: true, Handle: 0x0012}

	out := ToMap(v)

	assert.Equal(t, true, out["Trusted"])
	assert.Equal(t, uint16(0x0012), out["Handle"])
}
