package errtax

import (
	"errors"
	"testing"

	"github.com/godbus/dbus"
	"github.com/stretchr/testify/assert"
)

func TestClassifyWriteNotPermittedMessageSubstring(t *testing.T) {
	err := dbus.Error{Name: "org.bluez.Error.Failed", Body: []interface{}{"Write not permitted"}}

	c := Classify(err, KindCharacteristic, OpWrite)

	assert.Equal(t, AxisPermission, c.Axis)
	assert.Equal(t, CategoryWriteNotPermitted, c.Category)
	assert.Equal(t, ResultErrWriteNotPermitted, c.Code)
}

func TestClassifyGenericNotPermittedDescriptorDefaultsToNotify(t *testing.T) {
	err := dbus.Error{Name: "org.bluez.Error.NotPermitted", Body: []interface{}{"Not permitted"}}

	c := Classify(err, KindDescriptor, OpRead)

	assert.Equal(t, CategoryNotifyNotPermitted, c.Category)
}

func TestClassifyGenericNotPermittedCharacteristicDefaultsToWrite(t *testing.T) {
	err := dbus.Error{Name: "org.bluez.Error.NotPermitted", Body: []interface{}{"Not permitted"}}

	c := Classify(err, KindCharacteristic, OpRead)

	assert.Equal(t, CategoryWriteNotPermitted, c.Category)
}

func TestClassifyInProgressIsLandmine(t *testing.T) {
	err := dbus.Error{Name: "org.bluez.Error.InProgress", Body: []interface{}{"Operation already in progress"}}

	c := Classify(err, KindCharacteristic, OpRead)

	assert.Equal(t, AxisLandmine, c.Axis)
	assert.Equal(t, CategoryActionInProgress, c.Category)
}

func TestClassifyNotConnectedMessageFallback(t *testing.T) {
	err := dbus.Error{Name: "org.bluez.Error.Failed", Body: []interface{}{"Device not connected"}}

	c := Classify(err, KindCharacteristic, OpRead)

	assert.Equal(t, AxisLandmine, c.Axis)
	assert.Equal(t, CategoryRemoteDisconnect, c.Category)
}

func TestClassifyUnrecognizedFallsIntoUncategorized(t *testing.T) {
	err := dbus.Error{Name: "org.bluez.Error.SomethingNew", Body: []interface{}{"a completely novel failure"}}

	c := Classify(err, KindCharacteristic, OpRead)

	assert.Equal(t, AxisLandmine, c.Axis)
	assert.Equal(t, CategoryUncategorized, c.Category)
}

func TestClassifyNonDBusErrorUsesMessageOnly(t *testing.T) {
	err := errors.New("read not permitted by peer")

	c := Classify(err, KindCharacteristic, OpRead)

	assert.Equal(t, CategoryReadNotPermitted, c.Category)
}

func TestDecodeCodeNamedErrorTakesPrecedenceOverMessage(t *testing.T) {
	code := DecodeCode("org.bluez.Error.NotConnected", "timeout")

	assert.Equal(t, ResultErrNotConnected, code)
}

func TestDecodeCodeFallsBackToMessageSubstring(t *testing.T) {
	code := DecodeCode("org.bluez.Error.Failed", "Read not permitted")

	assert.Equal(t, ResultErrReadNotPermitted, code)
}

func TestDecodeCodeUnmatchedReturnsResultErr(t *testing.T) {
	code := DecodeCode("org.bluez.Error.Unheard", "nothing recognizable")

	assert.Equal(t, ResultErr, code)
}
