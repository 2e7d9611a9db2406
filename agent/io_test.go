package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoAcceptHandlerAcceptsEverything(t *testing.T) {
	h := NewAutoAcceptHandler()

	pin, err := h.RequestPinCode("dev")
	require.NoError(t, err)
	assert.Equal(t, "0000", pin)

	confirmed, err := h.RequestConfirmation("dev", 123456)
	require.NoError(t, err)
	assert.True(t, confirmed)

	authorized, err := h.RequestAuthorization("dev")
	require.NoError(t, err)
	assert.True(t, authorized)

	serviceOK, err := h.AuthorizeService("dev", "0000180d-0000-1000-8000-00805f9b34fb")
	require.NoError(t, err)
	assert.True(t, serviceOK)
}

func TestProgrammaticHandlerFallsBackToDefaults(t *testing.T) {
	h := NewProgrammaticHandler()
	h.DefaultPin = "1234"
	h.AutoAccept = true

	pin, err := h.RequestPinCode("dev")
	require.NoError(t, err)
	assert.Equal(t, "1234", pin)

	confirmed, err := h.RequestConfirmation("dev", 1)
	require.NoError(t, err)
	assert.True(t, confirmed)
}

func TestProgrammaticHandlerPrefersCallback(t *testing.T) {
	h := NewProgrammaticHandler()
	called := false
	h.OnRequestPinCode = func(deviceInfo string) (string, error) {
		called = true
		return "9999", nil
	}

	pin, err := h.RequestPinCode("dev")

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "9999", pin)
}

func TestProgrammaticHandlerPropagatesCallbackError(t *testing.T) {
	h := NewProgrammaticHandler()
	boom := errors.New("boom")
	h.OnRequestPasskey = func(string) (uint32, error) { return 0, boom }

	_, err := h.RequestPasskey("dev")

	assert.ErrorIs(t, err, boom)
}
