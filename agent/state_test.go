package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachineHappyPathToComplete(t *testing.T) {
	io := NewAutoAcceptHandler()
	m := NewStateMachine(io)

	require.NoError(t, m.StartPairing("/org/bluez/hci0/dev_AA", "device (AA:BB:CC:DD:EE:FF)"))
	assert.Equal(t, StateInitiated, m.State())

	passkey, err := m.HandlePasskeyRequest()
	require.NoError(t, err)
	assert.Equal(t, io.DefaultPasskey, passkey)

	require.NoError(t, m.HandleBondingStart())
	assert.Equal(t, StateBonding, m.State())

	data, err := m.HandlePairingSuccess()
	require.NoError(t, err)
	assert.True(t, data.Success)
	assert.Equal(t, StateComplete, m.State())
}

func TestStateMachineRejectsInvalidTransition(t *testing.T) {
	m := NewStateMachine(NewAutoAcceptHandler())

	err := m.HandleBondingStart()

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StateIdle, invalid.From)
	assert.Equal(t, StateBonding, invalid.To)
}

func TestStateMachineConfirmationRejectionFails(t *testing.T) {
	io := NewProgrammaticHandler()
	io.AutoAccept = false
	m := NewStateMachine(io)
	require.NoError(t, m.StartPairing("/dev", "dev"))

	err := m.HandleConfirmationRequest(123456)

	require.Error(t, err)
	assert.Equal(t, StateFailed, m.State())
}

func TestStateMachineOnCompleteCallbackFires(t *testing.T) {
	io := NewAutoAcceptHandler()
	m := NewStateMachine(io)
	var captured PairingData
	m.OnComplete = func(data PairingData) { captured = data }

	require.NoError(t, m.StartPairing("/dev", "dev (11:22:33:44:55:66)"))
	_, err := m.HandlePasskeyRequest()
	require.NoError(t, err)
	require.NoError(t, m.HandleBondingStart())
	_, err = m.HandlePairingSuccess()
	require.NoError(t, err)

	assert.Equal(t, "/dev", captured.DevicePath)
	assert.True(t, captured.Success)
}

func TestStateMachineHandleDisplayPinCodeFromIdle(t *testing.T) {
	m := NewStateMachine(NewAutoAcceptHandler())

	err := m.HandleDisplayPinCode("1234")

	require.NoError(t, err)
	assert.Equal(t, StateDisplayingPasskey, m.State())
}

func TestStateMachineResetReturnsToIdle(t *testing.T) {
	m := NewStateMachine(NewAutoAcceptHandler())
	require.NoError(t, m.StartPairing("/dev", "dev"))

	m.Reset()

	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, m.DeviceInfo())
}

func TestStateMachineFailedCallbackFires(t *testing.T) {
	io := NewProgrammaticHandler()
	boom := errors.New("boom")
	io.OnRequestPinCode = func(string) (string, error) { return "", boom }
	m := NewStateMachine(io)
	var failErr error
	m.OnFailed = func(err error) { failErr = err }

	require.NoError(t, m.StartPairing("/dev", "dev"))
	_, err := m.HandlePinCodeRequest()

	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, failErr, boom)
	assert.Equal(t, StateFailed, m.State())
}
