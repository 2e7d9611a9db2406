package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBondStore struct {
	saved map[string]map[string]interface{}
}

func newFakeBondStore() *fakeBondStore {
	return &fakeBondStore{saved: make(map[string]map[string]interface{})}
}

func (f *fakeBondStore) SaveDeviceBond(devicePath string, bond map[string]interface{}) error {
	f.saved[devicePath] = bond
	return nil
}

func TestAgentNewDefaultsPath(t *testing.T) {
	a := New("", NewAutoAcceptHandler(), nil, nil)
	assert.Equal(t, DefaultAgentPath, a.path)
}

func TestAgentSavesBondAndFiresCallbackOnSuccess(t *testing.T) {
	store := newFakeBondStore()
	a := New("/org/bleep/agent", NewAutoAcceptHandler(), store, nil)

	var succeeded string
	a.OnPairingSucceeded = func(deviceInfo string) { succeeded = deviceInfo }

	methods := (*agent1Methods)(a)
	_, derr := methods.RequestPasskey("/org/bluez/hci0/dev_AA")
	require.Nil(t, derr)
	require.NoError(t, a.machine.HandleBondingStart())
	_, err := a.machine.HandlePairingSuccess()
	require.NoError(t, err)

	bond, ok := store.saved["/org/bluez/hci0/dev_AA"]
	require.True(t, ok)
	assert.Equal(t, true, bond["paired"])
	assert.Equal(t, "/org/bluez/hci0/dev_AA", succeeded)
}

func TestAgentDescribeFallsBackToPathWithoutHost(t *testing.T) {
	a := New("", NewAutoAcceptHandler(), nil, nil)

	info := a.describe("/org/bluez/hci0/dev_AA")

	assert.Equal(t, "/org/bluez/hci0/dev_AA", info)
}

func TestAgentCancelTransitionsToCancelled(t *testing.T) {
	a := New("", NewAutoAcceptHandler(), nil, nil)
	methods := (*agent1Methods)(a)
	require.NoError(t, a.machine.StartPairing("/dev", "/dev"))

	derr := methods.Cancel()

	assert.Nil(t, derr)
	assert.Equal(t, StateCancelled, a.machine.State())
}

func TestAgentReleaseResetsMachineToIdle(t *testing.T) {
	a := New("", NewAutoAcceptHandler(), nil, nil)
	methods := (*agent1Methods)(a)
	require.NoError(t, a.machine.StartPairing("/dev", "/dev"))

	derr := methods.Release()

	assert.Nil(t, derr)
	assert.Equal(t, StateIdle, a.machine.State())
}
