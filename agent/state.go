// Package agent implements a pairing agent for BlueZ's org.bluez.Agent1
// interface: a state machine over the pairing lifecycle, pluggable I/O
// handling, and persisted bond storage. Grounded on
// bleep/dbuslayer/pairing_state.py, agent_io.py, agent.py, and
// bond_storage.py.
package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
)

// PairingState is one state in the pairing lifecycle.
type PairingState int

const (
	StateIdle PairingState = iota
	StateInitiated
	StatePinRequested
	StatePasskeyRequested
	StateDisplayingPasskey
	StateConfirmationRequested
	StateAuthorizationRequested
	StateServiceAuthorization
	StateBonding
	StateComplete
	StateFailed
	StateCancelled
)

func (s PairingState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInitiated:
		return "Initiated"
	case StatePinRequested:
		return "PinRequested"
	case StatePasskeyRequested:
		return "PasskeyRequested"
	case StateDisplayingPasskey:
		return "DisplayingPasskey"
	case StateConfirmationRequested:
		return "ConfirmationRequested"
	case StateAuthorizationRequested:
		return "AuthorizationRequested"
	case StateServiceAuthorization:
		return "ServiceAuthorization"
	case StateBonding:
		return "Bonding"
	case StateComplete:
		return "Complete"
	case StateFailed:
		return "Failed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// InvalidTransitionError reports an attempted transition the state machine
// does not allow from its current state.
type InvalidTransitionError struct {
	From PairingState
	To   PairingState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("agent: invalid pairing transition: %s -> %s", e.From, e.To)
}

// validTransitions mirrors pairing_state.py's _VALID_TRANSITIONS exactly.
var validTransitions = map[PairingState]map[PairingState]bool{
	StateIdle: {StateInitiated: true},
	StateInitiated: {
		StatePinRequested: true, StatePasskeyRequested: true, StateDisplayingPasskey: true,
		StateConfirmationRequested: true, StateAuthorizationRequested: true, StateBonding: true,
		StateFailed: true, StateCancelled: true,
	},
	StatePinRequested:      {StateBonding: true, StateFailed: true, StateCancelled: true},
	StatePasskeyRequested:  {StateBonding: true, StateFailed: true, StateCancelled: true},
	StateDisplayingPasskey: {StateBonding: true, StateFailed: true, StateCancelled: true},
	StateConfirmationRequested: {StateBonding: true, StateFailed: true, StateCancelled: true},
	StateAuthorizationRequested: {
		StateServiceAuthorization: true, StateBonding: true, StateFailed: true, StateCancelled: true,
	},
	StateServiceAuthorization: {StateBonding: true, StateFailed: true, StateCancelled: true},
	StateBonding:              {StateComplete: true, StateFailed: true, StateCancelled: true},
	StateComplete:             {StateIdle: true},
	StateFailed:               {StateIdle: true},
	StateCancelled:            {StateIdle: true},
}

// PairingData accumulates what the state machine learns about one pairing
// attempt, handed to the on-complete/on-failed callbacks.
type PairingData struct {
	DevicePath     string
	DeviceInfo     string
	Timestamp      time.Time
	PinCode        string
	Passkey        uint32
	ServiceUUID    string
	Success        bool
	Error          string
	CompletionTime time.Time
}

// StateMachine drives one device's pairing lifecycle, mirroring
// pairing_state.py's PairingStateMachine.
type StateMachine struct {
	mu sync.Mutex

	state      PairingState
	ioHandler  IOHandler
	devicePath string
	deviceInfo string
	err        error
	data       PairingData

	OnStateChange func(old, new PairingState)
	OnComplete    func(data PairingData)
	OnFailed      func(err error)
	OnCancelled   func()
}

// NewStateMachine creates a state machine in StateIdle driven by io.
func NewStateMachine(io IOHandler) *StateMachine {
	return &StateMachine{state: StateIdle, ioHandler: io}
}

// State returns the current pairing state.
func (m *StateMachine) State() PairingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// DeviceInfo returns the human-readable device description for the
// in-progress pairing attempt, or "" if idle.
func (m *StateMachine) DeviceInfo() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deviceInfo
}

// transition moves to newState or returns InvalidTransitionError. Callers
// must hold m.mu.
func (m *StateMachine) transition(newState PairingState) error {
	if !validTransitions[m.state][newState] {
		return &InvalidTransitionError{From: m.state, To: newState}
	}
	old := m.state
	m.state = newState
	bleeplog.Agent(fmt.Sprintf("pairing state transition: %s -> %s", old, newState))

	if m.OnStateChange != nil {
		m.OnStateChange(old, newState)
	}
	switch newState {
	case StateComplete:
		if m.OnComplete != nil {
			m.OnComplete(m.data)
		}
	case StateFailed:
		if m.OnFailed != nil {
			m.OnFailed(m.err)
		}
	case StateCancelled:
		if m.OnCancelled != nil {
			m.OnCancelled()
		}
	}
	return nil
}

// StartPairing begins a new pairing attempt for devicePath, resetting any
// prior attempt first.
func (m *StateMachine) StartPairing(devicePath, deviceInfo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		m.resetLocked()
	}
	m.devicePath = devicePath
	m.deviceInfo = deviceInfo
	m.data = PairingData{DevicePath: devicePath, DeviceInfo: deviceInfo, Timestamp: time.Now()}
	return m.transition(StateInitiated)
}

func (m *StateMachine) failLocked(err error) {
	m.err = err
	m.data.Success = false
	m.data.Error = err.Error()
	_ = m.transition(StateFailed)
}

// HandlePinCodeRequest transitions to PinRequested and asks the I/O handler
// for a PIN code.
func (m *StateMachine) HandlePinCodeRequest() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateInitiated && m.state != StatePinRequested {
		return "", &InvalidTransitionError{From: m.state, To: StatePinRequested}
	}
	if err := m.transition(StatePinRequested); err != nil {
		return "", err
	}
	pin, err := m.ioHandler.RequestPinCode(m.deviceInfo)
	if err != nil {
		m.failLocked(err)
		return "", err
	}
	m.data.PinCode = pin
	return pin, nil
}

// HandlePasskeyRequest transitions to PasskeyRequested and asks the I/O
// handler for a passkey.
func (m *StateMachine) HandlePasskeyRequest() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateInitiated && m.state != StatePasskeyRequested {
		return 0, &InvalidTransitionError{From: m.state, To: StatePasskeyRequested}
	}
	if err := m.transition(StatePasskeyRequested); err != nil {
		return 0, err
	}
	passkey, err := m.ioHandler.RequestPasskey(m.deviceInfo)
	if err != nil {
		m.failLocked(err)
		return 0, err
	}
	m.data.Passkey = passkey
	return passkey, nil
}

// HandleDisplayPasskey transitions to DisplayingPasskey and shows passkey
// through the I/O handler.
func (m *StateMachine) HandleDisplayPasskey(passkey uint32, entered uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data.Passkey = passkey
	if m.state == StateIdle {
		if err := m.transition(StateInitiated); err != nil {
			return err
		}
	}
	if err := m.transition(StateDisplayingPasskey); err != nil {
		return err
	}
	if err := m.ioHandler.DisplayPasskey(m.deviceInfo, passkey, entered); err != nil {
		m.failLocked(err)
		return err
	}
	return nil
}

// HandleDisplayPinCode transitions to DisplayingPasskey and shows pinCode
// through the I/O handler. Mirrors pairing_state.py's
// handle_display_pin_code, which reuses the passkey-display state for PIN
// display too.
func (m *StateMachine) HandleDisplayPinCode(pinCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data.PinCode = pinCode
	if m.state == StateIdle {
		if err := m.transition(StateInitiated); err != nil {
			return err
		}
	}
	if err := m.transition(StateDisplayingPasskey); err != nil {
		return err
	}
	if err := m.ioHandler.DisplayPinCode(m.deviceInfo, pinCode); err != nil {
		m.failLocked(err)
		return err
	}
	return nil
}

// HandleConfirmationRequest transitions to ConfirmationRequested and asks
// the I/O handler to confirm passkey, failing if it is rejected.
func (m *StateMachine) HandleConfirmationRequest(passkey uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data.Passkey = passkey
	if m.state != StateInitiated && m.state != StateConfirmationRequested {
		return &InvalidTransitionError{From: m.state, To: StateConfirmationRequested}
	}
	if err := m.transition(StateConfirmationRequested); err != nil {
		return err
	}
	ok, err := m.ioHandler.RequestConfirmation(m.deviceInfo, passkey)
	if err != nil {
		m.failLocked(err)
		return err
	}
	if !ok {
		rejected := fmt.Errorf("confirmation rejected by user")
		m.failLocked(rejected)
		return rejected
	}
	return nil
}

// HandleAuthorizationRequest transitions to AuthorizationRequested and asks
// the I/O handler to authorize pairing, failing if it is rejected.
func (m *StateMachine) HandleAuthorizationRequest() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateInitiated && m.state != StateAuthorizationRequested {
		return &InvalidTransitionError{From: m.state, To: StateAuthorizationRequested}
	}
	if err := m.transition(StateAuthorizationRequested); err != nil {
		return err
	}
	ok, err := m.ioHandler.RequestAuthorization(m.deviceInfo)
	if err != nil {
		m.failLocked(err)
		return err
	}
	if !ok {
		rejected := fmt.Errorf("authorization rejected by user")
		m.failLocked(rejected)
		return rejected
	}
	return nil
}

// HandleServiceAuthorization transitions to ServiceAuthorization and asks
// the I/O handler to authorize the service, failing if it is rejected.
func (m *StateMachine) HandleServiceAuthorization(uuid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data.ServiceUUID = uuid
	switch m.state {
	case StateInitiated, StateAuthorizationRequested, StateServiceAuthorization:
	default:
		return &InvalidTransitionError{From: m.state, To: StateServiceAuthorization}
	}
	if err := m.transition(StateServiceAuthorization); err != nil {
		return err
	}
	ok, err := m.ioHandler.AuthorizeService(m.deviceInfo, uuid)
	if err != nil {
		m.failLocked(err)
		return err
	}
	if !ok {
		rejected := fmt.Errorf("service %s authorization rejected by user", uuid)
		m.failLocked(rejected)
		return rejected
	}
	return nil
}

// HandleBondingStart transitions to Bonding from any authentication state.
func (m *StateMachine) HandleBondingStart() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateInitiated, StatePinRequested, StatePasskeyRequested, StateDisplayingPasskey,
		StateConfirmationRequested, StateAuthorizationRequested, StateServiceAuthorization:
	default:
		return &InvalidTransitionError{From: m.state, To: StateBonding}
	}
	return m.transition(StateBonding)
}

// HandlePairingSuccess transitions Bonding -> Complete and returns the
// accumulated pairing data.
func (m *StateMachine) HandlePairingSuccess() (PairingData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateBonding {
		return PairingData{}, &InvalidTransitionError{From: m.state, To: StateComplete}
	}
	m.data.Success = true
	m.data.CompletionTime = time.Now()
	if err := m.transition(StateComplete); err != nil {
		return PairingData{}, err
	}
	m.ioHandler.NotifySuccess(m.deviceInfo, "pairing completed successfully")
	return m.data, nil
}

// HandlePairingFailed transitions to Failed, recording err.
func (m *StateMachine) HandlePairingFailed(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLocked(err)
	m.ioHandler.NotifyError(m.deviceInfo, "pairing failed: "+err.Error())
}

// HandleCancel transitions to Cancelled.
func (m *StateMachine) HandleCancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transition(StateCancelled); err != nil {
		return err
	}
	m.ioHandler.Cancel()
	return nil
}

// Reset returns the machine to Idle, discarding any in-progress attempt.
func (m *StateMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *StateMachine) resetLocked() {
	old := m.state
	m.state = StateIdle
	m.devicePath = ""
	m.deviceInfo = ""
	m.err = nil
	m.data = PairingData{}

	if m.OnStateChange != nil {
		m.OnStateChange(old, m.state)
	}
	bleeplog.Agent("pairing state machine reset")
}
