package agent

import (
	"fmt"

	"github.com/godbus/dbus"

	agentpkg "github.com/Mauddib28/bleep-tool-sub001/bluez/profile/agent"
	bzdevice "github.com/Mauddib28/bleep-tool-sub001/bluez/profile/device"
	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
	"github.com/Mauddib28/bleep-tool-sub001/bluez"
	"github.com/Mauddib28/bleep-tool-sub001/facade"
)

// DefaultAgentPath is the D-Bus object path the agent exports itself at,
// matching the original's AGENT_NAMESPACE constant.
const DefaultAgentPath = dbus.ObjectPath("/org/bleep/agent")

const agent1Interface = "org.bluez.Agent1"

// Agent is a pairing agent exported on the system bus as org.bluez.Agent1,
// driving a StateMachine through an IOHandler and persisting completed
// pairings to a BondStore. Grounded on agent.py's BlueZAgent/PairingAgent.
type Agent struct {
	path       dbus.ObjectPath
	conn       *dbus.Conn
	manager    *agentpkg.AgentManager1
	io         IOHandler
	machine    *StateMachine
	bondStore  BondStore
	registered bool

	deviceInfo func(path dbus.ObjectPath) string

	host      facade.Host
	autoTrust bool
	trust     TrustManager

	OnPairingSucceeded func(deviceInfo string)
	OnPairingFailed    func(deviceInfo, reason string)
	OnDeviceTrusted    func(deviceInfo string)
}

// SetHost gives the agent a Host to resolve device info and, when
// autoTrust is true, mark successfully paired devices as Trusted, mirroring
// PairingAgent.pair_device's post-pairing set_trusted call.
func (a *Agent) SetHost(host facade.Host, autoTrust bool) {
	a.host = host
	a.autoTrust = autoTrust
	if a.deviceInfo == nil {
		a.deviceInfo = a.lookupDeviceInfo
	}
}

func (a *Agent) lookupDeviceInfo(path dbus.ObjectPath) string {
	if a.host == nil {
		return string(path)
	}
	dev1, err := a.host.Device(path)
	if err != nil {
		return string(path)
	}
	props, err := dev1.GetProperties()
	if err != nil {
		return string(path)
	}
	if props.Name != "" {
		return fmt.Sprintf("%s (%s)", props.Name, props.Address)
	}
	return props.Address
}

// BondStore is the subset of agent/bondstore.Store the Agent needs,
// narrowed so tests can supply a fake.
type BondStore interface {
	SaveDeviceBond(devicePath string, bond map[string]interface{}) error
}

// New creates an Agent at path, using io for every user-facing decision and
// store to persist completed bonds. deviceInfo resolves a device path to a
// human-readable "Name (Address)" string for logging/prompts; pass nil to
// use the bare path.
func New(path dbus.ObjectPath, io IOHandler, store BondStore, deviceInfo func(dbus.ObjectPath) string) *Agent {
	if path == "" {
		path = DefaultAgentPath
	}
	a := &Agent{path: path, io: io, bondStore: store, deviceInfo: deviceInfo, machine: NewStateMachine(io)}
	a.machine.OnComplete = func(data PairingData) {
		if store != nil {
			_ = store.SaveDeviceBond(data.DevicePath, map[string]interface{}{
				"address":    data.DevicePath,
				"paired":     true,
				"pin_code":   data.PinCode,
				"passkey":    data.Passkey,
				"timestamps": map[string]interface{}{"last_paired": data.CompletionTime},
			})
		}
		a.trustIfConfigured(data)
		if a.OnPairingSucceeded != nil {
			a.OnPairingSucceeded(data.DeviceInfo)
		}
	}
	a.machine.OnFailed = func(err error) {
		if a.OnPairingFailed != nil {
			a.OnPairingFailed(a.machine.DeviceInfo(), err.Error())
		}
	}
	return a
}

// trustIfConfigured marks data's device Trusted when auto-trust is enabled.
func (a *Agent) trustIfConfigured(data PairingData) {
	if !a.autoTrust || a.host == nil {
		return
	}
	dev1, err := a.host.Device(dbus.ObjectPath(data.DevicePath))
	if err != nil {
		bleeplog.Agent(fmt.Sprintf("could not resolve %s to set trusted: %v", data.DevicePath, err))
		return
	}
	if err := a.trust.SetTrusted(dev1, true); err != nil {
		bleeplog.Agent(fmt.Sprintf("could not set trusted on %s: %v", data.DevicePath, err))
		return
	}
	if a.OnDeviceTrusted != nil {
		a.OnDeviceTrusted(data.DeviceInfo)
	}
}

func (a *Agent) describe(device dbus.ObjectPath) string {
	if a.deviceInfo != nil {
		return a.deviceInfo(device)
	}
	return string(device)
}

// Register exports the agent on the system bus and tells BlueZ about it
// with the given I/O capability string (e.g. "KeyboardDisplay",
// "NoInputNoOutput"), optionally requesting it as the default agent.
func (a *Agent) Register(capability string, asDefault bool) error {
	conn, err := bluez.SystemConn()
	if err != nil {
		return fmt.Errorf("agent: system bus connect: %w", err)
	}
	if err := conn.Export((*agent1Methods)(a), a.path, agent1Interface); err != nil {
		return fmt.Errorf("agent: export: %w", err)
	}
	a.conn = conn

	manager, err := agentpkg.NewAgentManager1()
	if err != nil {
		return fmt.Errorf("agent: agent manager: %w", err)
	}
	a.manager = manager

	if err := manager.RegisterAgent(a.path, capability); err != nil {
		return fmt.Errorf("agent: register: %w", err)
	}
	if asDefault {
		if err := manager.RequestDefaultAgent(a.path); err != nil {
			return fmt.Errorf("agent: request default: %w", err)
		}
	}
	a.registered = true
	bleeplog.Agent(fmt.Sprintf("agent registered at %s with capability %s", a.path, capability))
	return nil
}

// Unregister removes the agent from BlueZ and stops exporting it.
func (a *Agent) Unregister() error {
	if !a.registered {
		return nil
	}
	if a.manager != nil {
		if err := a.manager.UnregisterAgent(a.path); err != nil {
			return fmt.Errorf("agent: unregister: %w", err)
		}
	}
	if a.conn != nil {
		_ = a.conn.Export(nil, a.path, agent1Interface)
	}
	a.registered = false
	bleeplog.Agent("agent unregistered")
	return nil
}

// Machine exposes the agent's underlying pairing StateMachine.
func (a *Agent) Machine() *StateMachine { return a.machine }

// agent1Methods is Agent's org.bluez.Agent1 method table, kept as a
// distinct named type so Export only ever advertises these exact
// exported methods (and not Agent's other public API) to the bus.
type agent1Methods Agent

func (m *agent1Methods) asAgent() *Agent { return (*Agent)(m) }

func (m *agent1Methods) Release() *dbus.Error {
	bleeplog.Agent("agent released")
	m.asAgent().machine.Reset()
	return nil
}

func (m *agent1Methods) AuthorizeService(device dbus.ObjectPath, uuid string) *dbus.Error {
	a := m.asAgent()
	_ = a.machine.StartPairing(string(device), a.describe(device))
	if err := a.machine.HandleServiceAuthorization(uuid); err != nil {
		return dbus.NewError("org.bluez.Error.Rejected", []interface{}{err.Error()})
	}
	return nil
}

func (m *agent1Methods) RequestPinCode(device dbus.ObjectPath) (string, *dbus.Error) {
	a := m.asAgent()
	_ = a.machine.StartPairing(string(device), a.describe(device))
	pin, err := a.machine.HandlePinCodeRequest()
	if err != nil {
		return "", dbus.NewError("org.bluez.Error.Rejected", []interface{}{err.Error()})
	}
	return pin, nil
}

func (m *agent1Methods) RequestPasskey(device dbus.ObjectPath) (uint32, *dbus.Error) {
	a := m.asAgent()
	_ = a.machine.StartPairing(string(device), a.describe(device))
	passkey, err := a.machine.HandlePasskeyRequest()
	if err != nil {
		return 0, dbus.NewError("org.bluez.Error.Rejected", []interface{}{err.Error()})
	}
	return passkey, nil
}

func (m *agent1Methods) DisplayPasskey(device dbus.ObjectPath, passkey uint32, entered uint16) *dbus.Error {
	a := m.asAgent()
	_ = a.machine.StartPairing(string(device), a.describe(device))
	if err := a.machine.HandleDisplayPasskey(passkey, uint8(entered)); err != nil {
		return dbus.NewError("org.bluez.Error.Rejected", []interface{}{err.Error()})
	}
	return nil
}

func (m *agent1Methods) DisplayPinCode(device dbus.ObjectPath, pincode string) *dbus.Error {
	a := m.asAgent()
	_ = a.machine.StartPairing(string(device), a.describe(device))
	if err := a.machine.HandleDisplayPinCode(pincode); err != nil {
		return dbus.NewError("org.bluez.Error.Rejected", []interface{}{err.Error()})
	}
	return nil
}

func (m *agent1Methods) RequestConfirmation(device dbus.ObjectPath, passkey uint32) *dbus.Error {
	a := m.asAgent()
	_ = a.machine.StartPairing(string(device), a.describe(device))
	if err := a.machine.HandleConfirmationRequest(passkey); err != nil {
		return dbus.NewError("org.bluez.Error.Rejected", []interface{}{err.Error()})
	}
	return nil
}

func (m *agent1Methods) RequestAuthorization(device dbus.ObjectPath) *dbus.Error {
	a := m.asAgent()
	_ = a.machine.StartPairing(string(device), a.describe(device))
	if err := a.machine.HandleAuthorizationRequest(); err != nil {
		return dbus.NewError("org.bluez.Error.Rejected", []interface{}{err.Error()})
	}
	return nil
}

func (m *agent1Methods) Cancel() *dbus.Error {
	_ = m.asAgent().machine.HandleCancel()
	return nil
}

// TrustManager sets/queries a device's Trusted property, grounded on
// agent.py's TrustManager.
type TrustManager struct{}

// SetTrusted sets dev1's Trusted property.
func (TrustManager) SetTrusted(dev1 *bzdevice.Device1, trusted bool) error {
	if err := dev1.SetProperty("Trusted", trusted); err != nil {
		return fmt.Errorf("agent: set trusted: %w", err)
	}
	return nil
}

// IsTrusted reports dev1's current Trusted property.
func (TrustManager) IsTrusted(dev1 *bzdevice.Device1) (bool, error) {
	props, err := dev1.GetProperties()
	if err != nil {
		return false, err
	}
	return props.Trusted, nil
}
