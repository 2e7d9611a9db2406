// Package recovery implements staged connection recovery escalation,
// grounded on bleep/dbuslayer/recovery.py's ConnectionResetManager. Each
// device/stage pair tracks its own attempt count and cooldown window;
// exhausting a stage's attempts within its cooldown escalates to the next,
// more invasive stage.
package recovery

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
)

// Stage enumerates the escalation ladder, from least to most invasive.
type Stage int

const (
	StageDisconnectReconnect Stage = iota + 1
	StageInterfaceReset
	StageAdapterReset
	StageControllerReset
	StageDaemonRestart
)

func (s Stage) String() string {
	switch s {
	case StageDisconnectReconnect:
		return "disconnect_reconnect"
	case StageInterfaceReset:
		return "interface_reset"
	case StageAdapterReset:
		return "adapter_reset"
	case StageControllerReset:
		return "controller_reset"
	case StageDaemonRestart:
		return "bluetoothd_restart"
	default:
		return "unknown"
	}
}

var maxAttempts = map[Stage]int{
	StageDisconnectReconnect: 3,
	StageInterfaceReset:      2,
	StageAdapterReset:        1,
	StageControllerReset:     1,
	StageDaemonRestart:       1,
}

var stageCooldown = map[Stage]time.Duration{
	StageDisconnectReconnect: time.Minute,
	StageInterfaceReset:      5 * time.Minute,
	StageAdapterReset:        15 * time.Minute,
	StageControllerReset:     30 * time.Minute,
	StageDaemonRestart:       60 * time.Minute,
}

type attemptRecord struct {
	count      int
	windowFrom time.Time
}

// Action performs the side effect associated with a recovery stage (e.g.
// calling Device1.Disconnect()/Connect(), power-cycling the adapter, or
// shelling out to hciconfig/systemctl). Implementations should be cheap to
// retry and return a descriptive error on failure.
type Action func(ctx context.Context, device string) error

// Manager tracks per-(device, stage) attempt/cooldown state and dispatches
// to the registered Action for each stage.
type Manager struct {
	mu       sync.Mutex
	attempts map[string]map[Stage]*attemptRecord

	actions map[Stage]Action
}

// NewManager builds a Manager with the default OS-level actions wired for
// stages 3-5 (os/exec, mirroring the original's subprocess.run calls). No
// action is registered for stages 1-2: Attempt returns an error for them
// until callers supply their own Device1/ObjectManager-backed
// implementations via SetAction.
func NewManager() *Manager {
	m := &Manager{
		attempts: map[string]map[Stage]*attemptRecord{},
		actions:  map[Stage]Action{},
	}
	powerOff := execAction("bluetoothctl", "power", "off")
	powerOn := execAction("bluetoothctl", "power", "on")
	m.actions[StageAdapterReset] = func(ctx context.Context, device string) error {
		if err := powerOff(ctx, device); err != nil {
			return err
		}
		return powerOn(ctx, device)
	}
	m.actions[StageControllerReset] = execAction("hciconfig", "hci0", "reset")
	m.actions[StageDaemonRestart] = execAction("systemctl", "restart", "bluetooth")
	return m
}

func execAction(name string, args ...string) Action {
	return func(ctx context.Context, device string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("recovery: %s %v: %w (%s)", name, args, err, out)
		}
		return nil
	}
}

// SetAction overrides the Action run for stage.
func (m *Manager) SetAction(stage Stage, action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[stage] = action
}

// Attempt runs the appropriate stage's Action for device, escalating from
// StageDisconnectReconnect. It returns the stage that was actually
// attempted and the error from its Action (nil on success).
func (m *Manager) Attempt(ctx context.Context, device string) (Stage, error) {
	stage := m.nextStage(device)
	m.recordAttempt(device, stage)

	action, ok := m.actions[stage]
	if !ok {
		return stage, fmt.Errorf("recovery: no action registered for stage %s", stage)
	}
	bleeplog.General(fmt.Sprintf("recovery: attempting %s for %s", stage, device))
	err := action(ctx, device)
	if err != nil {
		bleeplog.Debug(fmt.Sprintf("recovery: %s failed for %s: %v", stage, device, err))
	}
	return stage, err
}

func (m *Manager) nextStage(device string) Stage {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for stage := StageDisconnectReconnect; stage <= StageDaemonRestart; stage++ {
		rec := m.recordFor(device, stage)
		if now.Sub(rec.windowFrom) > stageCooldown[stage] {
			rec.count = 0
			rec.windowFrom = now
		}
		if rec.count < maxAttempts[stage] {
			return stage
		}
	}
	return StageDaemonRestart
}

func (m *Manager) recordFor(device string, stage Stage) *attemptRecord {
	if _, ok := m.attempts[device]; !ok {
		m.attempts[device] = map[Stage]*attemptRecord{}
	}
	rec, ok := m.attempts[device][stage]
	if !ok {
		rec = &attemptRecord{windowFrom: time.Now()}
		m.attempts[device][stage] = rec
	}
	return rec
}

func (m *Manager) recordAttempt(device string, stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.recordFor(device, stage)
	rec.count++
	if stage == StageDaemonRestart {
		// A daemon restart invalidates every prior stage's attempt
		// history for every device, mirroring recovery.py's full reset.
		m.attempts = map[string]map[Stage]*attemptRecord{}
	}
}

// Reset clears all recorded attempt state for device.
func (m *Manager) Reset(device string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, device)
}
