package agent

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
)

// IOHandler handles the user-facing side of a pairing exchange: PIN/passkey
// prompts, confirmations, and authorization decisions. Grounded on
// agent_io.py's AgentIOHandler abstract base.
type IOHandler interface {
	RequestPinCode(deviceInfo string) (string, error)
	DisplayPinCode(deviceInfo, pinCode string) error
	RequestPasskey(deviceInfo string) (uint32, error)
	DisplayPasskey(deviceInfo string, passkey uint32, entered uint8) error
	RequestConfirmation(deviceInfo string, passkey uint32) (bool, error)
	RequestAuthorization(deviceInfo string) (bool, error)
	AuthorizeService(deviceInfo, uuid string) (bool, error)
	Cancel()
	NotifyError(deviceInfo, message string)
	NotifySuccess(deviceInfo, message string)
}

// CLIHandler prompts an interactive terminal for every decision, mirroring
// agent_io.py's CliIOHandler.
type CLIHandler struct {
	in  *bufio.Reader
	out *os.File
}

// NewCLIHandler creates a CLIHandler reading from stdin and writing to stdout.
func NewCLIHandler() *CLIHandler {
	return &CLIHandler{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (h *CLIHandler) prompt(format string, args ...interface{}) string {
	fmt.Fprintf(h.out, format, args...)
	line, _ := h.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (h *CLIHandler) RequestPinCode(deviceInfo string) (string, error) {
	bleeplog.Agent(fmt.Sprintf("PIN code request for %s", deviceInfo))
	return h.prompt("Enter PIN code: "), nil
}

func (h *CLIHandler) DisplayPinCode(deviceInfo, pinCode string) error {
	fmt.Fprintf(h.out, "PIN code for %s: %s\n", deviceInfo, pinCode)
	fmt.Fprintln(h.out, "Enter this PIN code on the device when prompted.")
	return nil
}

func (h *CLIHandler) RequestPasskey(deviceInfo string) (uint32, error) {
	bleeplog.Agent(fmt.Sprintf("passkey request for %s", deviceInfo))
	for {
		reply := h.prompt("Enter passkey (0-999999): ")
		n, err := strconv.ParseUint(reply, 10, 32)
		if err == nil {
			return uint32(n), nil
		}
		fmt.Fprintln(h.out, "Invalid passkey. Please enter a number.")
	}
}

func (h *CLIHandler) DisplayPasskey(deviceInfo string, passkey uint32, entered uint8) error {
	if entered > 0 {
		fmt.Fprintf(h.out, "Passkey for %s: %06d (%d digits entered)\n", deviceInfo, passkey, entered)
	} else {
		fmt.Fprintf(h.out, "Passkey for %s: %06d\n", deviceInfo, passkey)
	}
	fmt.Fprintln(h.out, "Enter this passkey on the device when prompted.")
	return nil
}

func (h *CLIHandler) RequestConfirmation(deviceInfo string, passkey uint32) (bool, error) {
	reply := strings.ToLower(h.prompt("Confirm passkey %06d for %s? (yes/no): ", passkey, deviceInfo))
	return reply == "yes" || reply == "y", nil
}

func (h *CLIHandler) RequestAuthorization(deviceInfo string) (bool, error) {
	reply := strings.ToLower(h.prompt("Authorize pairing with %s? (yes/no): ", deviceInfo))
	return reply == "yes" || reply == "y", nil
}

func (h *CLIHandler) AuthorizeService(deviceInfo, uuid string) (bool, error) {
	reply := strings.ToLower(h.prompt("Authorize service %s for %s? (yes/no): ", uuid, deviceInfo))
	return reply == "yes" || reply == "y", nil
}

func (h *CLIHandler) Cancel() { fmt.Fprintln(h.out, "Request cancelled") }

func (h *CLIHandler) NotifyError(deviceInfo, message string) {
	fmt.Fprintf(h.out, "error for %s: %s\n", deviceInfo, message)
}

func (h *CLIHandler) NotifySuccess(deviceInfo, message string) {
	fmt.Fprintf(h.out, "success for %s: %s\n", deviceInfo, message)
}

var _ IOHandler = (*CLIHandler)(nil)

// ProgrammaticHandler dispatches every decision to caller-supplied
// callbacks, falling back to configured defaults when a callback is unset.
// Grounded on agent_io.py's ProgrammaticIOHandler.
type ProgrammaticHandler struct {
	OnRequestPinCode     func(deviceInfo string) (string, error)
	OnDisplayPinCode     func(deviceInfo, pinCode string) error
	OnRequestPasskey     func(deviceInfo string) (uint32, error)
	OnDisplayPasskey     func(deviceInfo string, passkey uint32, entered uint8) error
	OnRequestConfirmation func(deviceInfo string, passkey uint32) (bool, error)
	OnRequestAuthorization func(deviceInfo string) (bool, error)
	OnAuthorizeService   func(deviceInfo, uuid string) (bool, error)
	OnCancel             func()
	OnNotifyError        func(deviceInfo, message string)
	OnNotifySuccess      func(deviceInfo, message string)

	DefaultPin     string
	DefaultPasskey uint32
	AutoAccept     bool
}

// NewProgrammaticHandler creates a ProgrammaticHandler with no callbacks
// set and the BlueZ-conventional default PIN "0000".
func NewProgrammaticHandler() *ProgrammaticHandler {
	return &ProgrammaticHandler{DefaultPin: "0000"}
}

func (h *ProgrammaticHandler) RequestPinCode(deviceInfo string) (string, error) {
	if h.OnRequestPinCode != nil {
		return h.OnRequestPinCode(deviceInfo)
	}
	bleeplog.Agent(fmt.Sprintf("using default PIN code for %s: %s", deviceInfo, h.DefaultPin))
	return h.DefaultPin, nil
}

func (h *ProgrammaticHandler) DisplayPinCode(deviceInfo, pinCode string) error {
	if h.OnDisplayPinCode != nil {
		return h.OnDisplayPinCode(deviceInfo, pinCode)
	}
	bleeplog.Agent(fmt.Sprintf("PIN code for %s: %s", deviceInfo, pinCode))
	return nil
}

func (h *ProgrammaticHandler) RequestPasskey(deviceInfo string) (uint32, error) {
	if h.OnRequestPasskey != nil {
		return h.OnRequestPasskey(deviceInfo)
	}
	bleeplog.Agent(fmt.Sprintf("using default passkey for %s: %d", deviceInfo, h.DefaultPasskey))
	return h.DefaultPasskey, nil
}

func (h *ProgrammaticHandler) DisplayPasskey(deviceInfo string, passkey uint32, entered uint8) error {
	if h.OnDisplayPasskey != nil {
		return h.OnDisplayPasskey(deviceInfo, passkey, entered)
	}
	bleeplog.Agent(fmt.Sprintf("passkey for %s: %06d (%d digits entered)", deviceInfo, passkey, entered))
	return nil
}

func (h *ProgrammaticHandler) RequestConfirmation(deviceInfo string, passkey uint32) (bool, error) {
	if h.OnRequestConfirmation != nil {
		return h.OnRequestConfirmation(deviceInfo, passkey)
	}
	bleeplog.Agent(fmt.Sprintf("%s passkey %06d for %s", acceptWord(h.AutoAccept), passkey, deviceInfo))
	return h.AutoAccept, nil
}

func (h *ProgrammaticHandler) RequestAuthorization(deviceInfo string) (bool, error) {
	if h.OnRequestAuthorization != nil {
		return h.OnRequestAuthorization(deviceInfo)
	}
	bleeplog.Agent(fmt.Sprintf("%s pairing for %s", acceptWord(h.AutoAccept), deviceInfo))
	return h.AutoAccept, nil
}

func (h *ProgrammaticHandler) AuthorizeService(deviceInfo, uuid string) (bool, error) {
	if h.OnAuthorizeService != nil {
		return h.OnAuthorizeService(deviceInfo, uuid)
	}
	bleeplog.Agent(fmt.Sprintf("%s service %s for %s", acceptWord(h.AutoAccept), uuid, deviceInfo))
	return h.AutoAccept, nil
}

func (h *ProgrammaticHandler) Cancel() {
	if h.OnCancel != nil {
		h.OnCancel()
		return
	}
	bleeplog.Agent("request cancelled")
}

func (h *ProgrammaticHandler) NotifyError(deviceInfo, message string) {
	if h.OnNotifyError != nil {
		h.OnNotifyError(deviceInfo, message)
		return
	}
	bleeplog.Agent(fmt.Sprintf("error for %s: %s", deviceInfo, message))
}

func (h *ProgrammaticHandler) NotifySuccess(deviceInfo, message string) {
	if h.OnNotifySuccess != nil {
		h.OnNotifySuccess(deviceInfo, message)
		return
	}
	bleeplog.Agent(fmt.Sprintf("success for %s: %s", deviceInfo, message))
}

func acceptWord(accept bool) string {
	if accept {
		return "auto-confirming"
	}
	return "auto-rejecting"
}

var _ IOHandler = (*ProgrammaticHandler)(nil)

// AutoAcceptHandler accepts every request unconditionally, for unattended
// CTF/fuzzing runs. Grounded on agent_io.py's AutoAcceptIOHandler.
type AutoAcceptHandler struct {
	DefaultPin     string
	DefaultPasskey uint32
}

// NewAutoAcceptHandler creates an AutoAcceptHandler with PIN "0000".
func NewAutoAcceptHandler() *AutoAcceptHandler {
	return &AutoAcceptHandler{DefaultPin: "0000"}
}

func (h *AutoAcceptHandler) RequestPinCode(deviceInfo string) (string, error) {
	bleeplog.Agent(fmt.Sprintf("auto-accepting PIN request for %s with %q", deviceInfo, h.DefaultPin))
	return h.DefaultPin, nil
}

func (h *AutoAcceptHandler) DisplayPinCode(deviceInfo, pinCode string) error {
	bleeplog.Agent(fmt.Sprintf("PIN code for %s: %s", deviceInfo, pinCode))
	return nil
}

func (h *AutoAcceptHandler) RequestPasskey(deviceInfo string) (uint32, error) {
	bleeplog.Agent(fmt.Sprintf("auto-accepting passkey request for %s with %d", deviceInfo, h.DefaultPasskey))
	return h.DefaultPasskey, nil
}

func (h *AutoAcceptHandler) DisplayPasskey(deviceInfo string, passkey uint32, entered uint8) error {
	bleeplog.Agent(fmt.Sprintf("passkey for %s: %06d (%d digits entered)", deviceInfo, passkey, entered))
	return nil
}

func (h *AutoAcceptHandler) RequestConfirmation(deviceInfo string, passkey uint32) (bool, error) {
	bleeplog.Agent(fmt.Sprintf("auto-confirming passkey %06d for %s", passkey, deviceInfo))
	return true, nil
}

func (h *AutoAcceptHandler) RequestAuthorization(deviceInfo string) (bool, error) {
	bleeplog.Agent(fmt.Sprintf("auto-authorizing pairing for %s", deviceInfo))
	return true, nil
}

func (h *AutoAcceptHandler) AuthorizeService(deviceInfo, uuid string) (bool, error) {
	bleeplog.Agent(fmt.Sprintf("auto-authorizing service %s for %s", uuid, deviceInfo))
	return true, nil
}

func (h *AutoAcceptHandler) Cancel() { bleeplog.Agent("request cancelled") }

func (h *AutoAcceptHandler) NotifyError(deviceInfo, message string) {
	bleeplog.Agent(fmt.Sprintf("error for %s: %s", deviceInfo, message))
}

func (h *AutoAcceptHandler) NotifySuccess(deviceInfo, message string) {
	bleeplog.Agent(fmt.Sprintf("success for %s: %s", deviceInfo, message))
}

var _ IOHandler = (*AutoAcceptHandler)(nil)
