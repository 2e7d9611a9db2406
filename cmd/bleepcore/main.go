// Command bleepcore is a minimal wiring example: it loads configuration,
// stands up the pairing agent, and runs one enumeration pass against a
// single device address. It is not a CLI shell — there is no subcommand
// or mode dispatch, and the enumeration mode and target address are read
// from environment variables rather than parsed from argv (argv parsing
// is out of scope; see DESIGN.md).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Mauddib28/bleep-tool-sub001/agent"
	"github.com/Mauddib28/bleep-tool-sub001/bleepcfg"
	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
	"github.com/Mauddib28/bleep-tool-sub001/facade"
	"github.com/Mauddib28/bleep-tool-sub001/scan"
)

func main() {
	cfg := bleepcfg.Load()

	address := os.Getenv("BLEEPCORE_TARGET")
	if address == "" {
		bleeplog.General("BLEEPCORE_TARGET not set, nothing to enumerate")
		os.Exit(1)
	}

	mode := scan.Mode(os.Getenv("BLEEPCORE_MODE"))
	if mode == "" {
		mode = scan.ModePassive
	}

	host := facade.NewHost()

	var io agent.IOHandler
	if cfg.NoAutoPair {
		io = agent.NewCLIHandler()
	} else {
		io = agent.NewAutoAcceptHandler()
	}
	pairingAgent := agent.New(agent.DefaultAgentPath, io, nil, nil)
	pairingAgent.SetHost(host, true)
	if err := pairingAgent.Register("KeyboardDisplay", true); err != nil {
		bleeplog.Agent("could not register pairing agent: " + err.Error())
	} else {
		defer pairingAgent.Unregister()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := scan.Dispatch(ctx, mode, host, address, cfg, scan.Options{})
	if err != nil {
		bleeplog.General("enumeration failed: " + err.Error())
		os.Exit(1)
	}

	bleeplog.Enum(fmt.Sprintf("enumeration complete: device=%s services=%d attributes=%d beacon=%q",
		result.DevicePath, len(result.Services), len(result.Attributes.All()), result.BeaconHint))
}
