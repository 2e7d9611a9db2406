// Package bleepcfg loads process configuration from environment variables
// (BLEEP_ prefix) via viper, grounded on the BLEEP_AUTO_FIX_STALL /
// BLEEP_NO_AUTO_PAIR env-var switches the Python original reads directly
// from os.environ.
package bleepcfg

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the small set of knobs the enumeration engine consults at
// runtime. It is not a general-purpose application config file format —
// persistence beyond environment variables is out of scope.
type Config struct {
	// AutoFixStall is loaded from BLEEP_AUTO_FIX_STALL (default false).
	// No package in this module reads it: no controller-stall disconnect
	// is issued and no stall advisory is logged, whatever its value.
	AutoFixStall bool
	// NoAutoPair disables automatic pairing-agent acceptance of
	// confirmation/authorization requests.
	NoAutoPair bool
	// BruteforceMaxHandle caps the handle range a bruteforce scan sweeps
	// (default 0x00FF); scan.Bruteforce also uses 0x00FF when it is 0 or
	// the full 0xFFFF space.
	BruteforceMaxHandle uint16
	// AdapterID is the short adapter name (e.g. "hci0") operations bind
	// to when the caller doesn't specify one explicitly.
	AdapterID string
	// SafeReadRetries/SafeReadDelay tune the characteristic/descriptor
	// read retry loop.
	SafeReadRetries int
	SafeReadDelay   time.Duration
}

var (
	loaded     *Config
	loadedOnce bool
)

func defaults(v *viper.Viper) {
	v.SetDefault("auto_fix_stall", false)
	v.SetDefault("no_auto_pair", false)
	v.SetDefault("bruteforce_max_handle", 0x00FF)
	v.SetDefault("adapter_id", "hci0")
	v.SetDefault("safe_read_retries", 3)
	v.SetDefault("safe_read_delay_ms", 300)
}

// Load reads configuration from BLEEP_*-prefixed environment variables,
// caching the result for subsequent calls. Use Reload to force a re-read
// (primarily useful in tests).
func Load() *Config {
	if loadedOnce {
		return loaded
	}
	loaded = Reload()
	loadedOnce = true
	return loaded
}

// Reload re-reads configuration from the environment, bypassing the cache
// Load maintains.
func Reload() *Config {
	v := viper.New()
	v.SetEnvPrefix("BLEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	return &Config{
		AutoFixStall:        v.GetBool("auto_fix_stall"),
		NoAutoPair:          v.GetBool("no_auto_pair"),
		BruteforceMaxHandle: uint16(v.GetUint32("bruteforce_max_handle")),
		AdapterID:           v.GetString("adapter_id"),
		SafeReadRetries:     v.GetInt("safe_read_retries"),
		SafeReadDelay:       time.Duration(v.GetInt("safe_read_delay_ms")) * time.Millisecond,
	}
}
