package bleepcfg

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearBleepEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BLEEP_AUTO_FIX_STALL", "BLEEP_NO_AUTO_PAIR", "BLEEP_BRUTEFORCE_MAX_HANDLE",
		"BLEEP_ADAPTER_ID", "BLEEP_SAFE_READ_RETRIES", "BLEEP_SAFE_READ_DELAY_MS",
	} {
		os.Unsetenv(key)
	}
}

func TestReloadAppliesDefaultsWithoutEnv(t *testing.T) {
	clearBleepEnv(t)

	cfg := Reload()

	assert.False(t, cfg.AutoFixStall)
	assert.False(t, cfg.NoAutoPair)
	assert.Equal(t, uint16(0x00FF), cfg.BruteforceMaxHandle)
	assert.Equal(t, "hci0", cfg.AdapterID)
	assert.Equal(t, 3, cfg.SafeReadRetries)
	assert.Equal(t, 300*time.Millisecond, cfg.SafeReadDelay)
}

func TestReloadReadsBleepPrefixedEnvVars(t *testing.T) {
	clearBleepEnv(t)
	os.Setenv("BLEEP_AUTO_FIX_STALL", "true")
	os.Setenv("BLEEP_ADAPTER_ID", "hci1")
	os.Setenv("BLEEP_SAFE_READ_RETRIES", "5")
	defer clearBleepEnv(t)

	cfg := Reload()

	assert.True(t, cfg.AutoFixStall)
	assert.Equal(t, "hci1", cfg.AdapterID)
	assert.Equal(t, 5, cfg.SafeReadRetries)
}

func TestLoadCachesAcrossCalls(t *testing.T) {
	clearBleepEnv(t)
	loadedOnce = false
	os.Setenv("BLEEP_ADAPTER_ID", "hci2")

	first := Load()
	os.Setenv("BLEEP_ADAPTER_ID", "hci3")
	second := Load()

	assert.Same(t, first, second)
	assert.Equal(t, "hci2", second.AdapterID)

	clearBleepEnv(t)
	loadedOnce = false
}
