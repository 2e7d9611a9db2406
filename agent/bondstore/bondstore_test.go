package bondstore

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	secure, err := NewSecureStorage(dir, "test-passphrase")
	require.NoError(t, err)
	return NewStore(secure)
}

func TestSecureStorageRoundTripsEncrypted(t *testing.T) {
	dir := t.TempDir()
	secure, err := NewSecureStorage(dir, "s3cret")
	require.NoError(t, err)

	require.NoError(t, secure.Write("device-a", map[string]interface{}{"address": "AA:BB:CC:DD:EE:FF"}))

	info, err := os.Stat(secure.pathFor("device-a"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())

	raw, err := os.ReadFile(secure.pathFor("device-a"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "AA:BB:CC:DD:EE:FF")

	var out map[string]interface{}
	require.NoError(t, secure.Read("device-a", &out))
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", out["address"])
}

func TestSecureStorageWrongPassphraseFailsToDecrypt(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewSecureStorage(dir, "correct-horse")
	require.NoError(t, err)
	require.NoError(t, writer.Write("device-a", map[string]interface{}{"address": "AA:BB"}))

	reader, err := NewSecureStorage(dir, "wrong-passphrase")
	require.NoError(t, err)

	var out map[string]interface{}
	err = reader.Read("device-a", &out)
	assert.Error(t, err)
}

func TestStoreSaveAndLoadDeviceBond(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveDeviceBond("/org/bluez/hci0/dev_AA", map[string]interface{}{
		"address": "AA:BB:CC:DD:EE:FF",
		"paired":  true,
	}))

	bond, err := store.LoadDeviceBond("/org/bluez/hci0/dev_AA")
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", bond["address"])
	assert.True(t, store.IsDeviceBonded("/org/bluez/hci0/dev_AA"))
}

func TestStoreSaveDeviceBondMergesExisting(t *testing.T) {
	store := newTestStore(t)
	path := "/org/bluez/hci0/dev_AA"

	require.NoError(t, store.SaveDeviceBond(path, map[string]interface{}{"address": "AA:BB", "paired": true}))
	require.NoError(t, store.SaveDeviceBond(path, map[string]interface{}{"pin_code": "0000"}))

	bond, err := store.LoadDeviceBond(path)
	require.NoError(t, err)
	assert.Equal(t, "AA:BB", bond["address"])
	assert.Equal(t, true, bond["paired"])
	assert.Equal(t, "0000", bond["pin_code"])
}

func TestStoreLoadDeviceBondByAddress(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveDeviceBond("/org/bluez/hci0/dev_AA", map[string]interface{}{"address": "AA:BB:CC:DD:EE:FF"}))

	bond, err := store.LoadDeviceBondByAddress("aa:bb:cc:dd:ee:ff")

	require.NoError(t, err)
	assert.Equal(t, "/org/bluez/hci0/dev_AA", bond["device_path"])
}

func TestStoreDeleteDeviceBond(t *testing.T) {
	store := newTestStore(t)
	path := "/org/bluez/hci0/dev_AA"
	require.NoError(t, store.SaveDeviceBond(path, map[string]interface{}{"address": "AA:BB"}))

	require.NoError(t, store.DeleteDeviceBond(path))

	assert.False(t, store.IsDeviceBonded(path))
}

func TestStoreListBondedDevices(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveDeviceBond("/dev/a", map[string]interface{}{"address": "AA"}))
	require.NoError(t, store.SaveDeviceBond("/dev/b", map[string]interface{}{"address": "BB"}))

	paths, err := store.ListBondedDevices()

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/dev/a", "/dev/b"}, paths)
}

func TestPairingCacheExpiresEntries(t *testing.T) {
	cache := NewPairingCache(10 * time.Millisecond)
	cache.Set("k", "v")

	v, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(20 * time.Millisecond)

	_, ok = cache.Get("k")
	assert.False(t, ok)
}

func TestPairingCacheCleanupPurgesExpired(t *testing.T) {
	cache := NewPairingCache(5 * time.Millisecond)
	cache.Set("a", 1)
	cache.Set("b", 2)
	time.Sleep(15 * time.Millisecond)

	purged := cache.Cleanup()

	assert.Equal(t, 2, purged)
}

func TestPairingCacheDefaultTTLWhenZero(t *testing.T) {
	cache := NewPairingCache(0)
	assert.Equal(t, DefaultTTL, cache.ttl)
}
