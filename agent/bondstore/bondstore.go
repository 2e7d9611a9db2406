// Package bondstore persists completed pairing bonds to disk, encrypted at
// rest, plus a short-lived in-memory cache of in-progress pairing exchanges.
// Grounded on bleep/dbuslayer/bond_storage.py's SecureStorage,
// DeviceBondStore, and PairingCache.
package bondstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
)

// DefaultTTL is the default lifetime of an entry in PairingCache, matching
// bond_storage.py's PairingCache(ttl=300).
const DefaultTTL = 300 * time.Second

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// SecureStorage reads and writes AES-GCM-encrypted blobs under a directory,
// keyed from a passphrase. Grounded on SecureStorage, which used Fernet
// (AES-128-CBC + HMAC) with a PBKDF2HMAC-derived key; this uses AES-256-GCM
// with a SHA-256-derived key since no Fernet/PBKDF2 equivalent ships in the
// example corpus's dependency set (see DESIGN.md).
type SecureStorage struct {
	dir string
	key [32]byte
}

// NewSecureStorage creates a SecureStorage rooted at dir, deriving its
// encryption key from passphrase. dir is created with 0700 permissions if
// it does not already exist.
func NewSecureStorage(dir, passphrase string) (*SecureStorage, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("bondstore: mkdir %s: %w", dir, err)
	}
	if err := os.Chmod(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("bondstore: chmod %s: %w", dir, err)
	}
	return &SecureStorage{dir: dir, key: sha256.Sum256([]byte(passphrase))}, nil
}

func (s *SecureStorage) pathFor(name string) string {
	return filepath.Join(s.dir, name+".bond")
}

func (s *SecureStorage) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *SecureStorage) decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("bondstore: ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

// Write encrypts value as JSON and stores it under name.
func (s *SecureStorage) Write(name string, value interface{}) error {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("bondstore: marshal %s: %w", name, err)
	}
	ciphertext, err := s.encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("bondstore: encrypt %s: %w", name, err)
	}
	encoded := base64.StdEncoding.EncodeToString(ciphertext)
	path := s.pathFor(name)
	if err := os.WriteFile(path, []byte(encoded), filePerm); err != nil {
		return fmt.Errorf("bondstore: write %s: %w", name, err)
	}
	return os.Chmod(path, filePerm)
}

// Read decrypts the blob stored under name into dest.
func (s *SecureStorage) Read(name string, dest interface{}) error {
	encoded, err := os.ReadFile(s.pathFor(name))
	if err != nil {
		return err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return fmt.Errorf("bondstore: decode %s: %w", name, err)
	}
	plaintext, err := s.decrypt(ciphertext)
	if err != nil {
		return fmt.Errorf("bondstore: decrypt %s: %w", name, err)
	}
	return json.Unmarshal(plaintext, dest)
}

// Delete removes the blob stored under name. Missing files are not an error.
func (s *SecureStorage) Delete(name string) error {
	err := os.Remove(s.pathFor(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns the names of every blob currently stored.
func (s *SecureStorage) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".bond") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".bond"))
	}
	return names, nil
}

// bondKey derives a filesystem-safe storage name from a device path or
// address, mirroring SecureStorage._path_to_key.
func bondKey(devicePath string) string {
	sum := sha256.Sum256([]byte(devicePath))
	return fmt.Sprintf("%x", sum[:8])
}

// Store persists per-device pairing bonds, grounded on DeviceBondStore.
type Store struct {
	secure *SecureStorage
	mu     sync.Mutex
	index  map[string]string // bondKey -> devicePath of bonds saved by this Store
}

// NewStore creates a Store backed by secure.
func NewStore(secure *SecureStorage) *Store {
	return &Store{secure: secure, index: make(map[string]string)}
}

// SaveDeviceBond persists bond under devicePath, merging with anything
// already stored for that device. Satisfies agent.BondStore.
func (s *Store) SaveDeviceBond(devicePath string, bond map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bondKey(devicePath)
	existing := map[string]interface{}{}
	_ = s.secure.Read(key, &existing)
	merged := mergeBond(existing, bond)
	merged["device_path"] = devicePath

	if err := s.secure.Write(key, merged); err != nil {
		return err
	}
	s.index[key] = devicePath
	bleeplog.Agent(fmt.Sprintf("bond saved for %s", devicePath))
	return nil
}

// LoadDeviceBond returns the stored bond for devicePath.
func (s *Store) LoadDeviceBond(devicePath string) (map[string]interface{}, error) {
	var bond map[string]interface{}
	if err := s.secure.Read(bondKey(devicePath), &bond); err != nil {
		return nil, err
	}
	return bond, nil
}

// LoadDeviceBondByAddress scans every stored bond for one whose "address"
// field matches address, since bonds are keyed by device path, not address.
func (s *Store) LoadDeviceBondByAddress(address string) (map[string]interface{}, error) {
	names, err := s.secure.List()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		var bond map[string]interface{}
		if err := s.secure.Read(name, &bond); err != nil {
			continue
		}
		if addr, ok := bond["address"].(string); ok && strings.EqualFold(addr, address) {
			return bond, nil
		}
	}
	return nil, fmt.Errorf("bondstore: no bond found for address %s", address)
}

// DeleteDeviceBond removes the stored bond for devicePath.
func (s *Store) DeleteDeviceBond(devicePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.index, bondKey(devicePath))
	return s.secure.Delete(bondKey(devicePath))
}

// ListBondedDevices returns every device path with a stored bond.
func (s *Store) ListBondedDevices() ([]string, error) {
	names, err := s.secure.List()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		var bond map[string]interface{}
		if err := s.secure.Read(name, &bond); err != nil {
			continue
		}
		if path, ok := bond["device_path"].(string); ok {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// IsDeviceBonded reports whether devicePath has a stored bond.
func (s *Store) IsDeviceBonded(devicePath string) bool {
	_, err := s.LoadDeviceBond(devicePath)
	return err == nil
}

// IsDeviceBondedByAddress reports whether address has a stored bond.
func (s *Store) IsDeviceBondedByAddress(address string) bool {
	_, err := s.LoadDeviceBondByAddress(address)
	return err == nil
}

// UpdateDeviceBond deep-merges updates into the existing bond for
// devicePath (see mergeBond), creating one if none exists.
func (s *Store) UpdateDeviceBond(devicePath string, updates map[string]interface{}) error {
	return s.SaveDeviceBond(devicePath, updates)
}

// mergeBond overlays update onto base, recursing into nested maps so
// e.g. "timestamps" accumulates rather than being clobbered wholesale.
func mergeBond(base, update map[string]interface{}) map[string]interface{} {
	if base == nil {
		base = map[string]interface{}{}
	}
	for k, v := range update {
		if nested, ok := v.(map[string]interface{}); ok {
			if existing, ok := base[k].(map[string]interface{}); ok {
				base[k] = mergeBond(existing, nested)
				continue
			}
		}
		base[k] = v
	}
	return base
}

// cacheEntry is one PairingCache slot.
type cacheEntry struct {
	value   interface{}
	expires time.Time
}

// PairingCache is a short-lived, in-memory store for in-progress pairing
// exchanges (pending PIN/passkey state) that should not survive a restart.
// Grounded on bond_storage.py's PairingCache.
type PairingCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewPairingCache creates a PairingCache with the given entry lifetime.
// A zero ttl uses DefaultTTL.
func NewPairingCache(ttl time.Duration) *PairingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PairingCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

// Set stores value under key, resetting its expiry.
func (c *PairingCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expires: time.Now().Add(c.ttl)}
}

// Get returns the value stored under key, if present and unexpired.
func (c *PairingCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Delete removes key from the cache.
func (c *PairingCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear empties the cache.
func (c *PairingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Cleanup removes every expired entry and returns how many were purged.
func (c *PairingCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	purged := 0
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
			purged++
		}
	}
	return purged
}
