package device

import (
	"fmt"
	"strings"
	"sync"
)

// AttributeRecord is one entry of an AttributeMap: everything the
// enumeration engine learned about a single GATT attribute, independent
// of which service/characteristic/descriptor it belongs to.
type AttributeRecord struct {
	UUID   string
	Handle uint16
	Kind   string // "service" | "characteristic" | "descriptor"
	Flags  []string
	Value  []byte
}

// AttributeMap is a per-device, UUID-keyed index over every attribute
// discovered during a walk, used by downstream fuzzing/CTF/asset-inventory
// consumers that want O(1) UUID lookup instead of walking the service
// tree.
type AttributeMap struct {
	mu      sync.RWMutex
	records map[string]*AttributeRecord
}

// NewAttributeMap creates an empty AttributeMap.
func NewAttributeMap() *AttributeMap {
	return &AttributeMap{records: map[string]*AttributeRecord{}}
}

// Put records/overwrites the entry for rec.UUID. A record whose UUID is
// empty or all zeros is keyed by its handle instead, so several
// unresolved attributes can coexist; re-putting a record under a new UUID
// drops its previous key.
func (m *AttributeMap) Put(rec *AttributeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := NormalizeUUID(rec.UUID)
	if strings.Trim(key, "0") == "" {
		key = fmt.Sprintf("handle-%04x", rec.Handle)
	}
	for k, existing := range m.records {
		if existing == rec && k != key {
			delete(m.records, k)
		}
	}
	m.records[key] = rec
}

// Get looks up the record for uuid.
func (m *AttributeMap) Get(uuid string) (*AttributeRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[NormalizeUUID(uuid)]
	return rec, ok
}

// All returns every recorded attribute, in no particular order.
func (m *AttributeMap) All() []*AttributeRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*AttributeRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out
}
