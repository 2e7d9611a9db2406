package device

import "sync"

// categoryMap mirrors device_le.py's ble_device__permission_mapping /
// ble_device__mine_mapping shape: object-kind -> category -> UUID list,
// plus an "in_review"/"uncategorized" holding bucket for UUIDs whose
// aggregated errors didn't resolve to a named category.
type categoryMap struct {
	mu       sync.Mutex
	byKind   map[string]map[string][]string
	inReview map[string][]string
}

func newCategoryMap() categoryMap {
	return categoryMap{
		byKind:   map[string]map[string][]string{},
		inReview: map[string][]string{},
	}
}

func (m *categoryMap) record(kind, category, uuid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byKind[kind]; !ok {
		m.byKind[kind] = map[string][]string{}
	}
	for _, existing := range m.byKind[kind][category] {
		if existing == uuid {
			return
		}
	}
	m.byKind[kind][category] = append(m.byKind[kind][category], uuid)
}

func (m *categoryMap) recordInReview(uuid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.inReview["uncategorized"] {
		if existing == uuid {
			return
		}
	}
	m.inReview["uncategorized"] = append(m.inReview["uncategorized"], uuid)
}

func (m *categoryMap) promote(uuid, kind, category string) {
	m.mu.Lock()
	for cat, uuids := range m.inReview {
		kept := uuids[:0]
		for _, u := range uuids {
			if u == uuid {
				continue
			}
			kept = append(kept, u)
		}
		m.inReview[cat] = kept
	}
	m.mu.Unlock()
	m.record(kind, category, uuid)
}

// report returns a copy of every kind's category lists, plus the shared
// in_review section.
func (m *categoryMap) report() (map[string]map[string][]string, map[string][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]map[string][]string, len(m.byKind))
	for kind, cats := range m.byKind {
		c := make(map[string][]string, len(cats))
		for cat, uuids := range cats {
			c[cat] = append([]string(nil), uuids...)
		}
		out[kind] = c
	}
	review := make(map[string][]string, len(m.inReview))
	for cat, uuids := range m.inReview {
		if len(uuids) == 0 {
			continue
		}
		review[cat] = append([]string(nil), uuids...)
	}
	return out, review
}

// PermissionMap aggregates permission-axis classifications
// (read_not_permitted, requires_authentication, not_supported,
// write_not_permitted, notify_not_permitted, indicate_not_permitted) per
// GATT attribute UUID, keyed additionally by object kind (service,
// characteristic, descriptor).
type PermissionMap struct {
	categoryMap
}

// NewPermissionMap creates an empty PermissionMap.
func NewPermissionMap() *PermissionMap {
	return &PermissionMap{categoryMap: newCategoryMap()}
}

// Record files uuid under category for the given object kind.
func (p *PermissionMap) Record(kind, category, uuid string) { p.record(kind, category, uuid) }

// RecordInReview parks uuid in the in_review/uncategorized bucket pending
// manual triage.
func (p *PermissionMap) RecordInReview(uuid string) { p.recordInReview(uuid) }

// Promote moves uuid out of in_review into category for kind.
func (p *PermissionMap) Promote(uuid, kind, category string) { p.promote(uuid, kind, category) }

// Report returns (byKind, inReview).
func (p *PermissionMap) Report() (map[string]map[string][]string, map[string][]string) {
	return p.report()
}

// LandmineMap aggregates landmine-axis classifications (no_reply,
// remote_disconnect, unknown_failure, action_in_progress, other_error)
// per GATT attribute UUID, keyed additionally by object kind.
type LandmineMap struct {
	categoryMap
}

// NewLandmineMap creates an empty LandmineMap.
func NewLandmineMap() *LandmineMap {
	return &LandmineMap{categoryMap: newCategoryMap()}
}

// Record files uuid under category for the given object kind.
func (l *LandmineMap) Record(kind, category, uuid string) { l.record(kind, category, uuid) }

// RecordInReview parks uuid in the in_review/uncategorized bucket pending
// manual triage.
func (l *LandmineMap) RecordInReview(uuid string) { l.recordInReview(uuid) }

// Promote moves uuid out of in_review into category for kind.
func (l *LandmineMap) Promote(uuid, kind, category string) { l.promote(uuid, kind, category) }

// Report returns (byKind, inReview).
func (l *LandmineMap) Report() (map[string]map[string][]string, map[string][]string) {
	return l.report()
}
