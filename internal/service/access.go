package service

import (
	"github.com/google/uuid"

	"storefront/internal/model"
)

// AccessIndex groups active catalog ids by access level.
type AccessIndex map[string][]uuid.UUID

func BuildAccessIndex(catalogs []model.Catalog) AccessIndex {
	idx := make(AccessIndex)
	for _, c := range catalogs {
		if !c.IsActive {
			continue
		}
		idx[c.AccessLevel] = append(idx[c.AccessLevel], c.ID)
	}
	return idx
}

// Resolve returns the deduplicated catalog ids visible to the given priority
// codes: every GENERAL catalog plus those gated on one of the codes.
func (idx AccessIndex) Resolve(priorityCodes []string) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(idx[model.AccessLevelGeneral]))
	add := func(level string) {
		for _, id := range idx[level] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	add(model.AccessLevelGeneral)
	for _, code := range priorityCodes {
		if code == model.AccessLevelGeneral {
			continue
		}
		add(code)
	}
	return ids
}

// CanAccessCatalog reports whether the retailer may view the catalog: it is in
// the retailer's stored or override set, it is GENERAL, or it is gated on one
// of the retailer's active priority codes.
func CanAccessCatalog(retailer *model.Retailer, catalog *model.Catalog) bool {
	if retailer.HasCatalog(catalog.ID) {
		return true
	}
	if catalog.AccessLevel == model.AccessLevelGeneral {
		return true
	}
	for _, code := range retailer.PriorityCodes() {
		if code == catalog.AccessLevel {
			return true
		}
	}
	return false
}

func sameIDSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
