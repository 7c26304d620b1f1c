package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Retailer is a B2B buyer identified by phone number.
//
// AccessibleCatalogs is derived state owned by the access propagation run.
// CatalogOverrides is managed by admins only; the catalogs a retailer may
// view is the union of both.
type Retailer struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PhoneNumber        string         `gorm:"type:varchar(20);uniqueIndex:idx_retailers_live_phone,where:deleted_at IS NULL;not null" json:"phoneNumber"`
	BusinessName       string         `gorm:"type:varchar(255);not null" json:"businessName"`
	ContactPerson      string         `gorm:"type:varchar(255)" json:"contactPerson"`
	Email              string         `gorm:"type:varchar(255)" json:"email"`
	Address            string         `gorm:"type:text" json:"address"`
	GSTNumber          string         `gorm:"column:gst_number;type:varchar(20)" json:"gstNumber"`
	Priorities         []Priority     `gorm:"many2many:retailer_priorities;" json:"priorities"`
	AccessibleCatalogs []Catalog      `gorm:"many2many:retailer_accessible_catalogs;" json:"accessibleCatalogs"`
	CatalogOverrides   []Catalog      `gorm:"many2many:retailer_catalog_overrides;" json:"catalogOverrides"`
	IsActive           bool           `gorm:"not null;index" json:"isActive"`
	LastSyncedAt       *time.Time     `json:"lastSyncedAt"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// PriorityCodes returns the codes of the retailer's active priorities.
func (r *Retailer) PriorityCodes() []string {
	codes := make([]string, 0, len(r.Priorities))
	for _, p := range r.Priorities {
		if p.IsActive {
			codes = append(codes, p.PriorityCode)
		}
	}
	return codes
}

// AccessibleCatalogIDs returns the derived catalog ids.
func (r *Retailer) AccessibleCatalogIDs() []uuid.UUID {
	return catalogIDs(r.AccessibleCatalogs)
}

// OverrideCatalogIDs returns the manually granted catalog ids.
func (r *Retailer) OverrideCatalogIDs() []uuid.UUID {
	return catalogIDs(r.CatalogOverrides)
}

// HasCatalog reports whether the catalog is in the derived or the override set.
func (r *Retailer) HasCatalog(catalogID uuid.UUID) bool {
	for _, c := range r.AccessibleCatalogs {
		if c.ID == catalogID {
			return true
		}
	}
	for _, c := range r.CatalogOverrides {
		if c.ID == catalogID {
			return true
		}
	}
	return false
}

func catalogIDs(catalogs []Catalog) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(catalogs))
	for _, c := range catalogs {
		ids = append(ids, c.ID)
	}
	return ids
}
