package model

import (
	"time"

	"github.com/google/uuid"
)

// Catalog is a curated, access-gated list of products.
type Catalog struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CatalogName string           `gorm:"type:varchar(255);not null" json:"catalogName"`
	CatalogCode string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"catalogCode"`
	Description string           `gorm:"type:text" json:"description"`
	AccessLevel string           `gorm:"type:varchar(50);not null;default:'GENERAL';index" json:"accessLevel"` // priority code or GENERAL
	IsActive    bool             `gorm:"not null;index" json:"isActive"`
	Products    []CatalogProduct `gorm:"foreignKey:CatalogID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// CatalogProduct is a weak reference from a catalog to a product. The entry
// has its own activation flag independent of the product's.
type CatalogProduct struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	CatalogID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	Position  int       `gorm:"type:int;not null;default:0" json:"-"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
}

// ActiveProductIDs returns product ids of active entries, in catalog order.
func (c *Catalog) ActiveProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Products))
	for _, p := range c.Products {
		if p.IsActive {
			ids = append(ids, p.ProductID)
		}
	}
	return ids
}
