package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a sellable design, priced per piece and per set
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemCode      string          `gorm:"type:varchar(100);uniqueIndex:idx_products_live_item_code,where:deleted_at IS NULL;not null" json:"itemCode"`
	Name          string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Color         string          `gorm:"type:varchar(100)" json:"color"`
	Fabric        string          `gorm:"type:varchar(100)" json:"fabric"`
	PricePerPiece decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pricePerPiece"`
	PricePerSet   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pricePerSet"`
	Category      string          `gorm:"type:varchar(100);index" json:"category"`
	Sizes         pq.StringArray  `gorm:"type:text[]" json:"sizes"`
	Images        pq.StringArray  `gorm:"type:text[]" json:"images"`
	IsActive      bool            `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}
