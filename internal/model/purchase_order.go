package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PurchaseOrderStatus constants
const (
	POStatusGenerated    = "GENERATED"
	POStatusSent         = "SENT"
	POStatusAcknowledged = "ACKNOWLEDGED"
	POStatusCancelled    = "CANCELLED"
)

// POTerms is the fixed commercial terms block printed on every purchase order
type POTerms struct {
	Payment      string `json:"payment"`
	Delivery     string `json:"delivery"`
	Pricing      string `json:"pricing"`
	Taxes        string `json:"taxes"`
	Returns      string `json:"returns"`
	Jurisdiction string `json:"jurisdiction"`
}

// PurchaseOrder is generated once per approved order. Only Status changes after creation.
type PurchaseOrder struct {
	ID           uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PONumber     string                      `gorm:"column:po_number;type:varchar(30);uniqueIndex;not null" json:"poNumber"`
	OrderID      uuid.UUID                   `gorm:"type:uuid;uniqueIndex;not null" json:"orderId"`
	OrderNumber  string                      `gorm:"type:varchar(30)" json:"orderNumber"`
	RetailerInfo RetailerSnapshot            `gorm:"embedded;embeddedPrefix:retailer_" json:"retailerInfo"`
	Items        []PurchaseOrderItem         `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
	Summary      Summary                     `gorm:"embedded;embeddedPrefix:po_summary_" json:"poSummary"`
	Terms        datatypes.JSONType[POTerms] `gorm:"type:jsonb" json:"terms"`
	Status       string                      `gorm:"type:varchar(20);not null;default:'GENERATED';index" json:"status"`
	GeneratedBy  string                      `gorm:"type:varchar(255)" json:"generatedBy"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// PurchaseOrderItem is a copied order line
type PurchaseOrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	LineItem        `gorm:"embedded"`
}
