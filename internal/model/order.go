package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus constants
const (
	OrderStatusSubmitted   = "SUBMITTED"
	OrderStatusUnderReview = "UNDER_REVIEW"
	OrderStatusApproved    = "APPROVED"
	OrderStatusRejected    = "REJECTED"
	OrderStatusPOGenerated = "PO_GENERATED"
)

// RetailerSnapshot is a denormalized copy of retailer fields taken when the order is placed
type RetailerSnapshot struct {
	RetailerID    uuid.UUID `gorm:"type:uuid;index" json:"retailerId"`
	PhoneNumber   string    `gorm:"type:varchar(20)" json:"phoneNumber"`
	BusinessName  string    `gorm:"type:varchar(255)" json:"businessName"`
	ContactPerson string    `gorm:"type:varchar(255)" json:"contactPerson"`
	Email         string    `gorm:"type:varchar(255)" json:"email"`
	Address       string    `gorm:"type:text" json:"address"`
	GSTNumber     string    `gorm:"column:gst_number;type:varchar(20)" json:"gstNumber"`
}

// LineItem is the product snapshot shared by order and purchase order lines
type LineItem struct {
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	ItemCode      string          `gorm:"type:varchar(100)" json:"itemCode"`
	ProductName   string          `gorm:"type:varchar(255)" json:"productName"`
	Color         string          `gorm:"type:varchar(100)" json:"color"`
	Fabric        string          `gorm:"type:varchar(100)" json:"fabric"`
	PricePerPiece decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pricePerPiece"`
	PricePerSet   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pricePerSet"`
	Pieces        int             `gorm:"type:int;not null;default:0" json:"pieces"`
	Sets          int             `gorm:"type:int;not null;default:0" json:"sets"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"lineTotal"`
}

// Summary aggregates an order's lines. TotalAmountBeforeGST is nullable so a
// malformed summary can be told apart from a zero total.
type Summary struct {
	TotalPieces          int                 `gorm:"type:int;not null;default:0" json:"totalPieces"`
	TotalSets            int                 `gorm:"type:int;not null;default:0" json:"totalSets"`
	TotalAmountBeforeGST decimal.NullDecimal `gorm:"column:total_amount_before_gst;type:decimal(14,2)" json:"totalAmountBeforeGST"`
	GSTRate              decimal.Decimal     `gorm:"column:gst_rate;type:decimal(5,4);not null;default:0" json:"gstRate"`
	GSTAmount            decimal.Decimal     `gorm:"column:gst_amount;type:decimal(14,2);not null;default:0" json:"gstAmount"`
	TotalAmountAfterGST  decimal.Decimal     `gorm:"column:total_amount_after_gst;type:decimal(14,2);not null;default:0" json:"totalAmountAfterGST"`
}

// Order is a retailer's request, reviewed by an admin before a purchase order is minted
type Order struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string           `gorm:"type:varchar(30);uniqueIndex;not null" json:"orderNumber"`
	RetailerInfo    RetailerSnapshot `gorm:"embedded;embeddedPrefix:retailer_" json:"retailerInfo"`
	Items           []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Summary         Summary          `gorm:"embedded;embeddedPrefix:summary_" json:"orderSummary"`
	Status          string           `gorm:"type:varchar(30);not null;default:'SUBMITTED';index" json:"status"`
	IsGSTApplicable bool             `gorm:"column:is_gst_applicable;not null" json:"isGSTApplicable"`
	Notes           string           `gorm:"type:text" json:"notes"`
	RejectionReason string           `gorm:"type:text" json:"rejectionReason,omitempty"`
	SubmittedAt     time.Time        `json:"submittedAt"`
	ReviewedAt      *time.Time       `json:"reviewedAt"`
	ApprovedAt      *time.Time       `json:"approvedAt"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// OrderItem represents a line within an Order
type OrderItem struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	LineItem `gorm:"embedded"`
}
