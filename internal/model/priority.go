package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccessLevelGeneral is the wildcard access level visible to every retailer holding a priority.
const AccessLevelGeneral = "GENERAL"

// Priority is a discount tier. Its code doubles as the access level key on catalogs.
type Priority struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PriorityCode       string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"priorityCode"`
	Name               string          `gorm:"type:varchar(255);not null" json:"name"`
	Description        string          `gorm:"type:text" json:"description"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discountPercentage"`
	IsActive           bool            `gorm:"not null" json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}
