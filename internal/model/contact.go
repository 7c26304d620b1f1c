package model

import (
	"time"

	"github.com/google/uuid"
)

// ContactInquiry is a submission from the public contact form
type ContactInquiry struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	PhoneNumber  string     `gorm:"type:varchar(20);not null;index" json:"phoneNumber"`
	BusinessName string     `gorm:"type:varchar(255)" json:"businessName"`
	City         string     `gorm:"type:varchar(100)" json:"city"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	ClientIP     string     `gorm:"type:varchar(64)" json:"clientIp"`
	IsHandled    bool       `gorm:"default:false;index" json:"isHandled"`
	HandledAt    *time.Time `json:"handledAt"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`
}
