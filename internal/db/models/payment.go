package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is the persisted marker written by the mock payment flow. Its
// presence is what the access gate checks; no money moves anywhere.
type Payment struct {
	gorm.Model
	ListingID string    `gorm:"index;not null"`
	UserID    uint      `gorm:"index;not null"`
	Amount    int
	PaidAt    time.Time `gorm:"autoCreateTime"`
}
