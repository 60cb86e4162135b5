package models

import (
	"time"

	"gorm.io/gorm"
)

type ListingStatus string

const (
	StatusPending  ListingStatus = "PENDING"
	StatusApproved ListingStatus = "APPROVED"
	StatusRejected ListingStatus = "REJECTED"
	StatusSold     ListingStatus = "SOLD"
)

type ListingKind string

const (
	KindSell ListingKind = "SELL"
	KindFree ListingKind = "FREE"
)

type ListingCategory string

const (
	CategoryDocument  ListingCategory = "PDF"
	CategoryBook      ListingCategory = "BOOK"
	CategoryEquipment ListingCategory = "LAB_EQUIPMENT"
	CategoryNotes     ListingCategory = "NOTES"
	CategoryOther     ListingCategory = "OTHER"
)

type Listing struct {
	gorm.Model
	ID          string          `gorm:"primaryKey"`
	Title       string          `gorm:"not null"`
	Description string
	Kind        ListingKind     `gorm:"not null"`
	Category    ListingCategory `gorm:"not null"`
	Department  string          `gorm:"index;not null"`
	Price       *int            // set iff Kind == KindSell
	ResourceURL string
	IsDocument  bool            // render ResourceURL in an embedded viewer rather than as an image
	Contact     string
	OwnerID     uint            `gorm:"index;not null"`
	OwnerName   string
	OwnerDept   string
	Status      ListingStatus   `gorm:"not null;default:'PENDING'"`
	PostedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP"`
}

// CanTransition reports whether the lifecycle permits moving from one
// status to another. REJECTED and SOLD are terminal.
func CanTransition(from, to ListingStatus) bool {
	switch {
	case from == StatusPending && to == StatusApproved:
		return true
	case from == StatusPending && to == StatusRejected:
		return true
	case from == StatusApproved && to == StatusSold:
		return true
	}
	return false
}

// PubliclyVisible reports whether a listing belongs in the public browse
// view. Sold listings stay visible with their badge; they are just no
// longer purchasable.
func (l *Listing) PubliclyVisible() bool {
	return l.Status == StatusApproved || l.Status == StatusSold
}

func ValidCategory(c ListingCategory) bool {
	switch c {
	case CategoryDocument, CategoryBook, CategoryEquipment, CategoryNotes, CategoryOther:
		return true
	}
	return false
}

func ValidKind(k ListingKind) bool {
	return k == KindSell || k == KindFree
}
