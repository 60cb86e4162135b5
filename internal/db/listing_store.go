package db

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/jarinsubahh/buet-exchange/internal/db/models"
	"github.com/jarinsubahh/buet-exchange/internal/services"
)

// ListingStore is the gorm-backed persistence collaborator consumed by
// the listing service. Every write is a single-row statement; status
// transitions carry their guard in the WHERE clause so concurrent
// attempts serialize on the row.
type ListingStore struct {
	db *gorm.DB
}

func NewListingStore(db *gorm.DB) *ListingStore {
	return &ListingStore{db: db}
}

func (s *ListingStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	return s.db.WithContext(ctx).Create(listing).Error
}

func (s *ListingStore) ListingByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (s *ListingStore) BrowseListings(ctx context.Context, filter services.BrowseFilter) ([]models.Listing, error) {
	query := s.db.WithContext(ctx).
		Where("status IN ?", []models.ListingStatus{models.StatusApproved, models.StatusSold})

	if filter.Department != "" && filter.Department != "ALL" {
		query = query.Where("department = ?", filter.Department)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var listings []models.Listing
	if err := query.Order("posted_at DESC").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *ListingStore) ListingsByOwner(ctx context.Context, ownerID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("posted_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *ListingStore) PendingListings(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("posted_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *ListingStore) UpdateListingStatus(ctx context.Context, id string, from, to models.ListingStatus) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *ListingStore) RecordPayment(ctx context.Context, payment *models.Payment) error {
	return s.db.WithContext(ctx).Create(payment).Error
}

func (s *ListingStore) HasPayment(ctx context.Context, listingID string, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("listing_id = ? AND user_id = ?", listingID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
