package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jarinsubahh/buet-exchange/internal/db/models"
	"github.com/jarinsubahh/buet-exchange/internal/events"
	"github.com/jarinsubahh/buet-exchange/pkg/metrics"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrBadTransition   = errors.New("listing status does not allow this transition")
	ErrNotOwner        = errors.New("listing does not belong to this user")
)

// ValidationError carries a reason the caller can show inline on the form.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// BrowseFilter narrows the public browse view. Department "ALL" or ""
// means no department filter; Query matches title and description.
type BrowseFilter struct {
	Department string
	Query      string
}

// ListingStore is the persistence collaborator. The gorm-backed
// implementation lives in internal/db; tests substitute an in-memory one.
// Not-found is reported as gorm.ErrRecordNotFound.
type ListingStore interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	ListingByID(ctx context.Context, id string) (*models.Listing, error)
	BrowseListings(ctx context.Context, filter BrowseFilter) ([]models.Listing, error)
	ListingsByOwner(ctx context.Context, ownerID uint) ([]models.Listing, error)
	PendingListings(ctx context.Context) ([]models.Listing, error)
	// UpdateListingStatus applies a guarded single-row transition and
	// reports whether any row matched the (id, from) guard.
	UpdateListingStatus(ctx context.Context, id string, from, to models.ListingStatus) (bool, error)
	RecordPayment(ctx context.Context, payment *models.Payment) error
	HasPayment(ctx context.Context, listingID string, userID uint) (bool, error)
}

type CreateListingInput struct {
	Title       string
	Description string
	Kind        models.ListingKind
	Category    models.ListingCategory
	Department  string
	Price       *int
	ResourceURL string
	IsDocument  bool
	Contact     string
}

type ListingService struct {
	store    ListingStore
	producer *events.Producer
	logger   *zap.Logger
	metrics  *metrics.MetricsCollector
}

func NewListingService(store ListingStore, producer *events.Producer, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *ListingService {
	return &ListingService{
		store:    store,
		producer: producer,
		logger:   logger.With(zap.String("service", "listing_service")),
		metrics:  metricsCollector,
	}
}

// CreateListing validates a draft, stamps id/status/timestamps and
// denormalizes the owner onto the row. New listings always start PENDING.
func (ls *ListingService) CreateListing(ctx context.Context, owner SessionUser, input CreateListingInput) (*models.Listing, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Reason: "title is required"}
	}
	if !models.ValidKind(input.Kind) {
		return nil, &ValidationError{Reason: "kind must be SELL or FREE"}
	}
	if !models.ValidCategory(input.Category) {
		return nil, &ValidationError{Reason: "unknown category"}
	}
	if !models.ValidDepartment(input.Department) {
		return nil, &ValidationError{Reason: "unknown department"}
	}

	switch input.Kind {
	case models.KindSell:
		if input.Price == nil {
			return nil, &ValidationError{Reason: "price is required for a sell listing"}
		}
		if *input.Price < 0 {
			return nil, &ValidationError{Reason: "price must not be negative"}
		}
	case models.KindFree:
		if input.Price != nil {
			return nil, &ValidationError{Reason: "a free listing cannot carry a price"}
		}
	}

	contact := strings.TrimSpace(input.Contact)
	if contact == "" {
		contact = owner.Phone
	}
	if contact == "" {
		contact = owner.Email
	}

	listing := &models.Listing{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Kind:        input.Kind,
		Category:    input.Category,
		Department:  input.Department,
		Price:       input.Price,
		ResourceURL: strings.TrimSpace(input.ResourceURL),
		IsDocument:  input.IsDocument,
		Contact:     contact,
		OwnerID:     owner.ID,
		OwnerName:   owner.Name,
		OwnerDept:   owner.Department,
		Status:      models.StatusPending,
		PostedAt:    time.Now(),
	}

	if err := ls.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	ls.metrics.IncrementCounter("listing_service.created", map[string]string{"kind": string(listing.Kind)})
	ls.producer.Publish(events.ListingCreated, listing.ID, listing.Title, listing.OwnerID, string(listing.Status))

	ls.logger.Info("Listing created",
		zap.String("listing_id", listing.ID),
		zap.Uint("owner_id", owner.ID),
		zap.String("kind", string(listing.Kind)))

	return listing, nil
}

func (ls *ListingService) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := ls.store.ListingByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

func (ls *ListingService) Browse(ctx context.Context, filter BrowseFilter) ([]models.Listing, error) {
	listings, err := ls.store.BrowseListings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("browse listings: %w", err)
	}
	return listings, nil
}

func (ls *ListingService) OwnerListings(ctx context.Context, ownerID uint) ([]models.Listing, error) {
	listings, err := ls.store.ListingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("owner listings: %w", err)
	}
	return listings, nil
}

func (ls *ListingService) PendingListings(ctx context.Context) ([]models.Listing, error) {
	listings, err := ls.store.PendingListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending listings: %w", err)
	}
	return listings, nil
}

// Approve moves a pending listing into the public browse view.
func (ls *ListingService) Approve(ctx context.Context, id string) error {
	return ls.transition(ctx, id, models.StatusPending, models.StatusApproved, events.ListingApproved)
}

// Reject is terminal. The row is retained so the owner still sees it in
// their personal listings view; it never becomes publicly visible.
func (ls *ListingService) Reject(ctx context.Context, id string) error {
	return ls.transition(ctx, id, models.StatusPending, models.StatusRejected, events.ListingRejected)
}

// MarkSold is the owner-triggered terminal transition for an approved
// listing.
func (ls *ListingService) MarkSold(ctx context.Context, id string, ownerID uint) error {
	listing, err := ls.GetListing(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != ownerID {
		return ErrNotOwner
	}
	if !models.CanTransition(listing.Status, models.StatusSold) {
		return ErrBadTransition
	}
	return ls.transition(ctx, id, models.StatusApproved, models.StatusSold, events.ListingSold)
}

func (ls *ListingService) transition(ctx context.Context, id string, from, to models.ListingStatus, eventType string) error {
	applied, err := ls.store.UpdateListingStatus(ctx, id, from, to)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if !applied {
		// The guard rejected the write: either the row is gone or it is
		// no longer in the expected state.
		if _, err := ls.GetListing(ctx, id); err != nil {
			return err
		}
		return ErrBadTransition
	}

	ls.metrics.IncrementCounter("listing_service.transitions", map[string]string{"to": string(to)})

	listing, err := ls.GetListing(ctx, id)
	if err == nil {
		ls.producer.Publish(eventType, listing.ID, listing.Title, listing.OwnerID, string(listing.Status))
	}

	ls.logger.Info("Listing transitioned",
		zap.String("listing_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	return nil
}

// HasPaid reports whether the viewer completed the mock payment for this
// listing.
func (ls *ListingService) HasPaid(ctx context.Context, listingID string, userID uint) (bool, error) {
	paid, err := ls.store.HasPayment(ctx, listingID, userID)
	if err != nil {
		return false, fmt.Errorf("payment lookup: %w", err)
	}
	return paid, nil
}

// CompletePayment records the payment marker. Paying twice for the same
// listing is a no-op.
func (ls *ListingService) CompletePayment(ctx context.Context, listingID string, userID uint) error {
	listing, err := ls.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.Status != models.StatusApproved {
		return ErrBadTransition
	}
	if listing.Kind != models.KindSell {
		return &ValidationError{Reason: "free resources do not require payment"}
	}

	paid, err := ls.HasPaid(ctx, listingID, userID)
	if err != nil {
		return err
	}
	if paid {
		return nil
	}

	amount := 0
	if listing.Price != nil {
		amount = *listing.Price
	}

	if err := ls.store.RecordPayment(ctx, &models.Payment{
		ListingID: listingID,
		UserID:    userID,
		Amount:    amount,
	}); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}

	ls.metrics.IncrementCounter("listing_service.payments_completed", nil)
	return nil
}
