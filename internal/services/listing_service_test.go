package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jarinsubahh/buet-exchange/internal/db/models"
	"github.com/jarinsubahh/buet-exchange/pkg/metrics"
)

// memoryListingStore is an in-memory stand-in for the gorm-backed store.
type memoryListingStore struct {
	mu       sync.Mutex
	listings map[string]models.Listing
	payments map[string]map[uint]bool
}

func newMemoryListingStore() *memoryListingStore {
	return &memoryListingStore{
		listings: make(map[string]models.Listing),
		payments: make(map[string]map[uint]bool),
	}
}

func (m *memoryListingStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[listing.ID] = *listing
	return nil
}

func (m *memoryListingStore) ListingByID(ctx context.Context, id string) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	listing, ok := m.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &listing, nil
}

func (m *memoryListingStore) BrowseListings(ctx context.Context, filter BrowseFilter) ([]models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Listing
	for _, l := range m.listings {
		if !l.PubliclyVisible() {
			continue
		}
		if filter.Department != "" && filter.Department != "ALL" && l.Department != filter.Department {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
			if !strings.Contains(strings.ToLower(l.Title), q) &&
				!strings.Contains(strings.ToLower(l.Description), q) {
				continue
			}
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out, nil
}

func (m *memoryListingStore) ListingsByOwner(ctx context.Context, ownerID uint) ([]models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Listing
	for _, l := range m.listings {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out, nil
}

func (m *memoryListingStore) PendingListings(ctx context.Context) ([]models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Listing
	for _, l := range m.listings {
		if l.Status == models.StatusPending {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out, nil
}

func (m *memoryListingStore) UpdateListingStatus(ctx context.Context, id string, from, to models.ListingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.listings[id]
	if !ok || listing.Status != from {
		return false, nil
	}
	listing.Status = to
	m.listings[id] = listing
	return true, nil
}

func (m *memoryListingStore) RecordPayment(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.payments[payment.ListingID] == nil {
		m.payments[payment.ListingID] = make(map[uint]bool)
	}
	m.payments[payment.ListingID][payment.UserID] = true
	return nil
}

func (m *memoryListingStore) HasPayment(ctx context.Context, listingID string, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[listingID][userID], nil
}

func newTestListingService(store ListingStore) *ListingService {
	return NewListingService(store, nil, zap.NewNop(), metrics.NewMetricsCollector())
}

var testOwner = SessionUser{ID: 7, Email: "fahim@cse.buet.ac.bd", Name: "Fahim Rahman", Department: "CSE", Phone: "+880 1712345678"}

func intPtr(v int) *int { return &v }

func sellDraft() CreateListingInput {
	return CreateListingInput{
		Title:      "Engineering Mathematics",
		Kind:       models.KindSell,
		Category:   models.CategoryBook,
		Department: "CSE",
		Price:      intPtr(500),
	}
}

func TestCreateListingStartsPending(t *testing.T) {
	svc := newTestListingService(newMemoryListingStore())

	listing, err := svc.CreateListing(context.Background(), testOwner, sellDraft())
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	if listing.Status != models.StatusPending {
		t.Errorf("new listing status = %s, want %s", listing.Status, models.StatusPending)
	}
	if listing.ID == "" {
		t.Error("expected an assigned id")
	}
	if listing.OwnerID != testOwner.ID || listing.OwnerName != testOwner.Name || listing.OwnerDept != testOwner.Department {
		t.Errorf("owner not denormalized onto listing: %+v", listing)
	}
	if listing.Contact != testOwner.Phone {
		t.Errorf("contact = %q, want owner phone default", listing.Contact)
	}
	if listing.Price == nil || *listing.Price != 500 {
		t.Errorf("price not preserved: %v", listing.Price)
	}
}

func TestCreateListingPriceRules(t *testing.T) {
	svc := newTestListingService(newMemoryListingStore())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateListingInput)
	}{
		{"sell without price", func(in *CreateListingInput) { in.Price = nil }},
		{"negative price", func(in *CreateListingInput) { in.Price = intPtr(-1) }},
		{"free with price", func(in *CreateListingInput) { in.Kind = models.KindFree }},
		{"missing title", func(in *CreateListingInput) { in.Title = "  " }},
		{"unknown category", func(in *CreateListingInput) { in.Category = "GADGET" }},
		{"unknown department", func(in *CreateListingInput) { in.Department = "XYZ" }},
		{"unknown kind", func(in *CreateListingInput) { in.Kind = "RENT" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := sellDraft()
			tc.mutate(&draft)
			_, err := svc.CreateListing(ctx, testOwner, draft)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	draft := sellDraft()
	draft.Kind = models.KindFree
	draft.Price = nil
	if _, err := svc.CreateListing(ctx, testOwner, draft); err != nil {
		t.Errorf("free listing without price should be accepted, got %v", err)
	}
}

func TestApproveOnlyFromPending(t *testing.T) {
	store := newMemoryListingStore()
	svc := newTestListingService(store)
	ctx := context.Background()

	listing, err := svc.CreateListing(ctx, testOwner, sellDraft())
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	if err := svc.Approve(ctx, listing.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	got, err := svc.GetListing(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("status = %s, want %s", got.Status, models.StatusApproved)
	}

	// Approving an already-approved listing is rejected, not a silent
	// re-apply.
	if err := svc.Approve(ctx, listing.ID); !errors.Is(err, ErrBadTransition) {
		t.Errorf("second approve = %v, want ErrBadTransition", err)
	}

	if err := svc.Approve(ctx, "no-such-id"); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("approve on missing listing = %v, want ErrListingNotFound", err)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	svc := newTestListingService(newMemoryListingStore())
	ctx := context.Background()

	listing, _ := svc.CreateListing(ctx, testOwner, sellDraft())

	if err := svc.Reject(ctx, listing.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if err := svc.Approve(ctx, listing.ID); !errors.Is(err, ErrBadTransition) {
		t.Errorf("approve after reject = %v, want ErrBadTransition", err)
	}
	if err := svc.MarkSold(ctx, listing.ID, testOwner.ID); !errors.Is(err, ErrBadTransition) {
		t.Errorf("sold after reject = %v, want ErrBadTransition", err)
	}
}

func TestMarkSoldGuards(t *testing.T) {
	svc := newTestListingService(newMemoryListingStore())
	ctx := context.Background()

	listing, _ := svc.CreateListing(ctx, testOwner, sellDraft())

	// Not reachable from pending.
	if err := svc.MarkSold(ctx, listing.ID, testOwner.ID); !errors.Is(err, ErrBadTransition) {
		t.Errorf("sold from pending = %v, want ErrBadTransition", err)
	}

	if err := svc.Approve(ctx, listing.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if err := svc.MarkSold(ctx, listing.ID, 999); !errors.Is(err, ErrNotOwner) {
		t.Errorf("sold by stranger = %v, want ErrNotOwner", err)
	}

	if err := svc.MarkSold(ctx, listing.ID, testOwner.ID); err != nil {
		t.Fatalf("MarkSold by owner: %v", err)
	}

	got, _ := svc.GetListing(ctx, listing.ID)
	if got.Status != models.StatusSold {
		t.Errorf("status = %s, want %s", got.Status, models.StatusSold)
	}

	// Sold rows stay in the browse view with their badge.
	browse, err := svc.Browse(ctx, BrowseFilter{})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(browse) != 1 || browse[0].Status != models.StatusSold {
		t.Errorf("browse after sale = %+v, want the sold row", browse)
	}
}

func TestBrowseHidesPendingAndRejected(t *testing.T) {
	svc := newTestListingService(newMemoryListingStore())
	ctx := context.Background()

	pending, _ := svc.CreateListing(ctx, testOwner, sellDraft())
	rejected, _ := svc.CreateListing(ctx, testOwner, sellDraft())
	approved, _ := svc.CreateListing(ctx, testOwner, sellDraft())

	if err := svc.Reject(ctx, rejected.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if err := svc.Approve(ctx, approved.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	browse, err := svc.Browse(ctx, BrowseFilter{})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(browse) != 1 || browse[0].ID != approved.ID {
		t.Errorf("browse = %+v, want only the approved listing", browse)
	}

	// The owner still sees all three, whatever their status.
	mine, err := svc.OwnerListings(ctx, testOwner.ID)
	if err != nil {
		t.Fatalf("OwnerListings: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("owner sees %d listings, want 3", len(mine))
	}

	queue, err := svc.PendingListings(ctx)
	if err != nil {
		t.Fatalf("PendingListings: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != pending.ID {
		t.Errorf("pending queue = %+v, want only the pending listing", queue)
	}
}

func TestCompletePaymentIsIdempotent(t *testing.T) {
	svc := newTestListingService(newMemoryListingStore())
	ctx := context.Background()
	buyer := uint(11)

	listing, _ := svc.CreateListing(ctx, testOwner, sellDraft())

	// Payment against an unapproved listing is refused.
	if err := svc.CompletePayment(ctx, listing.ID, buyer); !errors.Is(err, ErrBadTransition) {
		t.Errorf("payment before approval = %v, want ErrBadTransition", err)
	}

	if err := svc.Approve(ctx, listing.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if paid, _ := svc.HasPaid(ctx, listing.ID, buyer); paid {
		t.Fatal("buyer marked paid before paying")
	}

	if err := svc.CompletePayment(ctx, listing.ID, buyer); err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}
	if err := svc.CompletePayment(ctx, listing.ID, buyer); err != nil {
		t.Errorf("repeat payment should be a no-op, got %v", err)
	}

	if paid, _ := svc.HasPaid(ctx, listing.ID, buyer); !paid {
		t.Error("payment marker missing after completion")
	}
	if paid, _ := svc.HasPaid(ctx, listing.ID, uint(12)); paid {
		t.Error("payment marker leaked to another user")
	}
}
