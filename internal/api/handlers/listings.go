package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jarinsubahh/buet-exchange/internal/api/middleware"
	"github.com/jarinsubahh/buet-exchange/internal/db/models"
	"github.com/jarinsubahh/buet-exchange/internal/services"
	"github.com/jarinsubahh/buet-exchange/pkg/metrics"
)

type ListingHandler struct {
	listings *services.ListingService
	logger   *zap.Logger
	metrics  *metrics.MetricsCollector
}

func NewListingHandler(listings *services.ListingService, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		logger:   logger.With(zap.String("handler", "listing")),
		metrics:  metricsCollector,
	}
}

// listingResponse is the browse/detail projection. The resource URL is
// deliberately absent; only the access endpoint may expose it.
type listingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Kind        string    `json:"kind"`
	Category    string    `json:"category"`
	Department  string    `json:"department"`
	Price       *int      `json:"price,omitempty"`
	Contact     string    `json:"contact"`
	OwnerName   string    `json:"owner_name"`
	OwnerDept   string    `json:"owner_department"`
	Status      string    `json:"status"`
	PostedAt    time.Time `json:"posted_at"`
}

func toListingResponse(l *models.Listing) listingResponse {
	ownerName := l.OwnerName
	if ownerName == "" {
		ownerName = "Student User"
	}
	return listingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Kind:        string(l.Kind),
		Category:    string(l.Category),
		Department:  l.Department,
		Price:       l.Price,
		Contact:     l.Contact,
		OwnerName:   ownerName,
		OwnerDept:   l.OwnerDept,
		Status:      string(l.Status),
		PostedAt:    l.PostedAt,
	}
}

func toListingResponses(listings []models.Listing) []listingResponse {
	out := make([]listingResponse, len(listings))
	for i := range listings {
		out[i] = toListingResponse(&listings[i])
	}
	return out
}

// writeListingError maps service errors onto the single JSON error
// envelope the API uses everywhere.
func writeListingError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
	case errors.Is(err, services.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner may do this"})
	case errors.Is(err, services.ErrBadTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "listing is not in a state that allows this"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed, please retry"})
	}
}

// Browse serves the public dashboard: approved and sold listings, newest
// first, with optional department and free-text filters.
func (h *ListingHandler) Browse(c *gin.Context) {
	filter := services.BrowseFilter{
		Department: c.Query("department"),
		Query:      c.Query("q"),
	}

	listings, err := h.listings.Browse(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Browse failed", zap.Error(err))
		writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": toListingResponses(listings)})
}

type createListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Department  string `json:"department"`
	Price       *int   `json:"price"`
	ResourceURL string `json:"resource_url"`
	IsDocument  bool   `json:"is_document"`
	Contact     string `json:"contact"`
}

func (h *ListingHandler) Create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	listing, err := h.listings.CreateListing(c.Request.Context(), user, services.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Kind:        models.ListingKind(req.Kind),
		Category:    models.ListingCategory(req.Category),
		Department:  req.Department,
		Price:       req.Price,
		ResourceURL: req.ResourceURL,
		IsDocument:  req.IsDocument,
		Contact:     req.Contact,
	})
	if err != nil {
		writeListingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"listing": toListingResponse(listing),
		"message": "your listing has been submitted for approval",
	})
}

// MyListings returns everything the signed-in user owns, any status.
func (h *ListingHandler) MyListings(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	listings, err := h.listings.OwnerListings(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("Owner listings failed", zap.Error(err), zap.Uint("user_id", user.ID))
		writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": toListingResponses(listings)})
}

// Access runs the access gate and serves one of its three renderings:
// a blocked placeholder, a redirect to the payment screen, or the
// resource itself.
func (h *ListingHandler) Access(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	listing, err := h.listings.GetListing(c.Request.Context(), id)
	if err != nil {
		writeListingError(c, err)
		return
	}

	paid := c.Query("paid") == "1"
	if !paid && listing.Kind == models.KindSell {
		paid, err = h.listings.HasPaid(c.Request.Context(), id, user.ID)
		if err != nil {
			h.logger.Error("Payment lookup failed", zap.Error(err), zap.String("listing_id", id))
			writeListingError(c, err)
			return
		}
	}

	decision := services.DecideAccess(listing, user, paid)
	h.metrics.IncrementCounter("access_gate.decisions", map[string]string{"decision": decision.String()})

	switch decision {
	case services.AccessBlocked:
		c.JSON(http.StatusForbidden, gin.H{
			"error":  "content not available",
			"reason": "this resource is not yet approved by an admin",
		})
	case services.AccessPaymentRequired:
		c.Redirect(http.StatusSeeOther, "/payments/"+listing.ID)
	case services.AccessGranted:
		render := "image"
		if listing.IsDocument {
			render = "document"
		}
		if listing.ResourceURL == "" {
			render = "none"
		}
		c.JSON(http.StatusOK, gin.H{
			"listing":      toListingResponse(listing),
			"resource_url": listing.ResourceURL,
			"render":       render,
		})
	}
}

// MarkSold applies the approved -> sold owner transition.
func (h *ListingHandler) MarkSold(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	if err := h.listings.MarkSold(c.Request.Context(), id, user.ID); err != nil {
		writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item marked as sold"})
}
