package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jarinsubahh/buet-exchange/internal/api/middleware"
	"github.com/jarinsubahh/buet-exchange/internal/db/models"
	"github.com/jarinsubahh/buet-exchange/internal/services"
)

// PaymentHandler serves the payment placeholder. There is no payment
// provider behind it; completing a "payment" just records the marker the
// access gate checks.
type PaymentHandler struct {
	listings *services.ListingService
	logger   *zap.Logger
}

func NewPaymentHandler(listings *services.ListingService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		listings: listings,
		logger:   logger.With(zap.String("handler", "payment")),
	}
}

// Show returns the data the payment screen renders.
func (h *PaymentHandler) Show(c *gin.Context) {
	id := c.Param("id")

	listing, err := h.listings.GetListing(c.Request.Context(), id)
	if err != nil {
		writeListingError(c, err)
		return
	}
	// Unapproved listings stay behind the moderation gate here too.
	if listing.Status != models.StatusApproved {
		writeListingError(c, services.ErrBadTransition)
		return
	}
	if listing.Kind != models.KindSell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "free resources do not require payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing_id": listing.ID,
		"title":      listing.Title,
		"price":      listing.Price,
		"message":    "demo checkout, no money will be charged",
	})
}

// Complete records the mock payment and points the client back at the
// access gate.
func (h *PaymentHandler) Complete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	if err := h.listings.CompletePayment(c.Request.Context(), id, user.ID); err != nil {
		writeListingError(c, err)
		return
	}

	h.logger.Info("Mock payment completed",
		zap.String("listing_id", id),
		zap.Uint("user_id", user.ID))

	c.JSON(http.StatusOK, gin.H{
		"message":    "payment recorded",
		"access_url": "/listings/" + id + "/access",
	})
}
