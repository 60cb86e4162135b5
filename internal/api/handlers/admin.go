package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jarinsubahh/buet-exchange/internal/services"
)

type AdminHandler struct {
	listings *services.ListingService
	logger   *zap.Logger
}

func NewAdminHandler(listings *services.ListingService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		listings: listings,
		logger:   logger.With(zap.String("handler", "admin")),
	}
}

// Pending serves the moderation queue.
func (h *AdminHandler) Pending(c *gin.Context) {
	listings, err := h.listings.PendingListings(c.Request.Context())
	if err != nil {
		h.logger.Error("Pending queue failed", zap.Error(err))
		writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": toListingResponses(listings)})
}

func (h *AdminHandler) Approve(c *gin.Context) {
	id := c.Param("id")

	if err := h.listings.Approve(c.Request.Context(), id); err != nil {
		writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "listing approved and published"})
}

// Reject marks the listing rejected. The row stays so the owner still
// sees it in their personal listings view.
func (h *AdminHandler) Reject(c *gin.Context) {
	id := c.Param("id")

	if err := h.listings.Reject(c.Request.Context(), id); err != nil {
		writeListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "listing rejected, kept in owner profile"})
}
