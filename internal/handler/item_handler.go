package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/platform/middleware"
	"github.com/shareit/service-booking/internal/platform/response"
)

// ItemHandler serves booking views scoped to a single item.
type ItemHandler struct {
	service *application.BookingService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *application.BookingService) *ItemHandler {
	return &ItemHandler{service: service}
}

// RegisterRoutes registers the item routes on the given router group.
func (h *ItemHandler) RegisterRoutes(r *gin.RouterGroup, identity gin.HandlerFunc) {
	items := r.Group("/items")
	items.Use(identity)
	items.GET("/:itemId/bookings/summary", h.BookingSummary)
}

// BookingSummary handles GET /items/:itemId/bookings/summary.
func (h *ItemHandler) BookingSummary(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	result, err := h.service.ItemBookingSummary(c.Request.Context(), itemID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
