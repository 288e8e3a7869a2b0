package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/platform/middleware"
	"github.com/shareit/service-booking/internal/platform/pagination"
	"github.com/shareit/service-booking/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
// identity resolves the caller; createMW runs only in front of booking creation.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, identity gin.HandlerFunc, createMW ...gin.HandlerFunc) {
	bookings := r.Group("/bookings")
	bookings.Use(identity)
	{
		bookings.POST("", append(createMW, h.CreateBooking)...)
		bookings.GET("", h.ListByBooker)
		bookings.GET("/owner", h.ListByOwner)
		bookings.GET("/:bookingId", h.GetBooking)
		bookings.PATCH("/:bookingId", h.Approve)
	}
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetBooking handles GET /bookings/:bookingId.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	bookingID, ok := pathID(c, "bookingId")
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Approve handles PATCH /bookings/:bookingId?approved=true|false.
func (h *BookingHandler) Approve(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	bookingID, ok := pathID(c, "bookingId")
	if !ok {
		return
	}

	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		response.BadRequest(c, "approved must be true or false")
		return
	}

	result, err := h.service.Approve(c.Request.Context(), bookingID, userID, approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListByBooker handles GET /bookings?state=&from=&size=.
func (h *BookingHandler) ListByBooker(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	page, err := pagination.Parse(c.Query("from"), c.Query("size"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListByBooker(c.Request.Context(), userID, c.DefaultQuery("state", "ALL"), page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListByOwner handles GET /bookings/owner?state=&from=&size=.
func (h *BookingHandler) ListByOwner(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	page, err := pagination.Parse(c.Query("from"), c.Query("size"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListByOwner(c.Request.Context(), userID, c.DefaultQuery("state", "ALL"), page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
