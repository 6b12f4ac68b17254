package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lexmarket_echo/internal/middleware"
	"lexmarket_echo/internal/models"
	"lexmarket_echo/internal/services"
)

type BookingHandler struct {
	db       *gorm.DB
	bookings *services.BookingService
	logger   *zap.Logger
}

func NewBookingHandler(db *gorm.DB, bookings *services.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{db: db, bookings: bookings, logger: logger}
}

type confirmBookingRequest struct {
	ExternalReference string `json:"externalReference"`
}

// Confirm handles POST /api/bookings/confirm. Safe to call more than once
// for the same reference; the existing appointment is returned on repeats.
func (h *BookingHandler) Confirm(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	var req confirmBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.ExternalReference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "externalReference is required")
	}

	appointment, err := h.bookings.Confirm(c.Request().Context(), profile, req.ExternalReference)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Payment not found")
		case errors.Is(err, services.ErrNotPaymentOwner):
			return echo.NewHTTPError(http.StatusForbidden, "Payment belongs to another user")
		case errors.Is(err, services.ErrPaymentUnsettled):
			return echo.NewHTTPError(http.StatusConflict, "Payment has not been confirmed by the processor yet")
		case errors.Is(err, services.ErrStagingNotFound):
			return echo.NewHTTPError(http.StatusGone, "Booking details expired, please start over")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to confirm booking")
		}
	}

	return c.JSON(http.StatusOK, appointment)
}

// ListMine handles GET /api/bookings. Clients see their bookings, lawyers
// see appointments booked with them.
func (h *BookingHandler) ListMine(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	query := h.db.WithContext(c.Request().Context()).
		Preload("Client").Preload("Lawyer").
		Order("scheduled_at DESC")

	if profile.Role == models.RoleLawyer {
		query = query.Where("lawyer_id = ?", profile.ID)
	} else {
		query = query.Where("client_id = ?", profile.ID)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list appointments")
	}

	return c.JSON(http.StatusOK, appointments)
}
