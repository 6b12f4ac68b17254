package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lexmarket_echo/internal/models"
)

type AdminHandler struct {
	db     *gorm.DB
	auth   *auth.Client
	logger *zap.Logger
}

func NewAdminHandler(db *gorm.DB, authClient *auth.Client, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, auth: authClient, logger: logger}
}

type deleteUserRequest struct {
	ProfileID uint `json:"profileId"`
}

// DeleteUser handles POST /api/admin/delete-user. The Firebase account is
// removed first so the user cannot sign in again, then the profile is
// soft deleted. Appointments and payments stay for accounting.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	var req deleteUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.ProfileID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "profileId is required")
	}

	ctx := c.Request().Context()

	var profile models.Profile
	if err := h.db.WithContext(ctx).First(&profile, req.ProfileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Profile lookup failed")
	}

	if profile.FirebaseUID != "" {
		if err := h.auth.DeleteUser(ctx, profile.FirebaseUID); err != nil {
			if !auth.IsUserNotFound(err) {
				h.logger.Error("firebase user deletion failed",
					zap.String("firebase_uid", profile.FirebaseUID), zap.Error(err))
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete auth account")
			}
			h.logger.Warn("firebase user already gone", zap.String("firebase_uid", profile.FirebaseUID))
		}
	}

	if err := h.db.WithContext(ctx).Delete(&profile).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete profile")
	}

	h.logger.Info("user deleted", zap.Uint("profile_id", profile.ID))
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

// ListPayoutLogs handles GET /api/admin/payout-logs
func (h *AdminHandler) ListPayoutLogs(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 500")
		}
		limit = parsed
	}

	var logs []models.PayoutLog
	err := h.db.WithContext(c.Request().Context()).
		Order("created_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list payout logs")
	}

	return c.JSON(http.StatusOK, logs)
}
