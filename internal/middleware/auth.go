package middleware

import (
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"lexmarket_echo/internal/models"
)

const profileContextKey = "profile"

// RequireAuth verifies the bearer ID token against the auth provider and
// loads the caller's profile into the Echo context.
func RequireAuth(authClient *auth.Client, db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authClient == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Authentication not configured")
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
			}

			decodedToken, err := authClient.VerifyIDToken(c.Request().Context(), tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			var profile models.Profile
			err = db.Where("firebase_uid = ?", decodedToken.UID).First(&profile).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusForbidden, "No profile for this account")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile")
			}

			c.Set("userUID", decodedToken.UID)
			c.Set("userEmail", profile.Email)
			c.Set(profileContextKey, &profile)

			return next(c)
		}
	}
}

// RequireAdmin rejects callers whose profile role is not admin. Must run
// after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile := ProfileFromContext(c)
			if profile == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			if profile.Role != models.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Admin role required")
			}
			return next(c)
		}
	}
}

// ProfileFromContext returns the authenticated caller's profile, or nil on
// unauthenticated routes.
func ProfileFromContext(c echo.Context) *models.Profile {
	if profile, ok := c.Get(profileContextKey).(*models.Profile); ok {
		return profile
	}
	return nil
}
