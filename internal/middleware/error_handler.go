package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lexmarket_echo/internal/models"
)

// NewErrorHandler returns the centralized Echo error handler. Every error
// becomes a JSON body; server-side failures additionally land in error_logs,
// best effort.
func NewErrorHandler(db *gorm.DB, logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := "Something went wrong. Please try again later."

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok && msg != "" {
				message = msg
			} else {
				switch code {
				case http.StatusNotFound:
					message = "The requested resource doesn't exist."
				case http.StatusForbidden:
					message = "You don't have permission to access this resource."
				case http.StatusUnauthorized:
					message = "Please log in to continue."
				case http.StatusBadRequest:
					message = "The request could not be processed."
				}
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", code),
				zap.Error(err),
			)
			recordError(db, logger, c, err)
		}

		if c.Response().Committed {
			return
		}
		if jsonErr := c.JSON(code, map[string]string{"error": message}); jsonErr != nil {
			logger.Error("failed to write error response", zap.Error(jsonErr))
		}
	}
}

// recordError persists the failure for later inspection. Its own errors are
// swallowed so logging never breaks the response path.
func recordError(db *gorm.DB, logger *zap.Logger, c echo.Context, err error) {
	if db == nil {
		return
	}

	meta, _ := json.Marshal(map[string]string{
		"method": c.Request().Method,
		"path":   c.Request().URL.Path,
	})
	entry := models.ErrorLog{
		Source:   "http",
		Message:  err.Error(),
		Metadata: meta,
	}
	if dbErr := db.Create(&entry).Error; dbErr != nil {
		logger.Warn("failed to persist error log", zap.Error(dbErr))
	}
}
