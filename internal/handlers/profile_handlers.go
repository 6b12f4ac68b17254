package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"firebase.google.com/go/v4/storage"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lexmarket_echo/internal/middleware"
	"lexmarket_echo/internal/rut"
	"lexmarket_echo/internal/services"
)

const maxAvatarSize = 5 << 20 // 5 MiB

type ProfileHandler struct {
	db         *gorm.DB
	search     *services.SearchService
	storage    *storage.Client
	bucketName string
	logger     *zap.Logger
}

func NewProfileHandler(db *gorm.DB, search *services.SearchService, storageClient *storage.Client, bucketName string, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{db: db, search: search, storage: storageClient, bucketName: bucketName, logger: logger}
}

// Me handles GET /api/profile
func (h *ProfileHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.ProfileFromContext(c))
}

type updateProfileRequest struct {
	FirstName       *string            `json:"firstName"`
	LastName        *string            `json:"lastName"`
	Phone           *string            `json:"phone"`
	RUT             *string            `json:"rut"`
	Bio             *string            `json:"bio"`
	Region          *string            `json:"region"`
	Comuna          *string            `json:"comuna"`
	Specialties     *[]string          `json:"specialties"`
	Languages       *[]string          `json:"languages"`
	Services        *[]string          `json:"services"`
	LicenseNumber   *string            `json:"licenseNumber"`
	HourlyRate      *int64             `json:"hourlyRate"`
	ExperienceYears *int               `json:"experienceYears"`
	AvailableNow    *bool              `json:"availableNow"`
	Availability    *map[string][]bool `json:"availability"`
}

// Update handles PUT /api/profile. Only the fields present in the payload
// change; a RUT is normalized to its dotted form after validation.
func (h *ProfileHandler) Update(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	if req.RUT != nil && *req.RUT != "" {
		if !rut.Valid(*req.RUT) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid RUT")
		}
		formatted := rut.Format(*req.RUT)
		req.RUT = &formatted
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&profile.FirstName, req.FirstName)
	apply(&profile.LastName, req.LastName)
	apply(&profile.Phone, req.Phone)
	apply(&profile.RUT, req.RUT)
	apply(&profile.Bio, req.Bio)
	apply(&profile.Region, req.Region)
	apply(&profile.Comuna, req.Comuna)
	apply(&profile.LicenseNumber, req.LicenseNumber)
	if req.Specialties != nil {
		profile.Specialties = *req.Specialties
	}
	if req.Languages != nil {
		profile.Languages = *req.Languages
	}
	if req.Services != nil {
		profile.Services = *req.Services
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "hourlyRate cannot be negative")
		}
		profile.HourlyRate = *req.HourlyRate
	}
	if req.ExperienceYears != nil {
		profile.ExperienceYears = *req.ExperienceYears
	}
	if req.AvailableNow != nil {
		profile.AvailableNow = *req.AvailableNow
	}
	if req.Availability != nil {
		profile.Availability = *req.Availability
	}

	if err := h.db.WithContext(c.Request().Context()).Save(profile).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save profile")
	}

	h.search.InvalidateListing(c.Request().Context())

	return c.JSON(http.StatusOK, profile)
}

// Completion handles GET /api/profile/completion
func (h *ProfileHandler) Completion(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"score":    profile.CompletionScore(),
		"complete": profile.CompletionScore() == 100,
	})
}

// UploadAvatar handles POST /api/upload-avatar with a multipart "avatar"
// part. The file lands in the Firebase storage bucket under avatars/.
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	if h.storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "File storage not configured")
	}

	profile := middleware.ProfileFromContext(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing avatar file")
	}
	if fileHeader.Size > maxAvatarSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Avatar must be 5MB or smaller")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType := mimeForExt(ext)
	if contentType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Avatar must be a jpg, png or webp image")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read avatar file")
	}
	defer src.Close()

	ctx := c.Request().Context()
	bucket, err := h.storage.DefaultBucket()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Storage bucket unavailable")
	}

	objectName := fmt.Sprintf("avatars/%d-%d%s", profile.ID, time.Now().Unix(), ext)
	writer := bucket.Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, src); err != nil {
		writer.Close()
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload avatar")
	}
	if err := writer.Close(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload avatar")
	}

	profile.AvatarURL = fmt.Sprintf("https://storage.googleapis.com/%s/%s", h.bucketName, objectName)
	if err := h.db.WithContext(ctx).Model(profile).Update("avatar_url", profile.AvatarURL).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save avatar url")
	}

	return c.JSON(http.StatusOK, map[string]string{"avatarUrl": profile.AvatarURL})
}

func mimeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
