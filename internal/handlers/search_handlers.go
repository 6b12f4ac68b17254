package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"lexmarket_echo/internal/models"
	"lexmarket_echo/internal/services"
)

type SearchHandler struct {
	db     *gorm.DB
	search *services.SearchService
}

func NewSearchHandler(db *gorm.DB, search *services.SearchService) *SearchHandler {
	return &SearchHandler{db: db, search: search}
}

// Search handles GET /api/lawyers/search. All filters are optional query
// parameters; an unfiltered call returns the cached verified listing.
func (h *SearchHandler) Search(c echo.Context) error {
	in := services.SearchInput{
		Query:        c.QueryParam("q"),
		Specialty:    c.QueryParam("specialty"),
		Location:     c.QueryParam("location"),
		AvailableNow: c.QueryParam("availableNow") == "true",
	}
	if raw := c.QueryParam("minRating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "minRating must be a number")
		}
		in.MinRating = rating
	}
	if raw := c.QueryParam("minExperience"); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "minExperience must be an integer")
		}
		in.MinExperience = years
	}

	lawyers, err := h.search.Search(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"lawyers": lawyers,
		"count":   len(lawyers),
	})
}

// GetLawyer handles GET /api/lawyers/:id
func (h *SearchHandler) GetLawyer(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid lawyer id")
	}

	var lawyer models.Profile
	err = h.db.WithContext(c.Request().Context()).
		Where("id = ? AND role = ?", id, models.RoleLawyer).
		First(&lawyer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Lawyer not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Lawyer lookup failed")
	}

	return c.JSON(http.StatusOK, lawyer)
}
