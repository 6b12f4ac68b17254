package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lexmarket_echo/internal/middleware"
	"lexmarket_echo/internal/models"
	"lexmarket_echo/internal/rut"
	"lexmarket_echo/internal/services"
)

type AccountHandler struct {
	db     *gorm.DB
	stripe *services.StripeService
	logger *zap.Logger
}

func NewAccountHandler(db *gorm.DB, stripeSvc *services.StripeService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{db: db, stripe: stripeSvc, logger: logger}
}

// GetAccountStatus handles GET /api/get-account-status. Lawyers without a
// connected account get a zeroed status instead of an error.
func (h *AccountHandler) GetAccountStatus(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	if profile.StripeAccountID == "" {
		return c.JSON(http.StatusOK, services.AccountStatus{})
	}

	status, err := h.stripe.GetAccountStatus(profile.StripeAccountID)
	if err != nil {
		h.logger.Warn("stripe account status lookup failed",
			zap.String("account_id", profile.StripeAccountID), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to query account status")
	}

	return c.JSON(http.StatusOK, status)
}

// GetBankAccount handles GET /api/get-bank-account
func (h *AccountHandler) GetBankAccount(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	var account models.BankAccount
	err := h.db.WithContext(c.Request().Context()).
		Where("profile_id = ?", profile.ID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No bank account on file")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Bank account lookup failed")
	}

	return c.JSON(http.StatusOK, account)
}

type saveBankAccountRequest struct {
	BankName      string `json:"bankName"`
	AccountType   string `json:"accountType"`
	AccountNumber string `json:"accountNumber"`
	HolderName    string `json:"holderName"`
	HolderRUT     string `json:"holderRut"`
}

// SaveBankAccount handles POST /api/save-bank-account. Each profile keeps a
// single payout destination; saving replaces the previous one.
func (h *AccountHandler) SaveBankAccount(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	var req saveBankAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.BankName == "" || req.AccountNumber == "" || req.HolderName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "bankName, accountNumber and holderName are required")
	}
	if !rut.Valid(req.HolderRUT) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid holder RUT")
	}

	account := models.BankAccount{
		ProfileID:     profile.ID,
		BankName:      req.BankName,
		AccountType:   req.AccountType,
		AccountNumber: req.AccountNumber,
		HolderName:    req.HolderName,
		HolderRUT:     rut.Format(req.HolderRUT),
	}

	err := h.db.WithContext(c.Request().Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}},
			UpdateAll: true,
		}).Create(&account).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save bank account")
	}

	return c.JSON(http.StatusOK, account)
}
