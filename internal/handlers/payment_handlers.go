package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"lexmarket_echo/internal/middleware"
	"lexmarket_echo/internal/models"
	"lexmarket_echo/internal/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
	stripe   *services.StripeService
	mp       *services.MercadoPagoService
	logger   *zap.Logger
}

func NewPaymentHandler(payments *services.PaymentService, stripeSvc *services.StripeService, mp *services.MercadoPagoService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, stripe: stripeSvc, mp: mp, logger: logger}
}

type createIntentRequest struct {
	Amount      int64     `json:"amount"`
	LawyerID    uint      `json:"lawyerId"`
	Currency    string    `json:"currency"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
}

// CreateCardIntent handles POST /api/create-payment-intent
func (h *PaymentHandler) CreateCardIntent(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	var req createIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.Amount <= 0 || req.LawyerID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount and lawyerId are required")
	}
	if req.Currency == "" {
		req.Currency = "CLP"
	}

	result, err := h.payments.CreateCardIntent(c.Request().Context(), profile, services.CreateBookingInput{
		LawyerID:    req.LawyerID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ScheduledAt: req.ScheduledAt,
		Subject:     req.Subject,
		Message:     req.Message,
	})
	if err != nil {
		if errors.Is(err, services.ErrLawyerNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Lawyer not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create payment intent: "+err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

type createCheckoutRequest struct {
	Amount      int64     `json:"amount"`
	LawyerID    uint      `json:"lawyerId"`
	ServiceID   string    `json:"serviceId"`
	Description string    `json:"description"`
	Currency    string    `json:"currency"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	SuccessURL  string    `json:"successUrl"`
	FailureURL  string    `json:"failureUrl"`
	PendingURL  string    `json:"pendingUrl"`
}

// CreateMercadoPagoCheckout handles POST /api/payments/mercadopago/create
func (h *PaymentHandler) CreateMercadoPagoCheckout(c echo.Context) error {
	profile := middleware.ProfileFromContext(c)

	var req createCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.Amount <= 0 || req.LawyerID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount and lawyerId are required")
	}
	if req.Currency == "" {
		req.Currency = "CLP"
	}

	result, err := h.payments.CreateMercadoPagoCheckout(c.Request().Context(), profile, services.CreateBookingInput{
		LawyerID:    req.LawyerID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ScheduledAt: req.ScheduledAt,
		Subject:     req.Subject,
		Message:     req.Message,
		Description: req.Description,
		SuccessURL:  req.SuccessURL,
		FailureURL:  req.FailureURL,
		PendingURL:  req.PendingURL,
	})
	if err != nil {
		if errors.Is(err, services.ErrLawyerNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Lawyer not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create checkout: "+err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

// StripeWebhook handles POST /api/payments/stripe/webhook. The signature is
// checked over the raw body before anything is parsed.
func (h *PaymentHandler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read body")
	}

	event, err := h.stripe.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("stripe webhook signature verification failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid webhook signature")
	}

	var status models.PaymentStatus
	switch event.Type {
	case "payment_intent.succeeded":
		status = models.PaymentStatusSucceeded
	case "payment_intent.payment_failed":
		status = models.PaymentStatusFailed
	case "payment_intent.processing":
		status = models.PaymentStatusPending
	default:
		h.logger.Info("unhandled stripe event type", zap.String("event_type", string(event.Type)))
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed event payload")
	}

	ctx := c.Request().Context()

	pay, err := h.payments.FindByProcessorID(ctx, pi.ID)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			h.logger.Warn("stripe webhook for unknown intent", zap.String("intent_id", pi.ID))
			return echo.NewHTTPError(http.StatusNotFound, "Unknown payment intent")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Payment lookup failed")
	}

	err = h.payments.ApplyEvent(ctx, pay, models.PaymentGatewayStripe, event.ID, string(event.Type), status, payload, event.Data.Raw)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEvent) {
			h.logger.Info("skipping duplicate stripe event", zap.String("event_id", event.ID))
			return c.JSON(http.StatusOK, map[string]bool{"received": true})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process event")
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

type mpNotification struct {
	ID   json.Number `json:"id"`
	Type string      `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// MercadoPagoWebhook handles POST /api/payments/mercadopago/webhook.
// The x-signature header is verified over the delivery identifiers, then the
// payment is re-fetched from the processor; the embedded payload is never
// trusted for amount or status.
func (h *PaymentHandler) MercadoPagoWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read body")
	}

	var note mpNotification
	if err := json.Unmarshal(payload, &note); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	dataID := c.QueryParam("data.id")
	if dataID == "" {
		dataID = note.Data.ID.String()
	}

	if !h.mp.VerifySignature(c.Request().Header.Get("x-signature"), c.Request().Header.Get("x-request-id"), dataID) {
		h.logger.Warn("mercadopago webhook signature verification failed", zap.String("data_id", dataID))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook signature")
	}

	if note.Type != "payment" {
		h.logger.Info("unhandled mercadopago event type", zap.String("type", note.Type))
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	processorPaymentID, err := strconv.Atoi(dataID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payment id")
	}

	ctx := c.Request().Context()

	// Second round-trip: the processor is the source of truth.
	mpPayment, err := h.mp.GetPayment(ctx, processorPaymentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch payment from processor: "+err.Error())
	}

	pay, err := h.payments.FindByExternalReference(ctx, mpPayment.ExternalReference)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			h.logger.Warn("mercadopago webhook with unknown external reference",
				zap.String("external_reference", mpPayment.ExternalReference))
			return echo.NewHTTPError(http.StatusNotFound, "Unknown external reference")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Payment lookup failed")
	}

	eventID := "mp-" + note.ID.String()
	if note.ID.String() == "" {
		eventID = "mp-" + dataID + "-" + mpPayment.Status
	}

	metadata, _ := json.Marshal(mpPayment)
	err = h.payments.ApplyEvent(ctx, pay, models.PaymentGatewayMercadoPago, eventID, note.Type,
		services.StatusFromProcessor(mpPayment.Status), payload, metadata)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEvent) {
			h.logger.Info("skipping duplicate mercadopago event", zap.String("event_id", eventID))
			return c.JSON(http.StatusOK, map[string]bool{"received": true})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process event")
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
