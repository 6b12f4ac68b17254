package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lexmarket_echo/internal/config"
	"lexmarket_echo/internal/models"
)

// stagingTTL bounds how long a booking may sit unpaid before its details
// expire. Long enough to survive the checkout redirect comfortably.
const stagingTTL = 24 * time.Hour

var (
	ErrLawyerNotFound   = errors.New("lawyer not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrNotPaymentOwner  = errors.New("payment belongs to another user")
	ErrDuplicateEvent   = errors.New("event already processed")
	ErrStagingNotFound  = errors.New("booking staging record not found or expired")
	ErrPaymentUnsettled = errors.New("payment has not succeeded")
)

// BookingStaging holds the booking intent captured before the client is sent
// to checkout. Server-held so it survives the redirect round-trip.
type BookingStaging struct {
	ClientID    uint      `json:"client_id"`
	LawyerID    uint      `json:"lawyer_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
}

// StagingKey is the Redis key for a booking staging record.
func StagingKey(externalRef string) string {
	return "booking:staging:" + externalRef
}

type PaymentService struct {
	db     *gorm.DB
	cache  *RedisCache
	stripe *StripeService
	mp     *MercadoPagoService
	cfg    *config.Config
	logger *zap.Logger
}

func NewPaymentService(db *gorm.DB, cache *RedisCache, stripe *StripeService, mp *MercadoPagoService, cfg *config.Config, logger *zap.Logger) *PaymentService {
	return &PaymentService{db: db, cache: cache, stripe: stripe, mp: mp, cfg: cfg, logger: logger}
}

// CreateBookingInput is the booking intent common to both gateways.
type CreateBookingInput struct {
	LawyerID    uint
	Amount      int64
	Currency    string
	ScheduledAt time.Time
	Subject     string
	Message     string
	Description string
	SuccessURL  string
	FailureURL  string
	PendingURL  string
}

func (s *PaymentService) lookupLawyer(lawyerID uint) (*models.Profile, error) {
	var lawyer models.Profile
	err := s.db.Where("id = ? AND role = ?", lawyerID, models.RoleLawyer).First(&lawyer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLawyerNotFound
		}
		return nil, err
	}
	return &lawyer, nil
}

func (s *PaymentService) stageBooking(ctx context.Context, ref string, client *models.Profile, in CreateBookingInput) error {
	staging := BookingStaging{
		ClientID:    client.ID,
		LawyerID:    in.LawyerID,
		ScheduledAt: in.ScheduledAt,
		Subject:     in.Subject,
		Message:     in.Message,
		Amount:      in.Amount,
		Currency:    in.Currency,
	}
	return s.cache.Set(ctx, StagingKey(ref), staging, stagingTTL)
}

// CardIntentResult is the create-payment-intent response contract.
type CardIntentResult struct {
	ClientSecret      string `json:"clientSecret"`
	ExternalReference string `json:"externalReference"`
	Amount            int64  `json:"amount"`
	PlatformFee       int64  `json:"platformFee"`
	LawyerAmount      int64  `json:"lawyerAmount"`
}

// CreateCardIntent creates a Stripe intent plus the local Payment row and
// the staged booking details.
func (s *PaymentService) CreateCardIntent(ctx context.Context, client *models.Profile, in CreateBookingInput) (*CardIntentResult, error) {
	lawyer, err := s.lookupLawyer(in.LawyerID)
	if err != nil {
		return nil, err
	}

	ref := uuid.NewString()

	intent, err := s.stripe.CreateIntent(in.Amount, in.Currency, lawyer.StripeAccountID, ref)
	if err != nil {
		return nil, err
	}

	pay := models.Payment{
		UserID:            client.ID,
		LawyerID:          lawyer.ID,
		Amount:            in.Amount,
		Currency:          in.Currency,
		Status:            models.PaymentStatusCreated,
		Gateway:           models.PaymentGatewayStripe,
		ExternalReference: ref,
		ProcessorID:       intent.IntentID,
	}
	if err := s.db.WithContext(ctx).Create(&pay).Error; err != nil {
		return nil, err
	}

	if err := s.stageBooking(ctx, ref, client, in); err != nil {
		s.logger.Warn("failed to stage booking details", zap.String("external_reference", ref), zap.Error(err))
	}

	fee := PlatformFee(in.Amount)
	return &CardIntentResult{
		ClientSecret:      intent.ClientSecret,
		ExternalReference: ref,
		Amount:            in.Amount,
		PlatformFee:       fee,
		LawyerAmount:      in.Amount - fee,
	}, nil
}

// CheckoutResult is the mercadopago create response contract.
type CheckoutResult struct {
	PaymentID         uint   `json:"paymentId"`
	ExternalReference string `json:"externalReference"`
	InitPoint         string `json:"initPoint"`
	PreferenceID      string `json:"preferenceId"`
}

// CreateMercadoPagoCheckout creates a Checkout Pro preference plus the local
// Payment row and the staged booking details.
func (s *PaymentService) CreateMercadoPagoCheckout(ctx context.Context, client *models.Profile, in CreateBookingInput) (*CheckoutResult, error) {
	lawyer, err := s.lookupLawyer(in.LawyerID)
	if err != nil {
		return nil, err
	}

	ref := uuid.NewString()

	title := in.Description
	if title == "" {
		title = fmt.Sprintf("Consulta legal con %s", lawyer.FullName())
	}

	pref, err := s.mp.CreatePreference(ctx, PreferenceInput{
		Amount:            in.Amount,
		Currency:          in.Currency,
		Title:             title,
		Description:       in.Subject,
		ExternalReference: ref,
		NotificationURL:   s.cfg.PublicBaseURL + "/api/payments/mercadopago/webhook",
		SuccessURL:        in.SuccessURL,
		FailureURL:        in.FailureURL,
		PendingURL:        in.PendingURL,
		Metadata: map[string]any{
			"lawyer_id": lawyer.ID,
			"client_id": client.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	pay := models.Payment{
		UserID:            client.ID,
		LawyerID:          lawyer.ID,
		Amount:            in.Amount,
		Currency:          in.Currency,
		Status:            models.PaymentStatusCreated,
		Gateway:           models.PaymentGatewayMercadoPago,
		ExternalReference: ref,
		ProcessorID:       pref.PreferenceID,
	}
	if err := s.db.WithContext(ctx).Create(&pay).Error; err != nil {
		return nil, err
	}

	if err := s.stageBooking(ctx, ref, client, in); err != nil {
		s.logger.Warn("failed to stage booking details", zap.String("external_reference", ref), zap.Error(err))
	}

	return &CheckoutResult{
		PaymentID:         pay.ID,
		ExternalReference: ref,
		InitPoint:         pref.InitPoint,
		PreferenceID:      pref.PreferenceID,
	}, nil
}

// ApplyEvent stores a webhook delivery and applies its status transition in
// one transaction. A redelivery of the same processor event id returns
// ErrDuplicateEvent; a failed transition rolls the dedup row back so the
// processor's retry gets another chance at the status update.
func (s *PaymentService) ApplyEvent(ctx context.Context, pay *models.Payment, gateway models.PaymentGateway, eventID, eventType string, to models.PaymentStatus, payload, metadata []byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PaymentEvent
		err := tx.Where("event_id = ?", eventID).First(&existing).Error
		if err == nil {
			return ErrDuplicateEvent
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		event := models.PaymentEvent{
			Gateway:           gateway,
			EventID:           eventID,
			EventType:         eventType,
			ExternalReference: pay.ExternalReference,
			Payload:           json.RawMessage(payload),
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		return s.transition(tx, pay, to, metadata)
	})
}

// FindByExternalReference loads the payment correlated to a webhook.
func (s *PaymentService) FindByExternalReference(ctx context.Context, ref string) (*models.Payment, error) {
	var pay models.Payment
	err := s.db.WithContext(ctx).Where("external_reference = ?", ref).First(&pay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &pay, nil
}

// FindByProcessorID loads the payment by its processor-side intent id.
func (s *PaymentService) FindByProcessorID(ctx context.Context, processorID string) (*models.Payment, error) {
	var pay models.Payment
	err := s.db.WithContext(ctx).Where("processor_id = ?", processorID).First(&pay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &pay, nil
}

// Transition applies a processor-reported status. Backward transitions are
// dropped, so a late "pending" never regresses a settled payment.
func (s *PaymentService) Transition(ctx context.Context, pay *models.Payment, to models.PaymentStatus, metadata []byte) error {
	return s.transition(s.db.WithContext(ctx), pay, to, metadata)
}

// transition is the guarded status write. The update is optimistic: it only
// lands while the row still holds the status we read, so two concurrent
// deliveries cannot both pass the monotonicity check on stale reads. A lost
// race reloads the row and re-checks before retrying.
func (s *PaymentService) transition(tx *gorm.DB, pay *models.Payment, to models.PaymentStatus, metadata []byte) error {
	for attempt := 0; attempt < 3; attempt++ {
		if !models.CanTransition(pay.Status, to) {
			s.logger.Info("ignoring non-forward payment transition",
				zap.Uint("payment_id", pay.ID),
				zap.String("from", string(pay.Status)),
				zap.String("to", string(to)),
			)
			return nil
		}

		updates := map[string]interface{}{"status": to}
		if len(metadata) > 0 {
			updates["metadata"] = json.RawMessage(metadata)
		}
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", pay.ID, pay.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			pay.Status = to
			return nil
		}

		if err := tx.First(pay, pay.ID).Error; err != nil {
			return err
		}
	}
	return fmt.Errorf("payment %d: transition to %s lost the status race repeatedly", pay.ID, to)
}

// RefreshFromProcessor queries the processor for the authoritative state of
// an unsettled payment and applies it. Used by the confirm path and the
// reconciliation sweep; never called for settled payments.
func (s *PaymentService) RefreshFromProcessor(ctx context.Context, pay *models.Payment) error {
	if pay.Terminal() {
		return nil
	}

	switch pay.Gateway {
	case models.PaymentGatewayStripe:
		pi, err := s.stripe.GetIntent(pay.ProcessorID)
		if err != nil {
			return err
		}
		var to models.PaymentStatus
		switch pi.Status {
		case "succeeded":
			to = models.PaymentStatusSucceeded
		case "canceled":
			to = models.PaymentStatusFailed
		default:
			to = models.PaymentStatusPending
		}
		raw, _ := json.Marshal(pi)
		return s.Transition(ctx, pay, to, raw)

	case models.PaymentGatewayMercadoPago:
		// Until the first webhook lands we only hold the preference id, and
		// preferences cannot be polled for payment state.
		if pay.Status == models.PaymentStatusCreated {
			return nil
		}
		var meta struct {
			ID int `json:"id"`
		}
		if len(pay.Metadata) == 0 || json.Unmarshal(pay.Metadata, &meta) != nil || meta.ID == 0 {
			return nil
		}
		resp, err := s.mp.GetPayment(ctx, meta.ID)
		if err != nil {
			return err
		}
		raw, _ := json.Marshal(resp)
		return s.Transition(ctx, pay, StatusFromProcessor(resp.Status), raw)
	}

	return nil
}

// StalePayments returns unsettled payments older than the cutoff, for the
// reconciliation sweep.
func (s *PaymentService) StalePayments(ctx context.Context, olderThan time.Duration, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	cutoff := time.Now().Add(-olderThan)
	err := s.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", []models.PaymentStatus{models.PaymentStatusCreated, models.PaymentStatusPending}, cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}
