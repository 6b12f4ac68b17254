package services

import (
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/account"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"

	"lexmarket_echo/internal/config"
)

// PlatformFeePercent is the marketplace cut taken from every card payment.
const PlatformFeePercent = 20

// PlatformFee returns the application fee in minor units for a given amount.
func PlatformFee(amount int64) int64 {
	return amount * PlatformFeePercent / 100
}

// StripeService wraps the card processor. An intent routes the lawyer's
// share to their connected account and keeps the platform fee.
type StripeService struct {
	webhookSecret string
}

func NewStripeService(cfg *config.Config) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	return &StripeService{webhookSecret: cfg.StripeWebhookSecret}
}

// CreateIntentResult carries the identifiers the client needs to complete
// checkout. IntentID is the correlation key for webhooks.
type CreateIntentResult struct {
	IntentID     string
	ClientSecret string
}

// CreateIntent creates a card PaymentIntent with the marketplace fee split.
// lawyerAccountID may be empty for lawyers without a connected account yet;
// the transfer is then settled by the batch payout process instead.
func (s *StripeService) CreateIntent(amount int64, currency, lawyerAccountID, externalRef string) (*CreateIntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if lawyerAccountID != "" {
		params.ApplicationFeeAmount = stripe.Int64(PlatformFee(amount))
		params.TransferData = &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(lawyerAccountID),
		}
	}
	params.AddMetadata("external_reference", externalRef)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, gatewayErr("stripe", err)
	}

	return &CreateIntentResult{IntentID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// GetIntent fetches the current processor-side state of an intent.
func (s *StripeService) GetIntent(id string) (*stripe.PaymentIntent, error) {
	pi, err := paymentintent.Get(id, nil)
	if err != nil {
		return nil, gatewayErr("stripe", err)
	}
	return pi, nil
}

// ConstructEvent verifies the webhook signature over the raw body before any
// parsing. An invalid signature is the caller's cue to reject with 400.
func (s *StripeService) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
}

// AccountStatus summarizes a connected account for the lawyer dashboard.
type AccountStatus struct {
	AccountID        string `json:"account_id"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}

// GetAccountStatus queries the processor for the connected account state.
func (s *StripeService) GetAccountStatus(accountID string) (*AccountStatus, error) {
	acct, err := account.GetByID(accountID, nil)
	if err != nil {
		return nil, gatewayErr("stripe", err)
	}
	return &AccountStatus{
		AccountID:        acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}, nil
}
