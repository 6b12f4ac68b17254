package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"lexmarket_echo/internal/config"
	"lexmarket_echo/internal/models"
)

// maxInstallments caps the installment plans offered at checkout.
const maxInstallments = 12

// MercadoPagoService wraps the regional processor: Checkout Pro preferences
// for collection and payment lookups for webhook verification.
type MercadoPagoService struct {
	prefClient    preference.Client
	paymentClient payment.Client
	webhookSecret string
}

func NewMercadoPagoService(cfg *config.Config) (*MercadoPagoService, error) {
	mpCfg, err := mpconfig.New(cfg.MercadoPagoAccessToken)
	if err != nil {
		return nil, err
	}
	return &MercadoPagoService{
		prefClient:    preference.NewClient(mpCfg),
		paymentClient: payment.NewClient(mpCfg),
		webhookSecret: cfg.MercadoPagoWebhookSecret,
	}, nil
}

// PreferenceInput describes a checkout preference to create. Amount is in
// minor units; CLP has none, so the value converts one to one.
type PreferenceInput struct {
	Amount            int64
	Currency          string
	Title             string
	Description       string
	ExternalReference string
	NotificationURL   string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
	Metadata          map[string]any
}

// PreferenceResult carries the redirect identifiers back to the client.
type PreferenceResult struct {
	PreferenceID string
	InitPoint    string
}

// CreatePreference registers a Checkout Pro preference with the processor.
func (s *MercadoPagoService) CreatePreference(ctx context.Context, in PreferenceInput) (*PreferenceResult, error) {
	unitPrice := float64(in.Amount)
	if in.Currency != "CLP" {
		unitPrice = float64(in.Amount) / 100
	}

	req := preference.Request{
		Items: []preference.ItemRequest{
			{
				ID:          in.ExternalReference,
				Title:       in.Title,
				Description: in.Description,
				Quantity:    1,
				UnitPrice:   unitPrice,
				CurrencyID:  in.Currency,
			},
		},
		ExternalReference: in.ExternalReference,
		NotificationURL:   in.NotificationURL,
		BackURLs: &preference.BackURLsRequest{
			Success: in.SuccessURL,
			Failure: in.FailureURL,
			Pending: in.PendingURL,
		},
		AutoReturn: "approved",
		PaymentMethods: &preference.PaymentMethodsRequest{
			Installments: maxInstallments,
		},
		Metadata: in.Metadata,
	}

	resp, err := s.prefClient.Create(ctx, req)
	if err != nil {
		return nil, gatewayErr("mercadopago", err)
	}

	return &PreferenceResult{PreferenceID: resp.ID, InitPoint: resp.InitPoint}, nil
}

// GetPayment fetches the full payment from the processor. Webhook payloads
// are never trusted for amount or status; this second round-trip is.
func (s *MercadoPagoService) GetPayment(ctx context.Context, id int) (*payment.Response, error) {
	resp, err := s.paymentClient.Get(ctx, id)
	if err != nil {
		return nil, gatewayErr("mercadopago", err)
	}
	return resp, nil
}

// VerifySignature checks the x-signature header of a webhook delivery
// against the shared secret. The manifest layout is fixed by the processor:
// "id:{data.id};request-id:{x-request-id};ts:{ts};".
func (s *MercadoPagoService) VerifySignature(xSignature, xRequestID, dataID string) bool {
	if s.webhookSecret == "" {
		return false
	}

	var ts, v1 string
	for _, part := range strings.Split(xSignature, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "ts":
			ts = v
		case "v1":
			v1 = v
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, xRequestID, ts)
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(v1))
}

// StatusFromProcessor maps the processor's payment status onto ours.
func StatusFromProcessor(status string) models.PaymentStatus {
	switch status {
	case "approved", "authorized":
		return models.PaymentStatusSucceeded
	case "rejected", "cancelled", "refunded", "charged_back":
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}
