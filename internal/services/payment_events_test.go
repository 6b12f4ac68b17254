package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lexmarket_echo/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Payment{}, &models.PaymentEvent{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db, logger: zap.NewNop()}
}

func createTestPayment(t *testing.T, db *gorm.DB, status models.PaymentStatus) *models.Payment {
	t.Helper()
	pay := &models.Payment{
		UserID:            1,
		LawyerID:          2,
		Amount:            50000,
		Currency:          "CLP",
		Status:            status,
		Gateway:           models.PaymentGatewayStripe,
		ExternalReference: "ref-" + string(status),
		ProcessorID:       "pi_test",
	}
	if err := db.Create(pay).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return pay
}

func TestApplyEventDeduplicatesRedelivery(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPaymentService(db)
	ctx := context.Background()
	pay := createTestPayment(t, db, models.PaymentStatusCreated)

	payload := []byte(`{"id":"evt_1"}`)
	err := svc.ApplyEvent(ctx, pay, models.PaymentGatewayStripe, "evt_1", "payment_intent.succeeded",
		models.PaymentStatusSucceeded, payload, nil)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	var stored models.Payment
	if err := db.First(&stored, pay.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if stored.Status != models.PaymentStatusSucceeded {
		t.Errorf("status = %q, want succeeded", stored.Status)
	}

	err = svc.ApplyEvent(ctx, pay, models.PaymentGatewayStripe, "evt_1", "payment_intent.succeeded",
		models.PaymentStatusSucceeded, payload, nil)
	if !errors.Is(err, ErrDuplicateEvent) {
		t.Errorf("redelivery error = %v, want ErrDuplicateEvent", err)
	}

	var count int64
	db.Model(&models.PaymentEvent{}).Count(&count)
	if count != 1 {
		t.Errorf("event rows = %d, want 1", count)
	}
}

func TestApplyEventLateDeliveryDoesNotRegress(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPaymentService(db)
	ctx := context.Background()
	pay := createTestPayment(t, db, models.PaymentStatusSucceeded)

	err := svc.ApplyEvent(ctx, pay, models.PaymentGatewayStripe, "evt_late", "payment_intent.processing",
		models.PaymentStatusPending, []byte(`{"id":"evt_late"}`), nil)
	if err != nil {
		t.Fatalf("late delivery: %v", err)
	}

	var stored models.Payment
	if err := db.First(&stored, pay.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if stored.Status != models.PaymentStatusSucceeded {
		t.Errorf("status regressed to %q after late pending delivery", stored.Status)
	}

	// The delivery itself is still recorded for audit.
	var count int64
	db.Model(&models.PaymentEvent{}).Where("event_id = ?", "evt_late").Count(&count)
	if count != 1 {
		t.Errorf("late event rows = %d, want 1", count)
	}
}

func TestApplyEventRollsBackDedupRowOnFailedTransition(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPaymentService(db)
	ctx := context.Background()
	pay := createTestPayment(t, db, models.PaymentStatusCreated)

	// Deleting the row makes the guarded update miss and the reload fail,
	// so the whole event transaction must roll back.
	if err := db.Delete(&models.Payment{}, pay.ID).Error; err != nil {
		t.Fatalf("delete payment: %v", err)
	}

	err := svc.ApplyEvent(ctx, pay, models.PaymentGatewayStripe, "evt_gone", "payment_intent.succeeded",
		models.PaymentStatusSucceeded, []byte(`{"id":"evt_gone"}`), nil)
	if err == nil {
		t.Fatal("expected error when the payment row is gone")
	}

	var count int64
	db.Model(&models.PaymentEvent{}).Where("event_id = ?", "evt_gone").Count(&count)
	if count != 0 {
		t.Errorf("event rows = %d after failed transition, want 0 so a redelivery can retry", count)
	}
}

func TestTransitionLostRaceReloadsAndRechecks(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPaymentService(db)
	ctx := context.Background()
	pay := createTestPayment(t, db, models.PaymentStatusCreated)

	// A concurrent delivery settles the payment after our stale read.
	err := db.Model(&models.Payment{}).Where("id = ?", pay.ID).
		Update("status", models.PaymentStatusSucceeded).Error
	if err != nil {
		t.Fatalf("out-of-band update: %v", err)
	}

	// pay still holds the stale "created"; the guarded write must miss,
	// reload, and drop the backward transition instead of applying it.
	if err := svc.Transition(ctx, pay, models.PaymentStatusPending, nil); err != nil {
		t.Fatalf("transition: %v", err)
	}

	if pay.Status != models.PaymentStatusSucceeded {
		t.Errorf("in-memory status = %q, want succeeded after reload", pay.Status)
	}

	var stored models.Payment
	if err := db.First(&stored, pay.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if stored.Status != models.PaymentStatusSucceeded {
		t.Errorf("stored status = %q, want succeeded", stored.Status)
	}
}
