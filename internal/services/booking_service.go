package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lexmarket_echo/internal/currency"
	"lexmarket_echo/internal/models"
	"lexmarket_echo/internal/tasks"
)

// confirmLockTTL bounds the Redis lock held while a confirm request runs.
const confirmLockTTL = 30 * time.Second

// BookingService turns a settled payment into an appointment. The unique
// index on appointments.payment_id is the hard idempotency guard; the Redis
// lock only narrows the race window between concurrent confirms.
type BookingService struct {
	db         *gorm.DB
	cache      *RedisCache
	payments   *PaymentService
	dispatcher *Dispatcher
	meetings   *MeetingService
	logger     *zap.Logger
}

func NewBookingService(db *gorm.DB, cache *RedisCache, payments *PaymentService, dispatcher *Dispatcher, meetings *MeetingService, logger *zap.Logger) *BookingService {
	return &BookingService{
		db:         db,
		cache:      cache,
		payments:   payments,
		dispatcher: dispatcher,
		meetings:   meetings,
		logger:     logger,
	}
}

func (s *BookingService) findByPaymentID(ctx context.Context, paymentID uint) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&appt).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Confirm creates the appointment for a settled payment. Submitting the same
// external reference twice returns the appointment created the first time.
func (s *BookingService) Confirm(ctx context.Context, client *models.Profile, externalRef string) (*models.Appointment, error) {
	pay, err := s.payments.FindByExternalReference(ctx, externalRef)
	if err != nil {
		return nil, err
	}
	if pay.UserID != client.ID {
		return nil, ErrNotPaymentOwner
	}

	// Idempotent fast path: the appointment may already exist, either from a
	// previous confirm or from a retry after a partial failure.
	if appt, err := s.findByPaymentID(ctx, pay.ID); err == nil {
		return appt, nil
	}

	// The webhook may not have landed yet when the client returns from
	// checkout; ask the processor once before giving up.
	if pay.Status != models.PaymentStatusSucceeded {
		if err := s.payments.RefreshFromProcessor(ctx, pay); err != nil {
			s.logger.Warn("processor status refresh failed",
				zap.String("external_reference", externalRef), zap.Error(err))
		}
	}
	if pay.Status != models.PaymentStatusSucceeded {
		return nil, ErrPaymentUnsettled
	}

	lockKey := "booking:lock:" + externalRef
	locked, err := s.cache.SetNX(ctx, lockKey, true, confirmLockTTL)
	if err == nil && locked {
		defer s.cache.Delete(ctx, lockKey)
	}

	var staging BookingStaging
	if err := s.cache.Get(ctx, StagingKey(externalRef), &staging); err != nil {
		return nil, ErrStagingNotFound
	}

	appt := models.Appointment{
		ClientID:    pay.UserID,
		LawyerID:    pay.LawyerID,
		ScheduledAt: staging.ScheduledAt,
		Status:      models.AppointmentStatusScheduled,
		Price:       pay.Amount,
		PaymentID:   pay.ID,
		Subject:     staging.Subject,
		Notes:       staging.Message,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&appt).Error; err != nil {
			return err
		}
		return tx.Model(&models.Payment{}).Where("id = ?", pay.ID).
			Update("appointment_id", appt.ID).Error
	})
	if err != nil {
		// A concurrent confirm or webhook may have won the insert race on
		// the unique payment_id index. Staging stays intact on real failure
		// so the client can retry.
		if existing, findErr := s.findByPaymentID(ctx, pay.ID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	s.provisionMeetingLink(ctx, &appt)
	s.scheduleReminder(ctx, &appt)
	s.notifyParties(ctx, &appt, pay)

	// Only cleared after the transaction committed.
	if err := s.cache.Delete(ctx, StagingKey(externalRef)); err != nil {
		s.logger.Warn("failed to clear booking staging", zap.String("external_reference", externalRef), zap.Error(err))
	}

	return &appt, nil
}

// provisionMeetingLink attaches a video room. Failure leaves the link empty;
// the reminder email carries whatever is set by then.
func (s *BookingService) provisionMeetingLink(ctx context.Context, appt *models.Appointment) {
	label := fmt.Sprintf("consulta-%d", appt.ID)
	url, err := s.meetings.CreateRoom(ctx, label, appt.ScheduledAt)
	if err != nil {
		s.logger.Warn("failed to provision meeting room", zap.Uint("appointment_id", appt.ID), zap.Error(err))
		return
	}
	if err := s.db.WithContext(ctx).Model(appt).Update("meeting_link", url).Error; err != nil {
		s.logger.Warn("failed to store meeting link", zap.Uint("appointment_id", appt.ID), zap.Error(err))
		return
	}
	appt.MeetingLink = url
}

func (s *BookingService) scheduleReminder(ctx context.Context, appt *models.Appointment) {
	due := appt.ScheduledAt.Add(-24 * time.Hour)
	if due.Before(time.Now()) {
		return
	}

	task, err := tasks.BuildScheduledTask(
		tasks.TaskAppointmentReminder,
		map[string]interface{}{"appointment_id": appt.ID},
		due, nil, models.ScheduledTaskTypeOneTime, 3,
	)
	if err != nil {
		s.logger.Warn("failed to build reminder task", zap.Uint("appointment_id", appt.ID), zap.Error(err))
		return
	}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		s.logger.Warn("failed to schedule reminder task", zap.Uint("appointment_id", appt.ID), zap.Error(err))
	}
}

func (s *BookingService) notifyParties(ctx context.Context, appt *models.Appointment, pay *models.Payment) {
	var client, lawyer models.Profile
	if err := s.db.WithContext(ctx).First(&client, appt.ClientID).Error; err != nil {
		s.logger.Warn("client profile lookup failed for notification", zap.Uint("appointment_id", appt.ID), zap.Error(err))
		return
	}
	if err := s.db.WithContext(ctx).First(&lawyer, appt.LawyerID).Error; err != nil {
		s.logger.Warn("lawyer profile lookup failed for notification", zap.Uint("appointment_id", appt.ID), zap.Error(err))
		return
	}

	when := appt.ScheduledAt.Format("02-01-2006 15:04")
	amount := currency.Display(pay.Amount, pay.Currency)

	s.dispatcher.Fire(ctx, lawyer.Email,
		"Nueva consulta agendada",
		fmt.Sprintf("<p>%s agendó una consulta contigo para el %s.</p><p>Tema: %s</p><p>Monto: %s</p>",
			client.FullName(), when, appt.Subject, amount))

	s.dispatcher.Fire(ctx, client.Email,
		"Tu consulta está confirmada",
		fmt.Sprintf("<p>Tu consulta con %s quedó agendada para el %s.</p><p>Monto pagado: %s</p>",
			lawyer.FullName(), when, amount))
}
