package services

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lexmarket_echo/internal/config"
	"lexmarket_echo/internal/models"
)

type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.EmailFrom,
	}
}

// Send delivers a single HTML email and returns a message id for the
// notification log. There is no queue and no retry here.
func (s *EmailService) Send(ctx context.Context, to, subject, html string) (string, error) {
	if s.host == "" || s.port == "" || s.user == "" || s.password == "" {
		return "", fmt.Errorf("SMTP credentials not fully configured")
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	message := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		html + "\r\n")

	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, message); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return fmt.Sprintf("smtp-%d", time.Now().UnixNano()), nil
}

// Dispatcher sends notifications fire-and-forget. Every attempt lands in
// notification_logs; delivery failure never reaches the caller.
type Dispatcher struct {
	db     *gorm.DB
	email  *EmailService
	logger *zap.Logger
}

func NewDispatcher(db *gorm.DB, email *EmailService, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{db: db, email: email, logger: logger}
}

// Fire attempts delivery and records the outcome. Callers do not wait on the
// result and must not depend on it.
func (d *Dispatcher) Fire(ctx context.Context, to, subject, html string) {
	entry := models.NotificationLog{
		Recipient: to,
		Subject:   subject,
		Channel:   "email",
	}

	msgID, err := d.email.Send(ctx, to, subject, html)
	if err != nil {
		entry.Status = models.NotificationStatusFailed
		entry.Error = err.Error()
		d.logger.Warn("notification delivery failed",
			zap.String("recipient", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
	} else {
		entry.Status = models.NotificationStatusSent
		entry.MessageID = msgID
	}

	if err := d.db.WithContext(ctx).Create(&entry).Error; err != nil {
		d.logger.Warn("failed to record notification outcome", zap.Error(err))
	}
}
