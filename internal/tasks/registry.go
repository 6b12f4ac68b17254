package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lexmarket_echo/internal/models"
)

// Task names known to the worker.
const (
	TaskAppointmentReminder      = "appointment_reminder"
	TaskReconcilePendingPayments = "reconcile_pending_payments"
)

// Notifier delivers a fire-and-forget notification and records its outcome.
type Notifier interface {
	Fire(ctx context.Context, to, subject, html string)
}

// PaymentReconciler exposes the slice of the payment service the
// reconciliation sweep needs.
type PaymentReconciler interface {
	StalePayments(ctx context.Context, olderThan time.Duration, limit int) ([]models.Payment, error)
	RefreshFromProcessor(ctx context.Context, pay *models.Payment) error
}

// Deps carries everything a task handler may touch. Handlers receive it
// instead of reaching for globals so the worker stays testable.
type Deps struct {
	DB       *gorm.DB
	Logger   *zap.Logger
	Notifier Notifier
	Payments PaymentReconciler
}

// TaskHandler is the function signature for a task handler
type TaskHandler func(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error)

// Registry stores the mapping of task names to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]TaskHandler
}

// GlobalRegistry is the default global registry
var GlobalRegistry = &Registry{
	handlers: make(map[string]TaskHandler),
}

// Register adds a handler for a task name
func (r *Registry) Register(name string, handler TaskHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Get retrieves a handler for a task name
func (r *Registry) Get(name string) (TaskHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}

// RegisterHandler is a helper to register to the global registry
func RegisterHandler(name string, handler TaskHandler) {
	GlobalRegistry.Register(name, handler)
}

// GetHandler is a helper to get from the global registry
func GetHandler(name string) (TaskHandler, bool) {
	return GlobalRegistry.Get(name)
}
