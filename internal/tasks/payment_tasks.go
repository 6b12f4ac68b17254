package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lexmarket_echo/internal/models"
)

// reconcileBatchSize caps how many stale payments one sweep touches.
const reconcileBatchSize = 100

// ReconcilePendingPaymentsTaskDef re-queries the processor for payments that
// have sat in created/pending for over an hour. Webhook delivery is at-least
// -once but not guaranteed; this sweep is the safety net that eventually
// settles rows whose webhook never arrived.
type ReconcilePendingPaymentsTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *ReconcilePendingPaymentsTaskDef) TaskID() string {
	return TaskReconcilePendingPayments
}

// HandleExecution runs one reconciliation sweep
func (t *ReconcilePendingPaymentsTaskDef) HandleExecution(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	stale, err := deps.Payments.StalePayments(ctx, time.Hour, reconcileBatchSize)
	if err != nil {
		return nil, err
	}

	settled := 0
	failures := 0
	for _, pay := range stale {
		if ctx.Err() != nil {
			break
		}

		before := pay.Status
		if err := deps.Payments.RefreshFromProcessor(ctx, &pay); err != nil {
			failures++
			deps.Logger.Warn("reconciliation refresh failed",
				zap.Uint("payment_id", pay.ID),
				zap.String("gateway", string(pay.Gateway)),
				zap.Error(err),
			)
			continue
		}
		if pay.Status != before {
			settled++
			deps.Logger.Info("reconciled stale payment",
				zap.Uint("payment_id", pay.ID),
				zap.String("from", string(before)),
				zap.String("to", string(pay.Status)),
			)
		}
	}

	return map[string]interface{}{
		"checked":  len(stale),
		"settled":  settled,
		"failures": failures,
	}, nil
}

// ReconcilePendingPaymentsTask is the singleton instance of ReconcilePendingPaymentsTaskDef
var ReconcilePendingPaymentsTask = &ReconcilePendingPaymentsTaskDef{}

// EnsureReconciliationTask registers the hourly sweep if it is not scheduled
// yet. Safe to call on every worker start.
func EnsureReconciliationTask(deps *Deps) error {
	var count int64
	err := deps.DB.Model(&models.ScheduledTask{}).
		Where("task_name = ? AND status = ?", TaskReconcilePendingPayments, models.ScheduledTaskStatusActive).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	interval := "FREQ=HOURLY;INTERVAL=1"
	task, err := BuildScheduledTask(
		TaskReconcilePendingPayments,
		map[string]interface{}{},
		time.Now().Add(time.Minute),
		&interval,
		models.ScheduledTaskTypeRecurring,
		1,
	)
	if err != nil {
		return err
	}
	return deps.DB.Create(task).Error
}
