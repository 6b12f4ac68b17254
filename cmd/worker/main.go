package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lexmarket_echo/internal/config"
	"lexmarket_echo/internal/models"
	"lexmarket_echo/internal/services"
	"lexmarket_echo/internal/tasks"
)

const tickInterval = 5 * time.Minute

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := config.Load()

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	cache, err := services.NewRedisCache(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cache.Close()

	stripeSvc := services.NewStripeService(cfg)
	mpSvc, err := services.NewMercadoPagoService(cfg)
	if err != nil {
		logger.Fatal("failed to initialize mercadopago client", zap.Error(err))
	}

	emailSvc := services.NewEmailService(cfg)
	dispatcher := services.NewDispatcher(db, emailSvc, logger)
	paymentSvc := services.NewPaymentService(db, cache, stripeSvc, mpSvc, cfg, logger)

	deps := &tasks.Deps{
		DB:       db,
		Logger:   logger,
		Notifier: dispatcher,
		Payments: paymentSvc,
	}

	tasks.DefineTasks()
	if err := tasks.EnsureReconciliationTask(deps); err != nil {
		logger.Warn("failed to ensure reconciliation task", zap.Error(err))
	}

	logger.Info("worker started", zap.Duration("tick", tickInterval))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutting down worker")
		cancel()
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	// One pass at startup so a restart does not delay overdue work by a
	// full tick.
	processScheduledTasks(ctx, deps)

	for {
		select {
		case <-ticker.C:
			processScheduledTasks(ctx, deps)
		case <-ctx.Done():
			return
		}
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func processScheduledTasks(ctx context.Context, deps *tasks.Deps) {
	now := time.Now()

	var pendingTasks []models.ScheduledTask
	err := deps.DB.Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now).Find(&pendingTasks).Error
	if err != nil {
		deps.Logger.Error("failed to fetch pending tasks", zap.Error(err))
		return
	}

	if len(pendingTasks) == 0 {
		return
	}

	deps.Logger.Info("found pending tasks", zap.Int("count", len(pendingTasks)))

	for _, task := range pendingTasks {
		if ctx.Err() != nil {
			return
		}
		executeTask(ctx, deps, task, 1)
	}
}

func executeTask(ctx context.Context, deps *tasks.Deps, task models.ScheduledTask, curAttempt int) {
	deps.Logger.Info("processing task",
		zap.String("task_name", task.TaskName), zap.Uint("task_id", task.ID), zap.Int("attempt", curAttempt))

	handler, found := tasks.GetHandler(task.TaskName)
	if !found {
		deps.Logger.Error("no handler registered for task", zap.String("task_name", task.TaskName))

		now := time.Now()
		deps.DB.Model(&task).Updates(map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &now,
		})
		deps.DB.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          "handler_not_found",
			AttemptNumber:   curAttempt,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "Handler not found"},
		})
		return
	}

	startTime := time.Now()
	result, err := handler(ctx, deps, task)
	runtimeMs := int(time.Since(startTime).Milliseconds())

	status := "success"
	var resultData map[string]interface{}
	if err != nil {
		status = "failure"
		resultData = map[string]interface{}{"error": err.Error()}
		deps.Logger.Error("task failed", zap.String("task_name", task.TaskName), zap.Error(err))
	} else {
		resultData = result
	}

	deps.DB.Create(&models.ScheduledTaskHistory{
		ScheduledTaskID: task.ID,
		TaskName:        task.TaskName,
		RunAt:           startTime,
		Runtime:         runtimeMs,
		Status:          status,
		AttemptNumber:   curAttempt,
		Arguments:       task.Arguments,
		Result:          resultData,
	})

	taskUpdates := map[string]interface{}{
		"last_run": &startTime,
	}

	if status != "success" {
		if curAttempt < task.MaxAttempt {
			executeTask(ctx, deps, task, curAttempt+1)
			return
		}
		taskUpdates["status"] = models.ScheduledTaskStatusFailure
	} else {
		switch task.TaskType {
		case models.ScheduledTaskTypeOneTime:
			taskUpdates["status"] = models.ScheduledTaskStatusDone
		case models.ScheduledTaskTypeRecurring:
			nextDue := task.NextDue()
			// Only reschedule when the next occurrence moves forward,
			// otherwise the task would fire again on the same tick.
			if nextDue.After(task.Due) {
				taskUpdates["status"] = models.ScheduledTaskStatusActive
				taskUpdates["due"] = nextDue
			} else {
				taskUpdates["status"] = models.ScheduledTaskStatusDone
			}
		}
	}

	deps.DB.Model(&task).Updates(taskUpdates)
}
