package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"lexmarket_echo/internal/config"
	"lexmarket_echo/internal/handlers"
	"lexmarket_echo/internal/middleware"
	"lexmarket_echo/internal/services"
)

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

	// Database
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := services.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	// Redis
	cache, err := services.NewRedisCache(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cache.Close()

	// Firebase
	authClient, storageClient, err := services.InitFirebase(cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		logger.Warn("firebase initialization failed, auth and uploads disabled", zap.Error(err))
	}

	// Payment processors
	stripeSvc := services.NewStripeService(cfg)
	mpSvc, err := services.NewMercadoPagoService(cfg)
	if err != nil {
		logger.Fatal("failed to initialize mercadopago client", zap.Error(err))
	}

	// Services
	emailSvc := services.NewEmailService(cfg)
	dispatcher := services.NewDispatcher(db, emailSvc, logger)
	meetingSvc := services.NewMeetingService(cfg)
	paymentSvc := services.NewPaymentService(db, cache, stripeSvc, mpSvc, cfg, logger)
	bookingSvc := services.NewBookingService(db, cache, paymentSvc, dispatcher, meetingSvc, logger)
	searchSvc := services.NewSearchService(db, cache)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.HTTPErrorHandler = middleware.NewErrorHandler(db, logger)

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(paymentSvc, stripeSvc, mpSvc, logger)
	bookingHandler := handlers.NewBookingHandler(db, bookingSvc, logger)
	searchHandler := handlers.NewSearchHandler(db, searchSvc)
	profileHandler := handlers.NewProfileHandler(db, searchSvc, storageClient, cfg.StorageBucket, logger)
	accountHandler := handlers.NewAccountHandler(db, stripeSvc, logger)
	adminHandler := handlers.NewAdminHandler(db, authClient, logger)

	api := e.Group("/api")

	// Webhooks stay outside auth; the processors sign their own requests.
	api.POST("/payments/stripe/webhook", paymentHandler.StripeWebhook)
	api.POST("/payments/mercadopago/webhook", paymentHandler.MercadoPagoWebhook)

	// Public directory
	api.GET("/lawyers/search", searchHandler.Search)
	api.GET("/lawyers/:id", searchHandler.GetLawyer)

	// Authenticated routes
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(authClient, db))

	protected.POST("/create-payment-intent", paymentHandler.CreateCardIntent)
	protected.POST("/payments/mercadopago/create", paymentHandler.CreateMercadoPagoCheckout)
	protected.POST("/bookings/confirm", bookingHandler.Confirm)
	protected.GET("/bookings", bookingHandler.ListMine)

	protected.GET("/profile", profileHandler.Me)
	protected.PUT("/profile", profileHandler.Update)
	protected.GET("/profile/completion", profileHandler.Completion)
	protected.POST("/upload-avatar", profileHandler.UploadAvatar)

	protected.GET("/get-account-status", accountHandler.GetAccountStatus)
	protected.GET("/get-bank-account", accountHandler.GetBankAccount)
	protected.POST("/save-bank-account", accountHandler.SaveBankAccount)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/delete-user", adminHandler.DeleteUser)
	admin.GET("/payout-logs", adminHandler.ListPayoutLogs)

	logger.Info("server starting", zap.String("port", cfg.Port))
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
