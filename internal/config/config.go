package config

import "os"

// Config holds every external credential and tunable the application needs.
// It is loaded once in main and passed explicitly; no other package reads
// the process environment.
type Config struct {
	Port        string
	Environment string

	DatabaseURL string
	RedisURL    string

	FirebaseCredentialsPath string
	StorageBucket           string

	StripeSecretKey     string
	StripeWebhookSecret string

	MercadoPagoAccessToken   string
	MercadoPagoWebhookSecret string

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	MeetingsBaseURL string
	MeetingsAPIKey  string

	PublicBaseURL string
}

// Load reads the configuration from the environment. Defaults are applied
// for values that have a sensible local-development fallback; credentials
// have none and stay empty when unset.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),
		StorageBucket:           os.Getenv("STORAGE_BUCKET"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		MercadoPagoAccessToken:   os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
		MercadoPagoWebhookSecret: os.Getenv("MERCADOPAGO_WEBHOOK_SECRET"),

		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  getEnv("SMTP_PORT", "587"),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		EmailFrom: getEnv("EMAIL_FROM", "no-reply@lexmarket.cl"),

		MeetingsBaseURL: getEnv("MEETINGS_BASE_URL", "https://api.daily.co/v1"),
		MeetingsAPIKey:  os.Getenv("MEETINGS_API_KEY"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
