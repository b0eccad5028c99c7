package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppPort       string
	AppEnv        string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	TokenExpires  time.Duration
	OTPExpires    time.Duration

	// Fast2SMS bulk SMS gateway
	SMSAPIKey string

	// SMTP relay for transactional mail
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Rate limiter backend: "memory" for a single instance,
	// "redis" when the limiter must be shared across instances.
	RateLimitBackend string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:          getEnv("APP_PORT", "5000"),
		AppEnv:           getEnv("APP_ENV", "development"),
		MongoURI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGODB_DATABASE", "mystore"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenExpires:     getEnvDuration("JWT_TTL_HOURS", 24*7) * time.Hour,
		OTPExpires:       getEnvDuration("OTP_TTL_MINUTES", 5) * time.Minute,
		SMSAPIKey:        getEnv("FAST2SMS_API_KEY", ""),
		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUser:         getEnv("EMAIL_USER", ""),
		SMTPPass:         getEnv("EMAIL_PASS", ""),
		MailFrom:         getEnv("EMAIL_FROM", getEnv("EMAIL_USER", "")),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
	}

	if cfg.AppPort == "" {
		log.Fatal("APP_PORT must be set")
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return time.Duration(parsed)
		}
	}
	return time.Duration(fallback)
}
