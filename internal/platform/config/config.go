package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const insecureDevAESKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// Config holds application configuration.
type Config struct {
	DatabaseURL     string
	Port            string
	IsProduction    bool
	EnableDBCheck   bool
	JWTSecret       string
	JWTIssuer       string
	InternalAPIKey  string `mapstructure:"INTERNAL_API_KEY"`
	FrontendBaseURL string `mapstructure:"FRONTEND_URL"`

	// AESEncryptionKey is hex; bureau reports are encrypted with a key derived from it.
	AESEncryptionKey string `mapstructure:"AES_ENCRYPTION_KEY"`

	// Bureau pull limiter
	RateLimitCibilPulls int
	RateLimitWindow     time.Duration
	// HTTPRateLimit is a per-IP limit in "<count>-<S|M|H|D>" form, e.g. "60-M".
	HTTPRateLimit string

	// Shared infrastructure; empty values fall back to in-process implementations.
	RedisAddress  string
	RedisPassword string
	AMQPURL       string
	CRMExchange   string
	EventExchange string

	TrialSweepSchedule  string
	RateLimitGCSchedule string

	PaymentProvider string
	TrialLength     time.Duration

	// CRMProvider is "log", "queue" (publish to CRMExchange) or "zoho".
	CRMProvider      string
	ZohoClientID     string
	ZohoClientSecret string
	ZohoRefreshToken string
	ZohoAccountsURL  string
	ZohoCRMURL       string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "exitdebt-backend")
	viper.SetDefault("INTERNAL_API_KEY", "")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("AES_ENCRYPTION_KEY", "")
	viper.SetDefault("RATE_LIMIT_CIBIL_PULLS", 3)
	viper.SetDefault("RATE_LIMIT_WINDOW_HOURS", 24)
	viper.SetDefault("HTTP_RATE_LIMIT", "60-M")
	viper.SetDefault("REDIS_ADDRESS", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("CRM_EXCHANGE", "exitdebt.crm")
	viper.SetDefault("EVENT_EXCHANGE", "exitdebt.events")
	viper.SetDefault("TRIAL_SWEEP_SCHEDULE", "@every 1h")
	viper.SetDefault("RATE_LIMIT_GC_SCHEDULE", "@every 10m")
	viper.SetDefault("PAYMENT_PROVIDER", "mock")
	viper.SetDefault("TRIAL_DAYS", 90)
	viper.SetDefault("CRM_PROVIDER", "log")
	viper.SetDefault("ZOHO_CLIENT_ID", "")
	viper.SetDefault("ZOHO_CLIENT_SECRET", "")
	viper.SetDefault("ZOHO_REFRESH_TOKEN", "")
	viper.SetDefault("ZOHO_ACCOUNTS_URL", "https://accounts.zoho.in/oauth/v2/token")
	viper.SetDefault("ZOHO_CRM_URL", "https://www.zohoapis.in/crm/v2")

	// Environment variables override defaults and .env values.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "exitdebt-backend"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.InternalAPIKey = viper.GetString("INTERNAL_API_KEY")
	if cfg.InternalAPIKey == "" {
		log.Println("Warning: INTERNAL_API_KEY not set. Internal routes accept JWTs only.")
	}
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_URL")

	cfg.AESEncryptionKey = viper.GetString("AES_ENCRYPTION_KEY")
	if cfg.AESEncryptionKey == "" {
		cfg.AESEncryptionKey = insecureDevAESKey
		log.Println("Warning: AES_ENCRYPTION_KEY is not set, using a development key. THIS IS NOT FOR PRODUCTION.")
	}

	cfg.RateLimitCibilPulls = viper.GetInt("RATE_LIMIT_CIBIL_PULLS")
	if cfg.RateLimitCibilPulls <= 0 {
		cfg.RateLimitCibilPulls = 3
		log.Printf("Warning: Invalid RATE_LIMIT_CIBIL_PULLS. Defaulting to %d.\n", cfg.RateLimitCibilPulls)
	}
	windowHours := viper.GetInt("RATE_LIMIT_WINDOW_HOURS")
	if windowHours <= 0 {
		windowHours = 24
		log.Printf("Warning: Invalid RATE_LIMIT_WINDOW_HOURS. Defaulting to %d.\n", windowHours)
	}
	cfg.RateLimitWindow = time.Duration(windowHours) * time.Hour
	cfg.HTTPRateLimit = viper.GetString("HTTP_RATE_LIMIT")

	cfg.RedisAddress = viper.GetString("REDIS_ADDRESS")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.AMQPURL = viper.GetString("AMQP_URL")
	cfg.CRMExchange = viper.GetString("CRM_EXCHANGE")
	cfg.EventExchange = viper.GetString("EVENT_EXCHANGE")

	cfg.TrialSweepSchedule = viper.GetString("TRIAL_SWEEP_SCHEDULE")
	cfg.RateLimitGCSchedule = viper.GetString("RATE_LIMIT_GC_SCHEDULE")

	cfg.PaymentProvider = viper.GetString("PAYMENT_PROVIDER")
	trialDays := viper.GetInt("TRIAL_DAYS")
	if trialDays <= 0 {
		trialDays = 90
		log.Printf("Warning: Invalid TRIAL_DAYS. Defaulting to %d.\n", trialDays)
	}
	cfg.TrialLength = time.Duration(trialDays) * 24 * time.Hour

	cfg.CRMProvider = viper.GetString("CRM_PROVIDER")
	cfg.ZohoClientID = viper.GetString("ZOHO_CLIENT_ID")
	cfg.ZohoClientSecret = viper.GetString("ZOHO_CLIENT_SECRET")
	cfg.ZohoRefreshToken = viper.GetString("ZOHO_REFRESH_TOKEN")
	cfg.ZohoAccountsURL = viper.GetString("ZOHO_ACCOUNTS_URL")
	cfg.ZohoCRMURL = viper.GetString("ZOHO_CRM_URL")
	if cfg.CRMProvider == "zoho" && cfg.ZohoRefreshToken == "" {
		log.Println("Warning: CRM_PROVIDER is zoho but ZOHO_REFRESH_TOKEN is not set. Leads will only be logged.")
		cfg.CRMProvider = "log"
	}

	return cfg, nil
}
