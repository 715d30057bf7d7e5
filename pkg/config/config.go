package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Google OAuth (sign-in and Gmail mailbox access)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// Microsoft OAuth (Outlook mailbox access)
	MicrosoftClientID     string
	MicrosoftClientSecret string
	MicrosoftRedirectURI  string
	MicrosoftTenantID     string

	// Gmail push notifications (optional)
	GoogleProjectID   string
	GooglePubSubTopic string
	GoogleCredentials string

	// Firebase Cloud Messaging (optional)
	FirebaseCredentials string

	// Mailbox sync
	SyncMaxResults int64
	SyncInterval   time.Duration

	// OAuth state cache
	StateCacheEnabled bool
	StateCacheTTL     time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	syncInterval := 15 * time.Minute
	if iv := os.Getenv("SYNC_INTERVAL"); iv != "" {
		if parsed, err := time.ParseDuration(iv); err == nil {
			syncInterval = parsed
		}
	}

	stateTTL := 10 * time.Minute
	if ttl := os.Getenv("OAUTH_STATE_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			stateTTL = parsed
		}
	}

	maxResults := int64(25)
	if mr := os.Getenv("SYNC_MAX_RESULTS"); mr != "" {
		if parsed, err := strconv.ParseInt(mr, 10, 64); err == nil && parsed > 0 {
			maxResults = parsed
		}
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=jobtrail port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/integrations/gmail/callback"),

		MicrosoftClientID:     getEnv("MICROSOFT_CLIENT_ID", ""),
		MicrosoftClientSecret: getEnv("MICROSOFT_CLIENT_SECRET", ""),
		MicrosoftRedirectURI:  getEnv("MICROSOFT_REDIRECT_URI", "http://localhost:8080/api/integrations/outlook/callback"),
		MicrosoftTenantID:     getEnv("MICROSOFT_TENANT_ID", "common"),

		GoogleProjectID:   getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePubSubTopic: getEnv("GOOGLE_PUBSUB_TOPIC", "gmail-updates"),
		GoogleCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),

		SyncMaxResults: maxResults,
		SyncInterval:   syncInterval,

		StateCacheEnabled: getEnv("OAUTH_STATE_CACHE", "true") != "false",
		StateCacheTTL:     stateTTL,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
