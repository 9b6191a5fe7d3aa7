package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Identity provider configuration
	Auth AuthConfig

	// JWT configuration (local identity provider)
	JWT JWTConfig

	// Firebase configuration (external identity provider)
	Firebase FirebaseConfig

	// Redis configuration (room list cache)
	Redis RedisConfig

	// Booking lifecycle configuration
	Booking BookingConfig

	// Reconciliation sweep configuration
	Reconciliation ReconciliationConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error

	// Reverse proxies allowed to set X-Forwarded-For / X-Real-IP.
	// Empty means client IPs come from the TCP peer only.
	TrustedProxies []string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	AutoMigrate        bool
}

// AuthConfig selects the identity provider
type AuthConfig struct {
	Provider string // "jwt" or "firebase"
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	Issuer            string
	AccessTokenExpiry time.Duration
}

// FirebaseConfig holds Firebase Admin SDK configuration
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// RedisConfig holds the room cache connection. An empty URL disables caching.
type RedisConfig struct {
	URL     string
	RoomTTL time.Duration
}

// BookingConfig holds booking lifecycle policy
type BookingConfig struct {
	RequireAvailableRoom bool   // conditional AVAILABLE -> OCCUPIED guard on create
	NightCounting        string // "elapsed" or "calendar"
	TimeZone             string // hotel time zone for calendar night counting
}

// ReconciliationConfig holds the room/booking consistency sweep settings
type ReconciliationConfig struct {
	Enabled  bool
	Schedule string // cron expression with seconds
	Apply    bool   // release orphaned rooms instead of only reporting them
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost       int
	EnableRequestLog bool
	EnableAuditLog   bool

	// Failed-login throttling for the local identity provider
	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
	LoginMaxIPAttempts int
	LoginIPWindow      time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),

			TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			AutoMigrate:        getEnvAsBool("DATABASE_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			Provider: getEnv("AUTH_PROVIDER", "jwt"),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			Issuer:            getEnv("JWT_ISSUER", "ehotel-backend"),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			RoomTTL: time.Duration(getEnvAsInt("REDIS_ROOM_TTL", 60)) * time.Second,
		},
		Booking: BookingConfig{
			RequireAvailableRoom: getEnvAsBool("BOOKING_REQUIRE_AVAILABLE_ROOM", true),
			NightCounting:        getEnv("BOOKING_NIGHT_COUNTING", "elapsed"),
			TimeZone:             getEnv("HOTEL_TIME_ZONE", "UTC"),
		},
		Reconciliation: ReconciliationConfig{
			Enabled:  getEnvAsBool("RECONCILE_ENABLED", true),
			Schedule: getEnv("RECONCILE_SCHEDULE", "0 */10 * * * *"),
			Apply:    getEnvAsBool("RECONCILE_APPLY", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
			EnableAuditLog:   getEnvAsBool("ENABLE_AUDIT_LOGGING", true),

			LoginMaxAttempts:   getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
			LoginAttemptWindow: time.Duration(getEnvAsInt("LOGIN_ATTEMPT_WINDOW", 900)) * time.Second,
			LoginMaxIPAttempts: getEnvAsInt("LOGIN_MAX_IP_ATTEMPTS", 20),
			LoginIPWindow:      time.Duration(getEnvAsInt("LOGIN_IP_WINDOW", 3600)) * time.Second,
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.Auth.Provider {
	case "jwt":
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
	case "firebase":
		if c.Firebase.ProjectID == "" && c.Firebase.CredentialsFile == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_FILE is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("invalid AUTH_PROVIDER: %s (must be 'jwt' or 'firebase')", c.Auth.Provider)
	}

	if c.Booking.NightCounting != "elapsed" && c.Booking.NightCounting != "calendar" {
		return fmt.Errorf("invalid BOOKING_NIGHT_COUNTING: %s (must be 'elapsed' or 'calendar')", c.Booking.NightCounting)
	}

	if _, err := time.LoadLocation(c.Booking.TimeZone); err != nil {
		return fmt.Errorf("invalid HOTEL_TIME_ZONE %q: %w", c.Booking.TimeZone, err)
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
