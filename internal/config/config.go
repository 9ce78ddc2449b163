package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Catalog   CatalogConfig
	Auth      AuthConfig
	Inquiry   InquiryConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	Schema       string
	SSLMode      string
	MaxOpenConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns the host:port pair for the Redis client
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

// Catalog backends
const (
	BackendStatic   = "static"
	BackendSnapshot = "snapshot"
	BackendPostgres = "postgres"
)

type CatalogConfig struct {
	Backend          string
	PageSize         int
	PlaceholderImage string
}

type AuthConfig struct {
	MaxAttempts           int
	AttemptWindow         time.Duration
	EnumerationProtection bool
	CheckTimeout          time.Duration
}

type InquiryConfig struct {
	BaseURL  string
	Phone    string
	Currency string
	// RatePerMinute bounds inquiry redirects per client IP
	RatePerMinute int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// IsDevelopment reports whether the server runs outside production
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func Load() *Config {
	// Values already in the environment win over .env
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 60*24)
	viper.SetDefault("CATALOG_BACKEND", BackendPostgres)
	viper.SetDefault("CATALOG_PAGE_SIZE", 10)
	viper.SetDefault("CATALOG_PLACEHOLDER_IMAGE", "/V-cube-1-3-1.png")
	viper.SetDefault("AUTH_MAX_ATTEMPTS", 5)
	viper.SetDefault("AUTH_ATTEMPT_WINDOW", "15m")
	viper.SetDefault("AUTH_ENUMERATION_PROTECTION", true)
	viper.SetDefault("AUTH_CHECK_TIMEOUT", "3s")
	viper.SetDefault("INQUIRY_BASE_URL", "https://api.whatsapp.com/send")
	viper.SetDefault("INQUIRY_PHONE", "971548886200")
	viper.SetDefault("INQUIRY_CURRENCY", "AED")
	viper.SetDefault("INQUIRY_RATE_PER_MINUTE", 30)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Database:     viper.GetString("DB_DATABASE"),
			Schema:       viper.GetString("DB_SCHEMA"),
			SSLMode:      viper.GetString("DB_SSLMODE"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Catalog: CatalogConfig{
			Backend:          strings.ToLower(viper.GetString("CATALOG_BACKEND")),
			PageSize:         viper.GetInt("CATALOG_PAGE_SIZE"),
			PlaceholderImage: viper.GetString("CATALOG_PLACEHOLDER_IMAGE"),
		},
		Auth: AuthConfig{
			MaxAttempts:           viper.GetInt("AUTH_MAX_ATTEMPTS"),
			AttemptWindow:         viper.GetDuration("AUTH_ATTEMPT_WINDOW"),
			EnumerationProtection: viper.GetBool("AUTH_ENUMERATION_PROTECTION"),
			CheckTimeout:          viper.GetDuration("AUTH_CHECK_TIMEOUT"),
		},
		Inquiry: InquiryConfig{
			BaseURL:       viper.GetString("INQUIRY_BASE_URL"),
			Phone:         viper.GetString("INQUIRY_PHONE"),
			Currency:      viper.GetString("INQUIRY_CURRENCY"),
			RatePerMinute: viper.GetInt("INQUIRY_RATE_PER_MINUTE"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
