package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Oracle  OracleConfig
	Booking BookingConfig
	Redis   RedisConfig
	CORS    CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// OracleConfig holds the visual reconciliation collaborator configuration.
// When Enabled is true, the endpoint and both API keys are required and the
// service refuses to start without them: a half-configured oracle must never
// silently degrade every estimate.
type OracleConfig struct {
	Enabled       bool
	Endpoint      string
	APIKey        string
	StreetViewURL string
	StreetViewKey string
	Timeout       time.Duration
}

// BookingConfig holds the outbound scheduling webhook configuration.
type BookingConfig struct {
	AvailabilityURL string
	BookingURL      string
	AuthToken       string
	Timeout         time.Duration
}

// RedisConfig holds the session hand-off store configuration. An empty Addr
// selects the in-memory store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("ORACLE_ENABLED", false)
	v.SetDefault("ORACLE_TIMEOUT_SECONDS", 15)
	v.SetDefault("STREETVIEW_URL", "https://maps.googleapis.com/maps/api/streetview")
	v.SetDefault("BOOKING_TIMEOUT_SECONDS", 15)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Oracle: OracleConfig{
			Enabled:       v.GetBool("ORACLE_ENABLED"),
			Endpoint:      v.GetString("ORACLE_ENDPOINT"),
			APIKey:        v.GetString("ORACLE_API_KEY"),
			StreetViewURL: v.GetString("STREETVIEW_URL"),
			StreetViewKey: v.GetString("STREETVIEW_API_KEY"),
			Timeout:       time.Duration(v.GetInt("ORACLE_TIMEOUT_SECONDS")) * time.Second,
		},
		Booking: BookingConfig{
			AvailabilityURL: v.GetString("AVAILABILITY_WEBHOOK_URL"),
			BookingURL:      v.GetString("BOOKING_WEBHOOK_URL"),
			AuthToken:       v.GetString("BOOKING_AUTH_TOKEN"),
			Timeout:         time.Duration(v.GetInt("BOOKING_TIMEOUT_SECONDS")) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
// Missing external API keys fail fast before any computation proceeds.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Oracle.Enabled {
		if c.Oracle.Endpoint == "" {
			return fmt.Errorf("ORACLE_ENDPOINT is required when ORACLE_ENABLED is set")
		}
		if c.Oracle.APIKey == "" {
			return fmt.Errorf("ORACLE_API_KEY is required when ORACLE_ENABLED is set")
		}
		if c.Oracle.StreetViewKey == "" {
			return fmt.Errorf("STREETVIEW_API_KEY is required when ORACLE_ENABLED is set")
		}
		if c.Oracle.Timeout <= 0 {
			return fmt.Errorf("ORACLE_TIMEOUT_SECONDS must be positive")
		}
	}

	if c.Booking.AvailabilityURL == "" {
		return fmt.Errorf("AVAILABILITY_WEBHOOK_URL is required")
	}
	if c.Booking.BookingURL == "" {
		return fmt.Errorf("BOOKING_WEBHOOK_URL is required")
	}
	if c.Booking.AuthToken == "" {
		return fmt.Errorf("BOOKING_AUTH_TOKEN is required")
	}
	if c.Booking.Timeout <= 0 {
		return fmt.Errorf("BOOKING_TIMEOUT_SECONDS must be positive")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
