package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the process-wide configuration, loaded once at startup and
// injected into the services that need it. Signing secrets live here and
// nowhere else.
type Config struct {
	DatabaseURL string
	Port        int

	// Token signing. Access and refresh tokens use disjoint secrets.
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Invite lifecycle.
	InviteExpiry   time.Duration
	InviteLinkBase string

	// Outbound mail (MailHog-style plain SMTP relay).
	SMTPAddr   string
	SenderName string
	SenderMail string

	// Redis cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from the environment. DATABASE_URL and both JWT
// secrets are required; everything else has development defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           envInt("PORT", 8080),
		AccessSecret:   os.Getenv("JWT_ACCESS_SECRET"),
		RefreshSecret:  os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:      envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:     envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		InviteExpiry:   envDuration("INVITE_EXPIRY", 30*24*time.Hour),
		InviteLinkBase: envString("INVITE_LINK_BASE", "http://localhost:3000/register"),
		SMTPAddr:       envString("SMTP_ADDR", "localhost:1025"),
		SenderName:     envString("SMTP_SENDER_NAME", "CARMA"),
		SenderMail:     envString("SMTP_SENDER_EMAIL", "no-reply@example.com"),
		RedisAddr:      envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET environment variable is required")
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET environment variable is required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
