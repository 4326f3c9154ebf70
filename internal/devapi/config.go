package devapi

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultListenAddr    = ":5000"
	defaultAllowedOrigin = "http://localhost:3000"
	defaultTokenTTL      = 72 * time.Hour
	defaultAdminEmail    = "admin@urmart.com"
	defaultAdminPassword = "admin123"
	minPasswordLength    = 6
)

// Config aggregates runtime settings for the development backend.
type Config struct {
	ListenAddr     string
	AllowedOrigins []string
	SigningKey     string
	TokenTTL       time.Duration
	AdminEmail     string
	AdminPassword  string
}

// Validate fills defaults and ensures the configuration contains sane values.
func (cfg *Config) Validate() error {
	cfg.ListenAddr = defaultIfEmpty(cfg.ListenAddr, defaultListenAddr)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{defaultAllowedOrigin}
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	cfg.AdminEmail = strings.ToLower(defaultIfEmpty(cfg.AdminEmail, defaultAdminEmail))
	cfg.AdminPassword = defaultIfEmpty(cfg.AdminPassword, defaultAdminPassword)
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("listen addr is required")
	}
	if len(cfg.SigningKey) == 0 {
		return fmt.Errorf("jwt signing key is required")
	}
	if len(cfg.AdminPassword) < minPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func defaultIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// ParseAllowedOrigins splits comma-delimited origins into a slice.
func ParseAllowedOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
