// Package config handles loading and validating runtime configuration for the Golf Match Tracker API.
// Configuration values (like the database URL and API port) are read from environment variables
// rather than being hardcoded, so the same binary can run in dev, staging, and production
// without changing any code. Only the environment changes.
package config

import (
	"errors"
	"fmt"
	"strings"

	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	// Handy in development; in production real env vars are set by the deployment platform.
	"github.com/joho/godotenv"
	// viper resolves each key from the environment and falls back to the defaults registered below.
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
	Env  string // The runtime environment: "development", "staging", or "production"

	// PostgreSQL: either DatabaseURL directly, or the individual parts.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	MigrationsURL string   // golang-migrate source URL, e.g. "file://migrations"
	AuthSecret    string   // HMAC key used to verify bearer tokens issued by the identity provider
	CORSOrigins   []string // Allowed browser origins; "*" allows any
	Debug         bool     // Debug log level and SQL statement logging
}

// Load reads configuration from a .env file (if present) and then from environment
// variables. Environment variables always win.
func Load() *Config {
	// The error is intentionally ignored: a missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_USER", "golf")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "golf_matches")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("MIGRATIONS_URL", "file://migrations")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DEBUG", false)

	return &Config{
		Port:          v.GetString("PORT"),
		Env:           v.GetString("ENV"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBUser:        v.GetString("DB_USER"),
		DBPass:        v.GetString("DB_PASS"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		MigrationsURL: v.GetString("MIGRATIONS_URL"),
		AuthSecret:    v.GetString("AUTH_SECRET"),
		CORSOrigins:   splitTrimmed(v.GetString("CORS_ORIGINS")),
		Debug:         v.GetBool("DEBUG"),
	}
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over the individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// IsDevelopment reports whether the server runs with development conveniences enabled.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" && c.DBHost == "" {
		return errors.New("config: DATABASE_URL or DB_HOST must be set")
	}
	// Outside development every token must be verified, so the secret is mandatory.
	if c.AuthSecret == "" && !c.IsDevelopment() {
		return errors.New("config: AUTH_SECRET must be set outside development")
	}
	return nil
}

// CORSAllowOrigins renders the origin list in the comma separated form fiber's cors middleware expects.
func (c *Config) CORSAllowOrigins() string {
	if len(c.CORSOrigins) == 0 {
		return "*"
	}
	return strings.Join(c.CORSOrigins, ",")
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
