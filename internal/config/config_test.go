package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// viper treats empty variables as unset, so blanking them exposes the defaults.
	for _, key := range []string{"PORT", "ENV", "DATABASE_URL", "DB_USER", "DB_PASS", "DB_HOST",
		"DB_PORT", "DB_NAME", "DB_SSLMODE", "MIGRATIONS_URL", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "file://migrations", cfg.MigrationsURL)
	assert.Equal(t, "postgres://golf:@localhost:5432/golf_matches?sslmode=disable", cfg.PostgresDSN())
}

func TestPostgresDSNPrefersDatabaseURL(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://u:p@db:5432/x", DBHost: "ignored"}
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.PostgresDSN())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("ENV", "production")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DEBUG", "true")

	cfg := Load()

	assert.Equal(t, "9001", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "s3cret", cfg.AuthSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "https://a.example,https://b.example", cfg.CORSAllowOrigins())
	assert.True(t, cfg.Debug)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Env: "production", DBHost: "localhost"}
	require.Error(t, cfg.Validate())

	cfg.AuthSecret = "secret"
	require.NoError(t, cfg.Validate())

	dev := &Config{Env: "development", DBHost: "localhost"}
	require.NoError(t, dev.Validate())

	noDB := &Config{Env: "development"}
	require.Error(t, noDB.Validate())
}
