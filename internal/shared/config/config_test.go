package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-waste/internal/shared/models"
)

const sample = `
database:
  host: ${DB_HOST:-localhost}
  port: ${DB_PORT:-5432}
  user: waste
  password: ${DB_PASSWORD:-secret}
  database: restaurant_waste
jwt:
  secret: ${JWT_SECRET:-dev-secret}
  access_ttl: 30m
pickup:
  default_address: "Test City"
  completion_points: ${PICKUP_POINTS:-10}
`

func TestParseExpandsEnvWithDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("PICKUP_POINTS", "15")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "dev-secret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 15, cfg.Pickup.CompletionPoints)
	assert.Equal(t, "Test City", cfg.Pickup.DefaultAddress)
	assert.Equal(t, models.PastScheduleReject, cfg.Pickup.PastSchedule)
	assert.Equal(t, 20, cfg.Donation.CompletionPoints)
}

func TestParseRejectsMissingSecret(t *testing.T) {
	_, err := Parse([]byte("database:\n  host: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestParseRejectsUnknownSchedulePolicy(t *testing.T) {
	_, err := Parse([]byte("jwt:\n  secret: s\npickup:\n  past_schedule: ignore\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "past_schedule")
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt:\n  secret: file-secret\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
}

func TestExpandEnvLeavesPlainText(t *testing.T) {
	assert.Equal(t, "no vars here", ExpandEnv("no vars here"))
	assert.Equal(t, "", ExpandEnv("${SURELY_UNSET_VARIABLE_XYZ}"))
}
