package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "identity", cfg.Mongo.Database)
	assert.Equal(t, "users", cfg.Mongo.UsersCollection)
	assert.Equal(t, "roles", cfg.Mongo.RolesCollection)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Lockout.MaxFailedAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Lockout.Duration)
	assert.Equal(t, 4, cfg.Import.Workers)
	assert.False(t, cfg.IsProduction())
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                  "s3cret",
		"ENV":                         "production",
		"MONGO_USERS_COLLECTION":      "people",
		"REDIS_ADDR":                  "redis:6379",
		"LOCKOUT_MAX_FAILED_ATTEMPTS": "3",
		"LOCKOUT_DURATION":            "15m",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "people", cfg.Mongo.UsersCollection)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Lockout.MaxFailedAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Lockout.Duration)
}

func TestLoadWith_RequiresJWTSecret(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}
