package initializers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "LOG_LEVEL", "STORE_DRIVER", "DB_URL", "RUN_MIGRATIONS", "SUPABASE_URL", "SUPABASE_KEY",
	"SESSION_SECRET", "SESSION_TTL", "SESSION_STORE", "REDIS_URL", "COOKIE_SECURE", "GIN_MODE",
	"ADMIN_AUTH_MODE", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "ADMIN_USERNAME", "ADMIN_EMAIL",
	"RESEND_API_KEY", "NOTIFY_EMAIL_TO", "NOTIFY_EMAIL_FROM",
	"FIREBASE_SERVICE_ACCOUNT_PATH", "FIREBASE_ENABLED", "PUSH_TOPIC",
}

// setEnv blanks every config variable, then applies vars.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
	for key, value := range vars {
		t.Setenv(key, value)
	}
}

func minimalEnv() map[string]string {
	return map[string]string{
		"DB_URL":         "postgres://localhost/duashare?sslmode=disable",
		"SESSION_SECRET": "secret",
		"ADMIN_PASSWORD": "password",
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setEnv(t, minimalEnv())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, AuthModePassword, cfg.AdminAuthMode)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.False(t, cfg.FirebaseEnabled)
	assert.Equal(t, "new-prayers", cfg.PushTopic)
}

func TestLoadConfigOverrides(t *testing.T) {
	env := minimalEnv()
	env["STORE_DRIVER"] = "Memory"
	env["SESSION_TTL"] = "90m"
	env["SESSION_STORE"] = "redis"
	env["REDIS_URL"] = "redis://localhost:6379/0"
	env["GIN_MODE"] = "release"
	env["RUN_MIGRATIONS"] = "false"
	env["FIREBASE_SERVICE_ACCOUNT_PATH"] = "/secrets/firebase.json"
	setEnv(t, env)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, SessionStoreRedis, cfg.SessionStore)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.RunMigrations)
	assert.True(t, cfg.FirebaseEnabled)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		override map[string]string
		message  string
	}{
		{name: "missing session secret", override: map[string]string{"SESSION_SECRET": ""}, message: "SESSION_SECRET"},
		{name: "missing db url", override: map[string]string{"DB_URL": ""}, message: "DB_URL"},
		{name: "unknown store", override: map[string]string{"STORE_DRIVER": "mongo"}, message: "STORE_DRIVER"},
		{name: "supabase without key", override: map[string]string{"STORE_DRIVER": "supabase", "SUPABASE_URL": "https://x.supabase.co"}, message: "SUPABASE_KEY"},
		{name: "redis without url", override: map[string]string{"SESSION_STORE": "redis"}, message: "REDIS_URL"},
		{name: "unknown session store", override: map[string]string{"SESSION_STORE": "disk"}, message: "SESSION_STORE"},
		{name: "bad ttl", override: map[string]string{"SESSION_TTL": "tomorrow"}, message: "SESSION_TTL"},
		{name: "negative ttl", override: map[string]string{"SESSION_TTL": "-1h"}, message: "SESSION_TTL"},
		{name: "bad boolean", override: map[string]string{"RUN_MIGRATIONS": "sometimes"}, message: "RUN_MIGRATIONS"},
		{name: "password mode without password", override: map[string]string{"ADMIN_PASSWORD": ""}, message: "ADMIN_PASSWORD"},
		{name: "unknown auth mode", override: map[string]string{"ADMIN_AUTH_MODE": "oauth"}, message: "ADMIN_AUTH_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := minimalEnv()
			for key, value := range tt.override {
				env[key] = value
			}
			setEnv(t, env)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadConfigUsersModeNeedsNoPassword(t *testing.T) {
	env := minimalEnv()
	env["ADMIN_PASSWORD"] = ""
	env["ADMIN_AUTH_MODE"] = "users"
	setEnv(t, env)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, AuthModeUsers, cfg.AdminAuthMode)
}
