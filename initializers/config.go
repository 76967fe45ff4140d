package initializers

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSupabase = "supabase"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	AuthModePassword = "password"
	AuthModeUsers    = "users"
	AuthModeSupabase = "supabase"
)

type Config struct {
	Port     string
	LogLevel string

	StoreDriver   string
	DBURL         string
	RunMigrations bool
	SupabaseURL   string
	SupabaseKey   string

	SessionSecret string
	SessionTTL    time.Duration
	SessionStore  string
	RedisURL      string
	CookieSecure  bool

	AdminAuthMode     string
	AdminPassword     string
	AdminPasswordHash string
	AdminUsername     string
	AdminEmail        string

	ResendAPIKey    string
	NotifyEmailTo   string
	NotifyEmailFrom string

	FirebaseCredentialsPath string
	FirebaseEnabled         bool
	PushTopic               string
}

// LoadConfig reads the configuration from the environment and validates the
// combinations that would otherwise fail on first use.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:     envOr("PORT", "8080"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(envOr("STORE_DRIVER", StorePostgres)),
		DBURL:       os.Getenv("DB_URL"),
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_KEY"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionStore:  strings.ToLower(envOr("SESSION_STORE", SessionStoreMemory)),
		RedisURL:      os.Getenv("REDIS_URL"),

		AdminAuthMode:     strings.ToLower(envOr("ADMIN_AUTH_MODE", AuthModePassword)),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminUsername:     envOr("ADMIN_USERNAME", "admin"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),

		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		NotifyEmailTo:   os.Getenv("NOTIFY_EMAIL_TO"),
		NotifyEmailFrom: envOr("NOTIFY_EMAIL_FROM", "DuaShare <noreply@duashare.app>"),

		FirebaseCredentialsPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		PushTopic:               envOr("PUSH_TOPIC", "new-prayers"),
	}

	var err error
	if cfg.RunMigrations, err = envBool("RUN_MIGRATIONS", true); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = envBool("COOKIE_SECURE", os.Getenv("GIN_MODE") == "release"); err != nil {
		return nil, err
	}
	if cfg.FirebaseEnabled, err = envBool("FIREBASE_ENABLED", cfg.FirebaseCredentialsPath != ""); err != nil {
		return nil, err
	}

	cfg.SessionTTL = 24 * time.Hour
	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SESSION_TTL has invalid duration %q: %w", v, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", ttl)
		}
		cfg.SessionTTL = ttl
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DBURL == "" {
			return fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	case StoreSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required when STORE_DRIVER=%s", StoreSupabase)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=%s", SessionStoreRedis)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	switch c.AdminAuthMode {
	case AuthModePassword:
		if c.AdminPassword == "" && c.AdminPasswordHash == "" {
			return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required when ADMIN_AUTH_MODE=%s", AuthModePassword)
		}
	case AuthModeUsers:
	case AuthModeSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required when ADMIN_AUTH_MODE=%s", AuthModeSupabase)
		}
	default:
		return fmt.Errorf("unknown ADMIN_AUTH_MODE %q", c.AdminAuthMode)
	}

	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", key, v, err)
	}
	return b, nil
}
