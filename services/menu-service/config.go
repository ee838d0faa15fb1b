package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	awspkg "github.com/yashrajoria/menu-backend/pkg/aws"
	"github.com/yashrajoria/menu-backend/services/menu-service/database"
	"github.com/yashrajoria/menu-backend/services/menu-service/services"
	"go.uber.org/zap"
)

// ConfigSecret is a key/value secret read when AWS_USE_SECRETS=true. Its
// MONGODB_URI and REDIS_URL keys override the environment.
const ConfigSecret = "menu-service/config"

// Config holds all environment variables for the menu-service.
type Config struct {
	Port            string
	Env             string
	MongoURI        string
	MongoDB         string
	MongoPoolSize   uint64
	UseTransactions bool
	RedisURL        string
	CacheTTL        time.Duration
	LegacyMenuURL   string
	EventsTopicArn  string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	UseSecrets      bool
}

type secretGetter interface {
	GetSecretKey(ctx context.Context, name, key string) (string, error)
}

// LoadConfig loads environment variables into Config. If AWS_USE_SECRETS=true
// connection strings are read from Secrets Manager, falling back to the env
// vars on failure. A missing URI is not fatal here: storage calls fail instead.
func LoadConfig(ctx context.Context) *Config {
	cfg := configFromEnv(os.Getenv)
	if cfg.UseSecrets {
		awsCfg, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			zap.L().Warn("Failed to load AWS config for secrets", zap.Error(err))
			return cfg
		}
		applySecrets(ctx, cfg, awspkg.NewSecretsClient(awsCfg))
	}
	return cfg
}

func configFromEnv(getenv func(string) string) *Config {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	return &Config{
		Port:            get("PORT", "8085"),
		Env:             get("APP_ENV", "development"),
		MongoURI:        get("MONGODB_URI", ""),
		MongoDB:         get("MONGODB_DB", database.DefaultDatabase),
		MongoPoolSize:   cast.ToUint64(get("MONGODB_MAX_POOL_SIZE", "10")),
		UseTransactions: cast.ToBool(get("MONGODB_USE_TRANSACTIONS", "false")),
		RedisURL:        get("REDIS_URL", ""),
		CacheTTL:        durationOr(get("CACHE_TTL", ""), 10*time.Minute),
		LegacyMenuURL:   get("LEGACY_MENU_URL", services.DefaultLegacyMenuURL),
		EventsTopicArn:  get("MENU_EVENTS_TOPIC_ARN", ""),
		AllowedOrigins:  splitList(get("ALLOWED_ORIGINS", "*")),
		RequestTimeout:  durationOr(get("REQUEST_TIMEOUT", ""), 30*time.Second),
		UseSecrets:      cast.ToBool(get("AWS_USE_SECRETS", "false")),
	}
}

func applySecrets(ctx context.Context, cfg *Config, sm secretGetter) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"MONGODB_URI", &cfg.MongoURI},
		{"REDIS_URL", &cfg.RedisURL},
	}
	for _, o := range overrides {
		v, err := sm.GetSecretKey(ctx, ConfigSecret, o.key)
		if err != nil {
			zap.L().Warn("Config secret unavailable, using environment", zap.Error(err))
			return
		}
		if v != "" {
			*o.dst = v
		}
	}
}

// StoreConfig derives the database.Store settings.
func (c *Config) StoreConfig() database.StoreConfig {
	sc := database.DefaultStoreConfig(c.MongoURI, c.MongoDB)
	if c.MongoPoolSize > 0 {
		sc.MaxPoolSize = c.MongoPoolSize
	}
	return sc
}

func durationOr(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := cast.ToDurationE(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
