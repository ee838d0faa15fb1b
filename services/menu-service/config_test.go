package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSecrets struct {
	values map[string]string
	err    error
}

func (f fakeSecrets) GetSecretKey(_ context.Context, name, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if name != ConfigSecret {
		return "", errors.New("unexpected secret " + name)
	}
	return f.values[key], nil
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg := configFromEnv(envMap(nil))

	assert.Equal(t, "8085", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "", cfg.MongoURI)
	assert.Equal(t, "all-data", cfg.MongoDB)
	assert.Equal(t, uint64(10), cfg.MongoPoolSize)
	assert.False(t, cfg.UseTransactions)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://nextback-seven.vercel.app/datamenu", cfg.LegacyMenuURL)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	cfg := configFromEnv(envMap(map[string]string{
		"PORT":                     "9000",
		"MONGODB_URI":              "mongodb://db:27017",
		"MONGODB_MAX_POOL_SIZE":    "25",
		"MONGODB_USE_TRANSACTIONS": "true",
		"CACHE_TTL":                "90s",
		"REQUEST_TIMEOUT":          "bogus",
		"ALLOWED_ORIGINS":          "https://a.example, https://b.example ,",
	}))

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.UseTransactions)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)

	sc := cfg.StoreConfig()
	assert.Equal(t, "mongodb://db:27017", sc.URI)
	assert.Equal(t, uint64(25), sc.MaxPoolSize)
	assert.Equal(t, 5*time.Minute, sc.StaleAfter)
	assert.Equal(t, 30*time.Second, sc.RetireGrace)
	assert.Equal(t, 3, sc.MaxAttempts)
}

func TestApplySecrets(t *testing.T) {
	cfg := configFromEnv(envMap(map[string]string{"MONGODB_URI": "mongodb://env"}))

	applySecrets(context.Background(), cfg, fakeSecrets{err: errors.New("denied")})
	assert.Equal(t, "mongodb://env", cfg.MongoURI)

	applySecrets(context.Background(), cfg, fakeSecrets{values: map[string]string{"MONGODB_URI": "mongodb://secret"}})
	assert.Equal(t, "mongodb://secret", cfg.MongoURI)
	assert.Equal(t, "", cfg.RedisURL)

	applySecrets(context.Background(), cfg, fakeSecrets{values: map[string]string{"REDIS_URL": "redis://cache:6379"}})
	assert.Equal(t, "mongodb://secret", cfg.MongoURI)
	assert.Equal(t, "redis://cache:6379", cfg.RedisURL)
}
