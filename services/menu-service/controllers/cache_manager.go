package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"go.uber.org/zap"
)

const (
	CategoryListCachePrefix = "menu:categories:v:"
	CacheVersionKey         = "menu:categories:version"
)

// CacheManager caches the category list in Redis. Entries are keyed by a
// version counter, so invalidation is a single INCR. A nil manager or client
// behaves as an always-empty cache.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(client *redis.Client, ttl time.Duration) *CacheManager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheManager{
		redis: client,
		ttl:   ttl,
	}
}

func (cm *CacheManager) enabled() bool {
	return cm != nil && cm.redis != nil
}

// GetCategories returns the cached list for the current version. On a miss
// it still returns that version; pass it to SetCategories so a list read
// from the store is never stored under a version bumped in the meantime.
// Version 0 means the cache is unusable.
func (cm *CacheManager) GetCategories(ctx context.Context) ([]models.Category, int64, bool) {
	if !cm.enabled() {
		return nil, 0, false
	}
	version, err := cm.getCacheVersion(ctx)
	if err != nil {
		return nil, 0, false
	}

	cachedData, err := cm.redis.Get(ctx, cm.listKey(version)).Bytes()
	if err != nil {
		return nil, version, false
	}

	var categories []models.Category
	if err := json.Unmarshal(cachedData, &categories); err != nil {
		zap.L().Warn("Failed to unmarshal cached category list", zap.Error(err))
		return nil, version, false
	}
	return categories, version, true
}

// SetCategories stores categories under version.
func (cm *CacheManager) SetCategories(ctx context.Context, version int64, categories []models.Category) error {
	if !cm.enabled() || version <= 0 {
		return nil
	}
	jsonBytes, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal category list: %w", err)
	}
	return cm.redis.Set(ctx, cm.listKey(version), jsonBytes, cm.ttl).Err()
}

// SetCategoriesAsync runs SetCategories in the background.
func (cm *CacheManager) SetCategoriesAsync(version int64, categories []models.Category) {
	if !cm.enabled() || version <= 0 {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cm.SetCategories(bgCtx, version, categories); err != nil {
			zap.L().Warn("Failed to cache category list", zap.Error(err))
		}
	}()
}

// Invalidate drops every cached list by bumping the version
func (cm *CacheManager) Invalidate(ctx context.Context) {
	if !cm.enabled() {
		return
	}
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		zap.L().Error("Failed to invalidate category cache", zap.Error(err))
		return
	}
	zap.L().Debug("Category cache invalidated", zap.Int64("new_version", newVersion))
}

// getCacheVersion retrieves the current cache version with retry logic
func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}

		if errors.Is(err, redis.Nil) {
			// SETNX so concurrent initialisers agree on the first version
			if err := cm.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err == nil {
				continue
			}
		}

		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}

	return 0, fmt.Errorf("failed to get cache version after %d retries", maxRetries)
}

func (cm *CacheManager) listKey(version int64) string {
	return fmt.Sprintf("%s%d", CategoryListCachePrefix, version)
}
