package controllers

import (
	"context"
	"time"

	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"github.com/yashrajoria/menu-backend/services/menu-service/services"
)

// Config holds controller configuration
type Config struct {
	CacheTTL       time.Duration
	ContextTimeout time.Duration
}

// Default configuration values
const (
	DefaultCacheTTL       = 10 * time.Minute
	DefaultContextTimeout = 30 * time.Second
)

// CategoryServiceAPI defines the interface for category service operations
type CategoryServiceAPI interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, req services.CategoryCreateRequest) (*models.Category, error)
	AddProduct(ctx context.Context, categoryID string, input *services.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, categoryID string, input *services.ProductInput) error
	DeleteProduct(ctx context.Context, categoryID string, input *services.ProductInput) error
	ReorderCategories(ctx context.Context, refs []services.CategoryRef) (models.ReorderResult, error)
	DeleteCategory(ctx context.Context, id string) error
}

// ProductServiceAPI serves the legacy flat products path
type ProductServiceAPI interface {
	CreateProduct(ctx context.Context, req services.LegacyProductRequest) (*models.LegacyProduct, error)
}

type MigrationServiceAPI interface {
	Migrate(ctx context.Context, action string) (*services.MigrationResult, error)
}

// MetricsRecorder counts cache hits and misses.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

func timestamp(now func() time.Time) int64 {
	return now().UnixMilli()
}
