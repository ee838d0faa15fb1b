package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
	awspkg "github.com/yashrajoria/menu-backend/pkg/aws"
	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/common/logger"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"github.com/yashrajoria/menu-backend/services/menu-service/repository"
	"go.uber.org/zap"
)

// MigrateAction is the only action POST /migrate accepts.
const MigrateAction = "migrate"

// MigrationService rebuilds the categories collection from the legacy flat menu.
type MigrationService struct {
	source LegacySource
	repo   repository.CategoryRepo
	opts   options
}

func NewMigrationService(source LegacySource, repo repository.CategoryRepo, opts ...Option) *MigrationService {
	return &MigrationService{source: source, repo: repo, opts: buildOptions(opts)}
}

// Migrate replaces every category with the grouped legacy products.
func (s *MigrationService) Migrate(ctx context.Context, action string) (*MigrationResult, error) {
	if action != MigrateAction {
		return nil, apperrors.Validation("invalid action")
	}

	raw, err := s.source.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}

	categories := GroupLegacyProducts(raw, s.opts.now(), s.opts.newID)
	if err := s.repo.ReplaceAll(ctx, categories); err != nil {
		return nil, fmt.Errorf("failed to replace categories: %w", err)
	}

	logger.For(ctx).Info("legacy menu migrated",
		zap.Int("categories", len(categories)),
		zap.Int("products", len(raw)),
	)
	recordAsync(s.opts.metrics, awspkg.MetricMenuMigrations)
	publishAsync(s.opts.events, MenuEvent{Type: EventMenuMigrated, OccurredAt: s.opts.now()})

	return &MigrationResult{
		Message:    fmt.Sprintf("migrated %d categories with %d products", len(categories), len(raw)),
		Categories: len(categories),
		Products:   len(raw),
	}, nil
}

// GroupLegacyProducts buckets flat legacy products by category name in order
// of first appearance. Every field falls back to a zero value when missing or
// malformed.
func GroupLegacyProducts(raw []interface{}, now time.Time, newID func(time.Time) string) []models.Category {
	index := make(map[string]int)
	categories := []models.Category{}

	for _, item := range raw {
		fields, _ := item.(map[string]interface{})

		name := strings.TrimSpace(cast.ToString(fields["category"]))
		if name == "" {
			name = models.UncategorizedName
		}

		pos, ok := index[name]
		if !ok {
			pos = len(categories)
			index[name] = pos
			categories = append(categories, models.Category{
				Name:      name,
				Products:  []models.Product{},
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		id := cast.ToString(fields["_id"])
		if id == "" {
			id = newID(now)
		}
		categories[pos].Products = append(categories[pos].Products, models.Product{
			ID:          id,
			Name:        cast.ToString(fields["name"]),
			Price:       coercePrice(fields["price"]),
			Image:       cast.ToString(fields["image"]),
			Description: cast.ToString(fields["description"]),
			CreatedAt:   now,
		})
	}
	return categories
}

func coercePrice(v interface{}) float64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
