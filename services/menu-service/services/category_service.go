package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	awspkg "github.com/yashrajoria/menu-backend/pkg/aws"
	"github.com/yashrajoria/menu-backend/pkg/menu"
	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/common/logger"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"github.com/yashrajoria/menu-backend/services/menu-service/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Option func(*options)

type options struct {
	events  EventPublisher
	metrics MetricsRecorder
	now     func() time.Time
	newID   func(time.Time) string
}

func WithEventPublisher(p EventPublisher) Option {
	return func(o *options) { o.events = p }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) { o.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how product ids are minted.
func WithIDGenerator(fn func(time.Time) string) Option {
	return func(o *options) { o.newID = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		events: NoopPublisher{},
		now:    func() time.Time { return time.Now().UTC() },
		newID:  NewProductID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewProductID returns product-<unix millis>-<9 random chars>.
func NewProductID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("product-%d-%s", at.UnixMilli(), suffix)
}

type CategoryService struct {
	repo repository.CategoryRepo
	opts options
}

func NewCategoryService(repo repository.CategoryRepo, opts ...Option) *CategoryService {
	return &CategoryService{repo: repo, opts: buildOptions(opts)}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	// The store's collation order is not guaranteed to match ours on ties.
	menu.SortByKey(menu.NewOrdering(menu.DefaultLanguage), categories, func(c models.Category) (int, string) {
		return c.Order, c.Name
	})
	return categories, nil
}

// CreateCategory handles the business logic for creating a single category.
func (s *CategoryService) CreateCategory(ctx context.Context, req CategoryCreateRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}

	// Concurrent creates that pass this check are rejected by the unique index.
	_, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return nil, apperrors.Duplicate("category already exists")
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := s.opts.now()
	category := &models.Category{
		Name:      name,
		Products:  []models.Product{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Order != nil {
		category.Order = *req.Order
	}

	if _, err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	recordAsync(s.opts.metrics, awspkg.MetricCategoriesCreated)
	publishAsync(s.opts.events, MenuEvent{Type: EventCategoryCreated, CategoryID: category.ID.Hex(), OccurredAt: now})
	return category, nil
}

func (s *CategoryService) AddProduct(ctx context.Context, categoryID string, input *ProductInput) (*models.Product, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, apperrors.Validation("categoryId is required")
	}
	if input == nil || strings.TrimSpace(input.Name) == "" || input.Price == 0 {
		return nil, apperrors.Validation("product name and price are required")
	}
	oid, err := parseObjectID(categoryID, "invalid categoryId")
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	product := models.Product{
		ID:          s.opts.newID(now),
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price.Float64(),
		Image:       strings.TrimSpace(input.Image),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
	}

	if err := s.repo.PushProduct(ctx, oid, product, now); err != nil {
		return nil, err
	}

	recordAsync(s.opts.metrics, awspkg.MetricProductsCreated)
	publishAsync(s.opts.events, MenuEvent{Type: EventProductAdded, CategoryID: categoryID, ProductID: product.ID, OccurredAt: now})
	return &product, nil
}

// UpdateProduct replaces every editable field; omitted optional fields are cleared.
func (s *CategoryService) UpdateProduct(ctx context.Context, categoryID string, input *ProductInput) error {
	if strings.TrimSpace(categoryID) == "" || input == nil || strings.TrimSpace(input.ID) == "" {
		return apperrors.Validation("categoryId and product.id are required")
	}
	if strings.TrimSpace(input.Name) == "" || input.Price == 0 {
		return apperrors.Validation("product name and price are required")
	}
	oid, err := parseObjectID(categoryID, "invalid categoryId")
	if err != nil {
		return err
	}

	now := s.opts.now()
	product := models.Product{
		ID:          input.ID,
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price.Float64(),
		Image:       strings.TrimSpace(input.Image),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.UpdateProduct(ctx, oid, product, now); err != nil {
		return err
	}

	recordAsync(s.opts.metrics, awspkg.MetricProductsUpdated)
	publishAsync(s.opts.events, MenuEvent{Type: EventProductUpdated, CategoryID: categoryID, ProductID: input.ID, OccurredAt: now})
	return nil
}

func (s *CategoryService) DeleteProduct(ctx context.Context, categoryID string, input *ProductInput) error {
	if strings.TrimSpace(categoryID) == "" || input == nil || strings.TrimSpace(input.ID) == "" {
		return apperrors.Validation("categoryId and product.id are required")
	}
	oid, err := parseObjectID(categoryID, "invalid categoryId")
	if err != nil {
		return err
	}

	now := s.opts.now()
	if err := s.repo.PullProduct(ctx, oid, input.ID, now); err != nil {
		return err
	}

	recordAsync(s.opts.metrics, awspkg.MetricProductsDeleted)
	publishAsync(s.opts.events, MenuEvent{Type: EventProductDeleted, CategoryID: categoryID, ProductID: input.ID, OccurredAt: now})
	return nil
}

// ReorderCategories sets order=index for each referenced category.
func (s *CategoryService) ReorderCategories(ctx context.Context, refs []CategoryRef) (models.ReorderResult, error) {
	if len(refs) == 0 {
		return models.ReorderResult{}, apperrors.Validation("categories is required")
	}

	ids := make([]primitive.ObjectID, 0, len(refs))
	for _, ref := range refs {
		key := ref.Key()
		if key == "" {
			return models.ReorderResult{}, apperrors.Validation("category id is required")
		}
		oid, err := parseObjectID(key, "invalid category id: "+key)
		if err != nil {
			return models.ReorderResult{}, err
		}
		ids = append(ids, oid)
	}

	now := s.opts.now()
	result, err := s.repo.Reorder(ctx, ids, now)
	if err != nil {
		return models.ReorderResult{}, err
	}
	if result.Matched < int64(len(ids)) {
		logger.For(ctx).Warn("reorder referenced unknown categories",
			zap.Int("requested", len(ids)),
			zap.Int64("matched", result.Matched),
		)
	}

	recordAsync(s.opts.metrics, awspkg.MetricCategoriesReordered)
	publishAsync(s.opts.events, MenuEvent{Type: EventCategoriesReordered, OccurredAt: now})
	return result, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Validation("id is required")
	}
	oid, err := parseObjectID(id, "invalid id")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		return err
	}

	recordAsync(s.opts.metrics, awspkg.MetricCategoriesDeleted)
	publishAsync(s.opts.events, MenuEvent{Type: EventCategoryDeleted, CategoryID: id, OccurredAt: s.opts.now()})
	return nil
}

func parseObjectID(hex, message string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation(message)
	}
	return oid, nil
}
