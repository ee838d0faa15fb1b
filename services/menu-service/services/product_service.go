package services

import (
	"context"
	"strings"

	awspkg "github.com/yashrajoria/menu-backend/pkg/aws"
	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"github.com/yashrajoria/menu-backend/services/menu-service/repository"
)

// ProductService serves the flat products collection kept for old clients.
type ProductService struct {
	repo repository.LegacyProductRepo
	opts options
}

func NewProductService(repo repository.LegacyProductRepo, opts ...Option) *ProductService {
	return &ProductService{repo: repo, opts: buildOptions(opts)}
}

func (s *ProductService) CreateProduct(ctx context.Context, req LegacyProductRequest) (*models.LegacyProduct, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price == 0 {
		return nil, apperrors.Validation("name and price are required")
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.UncategorizedName
	}

	product := &models.LegacyProduct{
		Name:        name,
		Price:       req.Price.Float64(),
		Image:       strings.TrimSpace(req.Image),
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		CreatedAt:   s.opts.now(),
	}
	if _, err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	recordAsync(s.opts.metrics, awspkg.MetricProductsCreated)
	return product, nil
}
