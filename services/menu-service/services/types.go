package services

import (
	"context"
	"strings"

	"github.com/yashrajoria/menu-backend/services/menu-service/models"
)

// PUT /categories actions.
const (
	ActionAddProduct        = "addProduct"
	ActionUpdateProduct     = "updateProduct"
	ActionDeleteProduct     = "deleteProduct"
	ActionReorderCategories = "reorderCategories"
)

// CategoryCreateRequest is the request payload for creating a category
type CategoryCreateRequest struct {
	Name  string `json:"name" validate:"required,notblank"`
	Order *int   `json:"order"`
}

// ProductInput carries the product fields of add/update/delete actions.
type ProductInput struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Price       models.Price `json:"price"`
	Image       string       `json:"image"`
	Description string       `json:"description"`
}

// CategoryRef identifies a category in a reorder request. Older admin pages
// send `_id` instead of `id`.
type CategoryRef struct {
	ID       string `json:"id"`
	LegacyID string `json:"_id"`
}

func (r CategoryRef) Key() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return strings.TrimSpace(r.LegacyID)
}

// CategoryUpdateRequest is the body of PUT /categories.
type CategoryUpdateRequest struct {
	Action     string        `json:"action" validate:"required"`
	CategoryID string        `json:"categoryId"`
	Product    *ProductInput `json:"product"`
	Categories []CategoryRef `json:"categories"`
}

// LegacyProductRequest is the body of POST /products.
type LegacyProductRequest struct {
	Name        string       `json:"name"`
	Price       models.Price `json:"price"`
	Image       string       `json:"image"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
}

// MigrationResult summarises a legacy menu import.
type MigrationResult struct {
	Message    string `json:"message"`
	Categories int    `json:"categories"`
	Products   int    `json:"products"`
}

// MetricsRecorder is the subset of the CloudWatch client the services use.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}
