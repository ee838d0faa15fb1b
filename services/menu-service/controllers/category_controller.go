package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	awspkg "github.com/yashrajoria/menu-backend/pkg/aws"
	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/common/logger"
	"github.com/yashrajoria/menu-backend/services/menu-service/services"
	"go.uber.org/zap"
)

type CategoryController struct {
	service CategoryServiceAPI
	cache   *CacheManager
	metrics MetricsRecorder
	now     func() time.Time
}

func NewCategoryController(s CategoryServiceAPI, cache *CacheManager, metrics MetricsRecorder) *CategoryController {
	return &CategoryController{
		service: s,
		cache:   cache,
		metrics: metrics,
		now:     time.Now,
	}
}

// GetCategories handles GET /categories
func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	ctx := c.Request.Context()

	cached, version, ok := ctrl.cache.GetCategories(ctx)
	if ok {
		ctrl.count(awspkg.MetricCacheHits)
		c.JSON(http.StatusOK, gin.H{"ok": true, "categories": cached, "timestamp": timestamp(ctrl.now)})
		return
	}
	ctrl.count(awspkg.MetricCacheMisses)

	categories, err := ctrl.service.ListCategories(ctx)
	if err != nil {
		logger.For(ctx).Error("Service failed to list categories", zap.Error(err))
		_ = c.Error(err)
		return
	}

	ctrl.cache.SetCategoriesAsync(version, categories)
	c.JSON(http.StatusOK, gin.H{"ok": true, "categories": categories, "timestamp": timestamp(ctrl.now)})
}

// CreateCategory handles POST /categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req services.CategoryCreateRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	category, err := ctrl.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctrl.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": category.ID, "category": category})
}

// UpdateCategories handles PUT /categories, dispatching on the action field.
func (ctrl *CategoryController) UpdateCategories(c *gin.Context) {
	var req services.CategoryUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()

	var body gin.H
	switch req.Action {
	case services.ActionAddProduct:
		product, err := ctrl.service.AddProduct(ctx, req.CategoryID, req.Product)
		if err != nil {
			_ = c.Error(err)
			return
		}
		body = gin.H{"ok": true, "product": product}

	case services.ActionUpdateProduct:
		if err := ctrl.service.UpdateProduct(ctx, req.CategoryID, req.Product); err != nil {
			_ = c.Error(err)
			return
		}
		body = gin.H{"ok": true}

	case services.ActionDeleteProduct:
		if err := ctrl.service.DeleteProduct(ctx, req.CategoryID, req.Product); err != nil {
			_ = c.Error(err)
			return
		}
		body = gin.H{"ok": true}

	case services.ActionReorderCategories:
		result, err := ctrl.service.ReorderCategories(ctx, req.Categories)
		if err != nil {
			_ = c.Error(err)
			return
		}
		body = gin.H{"ok": true, "message": "order updated", "matched": result.Matched, "modified": result.Modified}

	default:
		_ = c.Error(apperrors.Validation("unknown action"))
		return
	}

	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, body)
}

// DeleteCategory handles DELETE /categories?id=
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	var query deleteCategoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperrors.Validation("invalid query"))
		return
	}
	if err := validateStruct(&query); err != nil {
		_ = c.Error(err)
		return
	}

	if err := ctrl.service.DeleteCategory(c.Request.Context(), query.ID); err != nil {
		_ = c.Error(err)
		return
	}

	ctrl.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (ctrl *CategoryController) count(metric string) {
	if ctrl.metrics == nil || !ctrl.cache.enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ctrl.metrics.RecordCount(ctx, metric, map[string]string{"Cache": "categories"})
	}()
}
