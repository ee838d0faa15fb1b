package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/menu-backend/services/common/logger"
	"go.uber.org/zap"
)

type MigrateController struct {
	service MigrationServiceAPI
	cache   *CacheManager
}

func NewMigrateController(s MigrationServiceAPI, cache *CacheManager) *MigrateController {
	return &MigrateController{service: s, cache: cache}
}

type migrateRequest struct {
	Action string `json:"action"`
}

// Migrate handles POST /migrate
func (ctrl *MigrateController) Migrate(c *gin.Context) {
	var req migrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errInvalidBody)
		return
	}

	result, err := ctrl.service.Migrate(c.Request.Context(), req.Action)
	if err != nil {
		logger.For(c.Request.Context()).Error("Legacy menu migration failed", zap.Error(err))
		_ = c.Error(err)
		return
	}

	ctrl.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"message":    result.Message,
		"categories": result.Categories,
		"products":   result.Products,
	})
}
