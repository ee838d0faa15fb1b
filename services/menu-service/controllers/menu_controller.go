package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/menu-backend/pkg/menu"
	"github.com/yashrajoria/menu-backend/services/common/logger"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"go.uber.org/zap"
)

// MenuController serves the customer view of the menu.
type MenuController struct {
	service CategoryServiceAPI
	now     func() time.Time
}

func NewMenuController(s CategoryServiceAPI) *MenuController {
	return &MenuController{service: s, now: time.Now}
}

// GetMenu handles GET /menu
func (ctrl *MenuController) GetMenu(c *gin.Context) {
	categories, err := ctrl.service.ListCategories(c.Request.Context())
	if err != nil {
		logger.For(c.Request.Context()).Error("Service failed to list categories for menu", zap.Error(err))
		_ = c.Error(err)
		return
	}

	view := menu.Build(toMenuCategories(categories))
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"sections":  view.Sections,
		"items":     view.Items,
		"timestamp": timestamp(ctrl.now),
	})
}

func toMenuCategories(categories []models.Category) []menu.Category {
	out := make([]menu.Category, 0, len(categories))
	for _, c := range categories {
		products := make([]menu.Product, 0, len(c.Products))
		for _, p := range c.Products {
			products = append(products, menu.Product{
				ID:          p.ID,
				Name:        p.Name,
				Price:       p.Price,
				Image:       p.Image,
				Description: p.Description,
			})
		}
		out = append(out, menu.Category{
			ID:       c.ID.Hex(),
			Name:     c.Name,
			Order:    c.Order,
			Products: products,
		})
	}
	return out
}
