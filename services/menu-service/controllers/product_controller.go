package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/menu-backend/services/menu-service/services"
)

// ProductController handles the legacy flat product endpoint.
type ProductController struct {
	service ProductServiceAPI
}

func NewProductController(s ProductServiceAPI) *ProductController {
	return &ProductController{service: s}
}

// CreateProduct handles POST /products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req services.LegacyProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errInvalidBody)
		return
	}

	product, err := ctrl.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": product.ID, "product": product})
}
