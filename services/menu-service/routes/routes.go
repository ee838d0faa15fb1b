package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/menu-backend/services/common/middleware"
	"github.com/yashrajoria/menu-backend/services/menu-service/controllers"
)

// Controllers groups the handlers the router wires up.
type Controllers struct {
	Categories *controllers.CategoryController
	Menu       *controllers.MenuController
	Products   *controllers.ProductController
	Migrate    *controllers.MigrateController
}

func RegisterCategoryRoutes(r gin.IRouter, ctrl *controllers.CategoryController) {
	categoryRoutes := r.Group("/categories", middleware.NoStore())
	{
		categoryRoutes.GET("", ctrl.GetCategories)
		categoryRoutes.POST("", ctrl.CreateCategory)
		categoryRoutes.PUT("", ctrl.UpdateCategories)
		categoryRoutes.DELETE("", ctrl.DeleteCategory)
	}
}

func RegisterMenuRoutes(r gin.IRouter, ctrl *controllers.MenuController) {
	r.GET("/menu", middleware.NoStore(), ctrl.GetMenu)
}

func RegisterProductRoutes(r gin.IRouter, ctrl *controllers.ProductController) {
	r.POST("/products", ctrl.CreateProduct)
}

func RegisterMigrateRoutes(r gin.IRouter, ctrl *controllers.MigrateController) {
	r.POST("/migrate", ctrl.Migrate)
}

// Register mounts every menu route on r.
func Register(r gin.IRouter, c Controllers) {
	RegisterCategoryRoutes(r, c.Categories)
	RegisterMenuRoutes(r, c.Menu)
	RegisterProductRoutes(r, c.Products)
	RegisterMigrateRoutes(r, c.Migrate)
}
