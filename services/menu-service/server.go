package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/common/logger"
	"github.com/yashrajoria/menu-backend/services/common/middleware"
	"github.com/yashrajoria/menu-backend/services/menu-service/routes"
	"go.uber.org/zap"
)

const serviceName = "menu-service"

type routerDeps struct {
	log         *zap.Logger
	controllers routes.Controllers
	metrics     middleware.MetricsRecorder
	limiter     *middleware.RateLimiter
}

func newRouter(cfg *Config, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(apperrors.Recovered))
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(deps.log))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	r.Use(middleware.SecurityHeaders())
	if deps.metrics != nil {
		r.Use(middleware.MetricsMiddleware(deps.metrics))
	}
	if deps.limiter != nil {
		r.Use(middleware.RateLimitMiddleware(deps.limiter))
	}
	r.Use(requestTimeout(cfg.RequestTimeout))
	r.Use(apperrors.ErrorMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	routes.Register(r, deps.controllers)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
