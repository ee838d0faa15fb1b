package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	awspkg "github.com/yashrajoria/menu-backend/pkg/aws"
	"github.com/yashrajoria/menu-backend/services/common/logger"
	"github.com/yashrajoria/menu-backend/services/common/middleware"
	"github.com/yashrajoria/menu-backend/services/menu-service/controllers"
	"github.com/yashrajoria/menu-backend/services/menu-service/database"
	"github.com/yashrajoria/menu-backend/services/menu-service/repository"
	"github.com/yashrajoria/menu-backend/services/menu-service/routes"
	"github.com/yashrajoria/menu-backend/services/menu-service/services"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := LoadConfig(ctx)

	// --- 1. Logging ---
	var cwWriter io.Writer
	cwLogs, err := awspkg.NewCloudWatchLogsClient(ctx, serviceName)
	if err != nil {
		zap.L().Warn("CloudWatch Logs unavailable", zap.Error(err))
	} else if cwLogs.IsEnabled() {
		cwWriter = cwLogs
	}
	log := logger.InitializeWithWriter(cfg.Env, cwWriter)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	stop := make(chan struct{})
	go cwLogs.RunFlusher(stop, 5*time.Second)

	// --- 2. Infrastructure ---
	metrics, err := awspkg.NewMetricsClient(ctx, serviceName)
	if err != nil {
		log.Warn("CloudWatch metrics disabled", zap.Error(err))
	}

	if cfg.MongoURI == "" {
		log.Error("MONGODB_URI is not set; storage requests will fail")
	}
	store := database.NewStore(cfg.StoreConfig(), log,
		database.WithRetryHook(func(attempt int, err error) {
			_ = metrics.RecordCount(context.Background(), awspkg.MetricDatabaseRetries, nil)
		}),
	)

	categoryRepo := repository.NewCategoryRepository(store, repository.WithTransactions(cfg.UseTransactions))
	productRepo := repository.NewProductRepository(store)
	if cfg.MongoURI != "" {
		indexCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		if err := categoryRepo.EnsureIndexes(indexCtx); err != nil {
			log.Warn("Failed to ensure category indexes", zap.Error(err))
		}
		cancel()
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn("Failed to parse REDIS_URL, category cache disabled", zap.Error(err))
		} else {
			redisClient = redis.NewClient(redisOpts)
		}
	}

	events := services.EventPublisher(services.NoopPublisher{})
	if cfg.EventsTopicArn != "" {
		awsCfg, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			log.Warn("Failed to load AWS config, menu events disabled", zap.Error(err))
		} else {
			events = services.NewEventPublisher(awspkg.NewSNSClient(awsCfg), cfg.EventsTopicArn)
		}
	}

	// --- 3. Dependency Injection ---
	svcOpts := []services.Option{services.WithEventPublisher(events)}
	if metrics != nil {
		svcOpts = append(svcOpts, services.WithMetrics(metrics))
	}
	categoryService := services.NewCategoryService(categoryRepo, svcOpts...)
	productService := services.NewProductService(productRepo, svcOpts...)
	migrationService := services.NewMigrationService(
		services.NewLegacyMenuClient(cfg.LegacyMenuURL, 15*time.Second),
		categoryRepo,
		svcOpts...,
	)

	cache := controllers.NewCacheManager(redisClient, cfg.CacheTTL)
	var cacheMetrics controllers.MetricsRecorder
	if metrics != nil {
		cacheMetrics = metrics
	}

	limiter := middleware.NewRateLimiter(rate.Limit(20), 40, 10*time.Minute)
	go limiter.RunSweeper(stop)

	deps := routerDeps{
		log: log,
		controllers: routes.Controllers{
			Categories: controllers.NewCategoryController(categoryService, cache, cacheMetrics),
			Menu:       controllers.NewMenuController(categoryService),
			Products:   controllers.NewProductController(productService),
			Migrate:    controllers.NewMigrateController(migrationService, cache),
		},
		limiter: limiter,
	}
	if metrics != nil {
		deps.metrics = metrics
	}
	r := newRouter(cfg, deps)

	// --- 4. Graceful Shutdown ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Menu Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down Menu Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	close(stop)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("Failed to close MongoDB", zap.Error(err))
	}

	log.Info("Menu Service stopped gracefully")
}
