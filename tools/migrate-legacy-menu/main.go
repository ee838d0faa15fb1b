package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/yashrajoria/menu-backend/services/common/logger"
	"github.com/yashrajoria/menu-backend/services/menu-service/database"
	"github.com/yashrajoria/menu-backend/services/menu-service/repository"
	"github.com/yashrajoria/menu-backend/services/menu-service/services"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	var mongoURI, dbName, legacyURL string
	var dryRun bool
	var timeout time.Duration
	flag.StringVar(&mongoURI, "mongo", os.Getenv("MONGODB_URI"), "MongoDB URI")
	flag.StringVar(&dbName, "db", os.Getenv("MONGODB_DB"), "MongoDB database name")
	flag.StringVar(&legacyURL, "legacy", services.DefaultLegacyMenuURL, "legacy flat menu URL")
	flag.BoolVar(&dryRun, "dry-run", false, "print the grouped categories without writing")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	zap.ReplaceGlobals(logger.Initialize(os.Getenv("APP_ENV")))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	source := services.NewLegacyMenuClient(legacyURL, 30*time.Second)

	if dryRun {
		raw, err := source.FetchProducts(ctx)
		if err != nil {
			log.Fatalf("fetch legacy menu: %v", err)
		}
		categories := services.GroupLegacyProducts(raw, time.Now().UTC(), services.NewProductID)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(categories); err != nil {
			log.Fatalf("encode: %v", err)
		}
		return
	}

	if mongoURI == "" {
		log.Fatal("MONGODB_URI must be set or provided via -mongo")
	}

	store := database.NewStore(database.DefaultStoreConfig(mongoURI, dbName), zap.L(),
		database.WithRetryHook(func(attempt int, err error) {
			log.Printf("mongo connect attempt %d failed: %v", attempt, err)
		}),
	)
	defer store.Close(context.Background())

	repo := repository.NewCategoryRepository(store)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Printf("ensure indexes: %v", err)
	}

	result, err := services.NewMigrationService(source, repo).Migrate(ctx, services.MigrateAction)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	fmt.Printf("Migration complete. categories=%d products=%d\n", result.Categories, result.Products)
}
