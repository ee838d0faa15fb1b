package repository

import (
	"context"
	"time"

	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CategoriesCollection = "categories"
	ProductsCollection   = "products"
)

// CollectionProvider hands out collection handles. database.Store satisfies it.
// Transactions start their session from the returned handle's client.
type CollectionProvider interface {
	Collection(ctx context.Context, name string) (*mongo.Collection, error)
}

// CategoryRepo defines the operations used for category management.
type CategoryRepo interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) (primitive.ObjectID, error)
	PushProduct(ctx context.Context, categoryID primitive.ObjectID, product models.Product, at time.Time) error
	UpdateProduct(ctx context.Context, categoryID primitive.ObjectID, product models.Product, at time.Time) error
	PullProduct(ctx context.Context, categoryID primitive.ObjectID, productID string, at time.Time) error
	// Reorder assigns order=index to each id in ids.
	Reorder(ctx context.Context, ids []primitive.ObjectID, at time.Time) (models.ReorderResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ReplaceAll drops every category and inserts categories in their place.
	ReplaceAll(ctx context.Context, categories []models.Category) error
	EnsureIndexes(ctx context.Context) error
}

// LegacyProductRepo writes to the flat products collection.
type LegacyProductRepo interface {
	Create(ctx context.Context, product *models.LegacyProduct) (primitive.ObjectID, error)
}
