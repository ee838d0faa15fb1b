package repository

import (
	"context"
	"fmt"

	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductRepository stores flat products that reference their category by name.
type ProductRepository struct {
	store CollectionProvider
}

func NewProductRepository(store CollectionProvider) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Create(ctx context.Context, product *models.LegacyProduct) (primitive.ObjectID, error) {
	col, err := r.store.Collection(ctx, ProductsCollection)
	if err != nil {
		return primitive.NilObjectID, err
	}
	result, err := col.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, apperrors.Storage(err)
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	product.ID = id
	return id, nil
}
