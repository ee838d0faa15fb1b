package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollationLocale orders category names the way the menu is written.
const DefaultCollationLocale = "ar"

const nameIndex = "name_unique"

type CategoryOption func(*CategoryRepository)

// WithTransactions runs multi-document writes inside a session transaction.
// The deployment must be a replica set or sharded cluster.
func WithTransactions(enabled bool) CategoryOption {
	return func(r *CategoryRepository) { r.useTransactions = enabled }
}

func WithCollationLocale(locale string) CategoryOption {
	return func(r *CategoryRepository) {
		if locale != "" {
			r.collation = &options.Collation{Locale: locale}
		}
	}
}

type CategoryRepository struct {
	store           CollectionProvider
	collation       *options.Collation
	useTransactions bool
}

func NewCategoryRepository(store CollectionProvider, opts ...CategoryOption) *CategoryRepository {
	r := &CategoryRepository{
		store:     store,
		collation: &options.Collation{Locale: DefaultCollationLocale},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *CategoryRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	return r.store.Collection(ctx, CategoriesCollection)
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}}).
		SetCollation(r.collation)

	cursor, err := col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, apperrors.Storage(err)
	}
	for i := range categories {
		if categories[i].Products == nil {
			categories[i].Products = []models.Product{}
		}
	}
	return categories, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	var category models.Category
	err = col.FindOne(ctx, bson.M{"name": name}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("category not found")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) (primitive.ObjectID, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if category.Products == nil {
		category.Products = []models.Product{}
	}

	result, err := col.InsertOne(ctx, category)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, apperrors.Duplicate("category already exists")
	}
	if err != nil {
		return primitive.NilObjectID, apperrors.Storage(err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	category.ID = id
	return id, nil
}

func (r *CategoryRepository) PushProduct(ctx context.Context, categoryID primitive.ObjectID, product models.Product, at time.Time) error {
	update := bson.M{
		"$push": bson.M{"products": product},
		"$set":  bson.M{"updatedAt": at},
	}
	return r.updateOne(ctx, bson.M{"_id": categoryID}, update, "category not found")
}

func (r *CategoryRepository) UpdateProduct(ctx context.Context, categoryID primitive.ObjectID, product models.Product, at time.Time) error {
	filter := bson.M{"_id": categoryID, "products.id": product.ID}
	update := bson.M{"$set": bson.M{
		"products.$.name":        product.Name,
		"products.$.price":       product.Price,
		"products.$.image":       product.Image,
		"products.$.description": product.Description,
		"products.$.updatedAt":   at,
		"updatedAt":              at,
	}}
	return r.updateOne(ctx, filter, update, "product not found")
}

// PullProduct succeeds when the category exists even if the product does not.
func (r *CategoryRepository) PullProduct(ctx context.Context, categoryID primitive.ObjectID, productID string, at time.Time) error {
	update := bson.M{
		"$pull": bson.M{"products": bson.M{"id": productID}},
		"$set":  bson.M{"updatedAt": at},
	}
	return r.updateOne(ctx, bson.M{"_id": categoryID}, update, "category not found")
}

func (r *CategoryRepository) updateOne(ctx context.Context, filter, update bson.M, notFound string) error {
	col, err := r.collection(ctx)
	if err != nil {
		return err
	}
	result, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.Storage(err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound(notFound)
	}
	return nil
}

func (r *CategoryRepository) Reorder(ctx context.Context, ids []primitive.ObjectID, at time.Time) (models.ReorderResult, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return models.ReorderResult{}, err
	}

	writes := make([]mongo.WriteModel, 0, len(ids))
	for i, id := range ids {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"order": i, "updatedAt": at}}))
	}

	var result models.ReorderResult
	err = r.inTransaction(ctx, col, func(ctx context.Context) error {
		res, err := col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
		if err != nil {
			return err
		}
		result = models.ReorderResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}
		return nil
	})
	if err != nil {
		return models.ReorderResult{}, apperrors.Storage(err)
	}
	return result, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	col, err := r.collection(ctx)
	if err != nil {
		return err
	}
	result, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Storage(err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("category not found")
	}
	return nil
}

func (r *CategoryRepository) ReplaceAll(ctx context.Context, categories []models.Category) error {
	col, err := r.collection(ctx)
	if err != nil {
		return err
	}

	docs := make([]interface{}, 0, len(categories))
	for i := range categories {
		docs = append(docs, categories[i])
	}

	err = r.inTransaction(ctx, col, func(ctx context.Context) error {
		if _, err := col.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		if _, err := col.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert categories: %w", err)
		}
		return nil
	})
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Duplicate("duplicate category name in migration data")
	}
	if err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// EnsureIndexes creates the unique name index that backs the duplicate check.
func (r *CategoryRepository) EnsureIndexes(ctx context.Context) error {
	col, err := r.collection(ctx)
	if err != nil {
		return err
	}
	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName(nameIndex).SetUnique(true),
	})
	if err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// inTransaction runs fn in a session on the client that owns col.
func (r *CategoryRepository) inTransaction(ctx context.Context, col *mongo.Collection, fn func(ctx context.Context) error) error {
	if !r.useTransactions {
		return fn(ctx)
	}

	session, err := col.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
