package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"github.com/yashrajoria/menu-backend/services/menu-service/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *memoryRepo, opts ...Option) *CategoryService {
	seq := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func(time.Time) string {
			seq++
			return fmt.Sprintf("product-%d", seq)
		}),
	}
	return NewCategoryService(repo, append(base, opts...)...)
}

func productIDs(c *models.Category) []string {
	ids := make([]string, 0, len(c.Products))
	for _, p := range c.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("trims name and lists once", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)

		category, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: "  Drinks  "})
		require.NoError(t, err)
		assert.Equal(t, "Drinks", category.Name)
		assert.Equal(t, 0, category.Order)
		assert.Empty(t, category.Products)
		assert.False(t, category.ID.IsZero())
		assert.Equal(t, fixedNow, category.CreatedAt)

		list, err := svc.ListCategories(ctx)
		require.NoError(t, err)
		count := 0
		for _, c := range list {
			if c.Name == "Drinks" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("keeps explicit order", func(t *testing.T) {
		svc := newTestService(newMemoryRepo())
		order := 4
		category, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: "Mains", Order: &order})
		require.NoError(t, err)
		assert.Equal(t, 4, category.Order)
	})

	t.Run("rejects blank names", func(t *testing.T) {
		svc := newTestService(newMemoryRepo())
		for _, name := range []string{"", "   ", "\t\n"} {
			_, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: name})
			assert.True(t, errors.Is(err, apperrors.ErrValidation), "name %q", name)
		}
	})

	t.Run("duplicate after trim", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		_, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: "Drinks"})
		require.NoError(t, err)

		_, err = svc.CreateCategory(ctx, CategoryCreateRequest{Name: " Drinks "})
		assert.True(t, errors.Is(err, apperrors.ErrDuplicate))

		list, _ := svc.ListCategories(ctx)
		assert.Len(t, list, 1)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := newMemoryRepo()
		repo.failWith = apperrors.Storage(errors.New("down"))
		svc := newTestService(repo)

		_, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: "Drinks"})
		assert.True(t, errors.Is(err, apperrors.ErrStorage))
	})
}

type unsortedRepo struct {
	repository.CategoryRepo
	categories []models.Category
}

func (r unsortedRepo) FindAll(context.Context) ([]models.Category, error) {
	return r.categories, nil
}

func TestListCategories_OrderThenName(t *testing.T) {
	svc := NewCategoryService(unsortedRepo{categories: []models.Category{
		{Name: "Mains", Order: 1},
		{Name: "Drinks", Order: 1},
		{Name: "Soups", Order: 0},
	}})

	list, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Soups", "Drinks", "Mains"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestProductLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	category, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: "Drinks"})
	require.NoError(t, err)
	id := category.ID.Hex()

	cola, err := svc.AddProduct(ctx, id, &ProductInput{Name: " Cola ", Price: 500})
	require.NoError(t, err)
	assert.Equal(t, "Cola", cola.Name)
	assert.Equal(t, 500.0, cola.Price)
	assert.Equal(t, fixedNow, cola.CreatedAt)

	tea, err := svc.AddProduct(ctx, id, &ProductInput{Name: "Tea", Price: 150, Description: " hot "})
	require.NoError(t, err)
	assert.Equal(t, "hot", tea.Description)
	assert.Equal(t, []string{cola.ID, tea.ID}, productIDs(repo.byName("Drinks")))

	err = svc.UpdateProduct(ctx, id, &ProductInput{ID: cola.ID, Name: "Cola Zero", Price: 550})
	require.NoError(t, err)
	stored := repo.byName("Drinks")
	assert.Equal(t, []string{cola.ID, tea.ID}, productIDs(stored))
	assert.Equal(t, "Cola Zero", stored.Products[0].Name)
	assert.Equal(t, 550.0, stored.Products[0].Price)
	require.NotNil(t, stored.Products[0].UpdatedAt)

	require.NoError(t, svc.DeleteProduct(ctx, id, &ProductInput{ID: cola.ID}))
	assert.Equal(t, []string{tea.ID}, productIDs(repo.byName("Drinks")))

	// deleting a product that is already gone is not an error
	require.NoError(t, svc.DeleteProduct(ctx, id, &ProductInput{ID: cola.ID}))
	assert.Equal(t, []string{tea.ID}, productIDs(repo.byName("Drinks")))
}

func TestAddProductValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo())

	tests := []struct {
		name       string
		categoryID string
		input      *ProductInput
		kind       error
		message    string
	}{
		{"missing category", "", &ProductInput{Name: "Cola", Price: 1}, apperrors.ErrValidation, "categoryId is required"},
		{"missing product", primitive.NewObjectID().Hex(), nil, apperrors.ErrValidation, "product name and price are required"},
		{"blank name", primitive.NewObjectID().Hex(), &ProductInput{Name: " ", Price: 1}, apperrors.ErrValidation, "product name and price are required"},
		{"zero price", primitive.NewObjectID().Hex(), &ProductInput{Name: "Cola"}, apperrors.ErrValidation, "product name and price are required"},
		{"malformed id", "not-an-id", &ProductInput{Name: "Cola", Price: 1}, apperrors.ErrValidation, "invalid categoryId"},
		{"unknown category", primitive.NewObjectID().Hex(), &ProductInput{Name: "Cola", Price: 1}, apperrors.ErrNotFound, "category not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddProduct(ctx, tt.categoryID, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestUpdateProductErrors(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)
	category, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: "Drinks"})
	require.NoError(t, err)

	err = svc.UpdateProduct(ctx, category.ID.Hex(), &ProductInput{Name: "Cola", Price: 1})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	err = svc.UpdateProduct(ctx, category.ID.Hex(), &ProductInput{ID: "missing", Name: "Cola", Price: 1})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = svc.DeleteProduct(ctx, primitive.NewObjectID().Hex(), &ProductInput{ID: "x"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestReorderCategories(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	ids := map[string]string{}
	for _, name := range []string{"A", "B", "C"} {
		c, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: name})
		require.NoError(t, err)
		ids[name] = c.ID.Hex()
	}

	result, err := svc.ReorderCategories(ctx, []CategoryRef{
		{ID: ids["C"]},
		{LegacyID: ids["A"]},
		{ID: ids["B"]},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Matched)

	assert.Equal(t, 0, repo.byName("C").Order)
	assert.Equal(t, 1, repo.byName("A").Order)
	assert.Equal(t, 2, repo.byName("B").Order)

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)
}

func TestReorderCategoriesValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo())

	_, err := svc.ReorderCategories(ctx, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = svc.ReorderCategories(ctx, []CategoryRef{{}})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = svc.ReorderCategories(ctx, []CategoryRef{{ID: "zzz"}})
	require.Error(t, err)
	assert.Equal(t, "invalid category id: zzz", err.Error())
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)
	category, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: "Drinks"})
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.DeleteCategory(ctx, ""), apperrors.ErrValidation))
	assert.True(t, errors.Is(svc.DeleteCategory(ctx, "bad"), apperrors.ErrValidation))
	assert.True(t, errors.Is(svc.DeleteCategory(ctx, primitive.NewObjectID().Hex()), apperrors.ErrNotFound))

	require.NoError(t, svc.DeleteCategory(ctx, category.ID.Hex()))
	assert.Nil(t, repo.byName("Drinks"))
}

func TestMutationsPublishEvents(t *testing.T) {
	ctx := context.Background()
	publisher := newRecordingPublisher()
	svc := newTestService(newMemoryRepo(), WithEventPublisher(publisher))

	category, err := svc.CreateCategory(ctx, CategoryCreateRequest{Name: "Drinks"})
	require.NoError(t, err)

	select {
	case event := <-publisher.events:
		assert.Equal(t, EventCategoryCreated, event.Type)
		assert.Equal(t, category.ID.Hex(), event.CategoryID)
		assert.Equal(t, fixedNow, event.OccurredAt)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestNewProductID(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	id := NewProductID(at)
	assert.Regexp(t, `^product-1700000000123-[0-9a-f]{9}$`, id)
	assert.NotEqual(t, id, NewProductID(at))
}
