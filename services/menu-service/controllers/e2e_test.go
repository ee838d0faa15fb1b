package controllers

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"github.com/yashrajoria/menu-backend/services/menu-service/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sliceRepo keeps categories in insertion order; enough of CategoryRepo for
// request-level flows.
type sliceRepo struct {
	mu         sync.Mutex
	categories []models.Category
}

func (r *sliceRepo) FindAll(context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

func (r *sliceRepo) FindByName(_ context.Context, name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.categories {
		if r.categories[i].Name == name {
			c := r.categories[i]
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("category not found")
}

func (r *sliceRepo) Create(_ context.Context, c *models.Category) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = primitive.NewObjectID()
	r.categories = append(r.categories, *c)
	return c.ID, nil
}

func (r *sliceRepo) PushProduct(_ context.Context, id primitive.ObjectID, p models.Product, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.categories {
		if r.categories[i].ID == id {
			r.categories[i].Products = append(r.categories[i].Products, p)
			r.categories[i].UpdatedAt = at
			return nil
		}
	}
	return apperrors.NotFound("category not found")
}

func (r *sliceRepo) UpdateProduct(context.Context, primitive.ObjectID, models.Product, time.Time) error {
	return nil
}

func (r *sliceRepo) PullProduct(context.Context, primitive.ObjectID, string, time.Time) error {
	return nil
}

func (r *sliceRepo) Reorder(context.Context, []primitive.ObjectID, time.Time) (models.ReorderResult, error) {
	return models.ReorderResult{}, nil
}

func (r *sliceRepo) Delete(context.Context, primitive.ObjectID) error { return nil }

func (r *sliceRepo) ReplaceAll(context.Context, []models.Category) error { return nil }

func (r *sliceRepo) EnsureIndexes(context.Context) error { return nil }

func TestCategoryFlow_DrinksAndCola(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := services.NewCategoryService(&sliceRepo{})
	router := newCategoryRouter(svc, nil)

	recorder := doJSON(router, http.MethodPost, "/categories", `{"name":"Drinks"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	categoryID, ok := decode(t, recorder)["id"].(string)
	require.True(t, ok)
	require.Len(t, categoryID, 24)

	recorder = doJSON(router, http.MethodPut, "/categories",
		`{"action":"addProduct","categoryId":"`+categoryID+`","product":{"name":"Cola","price":500}}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	product := decode(t, recorder)["product"].(map[string]interface{})
	assert.Regexp(t, `^product-\d+-[0-9a-f]{9}$`, product["id"])

	recorder = doJSON(router, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	categories := decode(t, recorder)["categories"].([]interface{})
	require.Len(t, categories, 1)

	drinks := categories[0].(map[string]interface{})
	assert.Equal(t, "Drinks", drinks["name"])
	products := drinks["products"].([]interface{})
	require.Len(t, products, 1)
	cola := products[0].(map[string]interface{})
	assert.Equal(t, "Cola", cola["name"])
	assert.Equal(t, float64(500), cola["price"])
	assert.Equal(t, product["id"], cola["id"])

	// second create with the same trimmed name is rejected
	recorder = doJSON(router, http.MethodPost, "/categories", `{"name":" Drinks "}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, false, decode(t, recorder)["ok"])
}

func TestCategoryFlow_NonFinitePriceRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sliceRepo{}
	router := newCategoryRouter(services.NewCategoryService(repo), nil)

	recorder := doJSON(router, http.MethodPost, "/categories", `{"name":"Drinks"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	categoryID := decode(t, recorder)["id"].(string)

	for _, price := range []string{`"NaN"`, `"Infinity"`, `"-Inf"`} {
		recorder = doJSON(router, http.MethodPut, "/categories",
			`{"action":"addProduct","categoryId":"`+categoryID+`","product":{"name":"Cola","price":`+price+`}}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, price)
		assert.Equal(t, false, decode(t, recorder)["ok"], price)
	}

	// nothing was stored, and the list still encodes
	recorder = doJSON(router, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	drinks := decode(t, recorder)["categories"].([]interface{})[0].(map[string]interface{})
	assert.Empty(t, drinks["products"])
}
