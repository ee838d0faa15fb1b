package services

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
	"github.com/yashrajoria/menu-backend/services/menu-service/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryRepo is an in-memory CategoryRepo with the same matching rules as
// the Mongo implementation.
type memoryRepo struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]*models.Category
	failWith   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{categories: make(map[primitive.ObjectID]*models.Category)}
}

func (r *memoryRepo) FindAll(context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		cp := *c
		cp.Products = append([]models.Product{}, c.Products...)
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *memoryRepo) FindByName(_ context.Context, name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, c := range r.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("category not found")
}

func (r *memoryRepo) Create(_ context.Context, category *models.Category) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == category.Name {
			return primitive.NilObjectID, apperrors.Duplicate("category already exists")
		}
	}
	category.ID = primitive.NewObjectID()
	cp := *category
	r.categories[category.ID] = &cp
	return category.ID, nil
}

func (r *memoryRepo) PushProduct(_ context.Context, id primitive.ObjectID, product models.Product, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return apperrors.NotFound("category not found")
	}
	c.Products = append(c.Products, product)
	c.UpdatedAt = at
	return nil
}

func (r *memoryRepo) UpdateProduct(_ context.Context, id primitive.ObjectID, product models.Product, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return apperrors.NotFound("product not found")
	}
	for i := range c.Products {
		if c.Products[i].ID == product.ID {
			p := &c.Products[i]
			p.Name, p.Price, p.Image, p.Description = product.Name, product.Price, product.Image, product.Description
			updated := at
			p.UpdatedAt = &updated
			c.UpdatedAt = at
			return nil
		}
	}
	return apperrors.NotFound("product not found")
}

func (r *memoryRepo) PullProduct(_ context.Context, id primitive.ObjectID, productID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return apperrors.NotFound("category not found")
	}
	kept := c.Products[:0]
	for _, p := range c.Products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	c.Products = kept
	c.UpdatedAt = at
	return nil
}

func (r *memoryRepo) Reorder(_ context.Context, ids []primitive.ObjectID, at time.Time) (models.ReorderResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result models.ReorderResult
	for i, id := range ids {
		c, ok := r.categories[id]
		if !ok {
			continue
		}
		result.Matched++
		if c.Order != i {
			result.Modified++
		}
		c.Order = i
		c.UpdatedAt = at
	}
	return result, nil
}

func (r *memoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return apperrors.NotFound("category not found")
	}
	delete(r.categories, id)
	return nil
}

func (r *memoryRepo) ReplaceAll(_ context.Context, categories []models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.categories = make(map[primitive.ObjectID]*models.Category)
	for i := range categories {
		cp := categories[i]
		cp.ID = primitive.NewObjectID()
		r.categories[cp.ID] = &cp
	}
	return nil
}

func (r *memoryRepo) EnsureIndexes(context.Context) error { return nil }

func (r *memoryRepo) byName(name string) *models.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// recordingPublisher captures published events on a channel.
type recordingPublisher struct {
	events chan MenuEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan MenuEvent, 16)}
}

func (p *recordingPublisher) Publish(_ context.Context, event MenuEvent) error {
	p.events <- event
	return nil
}
