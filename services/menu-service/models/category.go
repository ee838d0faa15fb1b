package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a menu section. It owns its products by embedding them; the
// slice order is the display order inside the section.
type Category struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Order     int                `json:"order" bson:"order"`
	Products  []Product          `json:"products" bson:"products"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ReorderResult reports how many category documents a reorder touched.
type ReorderResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}
