package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UncategorizedName is the category assigned to legacy products sent without one.
const UncategorizedName = "بدون قسم"

// Product is embedded in exactly one Category. Its id is only unique within
// that category.
type Product struct {
	ID          string     `json:"id" bson:"id"`
	Name        string     `json:"name" bson:"name"`
	Price       float64    `json:"price" bson:"price"`
	Image       string     `json:"image" bson:"image"`
	Description string     `json:"description" bson:"description"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// LegacyProduct is a document in the flat `products` collection, which
// references its category by name rather than by id.
type LegacyProduct struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Price       float64            `json:"price" bson:"price"`
	Image       string             `json:"image" bson:"image"`
	Description string             `json:"description" bson:"description"`
	Category    string             `json:"category" bson:"category"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}
