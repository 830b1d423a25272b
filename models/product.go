package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog item. Price and stock are authoritative here;
// the order workflow never trusts client-submitted values for either.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Image       string             `bson:"image" json:"image"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	IsMaryland  bool               `bson:"isMaryland" json:"isMaryland"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DefaultProductImage is used when a product is created without one.
const DefaultProductImage = "https://placehold.co/600x400?text=No+Image"
