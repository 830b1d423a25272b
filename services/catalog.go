package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"maryland-pharmacy/models"
)

var (
	// ErrProductNotFound is returned when a catalog lookup resolves nothing.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when a conditional decrement finds
	// less stock than requested (or no product at all).
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductCatalog is the order workflow's view of the catalog store: price
// lookups for re-pricing and the guarded stock decrement of fulfillment.
type ProductCatalog interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type mongoCatalog struct {
	coll *mongo.Collection
}

// NewProductCatalog returns the Mongo-backed catalog.
func NewProductCatalog(db *mongo.Database) ProductCatalog {
	return &mongoCatalog{coll: db.Collection("products")}
}

func (c *mongoCatalog) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var product models.Product
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// DecrementStock atomically subtracts qty iff at least qty is on hand. The
// stock filter keeps concurrent orders racing the same product from driving
// stock negative.
func (c *mongoCatalog) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	filter := bson.M{"_id": id, "stock": bson.M{"$gte": qty}}
	update := bson.M{"$inc": bson.M{"stock": -qty}}
	res, err := c.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}
