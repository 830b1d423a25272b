package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"maryland-pharmacy/models"
)

// ErrOrderNotFound is returned when an order lookup resolves nothing.
var ErrOrderNotFound = errors.New("order not found")

// OrderStore is the order workflow's persistence surface. Insert is the
// single commit point of checkout; ApplyUpdate carries the field set of a
// status transition and returns the post-update document.
type OrderStore interface {
	Insert(ctx context.Context, order models.Order) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	ApplyUpdate(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Order, error)
}

type mongoOrders struct {
	coll *mongo.Collection
}

// NewOrderStore returns the Mongo-backed order store.
func NewOrderStore(db *mongo.Database) OrderStore {
	return &mongoOrders{coll: db.Collection("orders")}
}

func (s *mongoOrders) Insert(ctx context.Context, order models.Order) (primitive.ObjectID, error) {
	res, err := s.coll.InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (s *mongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *mongoOrders) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.find(ctx, bson.M{"user": userID})
}

func (s *mongoOrders) FindAll(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{})
}

// find lists orders newest first.
func (s *mongoOrders) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *mongoOrders) ApplyUpdate(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Order, error) {
	var updated models.Order
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, findAfter()).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return updated, nil
}

// findAfter asks FindOneAndUpdate to return the post-update document.
func findAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
