package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"maryland-pharmacy/models"
)

// SettingsUpdate carries a wholesale settings change. Nil fields leave the
// stored value untouched.
type SettingsUpdate struct {
	DeliveryFee        *float64
	NotificationEmails []string
}

// SettingsService is the explicit configuration surface injected into the
// order workflow. The workflow reads the fee at order time through Get; it
// never consults an ambient global.
type SettingsService interface {
	Get(ctx context.Context) (models.Setting, error)
	Update(ctx context.Context, upd SettingsUpdate) (models.Setting, error)
}

type mongoSettings struct {
	coll *mongo.Collection
}

// NewSettingsService returns the Mongo-backed settings singleton.
func NewSettingsService(db *mongo.Database) SettingsService {
	return &mongoSettings{coll: db.Collection("settings")}
}

// Get returns the singleton, creating it with defaults on first read.
func (s *mongoSettings) Get(ctx context.Context) (models.Setting, error) {
	var setting models.Setting
	err := s.coll.FindOne(ctx, bson.D{}).Decode(&setting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		now := time.Now()
		setting = models.Setting{
			DeliveryFee:        models.DefaultDeliveryFee,
			NotificationEmails: []string{},
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		res, insertErr := s.coll.InsertOne(ctx, setting)
		if insertErr != nil {
			return models.Setting{}, insertErr
		}
		err = s.coll.FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(&setting)
	}
	if err != nil {
		return models.Setting{}, err
	}
	return setting, nil
}

// Update applies the change to the singleton and returns the new record.
func (s *mongoSettings) Update(ctx context.Context, upd SettingsUpdate) (models.Setting, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return models.Setting{}, err
	}

	set := bson.M{"updatedAt": time.Now()}
	if upd.DeliveryFee != nil {
		set["deliveryFee"] = *upd.DeliveryFee
	}
	if upd.NotificationEmails != nil {
		set["notificationEmails"] = upd.NotificationEmails
	}

	var updated models.Setting
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": current.ID}, bson.M{"$set": set}, findAfter()).Decode(&updated)
	if err != nil {
		return models.Setting{}, err
	}
	return updated, nil
}
