package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDeliveryFee applies when the settings document is absent.
const DefaultDeliveryFee = 30

// MaxNotificationEmails caps the recipient list stored in settings.
const MaxNotificationEmails = 3

// Setting is the single mutable configuration record. It is created lazily
// with defaults on first read and updated wholesale by the admin.
type Setting struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	DeliveryFee        float64            `bson:"deliveryFee" json:"deliveryFee"`
	NotificationEmails []string           `bson:"notificationEmails" json:"notificationEmails"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
