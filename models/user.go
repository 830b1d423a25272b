package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is one entry of a user's address book. The list is embedded in the
// user document and never shared across users.
type Address struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Street    string             `bson:"street" json:"street"`
	City      string             `bson:"city" json:"city"`
	AptNumber string             `bson:"aptNumber,omitempty" json:"aptNumber,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsDefault bool               `bson:"isDefault" json:"isDefault"`
}

// User represents a client account. Email uniqueness is enforced at the store
// level; the password is stored as a bcrypt hash and never serialized.
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	Password            string             `bson:"password" json:"-"`
	Phone               string             `bson:"phone" json:"phone"`
	Role                string             `bson:"role" json:"role"`
	Addresses           []Address          `bson:"addresses" json:"addresses"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire time.Time          `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
