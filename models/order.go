package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status values. New is the only creation state; the admin transition
// endpoint moves an order one way into Delivered or Cancelled.
const (
	OrderStatusNew       = "New"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

// Payment methods. All three are manually reconciled rails.
const (
	PaymentCashOnDelivery = "Cash on Delivery"
	PaymentInstaPay       = "InstaPay"
	PaymentVodafoneCash   = "Vodafone Cash"
)

// OrderItem is a snapshot of a catalog line captured at order time. Name,
// image and price are frozen here and never re-read from the live product,
// so later catalog edits cannot alter a placed order.
type OrderItem struct {
	Product primitive.ObjectID `bson:"product" json:"product"`
	Name    string             `bson:"name" json:"name"`
	Image   string             `bson:"image" json:"image"`
	Price   float64            `bson:"price" json:"price"`
	Qty     int                `bson:"qty" json:"qty"`
}

// ShippingAddress is the delivery snapshot for a single order.
type ShippingAddress struct {
	Street string `bson:"street" json:"street"`
	City   string `bson:"city" json:"city"`
	Phone  string `bson:"phone" json:"phone"`
}

// PaymentResult records the manual verification state of a payment. For
// InstaPay and Vodafone Cash the ID holds the client's free-text transaction
// note until an admin confirms it.
type PaymentResult struct {
	ID           string    `bson:"id,omitempty" json:"id,omitempty"`
	Status       string    `bson:"status,omitempty" json:"status,omitempty"`
	UpdateTime   time.Time `bson:"updateTime,omitempty" json:"updateTime,omitempty"`
	EmailAddress string    `bson:"emailAddress,omitempty" json:"emailAddress,omitempty"`
}

// Order is the immutable record produced by the order workflow. Only status,
// isPaid, paidAt and deliveredAt are ever mutated, and only by the admin
// status transition.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	OrderItems      []OrderItem        `bson:"orderItems" json:"orderItems"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentResult   PaymentResult      `bson:"paymentResult,omitempty" json:"paymentResult,omitempty"`
	ItemsPrice      float64            `bson:"itemsPrice" json:"itemsPrice"`
	DeliveryFee     float64            `bson:"deliveryFee" json:"deliveryFee"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          string             `bson:"status" json:"status"`
	IsPaid          bool               `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the populated owner info attached to admin order listings.
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Phone string             `bson:"phone,omitempty" json:"phone,omitempty"`
}

// PopulatedOrder is an order together with its owning user's contact fields,
// mirroring what the storefront and admin panel expect from order reads.
type PopulatedOrder struct {
	Order
	UserInfo UserSummary `json:"userInfo"`
}
