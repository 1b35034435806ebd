package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. The vocabulary is open-ended on purpose: chefs drive the
// transitions and the manager does not enforce a fixed graph, only who may
// write the field.
const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Payment statuses. pending → paid exactly once, written only by
// reconciliation.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Order is one buyer-chef transaction.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserEmail     string             `bson:"userEmail" json:"userEmail"`
	ChefID        string             `bson:"chefId" json:"chefId"`
	FoodID        string             `bson:"foodId" json:"foodId"`
	FoodName      string             `bson:"foodName" json:"foodName"`
	ChefName      string             `bson:"chefName,omitempty" json:"chefName,omitempty"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	Price         float64            `bson:"price" json:"price"`
	DeliveryTime  string             `bson:"deliveryTime,omitempty" json:"deliveryTime,omitempty"`
	OrderStatus   string             `bson:"orderStatus" json:"orderStatus"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	OrderTime     time.Time          `bson:"orderTime" json:"orderTime"`
}
