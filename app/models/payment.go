package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is the durable receipt written after the processor confirms a
// checkout session as paid. Immutable once written; one-to-one with a paid
// order.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	OrderID       string             `bson:"orderId" json:"orderId"`
	UserEmail     string             `bson:"userEmail" json:"userEmail"`
	ChefID        string             `bson:"chefId" json:"chefId"`
	FoodID        string             `bson:"foodId" json:"foodId"`
	FoodName      string             `bson:"foodName" json:"foodName"`
	AmountPaid    float64            `bson:"amountPaid" json:"amountPaid"`
	PaidAt        time.Time          `bson:"paidAt" json:"paidAt"`
}
