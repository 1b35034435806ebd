package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a buyer's rating of a meal.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	FoodID    string             `bson:"foodId" json:"foodId"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	UserName  string             `bson:"userName" json:"userName"`
	Rating    float64            `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Favorite bookmarks a meal for a buyer. One per (userEmail, foodId).
type Favorite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	FoodID    string             `bson:"foodId" json:"foodId"`
	FoodName  string             `bson:"foodName" json:"foodName"`
	ChefName  string             `bson:"chefName,omitempty" json:"chefName,omitempty"`
	Price     float64            `bson:"price" json:"price"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}
