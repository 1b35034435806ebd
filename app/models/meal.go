package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meal is a chef's listing.
type Meal struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	FoodName              string             `bson:"foodName" json:"foodName"`
	ChefName              string             `bson:"chefName" json:"chefName"`
	Price                 float64            `bson:"price" json:"price"`
	Rating                float64            `bson:"rating" json:"rating"`
	Ingredients           []string           `bson:"ingredients" json:"ingredients"`
	EstimatedDeliveryTime string             `bson:"estimatedDeliveryTime" json:"estimatedDeliveryTime"`
	ChefExperience        string             `bson:"chefExperience" json:"chefExperience"`
	UserEmail             string             `bson:"userEmail" json:"userEmail"`
	ChefID                string             `bson:"chefId" json:"chefId"`
	FoodImage             string             `bson:"foodImage" json:"foodImage"`
	DeliveryArea          string             `bson:"deliveryArea" json:"deliveryArea"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
}

// ClampRating bounds a rating to the closed interval [0, 5].
func ClampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}
