package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles an account can hold.
const (
	RoleUser  = "user"
	RoleChef  = "chef"
	RoleAdmin = "admin"
)

// Account statuses.
const (
	StatusActive = "active"
	StatusFraud  = "fraud"
)

// User is an account record. ChefID is set once when the account is promoted
// to chef and is stable thereafter. An admin account can never be moved to
// the fraud status.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UID          string             `bson:"uid" json:"uid"`
	Email        string             `bson:"email" json:"email"`
	DisplayName  string             `bson:"displayName" json:"displayName"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	Role         string             `bson:"role" json:"role"`
	Status       string             `bson:"status" json:"status"`
	ChefID       string             `bson:"chefId,omitempty" json:"chefId,omitempty"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsFraud reports whether the account carries the fraud flag.
func (u *User) IsFraud() bool { return u.Status == StatusFraud }
