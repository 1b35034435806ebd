package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Escalation request types.
const (
	RequestChef  = "chef"
	RequestAdmin = "admin"
)

// Escalation request statuses.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// AdminRequest is a user-submitted, admin-decided capability grant.
type AdminRequest struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserName      string             `bson:"userName" json:"userName"`
	UserEmail     string             `bson:"userEmail" json:"userEmail"`
	RequestType   string             `bson:"requestType" json:"requestType"`
	RequestStatus string             `bson:"requestStatus" json:"requestStatus"`
	RequestTime   time.Time          `bson:"requestTime" json:"requestTime"`
}
