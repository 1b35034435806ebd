// Package repositories contains the data access layer.
//
// Each entity has an interface, a MongoDB implementation, and an in-memory
// twin used by tests and local development without a database. Repositories
// report storage-level outcomes (ErrNotFound, ErrDuplicate); classifying
// failures for the API is the services' job.
package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound means the document does not exist.
	ErrNotFound = errors.New("repositories: not found")
	// ErrDuplicate means a unique constraint was violated.
	ErrDuplicate = errors.New("repositories: duplicate")
)

// Collection names in the LocalChefBazaar database.
const (
	ColUsers     = "users"
	ColMeals     = "meals"
	ColOrders    = "orders"
	ColPayments  = "payments"
	ColRequests  = "requests"
	ColReviews   = "reviews"
	ColFavorites = "favorites"
	ColLogs      = "logs"
)

// Store bundles every repository over one database handle. Constructed once
// at startup and injected into services; nothing reaches for a global.
type Store struct {
	Users     UserRepository
	Meals     MealRepository
	Orders    OrderRepository
	Payments  PaymentRepository
	Requests  RequestRepository
	Reviews   ReviewRepository
	Favorites FavoriteRepository
}

// NewStore builds the MongoDB-backed repository set.
func NewStore(db *mongo.Database) *Store {
	return &Store{
		Users:     NewUserRepository(db),
		Meals:     NewMealRepository(db),
		Orders:    NewOrderRepository(db),
		Payments:  NewPaymentRepository(db),
		Requests:  NewRequestRepository(db),
		Reviews:   NewReviewRepository(db),
		Favorites: NewFavoriteRepository(db),
	}
}

// NewMemoryStore builds the in-memory repository set.
func NewMemoryStore() *Store {
	return &Store{
		Users:     NewMemoryUserRepository(),
		Meals:     NewMemoryMealRepository(),
		Orders:    NewMemoryOrderRepository(),
		Payments:  NewMemoryPaymentRepository(),
		Requests:  NewMemoryRequestRepository(),
		Reviews:   NewMemoryReviewRepository(),
		Favorites: NewMemoryFavoriteRepository(),
	}
}
