package services

import (
	"context"
	"errors"
	"time"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/pkg/apperr"
	"github.com/chefbazaar/backend/pkg/metrics"
)

// OrderService owns the order lifecycle: the fraud admission check at
// creation, status overwrites, and the listings.
type OrderService struct {
	orders repositories.OrderRepository
	users  repositories.UserRepository
}

func NewOrderService(orders repositories.OrderRepository, users repositories.UserRepository) *OrderService {
	return &OrderService{orders: orders, users: users}
}

// PlaceOrderInput is validated at the boundary before reaching the service.
type PlaceOrderInput struct {
	ChefID       string  `json:"chefId" validate:"required"`
	FoodID       string  `json:"foodId" validate:"required"`
	FoodName     string  `json:"foodName" validate:"required"`
	ChefName     string  `json:"chefName"`
	Quantity     int     `json:"quantity" validate:"nullable,gte=1"`
	Price        float64 `json:"price" validate:"required,gte=0"`
	DeliveryTime string  `json:"deliveryTime"`
}

// Place creates a pending order for the buyer. Buyers flagged as fraud (with
// the plain user role) are refused admission.
func (s *OrderService) Place(ctx context.Context, buyerEmail string, in PlaceOrderInput) (string, error) {
	buyer, err := s.users.FindByEmail(ctx, buyerEmail)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return "", apperr.Wrap(apperr.Internal, "failed to load buyer account", err)
	}
	if buyer != nil && buyer.IsFraud() && buyer.Role == models.RoleUser {
		return "", apperr.New(apperr.FraudBlocked, "account is flagged for fraud")
	}

	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}

	order := &models.Order{
		UserEmail:     buyerEmail,
		ChefID:        in.ChefID,
		FoodID:        in.FoodID,
		FoodName:      in.FoodName,
		ChefName:      in.ChefName,
		Quantity:      qty,
		Price:         in.Price,
		DeliveryTime:  in.DeliveryTime,
		OrderStatus:   models.OrderPending,
		PaymentStatus: models.PaymentPending,
		OrderTime:     time.Now().UTC(),
	}

	id, err := s.orders.Insert(ctx, order)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to create order", err)
	}

	metrics.OrdersPlaced.Inc()
	return id, nil
}

// UpdateStatus overwrites orderStatus unconditionally. There is no transition
// graph; callers are gated by the chef-or-admin policy, not by the current
// value of the field.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := s.orders.SetOrderStatus(ctx, id, status)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to update order status", err)
	}
	return nil
}

// Get loads one order.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to load order", err)
	}
	return order, nil
}

// ListByUser returns a buyer's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, email string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list orders", err)
	}
	return orders, nil
}

// ListByChef returns a chef's incoming orders, newest first.
func (s *OrderService) ListByChef(ctx context.Context, chefID string) ([]models.Order, error) {
	orders, err := s.orders.ListByChef(ctx, chefID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list orders", err)
	}
	return orders, nil
}
