package services

import (
	"context"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/pkg/apperr"
)

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	TotalUsers    int64   `json:"totalUsers"`
	TotalChefs    int64   `json:"totalChefs"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalMeals    int64   `json:"totalMeals"`
	TotalPayments int64   `json:"totalPayments"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

// StatsService aggregates platform-wide counts for the admin dashboard.
type StatsService struct {
	users    repositories.UserRepository
	orders   repositories.OrderRepository
	meals    repositories.MealRepository
	payments repositories.PaymentRepository
}

func NewStatsService(users repositories.UserRepository, orders repositories.OrderRepository, meals repositories.MealRepository, payments repositories.PaymentRepository) *StatsService {
	return &StatsService{users: users, orders: orders, meals: meals, payments: payments}
}

// Platform collects the dashboard counters. Each count is a separate read,
// so the snapshot is not point-in-time consistent.
func (s *StatsService) Platform(ctx context.Context) (*PlatformStats, error) {
	var (
		stats PlatformStats
		err   error
	)

	if _, stats.TotalUsers, err = s.users.List(ctx, 1, 1); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to count users", err)
	}
	if stats.TotalChefs, err = s.users.CountByRole(ctx, models.RoleChef); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to count chefs", err)
	}
	if stats.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to count orders", err)
	}
	if stats.TotalMeals, err = s.meals.Count(ctx); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to count meals", err)
	}
	if stats.TotalPayments, err = s.payments.Count(ctx); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to count payments", err)
	}
	if stats.TotalRevenue, err = s.payments.TotalAmount(ctx); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to total revenue", err)
	}

	return &stats, nil
}
