package services

import (
	"context"
	"errors"
	"time"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/pkg/apperr"
)

// ReviewService owns meal reviews and buyer bookmarks.
type ReviewService struct {
	reviews   repositories.ReviewRepository
	favorites repositories.FavoriteRepository
	meals     repositories.MealRepository
}

func NewReviewService(reviews repositories.ReviewRepository, favorites repositories.FavoriteRepository, meals repositories.MealRepository) *ReviewService {
	return &ReviewService{reviews: reviews, favorites: favorites, meals: meals}
}

// CreateReviewInput is the review payload.
type CreateReviewInput struct {
	FoodID   string  `json:"foodId" validate:"required"`
	UserName string  `json:"userName" validate:"required"`
	Rating   float64 `json:"rating" validate:"required,numeric"`
	Comment  string  `json:"comment"`
}

// AddReview records a review against an existing meal. The rating is
// clamped to [0, 5] before it is stored.
func (s *ReviewService) AddReview(ctx context.Context, callerEmail string, in CreateReviewInput) (string, error) {
	if _, err := s.meals.FindByID(ctx, in.FoodID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperr.New(apperr.NotFound, "meal not found")
		}
		return "", apperr.Wrap(apperr.Internal, "failed to load meal", err)
	}

	review := &models.Review{
		FoodID:    in.FoodID,
		UserEmail: callerEmail,
		UserName:  in.UserName,
		Rating:    models.ClampRating(in.Rating),
		Comment:   in.Comment,
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.reviews.Insert(ctx, review)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to create review", err)
	}
	return id, nil
}

// ListReviews returns a meal's reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, foodID string) ([]models.Review, error) {
	reviews, err := s.reviews.ListByFood(ctx, foodID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list reviews", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// AddFavorite bookmarks a meal for the caller. One bookmark per meal per
// buyer.
func (s *ReviewService) AddFavorite(ctx context.Context, callerEmail, foodID string) (string, error) {
	meal, err := s.meals.FindByID(ctx, foodID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", apperr.New(apperr.NotFound, "meal not found")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to load meal", err)
	}

	fav := &models.Favorite{
		UserEmail: callerEmail,
		FoodID:    foodID,
		FoodName:  meal.FoodName,
		ChefName:  meal.ChefName,
		Price:     meal.Price,
		AddedAt:   time.Now().UTC(),
	}

	id, err := s.favorites.Insert(ctx, fav)
	if errors.Is(err, repositories.ErrDuplicate) {
		return "", apperr.New(apperr.AlreadyExists, "meal is already in favorites")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to add favorite", err)
	}
	return id, nil
}

// ListFavorites returns the caller's bookmarks, newest first.
func (s *ReviewService) ListFavorites(ctx context.Context, callerEmail string) ([]models.Favorite, error) {
	favorites, err := s.favorites.ListByUser(ctx, callerEmail)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list favorites", err)
	}
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	return favorites, nil
}

// RemoveFavorite deletes one of the caller's bookmarks. Scoping the delete
// by email means a buyer cannot remove another buyer's bookmark.
func (s *ReviewService) RemoveFavorite(ctx context.Context, callerEmail, id string) error {
	if _, err := s.favorites.Delete(ctx, id, callerEmail); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.New(apperr.NotFound, "favorite not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to remove favorite", err)
	}
	return nil
}
