package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/config"
	"github.com/chefbazaar/backend/pkg/apperr"
	"github.com/chefbazaar/backend/pkg/cache"
)

const (
	mealCacheAsc  = "meals:asc"
	mealCacheDesc = "meals:desc"
)

// MealService owns the meal catalog. Unfiltered listings are cached in
// Redis; every write invalidates both sort orders.
type MealService struct {
	meals repositories.MealRepository
	users repositories.UserRepository
	cache *cache.Cache
}

func NewMealService(meals repositories.MealRepository, users repositories.UserRepository, c *cache.Cache) *MealService {
	return &MealService{meals: meals, users: users, cache: c}
}

// IngredientList accepts either a JSON array of strings or a single
// comma-separated string, normalising both to a slice.
type IngredientList []string

func (l *IngredientList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}

	*l = nil
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// CreateMealInput is the listing payload.
type CreateMealInput struct {
	FoodName              string         `json:"foodName" validate:"required"`
	ChefName              string         `json:"chefName" validate:"required"`
	Price                 float64        `json:"price" validate:"required,numeric,gte=0"`
	Rating                float64        `json:"rating" validate:"numeric"`
	Ingredients           IngredientList `json:"ingredients" validate:"required"`
	EstimatedDeliveryTime string         `json:"estimatedDeliveryTime" validate:"required"`
	ChefExperience        string         `json:"chefExperience" validate:"required"`
	UserEmail             string         `json:"userEmail" validate:"required,email"`
	FoodImage             string         `json:"foodImage" validate:"required"`
	DeliveryArea          string         `json:"deliveryArea" validate:"required"`
}

// Create inserts a listing for the calling chef. The chefId is taken from
// the caller's account, not the payload, so a chef cannot list under
// another chef's identity.
func (s *MealService) Create(ctx context.Context, callerEmail string, in CreateMealInput) (string, error) {
	chef, err := s.requireChef(ctx, callerEmail)
	if err != nil {
		return "", err
	}

	meal := &models.Meal{
		FoodName:              in.FoodName,
		ChefName:              in.ChefName,
		Price:                 in.Price,
		Rating:                models.ClampRating(in.Rating),
		Ingredients:           in.Ingredients,
		EstimatedDeliveryTime: in.EstimatedDeliveryTime,
		ChefExperience:        in.ChefExperience,
		UserEmail:             chef.Email,
		ChefID:                chef.ChefID,
		FoodImage:             in.FoodImage,
		DeliveryArea:          in.DeliveryArea,
		CreatedAt:             time.Now().UTC(),
	}

	id, err := s.meals.Insert(ctx, meal)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to create meal", err)
	}

	s.cache.Forget(ctx, mealCacheAsc, mealCacheDesc)
	return id, nil
}

// List returns the catalog sorted by price. Only the unfiltered listing is
// served from cache; per-chef views always hit the store.
func (s *MealService) List(ctx context.Context, sortDesc bool, chefID string) ([]models.Meal, error) {
	key := mealCacheAsc
	if sortDesc {
		key = mealCacheDesc
	}

	if chefID == "" {
		var cached []models.Meal
		if s.cache.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	meals, err := s.meals.List(ctx, sortDesc, chefID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list meals", err)
	}
	if meals == nil {
		meals = []models.Meal{}
	}

	if chefID == "" {
		_ = s.cache.Set(ctx, key, meals, config.MealCacheTTL())
	}
	return meals, nil
}

// Get loads one listing.
func (s *MealService) Get(ctx context.Context, id string) (*models.Meal, error) {
	meal, err := s.meals.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "meal not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to load meal", err)
	}
	return meal, nil
}

// UpdateMealInput carries the editable listing fields. Pointers distinguish
// absent fields from zero values.
type UpdateMealInput struct {
	FoodName              *string         `json:"foodName"`
	Price                 *float64        `json:"price"`
	Rating                *float64        `json:"rating"`
	Ingredients           *IngredientList `json:"ingredients"`
	EstimatedDeliveryTime *string         `json:"estimatedDeliveryTime"`
	FoodImage             *string         `json:"foodImage"`
	DeliveryArea          *string         `json:"deliveryArea"`
}

// Update patches a listing the caller owns. Admins may update any listing.
func (s *MealService) Update(ctx context.Context, callerEmail, id string, in UpdateMealInput) error {
	meal, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if meal.UserEmail != callerEmail {
		caller, err := s.users.FindByEmail(ctx, callerEmail)
		if err != nil || caller.Role != models.RoleAdmin {
			return apperr.New(apperr.Forbidden, "you do not own this meal")
		}
	}

	fields := map[string]interface{}{}
	if in.FoodName != nil {
		fields["foodName"] = *in.FoodName
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Rating != nil {
		fields["rating"] = models.ClampRating(*in.Rating)
	}
	if in.Ingredients != nil {
		fields["ingredients"] = []string(*in.Ingredients)
	}
	if in.EstimatedDeliveryTime != nil {
		fields["estimatedDeliveryTime"] = *in.EstimatedDeliveryTime
	}
	if in.FoodImage != nil {
		fields["foodImage"] = *in.FoodImage
	}
	if in.DeliveryArea != nil {
		fields["deliveryArea"] = *in.DeliveryArea
	}
	if len(fields) == 0 {
		return apperr.New(apperr.InvalidArgument, "no fields to update")
	}

	if _, err := s.meals.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.New(apperr.NotFound, "meal not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to update meal", err)
	}

	s.cache.Forget(ctx, mealCacheAsc, mealCacheDesc)
	return nil
}

// Delete removes a listing the caller owns. Admins may delete any listing.
func (s *MealService) Delete(ctx context.Context, callerEmail, id string) error {
	meal, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if meal.UserEmail != callerEmail {
		caller, err := s.users.FindByEmail(ctx, callerEmail)
		if err != nil || caller.Role != models.RoleAdmin {
			return apperr.New(apperr.Forbidden, "you do not own this meal")
		}
	}

	if _, err := s.meals.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.New(apperr.NotFound, "meal not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to delete meal", err)
	}

	s.cache.Forget(ctx, mealCacheAsc, mealCacheDesc)
	return nil
}

// requireChef loads the caller and checks they can list food: chef role,
// not fraud-flagged.
func (s *MealService) requireChef(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.New(apperr.Forbidden, "only chefs can list meals")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}
	if user.Role != models.RoleChef && user.Role != models.RoleAdmin {
		return nil, apperr.New(apperr.Forbidden, "only chefs can list meals")
	}
	if user.IsFraud() {
		return nil, apperr.New(apperr.FraudBlocked, "account is flagged for fraud")
	}
	return user, nil
}
