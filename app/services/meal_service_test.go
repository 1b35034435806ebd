package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/apperr"
)

type mealFixture struct {
	service *services.MealService
	meals   repositories.MealRepository
	users   repositories.UserRepository
}

// The nil cache is the disabled-Redis path; List and the write
// invalidations must work without it.
func newMealFixture(t *testing.T) *mealFixture {
	t.Helper()

	meals := repositories.NewMemoryMealRepository()
	users := repositories.NewMemoryUserRepository()
	return &mealFixture{
		service: services.NewMealService(meals, users, nil),
		meals:   meals,
		users:   users,
	}
}

func (f *mealFixture) addChef(t *testing.T, email, chefID string) {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), &models.User{
		Email:  email,
		Role:   models.RoleChef,
		Status: models.StatusActive,
		ChefID: chefID,
	}))
}

func validMealInput(email string) services.CreateMealInput {
	return services.CreateMealInput{
		FoodName:              "Dal Tadka",
		ChefName:              "Asha",
		Price:                 9.5,
		Rating:                4.2,
		Ingredients:           services.IngredientList{"lentils", "ghee"},
		EstimatedDeliveryTime: "45 min",
		ChefExperience:        "8 years",
		UserEmail:             email,
		FoodImage:             "https://img.example.com/dal.jpg",
		DeliveryArea:          "Sector 12",
	}
}

func TestCreateMeal(t *testing.T) {
	f := newMealFixture(t)
	ctx := context.Background()

	f.addChef(t, "asha@example.com", "chef-0042")

	id, err := f.service.Create(ctx, "asha@example.com", validMealInput("asha@example.com"))
	require.NoError(t, err)

	meal, err := f.meals.FindByID(ctx, id)
	require.NoError(t, err)
	// chefId comes from the account, never from the payload.
	assert.Equal(t, "chef-0042", meal.ChefID)
	assert.Equal(t, "asha@example.com", meal.UserEmail)
	assert.False(t, meal.CreatedAt.IsZero())
}

func TestCreateMealClampsRating(t *testing.T) {
	f := newMealFixture(t)
	ctx := context.Background()

	f.addChef(t, "asha@example.com", "chef-0042")

	in := validMealInput("asha@example.com")
	in.Rating = 9.7
	id, err := f.service.Create(ctx, "asha@example.com", in)
	require.NoError(t, err)

	meal, err := f.meals.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5.0, meal.Rating)

	in.Rating = -3
	id, err = f.service.Create(ctx, "asha@example.com", in)
	require.NoError(t, err)

	meal, err = f.meals.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0.0, meal.Rating)
}

func TestCreateMealRequiresChef(t *testing.T) {
	f := newMealFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &models.User{
		Email:  "buyer@example.com",
		Role:   models.RoleUser,
		Status: models.StatusActive,
	}))

	_, err := f.service.Create(ctx, "buyer@example.com", validMealInput("buyer@example.com"))
	assert.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestCreateMealBlocksFraudChef(t *testing.T) {
	f := newMealFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &models.User{
		Email:  "bad@example.com",
		Role:   models.RoleChef,
		Status: models.StatusFraud,
		ChefID: "chef-0001",
	}))

	_, err := f.service.Create(ctx, "bad@example.com", validMealInput("bad@example.com"))
	assert.True(t, apperr.Is(err, apperr.FraudBlocked))
}

func TestListSortsByPrice(t *testing.T) {
	f := newMealFixture(t)
	ctx := context.Background()

	f.addChef(t, "asha@example.com", "chef-0042")

	for _, price := range []float64{12, 8, 20} {
		in := validMealInput("asha@example.com")
		in.Price = price
		_, err := f.service.Create(ctx, "asha@example.com", in)
		require.NoError(t, err)
	}

	asc, err := f.service.List(ctx, false, "")
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, 8.0, asc[0].Price)
	assert.Equal(t, 20.0, asc[2].Price)

	desc, err := f.service.List(ctx, true, "")
	require.NoError(t, err)
	assert.Equal(t, 20.0, desc[0].Price)
}

func TestUpdateMealOwnership(t *testing.T) {
	f := newMealFixture(t)
	ctx := context.Background()

	f.addChef(t, "asha@example.com", "chef-0042")
	id, err := f.service.Create(ctx, "asha@example.com", validMealInput("asha@example.com"))
	require.NoError(t, err)

	price := 11.0
	err = f.service.Update(ctx, "other@example.com", id, services.UpdateMealInput{Price: &price})
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	require.NoError(t, f.service.Update(ctx, "asha@example.com", id, services.UpdateMealInput{Price: &price}))

	meal, err := f.meals.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 11.0, meal.Price)
}

func TestUpdateMealClampsRating(t *testing.T) {
	f := newMealFixture(t)
	ctx := context.Background()

	f.addChef(t, "asha@example.com", "chef-0042")
	id, err := f.service.Create(ctx, "asha@example.com", validMealInput("asha@example.com"))
	require.NoError(t, err)

	rating := 7.5
	require.NoError(t, f.service.Update(ctx, "asha@example.com", id, services.UpdateMealInput{Rating: &rating}))

	meal, err := f.meals.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5.0, meal.Rating)
}

func TestUpdateMealAdminOverride(t *testing.T) {
	f := newMealFixture(t)
	ctx := context.Background()

	f.addChef(t, "asha@example.com", "chef-0042")
	require.NoError(t, f.users.Create(ctx, &models.User{
		Email:  "admin@example.com",
		Role:   models.RoleAdmin,
		Status: models.StatusActive,
	}))

	id, err := f.service.Create(ctx, "asha@example.com", validMealInput("asha@example.com"))
	require.NoError(t, err)

	price := 15.0
	err = f.service.Update(ctx, "stranger@example.com", id, services.UpdateMealInput{Price: &price})
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	require.NoError(t, f.service.Update(ctx, "admin@example.com", id, services.UpdateMealInput{Price: &price}))

	meal, err := f.meals.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 15.0, meal.Price)
}

func TestDeleteMealAdminOverride(t *testing.T) {
	f := newMealFixture(t)
	ctx := context.Background()

	f.addChef(t, "asha@example.com", "chef-0042")
	require.NoError(t, f.users.Create(ctx, &models.User{
		Email:  "admin@example.com",
		Role:   models.RoleAdmin,
		Status: models.StatusActive,
	}))

	id, err := f.service.Create(ctx, "asha@example.com", validMealInput("asha@example.com"))
	require.NoError(t, err)

	err = f.service.Delete(ctx, "stranger@example.com", id)
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	require.NoError(t, f.service.Delete(ctx, "admin@example.com", id))

	_, err = f.service.Get(ctx, id)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestIngredientListAcceptsBothForms(t *testing.T) {
	var fromArray struct {
		Ingredients services.IngredientList `json:"ingredients"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ingredients":["rice","saffron"]}`), &fromArray))
	assert.Equal(t, services.IngredientList{"rice", "saffron"}, fromArray.Ingredients)

	var fromString struct {
		Ingredients services.IngredientList `json:"ingredients"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ingredients":"rice, saffron , cardamom"}`), &fromString))
	assert.Equal(t, services.IngredientList{"rice", "saffron", "cardamom"}, fromString.Ingredients)
}
