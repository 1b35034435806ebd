package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/bind"
	"github.com/chefbazaar/backend/pkg/response"
)

// MealController serves the meal catalog.
type MealController struct {
	meals *services.MealService
}

func NewMealController(meals *services.MealService) *MealController {
	return &MealController{meals: meals}
}

// List returns the catalog sorted by price; ?sort=desc flips the order and
// ?chefId= narrows to one chef's listings.
func (c *MealController) List(w http.ResponseWriter, r *http.Request) {
	sortDesc := strings.EqualFold(r.URL.Query().Get("sort"), "desc")
	chefID := r.URL.Query().Get("chefId")

	meals, err := c.meals.List(r.Context(), sortDesc, chefID)
	if err != nil {
		response.FromError(w, "Failed to list meals", err)
		return
	}

	response.Success(w, meals)
}

func (c *MealController) Get(w http.ResponseWriter, r *http.Request) {
	meal, err := c.meals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, "Failed to load meal", err)
		return
	}

	response.Success(w, meal)
}

func (c *MealController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateMealInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	id, err := c.meals.Create(r.Context(), auth.EmailFromCtx(r.Context()), in)
	if err != nil {
		response.FromError(w, "Failed to create meal", err)
		return
	}

	response.Created(w, "Meal created", map[string]string{"mealId": id})
}

func (c *MealController) Update(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateMealInput
	if _, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	err := c.meals.Update(r.Context(), auth.EmailFromCtx(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		response.FromError(w, "Failed to update meal", err)
		return
	}

	response.SuccessMessage(w, "Meal updated", nil)
}

func (c *MealController) Delete(w http.ResponseWriter, r *http.Request) {
	err := c.meals.Delete(r.Context(), auth.EmailFromCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, "Failed to delete meal", err)
		return
	}

	response.SuccessMessage(w, "Meal deleted", nil)
}
