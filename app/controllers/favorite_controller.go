package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/bind"
	"github.com/chefbazaar/backend/pkg/response"
)

// FavoriteController serves buyer bookmarks.
type FavoriteController struct {
	reviews *services.ReviewService
}

func NewFavoriteController(reviews *services.ReviewService) *FavoriteController {
	return &FavoriteController{reviews: reviews}
}

func (c *FavoriteController) Add(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FoodID string `json:"foodId" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	id, err := c.reviews.AddFavorite(r.Context(), auth.EmailFromCtx(r.Context()), in.FoodID)
	if err != nil {
		response.FromError(w, "Failed to add favorite", err)
		return
	}

	response.Created(w, "Added to favorites", map[string]string{"favoriteId": id})
}

func (c *FavoriteController) ListMine(w http.ResponseWriter, r *http.Request) {
	caller := auth.EmailFromCtx(r.Context())
	if q := r.URL.Query().Get("userEmail"); q != "" && q != caller {
		response.Forbidden(w, "you can only view your own favorites")
		return
	}

	favorites, err := c.reviews.ListFavorites(r.Context(), caller)
	if err != nil {
		response.FromError(w, "Failed to list favorites", err)
		return
	}

	response.Success(w, favorites)
}

func (c *FavoriteController) Remove(w http.ResponseWriter, r *http.Request) {
	err := c.reviews.RemoveFavorite(r.Context(), auth.EmailFromCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, "Failed to remove favorite", err)
		return
	}

	response.SuccessMessage(w, "Removed from favorites", nil)
}
