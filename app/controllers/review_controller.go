package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/bind"
	"github.com/chefbazaar/backend/pkg/response"
)

// ReviewController serves meal reviews.
type ReviewController struct {
	reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

func (c *ReviewController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateReviewInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	id, err := c.reviews.AddReview(r.Context(), auth.EmailFromCtx(r.Context()), in)
	if err != nil {
		response.FromError(w, "Failed to create review", err)
		return
	}

	response.Created(w, "Review added", map[string]string{"reviewId": id})
}

func (c *ReviewController) ListByFood(w http.ResponseWriter, r *http.Request) {
	reviews, err := c.reviews.ListReviews(r.Context(), chi.URLParam(r, "foodId"))
	if err != nil {
		response.FromError(w, "Failed to list reviews", err)
		return
	}

	response.Success(w, reviews)
}
