package controllers

import (
	"net/http"

	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/bind"
	"github.com/chefbazaar/backend/pkg/response"
)

// AuthController serves password sign-up and sign-in.
type AuthController struct {
	accounts *services.AccountService
}

func NewAuthController(accounts *services.AccountService) *AuthController {
	return &AuthController{accounts: accounts}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, err := c.accounts.Register(r.Context(), in)
	if err != nil {
		response.FromError(w, "Registration failed", err)
		return
	}

	response.Created(w, "Account created", map[string]string{"token": token})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, err := c.accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		response.FromError(w, "Login failed", err)
		return
	}

	response.SuccessMessage(w, "Login successful", map[string]string{"token": token})
}
