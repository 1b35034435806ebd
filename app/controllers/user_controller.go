package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/bind"
	"github.com/chefbazaar/backend/pkg/response"
)

// UserController serves account records and the fraud flag.
type UserController struct {
	accounts *services.AccountService
}

func NewUserController(accounts *services.AccountService) *UserController {
	return &UserController{accounts: accounts}
}

// Create records an account at first sign-in. Calling it again for the same
// email answers 200 with an "already exists" message rather than an error.
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateUserInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	created, err := c.accounts.Create(r.Context(), in)
	if err != nil {
		response.FromError(w, "Failed to create user", err)
		return
	}
	if !created {
		response.SuccessMessage(w, "User already exists", nil)
		return
	}

	response.Created(w, "User created", nil)
}

// Get returns one account. Callers may read their own record; admins may
// read any record.
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	caller := auth.EmailFromCtx(r.Context())

	if caller != email {
		acct, err := c.accounts.Get(r.Context(), caller)
		if err != nil || acct.Role != models.RoleAdmin {
			response.Forbidden(w, "you can only view your own account")
			return
		}
	}

	user, err := c.accounts.Get(r.Context(), email)
	if err != nil {
		response.FromError(w, "Failed to load user", err)
		return
	}

	response.Success(w, user)
}

// MarkFraud flags an account. Admin only; the admin gate runs before this
// handler.
func (c *UserController) MarkFraud(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	if err := c.accounts.MarkFraud(r.Context(), email); err != nil {
		response.FromError(w, "Failed to flag account", err)
		return
	}

	response.SuccessMessage(w, "Account flagged for fraud", nil)
}

// List returns accounts with pagination. Admin only.
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	users, total, err := c.accounts.List(r.Context(), page, limit)
	if err != nil {
		response.FromError(w, "Failed to list users", err)
		return
	}

	response.Success(w, map[string]interface{}{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
