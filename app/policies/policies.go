// Package policies holds the role gates applied after authentication.
//
// Gates read the caller's account fresh on every request, so a role change
// or fraud flag takes effect immediately instead of waiting for a token to
// expire.
package policies

import (
	"net/http"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/response"
)

// Policies builds role-gate middleware over the account store.
type Policies struct {
	users repositories.UserRepository
}

func New(users repositories.UserRepository) *Policies {
	return &Policies{users: users}
}

// RequireAdmin admits only admin accounts.
func (p *Policies) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := p.caller(w, r)
		if !ok {
			return
		}
		if user.Role != models.RoleAdmin {
			response.Forbidden(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireChef admits chefs and admins. Fraud-flagged accounts are refused
// even when the role matches.
func (p *Policies) RequireChef(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := p.caller(w, r)
		if !ok {
			return
		}
		if user.Role != models.RoleChef && user.Role != models.RoleAdmin {
			response.Forbidden(w, "chef access required")
			return
		}
		if user.IsFraud() {
			response.Forbidden(w, "account is flagged for fraud")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActive admits any account that is not fraud-flagged.
func (p *Policies) RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := p.caller(w, r)
		if !ok {
			return
		}
		if user.IsFraud() {
			response.Forbidden(w, "account is flagged for fraud")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Policies) caller(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	email := auth.EmailFromCtx(r.Context())
	if email == "" {
		response.Unauthorized(w)
		return nil, false
	}

	user, err := p.users.FindByEmail(r.Context(), email)
	if err != nil {
		response.Forbidden(w, "account not found")
		return nil, false
	}
	return user, true
}
