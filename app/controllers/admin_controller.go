package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/bind"
	"github.com/chefbazaar/backend/pkg/response"
)

// AdminController serves role escalation and the platform dashboard.
type AdminController struct {
	escalations *services.EscalationService
	stats       *services.StatsService
}

func NewAdminController(escalations *services.EscalationService, stats *services.StatsService) *AdminController {
	return &AdminController{escalations: escalations, stats: stats}
}

// SubmitRequest records a user's wish to become a chef or admin. Any
// authenticated user may submit; only admins decide.
func (c *AdminController) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var in services.SubmitInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	id, err := c.escalations.Submit(r.Context(), in)
	if err != nil {
		response.FromError(w, "Failed to submit request", err)
		return
	}

	response.Created(w, "Request submitted", map[string]string{"requestId": id})
}

// ListRequests returns escalation requests with pagination.
func (c *AdminController) ListRequests(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	requests, total, err := c.escalations.List(r.Context(), page, limit)
	if err != nil {
		response.FromError(w, "Failed to list requests", err)
		return
	}

	response.Success(w, map[string]interface{}{
		"requests": requests,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// DecideRequest applies an admin's accept or reject verdict.
func (c *AdminController) DecideRequest(w http.ResponseWriter, r *http.Request) {
	var in services.DecideInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.escalations.Decide(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		response.FromError(w, "Failed to decide request", err)
		return
	}

	response.SuccessMessage(w, "Request "+in.Action+"ed", nil)
}

// Stats returns the platform dashboard counters.
func (c *AdminController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.stats.Platform(r.Context())
	if err != nil {
		response.FromError(w, "Failed to load stats", err)
		return
	}

	response.Success(w, stats)
}
