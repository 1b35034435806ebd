package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/bind"
	"github.com/chefbazaar/backend/pkg/response"
)

// OrderController serves order placement and tracking.
type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Place creates a pending order for the caller.
func (c *OrderController) Place(w http.ResponseWriter, r *http.Request) {
	var in services.PlaceOrderInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	id, err := c.orders.Place(r.Context(), auth.EmailFromCtx(r.Context()), in)
	if err != nil {
		response.FromError(w, "Failed to place order", err)
		return
	}

	response.Created(w, "Order placed", map[string]string{"orderId": id})
}

// ListMine returns the caller's orders. The ?userEmail= query must match
// the verified caller; the history stays private to its owner.
func (c *OrderController) ListMine(w http.ResponseWriter, r *http.Request) {
	caller := auth.EmailFromCtx(r.Context())
	if q := r.URL.Query().Get("userEmail"); q != "" && q != caller {
		response.Forbidden(w, "you can only view your own orders")
		return
	}

	orders, err := c.orders.ListByUser(r.Context(), caller)
	if err != nil {
		response.FromError(w, "Failed to list orders", err)
		return
	}

	response.Success(w, orders)
}

// ListByChef returns a chef's incoming orders. The chef gate runs before
// this handler.
func (c *OrderController) ListByChef(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.ListByChef(r.Context(), chi.URLParam(r, "chefId"))
	if err != nil {
		response.FromError(w, "Failed to list orders", err)
		return
	}

	response.Success(w, orders)
}

// UpdateStatus overwrites an order's fulfilment status. The status vocabulary
// is open, so any non-empty value is accepted from any current status.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"orderStatus" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in.Status); err != nil {
		response.FromError(w, "Failed to update order", err)
		return
	}

	response.SuccessMessage(w, "Order status updated", map[string]string{
		"orderStatus": in.Status,
	})
}
