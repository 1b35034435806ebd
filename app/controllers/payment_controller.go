package controllers

import (
	"net/http"

	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/bind"
	"github.com/chefbazaar/backend/pkg/response"
)

// PaymentController serves checkout and reconciliation.
type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// CreateCheckout opens a checkout session for one of the caller's orders
// and returns the processor's redirect URL.
func (c *PaymentController) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		OrderID string `json:"orderId" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	url, err := c.payments.CreateCheckout(r.Context(), auth.EmailFromCtx(r.Context()), in.OrderID)
	if err != nil {
		response.FromError(w, "Failed to create checkout session", err)
		return
	}

	response.Success(w, map[string]string{"url": url})
}

// Reconcile confirms a checkout session's outcome with the processor and,
// when paid, persists the receipt and marks the order paid. Safe to call
// more than once for the same session.
func (c *PaymentController) Reconcile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SessionID string `json:"sessionId" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	payment, err := c.payments.Reconcile(r.Context(), in.SessionID)
	if err != nil {
		response.FromError(w, "Payment reconciliation failed", err)
		return
	}

	response.SuccessMessage(w, "Payment recorded", payment)
}

// ListMine returns the caller's payment history. As with orders, the
// ?userEmail= query must match the verified caller.
func (c *PaymentController) ListMine(w http.ResponseWriter, r *http.Request) {
	caller := auth.EmailFromCtx(r.Context())
	if q := r.URL.Query().Get("userEmail"); q != "" && q != caller {
		response.Forbidden(w, "you can only view your own payments")
		return
	}

	payments, err := c.payments.ListByUser(r.Context(), caller)
	if err != nil {
		response.FromError(w, "Failed to list payments", err)
		return
	}

	response.Success(w, payments)
}
