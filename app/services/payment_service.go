package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/internal/payments/stripe"
	"github.com/chefbazaar/backend/pkg/apperr"
	"github.com/chefbazaar/backend/pkg/logger"
	"github.com/chefbazaar/backend/pkg/metrics"
)

// CheckoutProvider is the slice of the payment processor the service needs.
// The production implementation is the Stripe client; tests substitute a
// fake.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, p stripe.CreateParams) (*stripe.Session, error)
	GetSession(ctx context.Context, id string) (*stripe.Session, error)
}

// PaymentService runs the two-phase payment protocol: open a checkout
// session, then reconcile its outcome into a payment record and the order.
type PaymentService struct {
	provider   CheckoutProvider
	orders     repositories.OrderRepository
	payments   repositories.PaymentRepository
	successURL string
	cancelURL  string
}

func NewPaymentService(
	provider CheckoutProvider,
	orders repositories.OrderRepository,
	payments repositories.PaymentRepository,
	successURL, cancelURL string,
) *PaymentService {
	return &PaymentService{
		provider:   provider,
		orders:     orders,
		payments:   payments,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckout opens a checkout session for an order and returns the
// redirect URL. The order itself is not touched; its paymentStatus stays
// pending until reconciliation confirms the outcome.
//
// Amount semantics: unit amount is round(price) in minor-unit currency,
// quantity multiplies at the processor's line-item level and defaults to 1.
func (s *PaymentService) CreateCheckout(ctx context.Context, callerEmail, orderID string) (string, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to load order", err)
	}

	if order.UserEmail != callerEmail {
		return "", apperr.New(apperr.Forbidden, "order belongs to another account")
	}

	qty := int64(order.Quantity)
	if qty < 1 {
		qty = 1
	}

	session, err := s.provider.CreateSession(ctx, stripe.CreateParams{
		CustomerEmail: order.UserEmail,
		ProductName:   order.FoodName,
		UnitAmount:    int64(math.Round(order.Price)) * 100,
		Quantity:      qty,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
		Metadata: map[string]string{
			"orderId":       orderID,
			"chefId":        order.ChefID,
			"foodId":        order.FoodID,
			"foodName":      order.FoodName,
			"chefName":      order.ChefName,
			"userEmail":     order.UserEmail,
			"deliveryTime":  order.DeliveryTime,
			"paymentStatus": models.PaymentPending,
			"orderStatus":   models.OrderPending,
		},
	})
	if err != nil {
		return "", apperr.Wrap(apperr.ExternalService, "payment processor unavailable", err)
	}

	return session.URL, nil
}

// Reconcile pulls the session's outcome from the processor and, when paid,
// writes the immutable payment record and flips the order's paymentStatus to
// paid. The two writes are deliberately independent: a crash in between
// leaves a receipt without the order update, which the periodic sweep
// (Repair) closes later.
func (s *PaymentService) Reconcile(ctx context.Context, sessionID string) (*models.Payment, error) {
	session, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		metrics.PaymentsReconciled.WithLabelValues("error").Inc()
		return nil, apperr.Wrap(apperr.ExternalService, "failed to retrieve checkout session", err)
	}

	if !session.Paid() {
		metrics.PaymentsReconciled.WithLabelValues("incomplete").Inc()
		return nil, apperr.New(apperr.PaymentIncomplete, "payment not completed")
	}

	email := session.CustomerEmail
	if email == "" {
		email = session.Metadata["userEmail"]
	}

	payment := &models.Payment{
		TransactionID: session.ID,
		OrderID:       session.Metadata["orderId"],
		UserEmail:     email,
		ChefID:        session.Metadata["chefId"],
		FoodID:        session.Metadata["foodId"],
		FoodName:      session.Metadata["foodName"],
		AmountPaid:    float64(session.AmountTotal) / 100,
		PaidAt:        time.Now().UTC(),
	}

	err = s.payments.Insert(ctx, payment)
	if errors.Is(err, repositories.ErrDuplicate) {
		// Session already reconciled; re-apply the order update so a
		// retry after a partial failure still converges.
		existing, findErr := s.payments.FindByTransaction(ctx, session.ID)
		if findErr != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to load payment record", findErr)
		}
		payment = existing
	} else if err != nil {
		metrics.PaymentsReconciled.WithLabelValues("error").Inc()
		return nil, apperr.Wrap(apperr.Internal, "failed to record payment", err)
	}

	if payment.OrderID != "" {
		if _, err := s.orders.SetPaymentStatus(ctx, payment.OrderID, models.PaymentPaid); err != nil &&
			!errors.Is(err, repositories.ErrNotFound) {
			// Receipt persisted, order update missed. Best effort, no
			// rollback; the sweep repairs it.
			metrics.PaymentsReconciled.WithLabelValues("error").Inc()
			return nil, apperr.Wrap(apperr.Internal, "payment recorded but order update failed", err)
		}
	}

	metrics.PaymentsReconciled.WithLabelValues("paid").Inc()
	return payment, nil
}

// Repair re-derives order payment state from receipts written since the
// cutoff, closing any gap a crashed reconciliation left behind. Idempotent,
// safe to run concurrently with live requests.
func (s *PaymentService) Repair(ctx context.Context, since time.Time) (int, error) {
	receipts, err := s.payments.ListSince(ctx, since)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, p := range receipts {
		if p.OrderID == "" {
			continue
		}

		order, err := s.orders.FindByID(ctx, p.OrderID)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return repaired, err
		}
		if order.PaymentStatus == models.PaymentPaid {
			continue
		}

		if _, err := s.orders.SetPaymentStatus(ctx, p.OrderID, models.PaymentPaid); err != nil {
			return repaired, err
		}
		repaired++
		logger.Info("repaired order payment status", "order_id", p.OrderID, "transaction_id", p.TransactionID)
	}

	return repaired, nil
}

// ListByUser returns a buyer's payment history, newest first.
func (s *PaymentService) ListByUser(ctx context.Context, email string) ([]models.Payment, error) {
	payments, err := s.payments.ListByUser(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list payments", err)
	}
	return payments, nil
}
