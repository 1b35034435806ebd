package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/internal/payments/stripe"
	"github.com/chefbazaar/backend/pkg/apperr"
)

// fakeProvider is an in-process checkout processor. Sessions created through
// it start unpaid; tests flip them with markPaid.
type fakeProvider struct {
	sessions map[string]*stripe.Session
	nextID   int
	fail     bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*stripe.Session{}}
}

func (f *fakeProvider) CreateSession(_ context.Context, p stripe.CreateParams) (*stripe.Session, error) {
	if f.fail {
		return nil, errors.New("processor down")
	}

	f.nextID++
	qty := p.Quantity
	if qty < 1 {
		qty = 1
	}

	s := &stripe.Session{
		ID:            "cs_test_" + string(rune('a'+f.nextID-1)),
		URL:           "https://checkout.example.com/pay/" + string(rune('a'+f.nextID-1)),
		PaymentStatus: "unpaid",
		AmountTotal:   p.UnitAmount * qty,
		CustomerEmail: p.CustomerEmail,
		Metadata:      p.Metadata,
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeProvider) GetSession(_ context.Context, id string) (*stripe.Session, error) {
	if f.fail {
		return nil, errors.New("processor down")
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	return s, nil
}

func (f *fakeProvider) markPaid(id string) {
	f.sessions[id].PaymentStatus = "paid"
}

func (f *fakeProvider) lastSessionID() string {
	return "cs_test_" + string(rune('a'+f.nextID-1))
}

type paymentFixture struct {
	service  *services.PaymentService
	orders   repositories.OrderRepository
	payments repositories.PaymentRepository
	provider *fakeProvider
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	provider := newFakeProvider()
	orders := repositories.NewMemoryOrderRepository()
	payments := repositories.NewMemoryPaymentRepository()

	return &paymentFixture{
		service: services.NewPaymentService(provider, orders, payments,
			"https://app.example.com/success?session_id={CHECKOUT_SESSION_ID}",
			"https://app.example.com/cancel"),
		orders:   orders,
		payments: payments,
		provider: provider,
	}
}

func (f *paymentFixture) placeOrder(t *testing.T, email string, price float64, qty int) string {
	t.Helper()

	id, err := f.orders.Insert(context.Background(), &models.Order{
		UserEmail:     email,
		ChefID:        "chef-0042",
		FoodID:        "food-1",
		FoodName:      "Biryani",
		ChefName:      "Asha",
		Quantity:      qty,
		Price:         price,
		OrderStatus:   models.OrderPending,
		PaymentStatus: models.PaymentPending,
		OrderTime:     time.Now().UTC(),
	})
	require.NoError(t, err)
	return id
}

func TestCreateCheckoutAmount(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	orderID := f.placeOrder(t, "buyer@example.com", 20.0, 2)

	url, err := f.service.CreateCheckout(ctx, "buyer@example.com", orderID)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	session := f.provider.sessions[f.provider.lastSessionID()]
	// round(20.00) dollars -> 2000 minor units, times quantity 2.
	assert.Equal(t, int64(4000), session.AmountTotal)
	assert.Equal(t, orderID, session.Metadata["orderId"])
	assert.Equal(t, "chef-0042", session.Metadata["chefId"])
	assert.Equal(t, models.PaymentPending, session.Metadata["paymentStatus"])
}

func TestCreateCheckoutRoundsPrice(t *testing.T) {
	f := newPaymentFixture(t)

	orderID := f.placeOrder(t, "buyer@example.com", 12.60, 1)

	_, err := f.service.CreateCheckout(context.Background(), "buyer@example.com", orderID)
	require.NoError(t, err)

	// 12.60 rounds to 13 whole currency units before the minor-unit scale.
	session := f.provider.sessions[f.provider.lastSessionID()]
	assert.Equal(t, int64(1300), session.AmountTotal)
}

func TestCreateCheckoutDefaultsQuantity(t *testing.T) {
	f := newPaymentFixture(t)

	orderID := f.placeOrder(t, "buyer@example.com", 10, 0)

	_, err := f.service.CreateCheckout(context.Background(), "buyer@example.com", orderID)
	require.NoError(t, err)

	session := f.provider.sessions[f.provider.lastSessionID()]
	assert.Equal(t, int64(1000), session.AmountTotal)
}

func TestCreateCheckoutOwnership(t *testing.T) {
	f := newPaymentFixture(t)

	orderID := f.placeOrder(t, "buyer@example.com", 10, 1)

	_, err := f.service.CreateCheckout(context.Background(), "other@example.com", orderID)
	assert.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestCreateCheckoutMissingOrder(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.service.CreateCheckout(context.Background(), "buyer@example.com", "does-not-exist")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestCreateCheckoutProviderDown(t *testing.T) {
	f := newPaymentFixture(t)
	f.provider.fail = true

	orderID := f.placeOrder(t, "buyer@example.com", 10, 1)

	_, err := f.service.CreateCheckout(context.Background(), "buyer@example.com", orderID)
	assert.True(t, apperr.Is(err, apperr.ExternalService))
}

func TestReconcilePaidSession(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	orderID := f.placeOrder(t, "buyer@example.com", 25, 1)
	_, err := f.service.CreateCheckout(ctx, "buyer@example.com", orderID)
	require.NoError(t, err)

	sessionID := f.provider.lastSessionID()
	f.provider.markPaid(sessionID)

	payment, err := f.service.Reconcile(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, payment.TransactionID)
	assert.Equal(t, orderID, payment.OrderID)
	assert.Equal(t, 25.0, payment.AmountPaid)

	order, err := f.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
}

func TestReconcileUnpaidSessionWritesNothing(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	orderID := f.placeOrder(t, "buyer@example.com", 25, 1)
	_, err := f.service.CreateCheckout(ctx, "buyer@example.com", orderID)
	require.NoError(t, err)

	_, err = f.service.Reconcile(ctx, f.provider.lastSessionID())
	assert.True(t, apperr.Is(err, apperr.PaymentIncomplete))

	n, err := f.payments.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	order, err := f.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	orderID := f.placeOrder(t, "buyer@example.com", 25, 1)
	_, err := f.service.CreateCheckout(ctx, "buyer@example.com", orderID)
	require.NoError(t, err)

	sessionID := f.provider.lastSessionID()
	f.provider.markPaid(sessionID)

	first, err := f.service.Reconcile(ctx, sessionID)
	require.NoError(t, err)
	second, err := f.service.Reconcile(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, first.TransactionID, second.TransactionID)

	n, err := f.payments.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepairClosesMissedOrderUpdate(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	orderID := f.placeOrder(t, "buyer@example.com", 25, 1)

	// A receipt without the matching order update, as left behind by a
	// crash between the two reconciliation writes.
	err := f.payments.Insert(ctx, &models.Payment{
		TransactionID: "cs_test_orphan",
		OrderID:       orderID,
		UserEmail:     "buyer@example.com",
		AmountPaid:    25,
		PaidAt:        time.Now().UTC(),
	})
	require.NoError(t, err)

	fixed, err := f.service.Repair(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	order, err := f.orders.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)

	// Already consistent: the next sweep does nothing.
	fixed, err = f.service.Repair(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, fixed)
}
