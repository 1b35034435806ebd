package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/app/routes"
	"github.com/chefbazaar/backend/internal/payments/stripe"
	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/middleware"
	"github.com/chefbazaar/backend/pkg/router"
)

// stubCheckout is an in-process checkout processor for API-level tests.
type stubCheckout struct {
	sessions map[string]*stripe.Session
	seq      int
}

func (s *stubCheckout) CreateSession(_ context.Context, p stripe.CreateParams) (*stripe.Session, error) {
	s.seq++
	qty := p.Quantity
	if qty < 1 {
		qty = 1
	}
	sess := &stripe.Session{
		ID:            fmt.Sprintf("cs_test_%d", s.seq),
		URL:           fmt.Sprintf("https://checkout.example.com/%d", s.seq),
		PaymentStatus: "unpaid",
		AmountTotal:   p.UnitAmount * qty,
		CustomerEmail: p.CustomerEmail,
		Metadata:      p.Metadata,
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *stubCheckout) GetSession(_ context.Context, id string) (*stripe.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	return sess, nil
}

type apiFixture struct {
	srv      *httptest.Server
	store    *repositories.Store
	checkout *stubCheckout
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store := repositories.NewMemoryStore()
	checkout := &stubCheckout{sessions: map[string]*stripe.Session{}}

	r := router.New()
	r.Use(middleware.Recovery)
	routes.RegisterAPI(r, routes.Deps{Store: store, Checkout: checkout})

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)

	return &apiFixture{srv: srv, store: store, checkout: checkout}
}

func (f *apiFixture) addUser(t *testing.T, email, role, status, chefID string) string {
	t.Helper()

	require.NoError(t, f.store.Users.Create(context.Background(), &models.User{
		UID:       "uid-" + email,
		Email:     email,
		Role:      role,
		Status:    status,
		ChefID:    chefID,
		CreatedAt: time.Now().UTC(),
	}))

	token, err := auth.GenerateToken("uid-"+email, email)
	require.NoError(t, err)
	return token
}

type apiResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, f.srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(t, http.MethodPost, "/orders", "", map[string]interface{}{
		"chefId": "chef-0001", "foodId": "f1", "foodName": "Dal", "price": 9,
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, body.Success)
	assert.Equal(t, "Unauthorized Access!", body.Message)
}

func TestPublicMealListing(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(t, http.MethodGet, "/meals", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
}

func TestOrderCheckoutReconcileFlow(t *testing.T) {
	f := newAPIFixture(t)
	buyer := f.addUser(t, "buyer@example.com", models.RoleUser, models.StatusActive, "")

	// Place the order.
	status, body := f.do(t, http.MethodPost, "/orders", buyer, map[string]interface{}{
		"chefId":   "chef-0042",
		"foodId":   "food-1",
		"foodName": "Biryani",
		"chefName": "Asha",
		"quantity": 2,
		"price":    20,
	})
	require.Equal(t, http.StatusCreated, status, body.Message)

	var placed struct {
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &placed))
	require.NotEmpty(t, placed.OrderID)

	// Open the checkout session.
	status, body = f.do(t, http.MethodPost, "/create-checkout-session", buyer, map[string]string{
		"orderId": placed.OrderID,
	})
	require.Equal(t, http.StatusOK, status, body.Message)

	sessionID := fmt.Sprintf("cs_test_%d", f.checkout.seq)
	assert.Equal(t, int64(4000), f.checkout.sessions[sessionID].AmountTotal)

	// Reconciling before payment completes writes nothing.
	status, _ = f.do(t, http.MethodPost, "/payment-success", "", map[string]string{
		"sessionId": sessionID,
	})
	assert.Equal(t, http.StatusPaymentRequired, status)

	order, err := f.store.Orders.FindByID(context.Background(), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)

	// Pay, then reconcile for real.
	f.checkout.sessions[sessionID].PaymentStatus = "paid"

	status, body = f.do(t, http.MethodPost, "/payment-success", "", map[string]string{
		"sessionId": sessionID,
	})
	require.Equal(t, http.StatusOK, status, body.Message)

	order, err = f.store.Orders.FindByID(context.Background(), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)

	// The receipt shows up in the buyer's history.
	status, body = f.do(t, http.MethodGet, "/payments", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	var history []models.Payment
	require.NoError(t, json.Unmarshal(body.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, sessionID, history[0].TransactionID)
	assert.Equal(t, 40.0, history[0].AmountPaid)
}

func TestOrderStatusUpdateOverAPI(t *testing.T) {
	f := newAPIFixture(t)
	buyer := f.addUser(t, "buyer@example.com", models.RoleUser, models.StatusActive, "")
	chef := f.addUser(t, "chef@example.com", models.RoleChef, models.StatusActive, "chef-0042")

	status, body := f.do(t, http.MethodPost, "/orders", buyer, map[string]interface{}{
		"chefId": "chef-0042", "foodId": "food-1", "foodName": "Biryani", "price": 20,
	})
	require.Equal(t, http.StatusCreated, status, body.Message)

	var placed struct {
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &placed))

	status, body = f.do(t, http.MethodPatch, "/orders/status/"+placed.OrderID, chef, map[string]string{
		"orderStatus": "preparing",
	})
	require.Equal(t, http.StatusOK, status, body.Message)

	order, err := f.store.Orders.FindByID(context.Background(), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, order.OrderStatus)

	// The status vocabulary is open.
	status, _ = f.do(t, http.MethodPatch, "/orders/status/"+placed.OrderID, chef, map[string]string{
		"orderStatus": "out-for-delivery",
	})
	require.Equal(t, http.StatusOK, status)

	order, err = f.store.Orders.FindByID(context.Background(), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "out-for-delivery", order.OrderStatus)

	// An empty status is still rejected.
	status, _ = f.do(t, http.MethodPatch, "/orders/status/"+placed.OrderID, chef, map[string]string{
		"orderStatus": "",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFraudGateOnMealCreation(t *testing.T) {
	f := newAPIFixture(t)
	chef := f.addUser(t, "chef@example.com", models.RoleChef, models.StatusFraud, "chef-0042")

	status, _ := f.do(t, http.MethodPost, "/create-meals", chef, map[string]interface{}{
		"foodName": "Dal", "chefName": "A", "price": 9, "ingredients": []string{"dal"},
		"estimatedDeliveryTime": "30 min", "chefExperience": "5 years",
		"userEmail": "chef@example.com", "foodImage": "x", "deliveryArea": "y",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdminGates(t *testing.T) {
	f := newAPIFixture(t)
	user := f.addUser(t, "pat@example.com", models.RoleUser, models.StatusActive, "")
	admin := f.addUser(t, "admin@example.com", models.RoleAdmin, models.StatusActive, "")

	// Plain users cannot reach admin surface.
	status, _ := f.do(t, http.MethodGet, "/admin/stats", user, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = f.do(t, http.MethodGet, "/admin/stats", admin, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestEscalationFlow(t *testing.T) {
	f := newAPIFixture(t)
	user := f.addUser(t, "cook@example.com", models.RoleUser, models.StatusActive, "")
	admin := f.addUser(t, "admin@example.com", models.RoleAdmin, models.StatusActive, "")

	status, body := f.do(t, http.MethodPost, "/admin/requests", user, map[string]string{
		"userName":    "Cook",
		"userEmail":   "cook@example.com",
		"requestType": "chef",
	})
	require.Equal(t, http.StatusCreated, status, body.Message)

	var submitted struct {
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &submitted))

	// Only admins decide.
	status, _ = f.do(t, http.MethodPatch, "/admin/requests/"+submitted.RequestID, user, map[string]string{
		"action": "accept", "email": "cook@example.com", "requestType": "chef",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = f.do(t, http.MethodPatch, "/admin/requests/"+submitted.RequestID, admin, map[string]string{
		"action": "accept", "email": "cook@example.com", "requestType": "chef",
	})
	require.Equal(t, http.StatusOK, status, body.Message)

	promoted, err := f.store.Users.FindByEmail(context.Background(), "cook@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleChef, promoted.Role)
	assert.NotEmpty(t, promoted.ChefID)
}

func TestFraudFlagEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.addUser(t, "admin@example.com", models.RoleAdmin, models.StatusActive, "")
	f.addUser(t, "chef@example.com", models.RoleChef, models.StatusActive, "chef-0042")

	status, _ := f.do(t, http.MethodPatch, "/users/fraud/chef@example.com", admin, nil)
	require.Equal(t, http.StatusOK, status)

	// Repeat flag conflicts.
	status, _ = f.do(t, http.MethodPatch, "/users/fraud/chef@example.com", admin, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Admin accounts can never be flagged.
	status, _ = f.do(t, http.MethodPatch, "/users/fraud/admin@example.com", admin, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestFavoritesOverAPI(t *testing.T) {
	f := newAPIFixture(t)
	buyer := f.addUser(t, "buyer@example.com", models.RoleUser, models.StatusActive, "")

	mealID, err := f.store.Meals.Insert(context.Background(), &models.Meal{
		FoodName: "Biryani", Price: 15,
	})
	require.NoError(t, err)

	status, _ := f.do(t, http.MethodPost, "/favorites", buyer, map[string]string{"foodId": mealID})
	require.Equal(t, http.StatusCreated, status)

	status, _ = f.do(t, http.MethodPost, "/favorites", buyer, map[string]string{"foodId": mealID})
	assert.Equal(t, http.StatusConflict, status)

	status, body := f.do(t, http.MethodGet, "/favorites", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	var favorites []models.Favorite
	require.NoError(t, json.Unmarshal(body.Data, &favorites))
	assert.Len(t, favorites, 1)
}
