package stripe_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefbazaar/backend/internal/payments/stripe"
)

func TestCreateSessionEncodesForm(t *testing.T) {
	var gotForm map[string]string
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())

		gotAuth = r.Header.Get("Authorization")
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "cs_test_123",
			"url":            "https://checkout.stripe.com/pay/cs_test_123",
			"payment_status": "unpaid",
		})
	}))
	defer srv.Close()

	client := stripe.New(srv.URL, "sk_test_secret")
	session, err := client.CreateSession(context.Background(), stripe.CreateParams{
		CustomerEmail: "buyer@example.com",
		ProductName:   "Biryani",
		UnitAmount:    2000,
		Quantity:      2,
		SuccessURL:    "https://app.example.com/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://app.example.com/cancel",
		Metadata:      map[string]string{"orderId": "ord-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", session.URL)
	assert.False(t, session.Paid())

	assert.Equal(t, "Bearer sk_test_secret", gotAuth)
	assert.Equal(t, "payment", gotForm["mode"])
	assert.Equal(t, "buyer@example.com", gotForm["customer_email"])
	assert.Equal(t, "2000", gotForm["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "2", gotForm["line_items[0][quantity]"])
	assert.Equal(t, "Biryani", gotForm["line_items[0][price_data][product_data][name]"])
	assert.Equal(t, "ord-1", gotForm["metadata[orderId]"])
}

func TestCreateSessionDefaultsQuantity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		json.NewEncoder(w).Encode(map[string]string{"id": "cs_test_123"})
	}))
	defer srv.Close()

	_, err := stripe.New(srv.URL, "sk").CreateSession(context.Background(), stripe.CreateParams{
		ProductName: "Dal",
		UnitAmount:  900,
	})
	require.NoError(t, err)
}

func TestGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/checkout/sessions/cs_test_123", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "cs_test_123",
			"payment_status": "paid",
			"amount_total":   4000,
			"customer_email": "buyer@example.com",
			"metadata":       map[string]string{"orderId": "ord-1"},
		})
	}))
	defer srv.Close()

	session, err := stripe.New(srv.URL, "sk").GetSession(context.Background(), "cs_test_123")
	require.NoError(t, err)

	assert.True(t, session.Paid())
	assert.Equal(t, int64(4000), session.AmountTotal)
	assert.Equal(t, "ord-1", session.Metadata["orderId"])
}

func TestAPIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"message": "Your card was declined.",
				"type":    "card_error",
			},
		})
	}))
	defer srv.Close()

	_, err := stripe.New(srv.URL, "sk").GetSession(context.Background(), "cs_test_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card was declined")
}

func TestMissingSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	_, err := stripe.New(srv.URL, "sk").GetSession(context.Background(), "cs_test_123")
	assert.Error(t, err)
}
