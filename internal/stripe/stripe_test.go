package stripe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bookvault/borrowing-service/internal/stripe"
)

func TestClient_CreateSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_1", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "payment", r.PostForm.Get("mode"))
		require.Equal(t, "Domain Driven Design", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		require.Equal(t, "1998", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		require.Equal(t, "http://localhost/success", r.PostForm.Get("success_url"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	client := stripe.NewClient(stripe.Config{SecretKey: "sk_test_1", BaseURL: srv.URL})
	session, err := client.CreateSession(context.Background(), "Domain Driven Design",
		decimal.RequireFromString("19.98"), "http://localhost/success", "http://localhost/cancel")
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", session.ID)
	require.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
}

func TestClient_CreateSession_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := stripe.NewClient(stripe.Config{SecretKey: "bad", BaseURL: srv.URL})
	_, err := client.CreateSession(context.Background(), "Domain Driven Design",
		decimal.RequireFromString("19.98"), "http://localhost/success", "http://localhost/cancel")
	require.Error(t, err)
}
