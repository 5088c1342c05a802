//go:build unit

package paygate_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medibook/internal/infra/paygate"
	"medibook/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, handler http.HandlerFunc) *paygate.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return paygate.NewClient(config.GatewayConfig{
		BaseURL:   server.URL,
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
	})
}

func TestCreateOrder(t *testing.T) {
	t.Run("posts amount and returns order handle", func(t *testing.T) {
		gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/orders", r.URL.Path)
			user, _, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "rzp_test_key", user)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(3500), body["amount"])
			assert.Equal(t, "INR", body["currency"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"order_abc","amount":3500,"currency":"INR","status":"created"}`))
		})

		order, err := gw.CreateOrder(context.Background(), 3500, "booking-1")
		require.NoError(t, err)
		assert.Equal(t, "order_abc", order.OrderID)
		assert.Equal(t, int32(3500), order.Amount)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		gw := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := gw.CreateOrder(context.Background(), 100, "booking-2")
		require.Error(t, err)
	})
}

func TestVerifySignature(t *testing.T) {
	gw := newGateway(t, func(_ http.ResponseWriter, _ *http.Request) {})

	sign := func(orderID, paymentID string) string {
		mac := hmac.New(sha256.New, []byte("secret"))
		mac.Write([]byte(orderID + "|" + paymentID))
		return hex.EncodeToString(mac.Sum(nil))
	}

	assert.True(t, gw.VerifySignature("order_abc", "pay_xyz", sign("order_abc", "pay_xyz")))
	assert.False(t, gw.VerifySignature("order_abc", "pay_xyz", sign("order_abc", "pay_other")))
	assert.False(t, gw.VerifySignature("order_abc", "pay_xyz", "not-a-signature"))
}

func TestRefund(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/pay_xyz/refund", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"rfnd_1","amount":3500,"status":"processed"}`))
	})

	result, err := gw.Refund(context.Background(), "pay_xyz", 3500)
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", result.RefundID)
	assert.Equal(t, int32(3500), result.Amount)
	assert.Equal(t, "processed", result.Status)
}
