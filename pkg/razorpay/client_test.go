package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/epartnic/epartnic-backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
		BaseURL:   server.URL,
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(context.Background(), config.RazorpayConfig{}, nil); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestCreateOrderSendsAmountInPaise(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "secret" {
			t.Error("missing basic auth credentials")
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["amount"].(float64) != 109900 {
			t.Errorf("amount = %v, want 109900", payload["amount"])
		}
		_ = json.NewEncoder(w).Encode(Order{ID: "order_abc", Amount: 109900, Currency: "INR", Status: "created"})
	})

	order, err := client.CreateOrder(context.Background(), 109900, "INR", "rcpt-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_abc" {
		t.Fatalf("order id = %s", order.ID)
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})
	if _, err := client.CreateOrder(context.Background(), 0, "INR", ""); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestFetchOrderPaymentsSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"order not found"}}`))
	})

	_, err := client.FetchOrderPayments(context.Background(), "order_missing")
	if err == nil {
		t.Fatal("expected api error")
	}
	if got := err.Error(); !strings.Contains(got, "order not found") {
		t.Fatalf("error = %q, want description included", got)
	}
}

func TestFetchOrderPaymentsDecodesCollection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders/order_abc/payments" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(paymentCollection{
			Count: 1,
			Items: []Payment{{ID: "pay_1", OrderID: "order_abc", Amount: 109900, Status: "captured"}},
		})
	})

	payments, err := client.FetchOrderPayments(context.Background(), "order_abc")
	if err != nil {
		t.Fatalf("fetch payments: %v", err)
	}
	if len(payments) != 1 || payments[0].Status != "captured" {
		t.Fatalf("payments = %+v", payments)
	}
}
