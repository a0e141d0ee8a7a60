package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNilSafeMetrics(t *testing.T) {
	var checkout *CheckoutMetrics
	checkout.ObservePlacement("mock", "success", time.Second)

	var http *HTTPMetrics
	http.ObserveRequest("GET", "/api/v1/products", "200", time.Millisecond)

	empty := NewCheckoutMetrics(nil)
	empty.ObservePlacement("cod", "success", time.Second)
}

func TestRegisteredMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	checkout := NewCheckoutMetrics(reg)
	checkout.ObservePlacement("razorpay", "failure", 250*time.Millisecond)

	httpMetrics := NewHTTPMetrics(reg)
	httpMetrics.ObserveRequest("POST", "/api/v1/checkout/place", "200", 10*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}
