package enums

import "testing"

func TestCheckoutStepNextClampsAtReview(t *testing.T) {
	if got := CheckoutStepDelivery.Next(); got != CheckoutStepPayment {
		t.Fatalf("delivery.Next() = %s", got)
	}
	if got := CheckoutStepPayment.Next(); got != CheckoutStepReview {
		t.Fatalf("payment.Next() = %s", got)
	}
	if got := CheckoutStepReview.Next(); got != CheckoutStepReview {
		t.Fatalf("review.Next() = %s, want clamp", got)
	}
}

func TestCheckoutStepPrevClampsAtDelivery(t *testing.T) {
	if got := CheckoutStepReview.Prev(); got != CheckoutStepPayment {
		t.Fatalf("review.Prev() = %s", got)
	}
	if got := CheckoutStepPayment.Prev(); got != CheckoutStepDelivery {
		t.Fatalf("payment.Prev() = %s", got)
	}
	if got := CheckoutStepDelivery.Prev(); got != CheckoutStepDelivery {
		t.Fatalf("delivery.Prev() = %s, want clamp", got)
	}
}

func TestParseCheckoutStep(t *testing.T) {
	if _, err := ParseCheckoutStep("delivery"); err != nil {
		t.Fatalf("parse delivery: %v", err)
	}
	if _, err := ParseCheckoutStep("summary"); err == nil {
		t.Fatal("expected error for unknown step")
	}
}
