package enums

import "fmt"

// CheckoutStep is one screen of the three step checkout flow.
type CheckoutStep string

const (
	CheckoutStepDelivery CheckoutStep = "delivery"
	CheckoutStepPayment  CheckoutStep = "payment"
	CheckoutStepReview   CheckoutStep = "review"
)

// checkoutStepOrder fixes the forward walk of the flow.
var checkoutStepOrder = []CheckoutStep{
	CheckoutStepDelivery,
	CheckoutStepPayment,
	CheckoutStepReview,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range checkoutStepOrder {
		if candidate == c {
			return true
		}
	}
	return false
}

// Next returns the following step, clamped at review.
func (c CheckoutStep) Next() CheckoutStep {
	for i, candidate := range checkoutStepOrder {
		if candidate == c && i < len(checkoutStepOrder)-1 {
			return checkoutStepOrder[i+1]
		}
	}
	if c.IsValid() {
		return c
	}
	return CheckoutStepDelivery
}

// Prev returns the preceding step, clamped at delivery.
func (c CheckoutStep) Prev() CheckoutStep {
	for i, candidate := range checkoutStepOrder {
		if candidate == c && i > 0 {
			return checkoutStepOrder[i-1]
		}
	}
	return CheckoutStepDelivery
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range checkoutStepOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
