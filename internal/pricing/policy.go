package pricing

import "github.com/shopspring/decimal"

var (
	// freeDeliveryThreshold is the subtotal at which delivery becomes free.
	freeDeliveryThreshold = decimal.NewFromInt(1000)
	// flatDeliveryFee applies below the threshold.
	flatDeliveryFee = decimal.NewFromInt(99)
)

// Quote is the priced view of a cart before payment.
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// DeliveryFee returns the flat fee, waived once the subtotal reaches the
// free delivery threshold.
func DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeDeliveryThreshold) {
		return decimal.Zero
	}
	return flatDeliveryFee
}

// QuoteFor prices a subtotal into the full quote.
func QuoteFor(subtotal decimal.Decimal) Quote {
	fee := DeliveryFee(subtotal)
	return Quote{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}
