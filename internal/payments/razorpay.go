package payments

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/epartnic/epartnic-backend/pkg/enums"
	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
	"github.com/epartnic/epartnic-backend/pkg/razorpay"
)

var paiseFactor = decimal.NewFromInt(100)

type razorpayGateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*razorpay.Order, error)
	FetchOrderPayments(ctx context.Context, orderID string) ([]razorpay.Payment, error)
}

// RazorpayAdapter settles payments through the hosted Razorpay checkout. The
// client completes the payment against the remote order; Confirm inspects
// what the gateway recorded.
type RazorpayAdapter struct {
	gateway razorpayGateway
}

// NewRazorpayAdapter wraps the API client.
func NewRazorpayAdapter(client *razorpay.Client) (*RazorpayAdapter, error) {
	if client == nil {
		return nil, fmt.Errorf("razorpay client required")
	}
	return &RazorpayAdapter{gateway: client}, nil
}

// Provider implements Adapter.
func (r *RazorpayAdapter) Provider() enums.PaymentProvider {
	return enums.PaymentProviderRazorpay
}

// CreateIntent registers a remote order for the amount, converted to paise.
func (r *RazorpayAdapter) CreateIntent(ctx context.Context, amount decimal.Decimal) (*Intent, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	paise := amount.Mul(paiseFactor).Round(0).IntPart()
	order, err := r.gateway.CreateOrder(ctx, paise, "INR", "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create razorpay order")
	}

	return &Intent{
		Provider: enums.PaymentProviderRazorpay,
		TxnID:    order.ID,
		Amount:   amount,
	}, nil
}

// Confirm resolves the remote order: a captured payment settles it, anything
// else (failed attempts, or the shopper dismissing the checkout) is a failed
// result rather than an error.
func (r *RazorpayAdapter) Confirm(ctx context.Context, txnID string) (*Result, error) {
	payments, err := r.gateway.FetchOrderPayments(ctx, txnID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch razorpay payments")
	}

	result := &Result{
		Provider: enums.PaymentProviderRazorpay,
		Status:   enums.PaymentStatusFailed,
		TxnID:    txnID,
	}
	for _, payment := range payments {
		amount := decimal.NewFromInt(payment.Amount).Div(paiseFactor)
		if payment.Status == "captured" || payment.Status == "authorized" {
			result.Status = enums.PaymentStatusSuccess
			result.Amount = amount
			return result, nil
		}
		result.Amount = amount
	}
	return result, nil
}
