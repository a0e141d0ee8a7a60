package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/epartnic/epartnic-backend/pkg/enums"
	"github.com/epartnic/epartnic-backend/pkg/razorpay"
)

type stubGateway struct {
	createdPaise int64
	order        *razorpay.Order
	payments     []razorpay.Payment
	err          error
}

func (s *stubGateway) CreateOrder(_ context.Context, amountPaise int64, _, _ string) (*razorpay.Order, error) {
	s.createdPaise = amountPaise
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubGateway) FetchOrderPayments(_ context.Context, _ string) ([]razorpay.Payment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.payments, nil
}

func TestRazorpayCreateIntentConvertsToPaise(t *testing.T) {
	gateway := &stubGateway{order: &razorpay.Order{ID: "order_1"}}
	adapter := &RazorpayAdapter{gateway: gateway}

	intent, err := adapter.CreateIntent(context.Background(), decimal.RequireFromString("1099.50"))
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if gateway.createdPaise != 109950 {
		t.Fatalf("paise = %d, want 109950", gateway.createdPaise)
	}
	if intent.TxnID != "order_1" {
		t.Fatalf("txn id = %s", intent.TxnID)
	}
}

func TestRazorpayConfirmCapturedPaymentSucceeds(t *testing.T) {
	adapter := &RazorpayAdapter{gateway: &stubGateway{payments: []razorpay.Payment{
		{ID: "pay_1", Status: "failed", Amount: 109950},
		{ID: "pay_2", Status: "captured", Amount: 109950},
	}}}

	result, err := adapter.Confirm(context.Background(), "order_1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Status != enums.PaymentStatusSuccess {
		t.Fatalf("status = %s", result.Status)
	}
	if !result.Amount.Equal(decimal.RequireFromString("1099.50")) {
		t.Fatalf("amount = %s", result.Amount)
	}
}

func TestRazorpayConfirmNoCaptureFails(t *testing.T) {
	adapter := &RazorpayAdapter{gateway: &stubGateway{payments: nil}}

	result, err := adapter.Confirm(context.Background(), "order_1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Status != enums.PaymentStatusFailed {
		t.Fatalf("status = %s, want failed when nothing captured", result.Status)
	}
}

func TestRazorpayConfirmGatewayErrorIsDependency(t *testing.T) {
	adapter := &RazorpayAdapter{gateway: &stubGateway{err: errors.New("gateway down")}}
	if _, err := adapter.Confirm(context.Background(), "order_1"); err == nil {
		t.Fatal("expected dependency error")
	}
}
