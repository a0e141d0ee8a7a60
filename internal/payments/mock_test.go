package payments

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/epartnic/epartnic-backend/pkg/enums"
)

func TestMockCreateIntentFabricatesTxnID(t *testing.T) {
	fixed := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)
	adapter := NewMockAdapter(MockOptions{Now: func() time.Time { return fixed }})

	intent, err := adapter.CreateIntent(context.Background(), decimal.NewFromInt(599))
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if !strings.HasPrefix(intent.TxnID, "MOCK-") {
		t.Fatalf("txn id = %s", intent.TxnID)
	}
	if intent.Provider != enums.PaymentProviderMock {
		t.Fatalf("provider = %s", intent.Provider)
	}

	second, err := adapter.CreateIntent(context.Background(), decimal.NewFromInt(599))
	if err != nil {
		t.Fatalf("second intent: %v", err)
	}
	if second.TxnID == intent.TxnID {
		t.Fatal("txn ids must be unique even within one millisecond")
	}
}

func TestMockConfirmUsesOutcomeProvider(t *testing.T) {
	adapter := NewMockAdapter(MockOptions{Outcome: FixedOutcome(enums.PaymentStatusFailed)})

	intent, err := adapter.CreateIntent(context.Background(), decimal.NewFromInt(1099))
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	result, err := adapter.Confirm(context.Background(), intent.TxnID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Status != enums.PaymentStatusFailed {
		t.Fatalf("status = %s", result.Status)
	}
	if !result.Amount.Equal(decimal.NewFromInt(1099)) {
		t.Fatalf("amount = %s", result.Amount)
	}
	if result.Succeeded() {
		t.Fatal("failed result must not report success")
	}
}

func TestMockConfirmUnknownTxn(t *testing.T) {
	adapter := NewMockAdapter(MockOptions{})
	if _, err := adapter.Confirm(context.Background(), "MOCK-unknown"); err == nil {
		t.Fatal("expected error for unknown transaction")
	}
}

func TestMockConfirmHonorsContextDuringDelay(t *testing.T) {
	adapter := NewMockAdapter(MockOptions{Delay: time.Minute})
	intent, err := adapter.CreateIntent(context.Background(), decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := adapter.Confirm(ctx, intent.TxnID); err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestMockRefund(t *testing.T) {
	adapter := NewMockAdapter(MockOptions{})
	intent, err := adapter.CreateIntent(context.Background(), decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	refund, err := adapter.Refund(context.Background(), intent.TxnID, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if !strings.HasPrefix(refund.TxnID, "MOCKREF-") {
		t.Fatalf("refund txn id = %s", refund.TxnID)
	}

	if _, err := adapter.Refund(context.Background(), intent.TxnID, decimal.NewFromInt(501)); err == nil {
		t.Fatal("expected error for over-refund")
	}
}

func TestSuccessRateBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	always := SuccessRate(1, rng)
	never := SuccessRate(0, rng)
	for i := 0; i < 10; i++ {
		if always.Outcome("txn") != enums.PaymentStatusSuccess {
			t.Fatal("rate 1 must always succeed")
		}
		if never.Outcome("txn") != enums.PaymentStatusFailed {
			t.Fatal("rate 0 must always fail")
		}
	}

	mixed := SuccessRate(0.8, rand.New(rand.NewSource(7)))
	var successes int
	const trials = 1000
	for i := 0; i < trials; i++ {
		if mixed.Outcome("txn") == enums.PaymentStatusSuccess {
			successes++
		}
	}
	if successes < 700 || successes > 900 {
		t.Fatalf("successes = %d of %d, expected near 800", successes, trials)
	}
}
