package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/epartnic/epartnic-backend/pkg/enums"
	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
)

// MockOptions tunes the in-process gateway.
type MockOptions struct {
	// Delay imitates gateway latency on confirm.
	Delay time.Duration
	// Outcome decides confirmations; defaults to AlwaysSucceed.
	Outcome OutcomeProvider
	// Now overrides the clock for txn id generation.
	Now func() time.Time
}

// MockAdapter is an in-process gateway that fabricates transactions. It keeps
// created intents in memory so Confirm and Refund can resolve them.
type MockAdapter struct {
	delay   time.Duration
	outcome OutcomeProvider
	now     func() time.Time

	mu      sync.Mutex
	intents map[string]decimal.Decimal
	seq     int
}

// NewMockAdapter builds the mock gateway.
func NewMockAdapter(opts MockOptions) *MockAdapter {
	outcome := opts.Outcome
	if outcome == nil {
		outcome = AlwaysSucceed()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &MockAdapter{
		delay:   opts.Delay,
		outcome: outcome,
		now:     now,
		intents: map[string]decimal.Decimal{},
	}
}

// Provider implements Adapter.
func (m *MockAdapter) Provider() enums.PaymentProvider {
	return enums.PaymentProviderMock
}

// CreateIntent fabricates a MOCK- transaction id and records the amount.
func (m *MockAdapter) CreateIntent(_ context.Context, amount decimal.Decimal) (*Intent, error) {
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be non-negative")
	}

	m.mu.Lock()
	m.seq++
	txnID := fmt.Sprintf("MOCK-%d-%d", m.now().UnixMilli(), m.seq)
	m.intents[txnID] = amount
	m.mu.Unlock()

	return &Intent{
		Provider: enums.PaymentProviderMock,
		TxnID:    txnID,
		Amount:   amount,
	}, nil
}

// Confirm resolves a previously created intent after the configured delay.
func (m *MockAdapter) Confirm(ctx context.Context, txnID string) (*Result, error) {
	m.mu.Lock()
	amount, ok := m.intents[txnID]
	m.mu.Unlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown transaction")
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "confirm payment")
		}
	}

	return &Result{
		Provider: enums.PaymentProviderMock,
		Status:   m.outcome.Outcome(txnID),
		TxnID:    txnID,
		Amount:   amount,
	}, nil
}

// Refund returns funds for a settled mock transaction.
func (m *MockAdapter) Refund(_ context.Context, txnID string, amount decimal.Decimal) (*Result, error) {
	m.mu.Lock()
	original, ok := m.intents[txnID]
	m.mu.Unlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown transaction")
	}
	if amount.GreaterThan(original) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund exceeds original amount")
	}

	return &Result{
		Provider: enums.PaymentProviderMock,
		Status:   enums.PaymentStatusSuccess,
		TxnID:    "MOCKREF-" + txnID,
		Amount:   amount,
	}, nil
}
