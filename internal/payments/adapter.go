package payments

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/epartnic/epartnic-backend/pkg/enums"
)

// Intent is a gateway-side payment awaiting confirmation.
type Intent struct {
	Provider enums.PaymentProvider `json:"provider"`
	TxnID    string                `json:"txn_id"`
	Amount   decimal.Decimal       `json:"amount"`
}

// Result is the normalized outcome of a payment attempt, regardless of
// which gateway produced it.
type Result struct {
	Provider enums.PaymentProvider `json:"provider"`
	Status   enums.PaymentStatus   `json:"status"`
	TxnID    string                `json:"txn_id"`
	Amount   decimal.Decimal       `json:"amount"`
}

// Succeeded reports whether the payment settled.
func (r Result) Succeeded() bool {
	return r.Status == enums.PaymentStatusSuccess
}

// Adapter abstracts one payment gateway. CreateIntent registers the charge,
// Confirm resolves it into a final Result. A declined payment is a Result
// with status failed, not an error; errors mean the gateway itself failed.
type Adapter interface {
	Provider() enums.PaymentProvider
	CreateIntent(ctx context.Context, amount decimal.Decimal) (*Intent, error)
	Confirm(ctx context.Context, txnID string) (*Result, error)
}

// Refunder is implemented by adapters that can return funds.
type Refunder interface {
	Refund(ctx context.Context, txnID string, amount decimal.Decimal) (*Result, error)
}
