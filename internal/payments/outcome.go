package payments

import (
	"math/rand"
	"sync"

	"github.com/epartnic/epartnic-backend/pkg/enums"
)

// OutcomeProvider decides how the mock gateway resolves a confirmation.
type OutcomeProvider interface {
	Outcome(txnID string) enums.PaymentStatus
}

// OutcomeFunc adapts a function into an OutcomeProvider.
type OutcomeFunc func(txnID string) enums.PaymentStatus

// Outcome implements OutcomeProvider.
func (f OutcomeFunc) Outcome(txnID string) enums.PaymentStatus {
	return f(txnID)
}

// AlwaysSucceed resolves every confirmation as success.
func AlwaysSucceed() OutcomeProvider {
	return OutcomeFunc(func(string) enums.PaymentStatus {
		return enums.PaymentStatusSuccess
	})
}

// FixedOutcome resolves every confirmation with the given status.
func FixedOutcome(status enums.PaymentStatus) OutcomeProvider {
	return OutcomeFunc(func(string) enums.PaymentStatus {
		return status
	})
}

// SuccessRate succeeds a fraction of confirmations. Used in dev so failure
// paths get exercised without a real gateway.
func SuccessRate(rate float64, rng *rand.Rand) OutcomeProvider {
	if rate >= 1 {
		return AlwaysSucceed()
	}
	if rate <= 0 {
		return FixedOutcome(enums.PaymentStatusFailed)
	}

	var mu sync.Mutex
	return OutcomeFunc(func(string) enums.PaymentStatus {
		mu.Lock()
		defer mu.Unlock()
		if rng.Float64() < rate {
			return enums.PaymentStatusSuccess
		}
		return enums.PaymentStatusFailed
	})
}
