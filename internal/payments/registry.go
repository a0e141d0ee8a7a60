package payments

import (
	"fmt"

	"github.com/epartnic/epartnic-backend/pkg/enums"
	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
)

// Registry resolves the adapter for a payment provider. Cash on delivery has
// no adapter; its result is synthesized at placement.
type Registry struct {
	adapters map[enums.PaymentProvider]Adapter
}

// NewRegistry indexes the provided adapters by provider.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	indexed := make(map[enums.PaymentProvider]Adapter, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			return nil, fmt.Errorf("nil payment adapter")
		}
		provider := adapter.Provider()
		if _, exists := indexed[provider]; exists {
			return nil, fmt.Errorf("duplicate adapter for provider %s", provider)
		}
		indexed[provider] = adapter
	}
	return &Registry{adapters: indexed}, nil
}

// Adapter returns the adapter registered for the provider.
func (r *Registry) Adapter(provider enums.PaymentProvider) (Adapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment provider %s is not available", provider))
	}
	return adapter, nil
}

// Refunder returns the refund surface for the provider, when it has one.
func (r *Registry) Refunder(provider enums.PaymentProvider) (Refunder, bool) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, false
	}
	refunder, ok := adapter.(Refunder)
	return refunder, ok
}
