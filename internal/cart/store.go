package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
	"github.com/epartnic/epartnic-backend/pkg/logger"
)

// Persistence mirrors carts to a backing store. Load reports presence so an
// absent cart is distinguishable from an empty payload.
type Persistence interface {
	Load(ctx context.Context, ownerID string) (string, bool, error)
	Save(ctx context.Context, ownerID string, payload string) error
	Delete(ctx context.Context, ownerID string) error
}

// Service exposes cart reconciliation operations. Every mutation persists
// the full cart before returning it.
type Service interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*Cart, error)
	AddLine(ctx context.Context, ownerID uuid.UUID, line Line) (*Cart, error)
	SetQuantity(ctx context.Context, ownerID uuid.UUID, productID uuid.UUID, qty int) (*Cart, error)
	RemoveLine(ctx context.Context, ownerID uuid.UUID, productID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, ownerID uuid.UUID) error
}

type service struct {
	store Persistence
	logg  *logger.Logger
}

// NewService builds a cart service backed by the provided persistence port.
func NewService(store Persistence, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart persistence required")
	}
	return &service{store: store, logg: logg}, nil
}

// Get loads the owner's cart, falling back to an empty cart when nothing is
// stored or the stored payload cannot be decoded. A corrupt payload is logged
// and discarded rather than surfaced; the cart is a convenience mirror.
func (s *service) Get(ctx context.Context, ownerID uuid.UUID) (*Cart, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	payload, found, err := s.store.Load(ctx, ownerID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if !found {
		return &Cart{}, nil
	}

	var cart Cart
	if err := json.Unmarshal([]byte(payload), &cart); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, ownerID.String()), "discarding unreadable cart payload")
		}
		return &Cart{}, nil
	}
	return &cart, nil
}

// AddLine merges the incoming line into the cart and persists the result.
func (s *service) AddLine(ctx context.Context, ownerID uuid.UUID, line Line) (*Cart, error) {
	if err := validateLine(line); err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	cart.merge(line)

	if err := s.save(ctx, ownerID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity updates a line's quantity; zero or less removes the line.
func (s *service) SetQuantity(ctx context.Context, ownerID uuid.UUID, productID uuid.UUID, qty int) (*Cart, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	cart, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if !cart.setQuantity(productID, qty) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}

	if err := s.save(ctx, ownerID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveLine drops the line for the given product.
func (s *service) RemoveLine(ctx context.Context, ownerID uuid.UUID, productID uuid.UUID) (*Cart, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	cart, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if !cart.remove(productID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}

	if err := s.save(ctx, ownerID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear deletes the owner's cart.
func (s *service) Clear(ctx context.Context, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if err := s.store.Delete(ctx, ownerID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) save(ctx context.Context, ownerID uuid.UUID, cart *Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Save(ctx, ownerID.String(), string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}

func validateLine(line Line) error {
	if line.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if line.Qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if line.MaxQty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}
	if line.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price must be non-negative")
	}
	return nil
}
