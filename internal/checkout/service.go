package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/epartnic/epartnic-backend/internal/addresses"
	"github.com/epartnic/epartnic-backend/internal/cart"
	"github.com/epartnic/epartnic-backend/internal/orders"
	"github.com/epartnic/epartnic-backend/internal/payments"
	"github.com/epartnic/epartnic-backend/internal/pricing"
	"github.com/epartnic/epartnic-backend/pkg/db/models"
	"github.com/epartnic/epartnic-backend/pkg/enums"
	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
	"github.com/epartnic/epartnic-backend/pkg/logger"
	"github.com/epartnic/epartnic-backend/pkg/metrics"
)

// Placement outcomes reported to callers and metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type adapterSource interface {
	Adapter(provider enums.PaymentProvider) (payments.Adapter, error)
}

// Placement is the result of an order placement or retry.
type Placement struct {
	OrderID uuid.UUID     `json:"order_id"`
	Outcome string        `json:"outcome"`
	Order   *models.Order `json:"order,omitempty"`
}

// Service walks an owner through the delivery, payment and review steps and
// turns the reviewed cart into an order.
type Service interface {
	Start(ctx context.Context, ownerID uuid.UUID) (*Session, error)
	Current(ctx context.Context, ownerID uuid.UUID) (*Session, error)
	SelectAddress(ctx context.Context, ownerID, addressID uuid.UUID) (*Session, error)
	SelectPaymentMethod(ctx context.Context, ownerID uuid.UUID, method enums.PaymentProvider) (*Session, error)
	Next(ctx context.Context, ownerID uuid.UUID) (*Session, error)
	Back(ctx context.Context, ownerID uuid.UUID) (*Session, error)
	PlaceOrder(ctx context.Context, ownerID uuid.UUID) (*Placement, error)
	Retry(ctx context.Context, ownerID, orderID uuid.UUID) (*Placement, error)
}

type service struct {
	sessions  SessionStore
	carts     cart.Service
	addresses addresses.Service
	orders    orders.Service
	adapters  adapterSource
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the checkout orchestrator.
func NewService(
	sessions SessionStore,
	carts cart.Service,
	addrs addresses.Service,
	ords orders.Service,
	adapters adapterSource,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if addrs == nil {
		return nil, fmt.Errorf("addresses service required")
	}
	if ords == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if adapters == nil {
		return nil, fmt.Errorf("payment adapter registry required")
	}
	return &service{
		sessions:  sessions,
		carts:     carts,
		addresses: addrs,
		orders:    ords,
		adapters:  adapters,
		metrics:   checkoutMetrics,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Start creates the owner's session at the delivery step, or rewinds an
// existing one there. The default address is preselected when the owner has
// one and no address is already chosen.
func (s *service) Start(ctx context.Context, ownerID uuid.UUID) (*Session, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	session, found, err := s.sessions.Load(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	if !found {
		session = &Session{OwnerID: ownerID}
	}
	session.Step = enums.CheckoutStepDelivery

	if session.AddressID == nil {
		saved, err := s.addresses.List(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		for i := range saved {
			if saved[i].IsDefault {
				session.AddressID = &saved[i].ID
				break
			}
		}
	}

	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Current returns the owner's session without mutating it.
func (s *service) Current(ctx context.Context, ownerID uuid.UUID) (*Session, error) {
	session, err := s.loadSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SelectAddress records the delivery address. The address must belong to
// the owner.
func (s *service) SelectAddress(ctx context.Context, ownerID, addressID uuid.UUID) (*Session, error) {
	session, err := s.loadSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.addresses.Get(ctx, ownerID, addressID); err != nil {
		return nil, err
	}

	session.AddressID = &addressID
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectPaymentMethod records the payment method for the session.
func (s *service) SelectPaymentMethod(ctx context.Context, ownerID uuid.UUID, method enums.PaymentProvider) (*Session, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}

	session, err := s.loadSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	session.PaymentMethod = method
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Next advances the session one step. Leaving delivery requires a selected
// address; a guard violation leaves the session unchanged.
func (s *service) Next(ctx context.Context, ownerID uuid.UUID) (*Session, error) {
	session, err := s.loadSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if session.Step == enums.CheckoutStepDelivery && session.AddressID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "select a delivery address before continuing")
	}

	session.Step = session.Step.Next()
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Back steps the session down, clamped at delivery.
func (s *service) Back(ctx context.Context, ownerID uuid.UUID) (*Session, error) {
	session, err := s.loadSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	session.Step = session.Step.Prev()
	if err := s.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// PlaceOrder turns the reviewed cart into an order. A declined payment still
// persists the order as pending so the owner can retry; the cart survives
// until a payment succeeds.
func (s *service) PlaceOrder(ctx context.Context, ownerID uuid.UUID) (*Placement, error) {
	started := s.now()

	session, err := s.loadSession(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if session.Step != enums.CheckoutStepReview {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not at the review step").
			WithDetails(map[string]string{"step": session.Step.String()})
	}
	if session.AddressID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}
	if !session.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	ownerCart, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if ownerCart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	address, err := s.addresses.Get(ctx, ownerID, *session.AddressID)
	if err != nil {
		return nil, err
	}

	quote := pricing.QuoteFor(ownerCart.Subtotal())

	result, err := s.executePayment(ctx, session.PaymentMethod, quote.Total)
	if err != nil {
		s.observe(session.PaymentMethod, OutcomeFailure, started)
		return nil, err
	}

	// Cash on delivery settles at the door; the order moves straight to paid
	// with the payment record left as created.
	paid := result.Succeeded() || session.PaymentMethod == enums.PaymentProviderCOD

	order := s.buildOrder(ownerID, ownerCart, quote, address, result, paid)
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.observe(session.PaymentMethod, OutcomeFailure, started)
		return nil, err
	}

	if !paid {
		s.observe(session.PaymentMethod, OutcomeFailure, started)
		return &Placement{OrderID: created.ID, Outcome: OutcomeFailure, Order: created}, nil
	}

	s.settle(ctx, ownerID)
	s.observe(session.PaymentMethod, OutcomeSuccess, started)
	return &Placement{OrderID: created.ID, Outcome: OutcomeSuccess, Order: created}, nil
}

// Retry re-confirms payment on an existing pending order. Success promotes
// the order to paid; no new order row is created either way.
func (s *service) Retry(ctx context.Context, ownerID, orderID uuid.UUID) (*Placement, error) {
	started := s.now()

	order, err := s.orders.GetForOwner(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be retried")
	}

	adapter, err := s.adapters.Adapter(order.PaymentProvider)
	if err != nil {
		return nil, err
	}

	result, err := adapter.Confirm(ctx, order.PaymentTxnID)
	if err != nil {
		s.observe(order.PaymentProvider, OutcomeFailure, started)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment")
	}

	if !result.Succeeded() {
		s.observe(order.PaymentProvider, OutcomeFailure, started)
		return &Placement{OrderID: order.ID, Outcome: OutcomeFailure, Order: order}, nil
	}

	updated, err := s.orders.MarkPaid(ctx, order.ID, *result)
	if err != nil {
		return nil, err
	}

	s.settle(ctx, ownerID)
	s.observe(order.PaymentProvider, OutcomeSuccess, started)
	return &Placement{OrderID: updated.ID, Outcome: OutcomeSuccess, Order: updated}, nil
}

func (s *service) executePayment(ctx context.Context, method enums.PaymentProvider, total decimal.Decimal) (payments.Result, error) {
	if method == enums.PaymentProviderCOD {
		return payments.SynthesizeCOD(s.now(), total), nil
	}

	adapter, err := s.adapters.Adapter(method)
	if err != nil {
		return payments.Result{}, err
	}

	intent, err := adapter.CreateIntent(ctx, total)
	if err != nil {
		return payments.Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	result, err := adapter.Confirm(ctx, intent.TxnID)
	if err != nil {
		return payments.Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment")
	}
	return *result, nil
}

func (s *service) buildOrder(
	ownerID uuid.UUID,
	ownerCart *cart.Cart,
	quote pricing.Quote,
	address *models.Address,
	result payments.Result,
	paid bool,
) *models.Order {
	status := enums.OrderStatusPending
	if paid {
		status = enums.OrderStatusPaid
	}

	items := make([]models.OrderLineItem, 0, len(ownerCart.Lines))
	for _, line := range ownerCart.Lines {
		qty := decimal.NewFromInt(int64(line.Qty))
		items = append(items, models.OrderLineItem{
			ProductID: line.ProductID,
			SKU:       line.SKU,
			Name:      line.Name,
			Image:     line.Image,
			UnitPrice: line.UnitPrice,
			Qty:       line.Qty,
			Total:     line.UnitPrice.Mul(qty),
		})
	}

	return &models.Order{
		OwnerID:         ownerID,
		Status:          status,
		Subtotal:        quote.Subtotal,
		DeliveryFee:     quote.DeliveryFee,
		Total:           quote.Total,
		ShippingAddress: address.Snapshot(),
		PaymentProvider: result.Provider,
		PaymentStatus:   result.Status,
		PaymentTxnID:    result.TxnID,
		PaymentAmount:   result.Amount,
		Items:           items,
	}
}

// settle clears the cart and session after a successful payment. The order
// is already durable; a failure here only leaves stale redis state behind.
func (s *service) settle(ctx context.Context, ownerID uuid.UUID) {
	err := multierr.Combine(
		s.carts.Clear(ctx, ownerID),
		s.sessions.Delete(ctx, ownerID),
	)
	if err != nil && s.logg != nil {
		ctx = s.logg.WithFields(s.logg.WithUserID(ctx, ownerID.String()), map[string]any{
			"cleanup_error": err.Error(),
		})
		s.logg.Warn(ctx, "post-payment cleanup incomplete")
	}
}

func (s *service) observe(provider enums.PaymentProvider, outcome string, started time.Time) {
	s.metrics.ObservePlacement(provider.String(), outcome, s.now().Sub(started))
}

func (s *service) loadSession(ctx context.Context, ownerID uuid.UUID) (*Session, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	session, found, err := s.sessions.Load(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	return session, nil
}

func (s *service) saveSession(ctx context.Context, session *Session) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout session")
	}
	return nil
}
