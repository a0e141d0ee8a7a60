package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/epartnic/epartnic-backend/internal/payments"
	"github.com/epartnic/epartnic-backend/pkg/db/models"
	"github.com/epartnic/epartnic-backend/pkg/enums"
	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
	"github.com/epartnic/epartnic-backend/pkg/logger"
	"github.com/epartnic/epartnic-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type refundSource interface {
	Refunder(provider enums.PaymentProvider) (payments.Refunder, bool)
}

// allowedTransitions is the linear fulfilment walk plus cancellation from
// the states where money has not left the building yet (or can be returned).
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {enums.OrderStatusPaid, enums.OrderStatusCanceled},
	enums.OrderStatusPaid:    {enums.OrderStatusShipped, enums.OrderStatusCanceled},
	enums.OrderStatusShipped: {enums.OrderStatusDelivered},
}

// Service exposes order reads and admin lifecycle transitions.
type Service interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Order, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params) (*OrderList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, result payments.Result) (*models.Order, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	refunds refundSource
	logg    *logger.Logger
}

// NewService builds an orders service.
func NewService(repo Repository, tx txRunner, refunds refundSource, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, refunds: refunds, logg: logg}, nil
}

// Create persists the order snapshot and its line items atomically.
func (s *service) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if order.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if len(order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		created, txErr = s.repo.WithTx(tx).Create(ctx, order)
		return txErr
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return created, nil
}

func (s *service) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListForOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	orders, next, err := s.repo.ListByOwner(ctx, ownerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &OrderList{Orders: orders, NextCursor: next}, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*OrderList, error) {
	orders, next, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &OrderList{Orders: orders, NextCursor: next}, nil
}

// UpdateStatus applies an admin transition. Canceling a paid order first
// returns the funds through the provider's refund surface when it has one.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", next))
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !transitionAllowed(order.Status, next) {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next),
		).WithDetails(map[string]string{"from": order.Status.String(), "to": next.String()})
	}

	if next == enums.OrderStatusCanceled && order.Status == enums.OrderStatusPaid {
		if err := s.refundPaid(ctx, order); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, id, map[string]any{"status": next}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = next
	return order, nil
}

// MarkPaid promotes a pending order after a successful payment retry.
func (s *service) MarkPaid(ctx context.Context, id uuid.UUID, result payments.Result) (*models.Order, error) {
	if !result.Succeeded() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment result must be successful")
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be marked paid")
	}

	updates := map[string]any{
		"status":         enums.OrderStatusPaid,
		"payment_status": result.Status,
		"payment_txn_id": result.TxnID,
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}

	order.Status = enums.OrderStatusPaid
	order.PaymentStatus = result.Status
	order.PaymentTxnID = result.TxnID
	return order, nil
}

func (s *service) refundPaid(ctx context.Context, order *models.Order) error {
	if s.refunds == nil {
		return nil
	}
	refunder, ok := s.refunds.Refunder(order.PaymentProvider)
	if !ok {
		// Nothing to return through; cash on delivery settles at the door.
		return nil
	}

	refund, err := refunder.Refund(ctx, order.PaymentTxnID, order.PaymentAmount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund payment")
	}
	if s.logg != nil {
		s.logg.Info(
			s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String(), "refund_txn_id": refund.TxnID}),
			"payment refunded for canceled order",
		)
	}
	return nil
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
