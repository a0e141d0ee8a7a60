package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/epartnic/epartnic-backend/internal/addresses"
	"github.com/epartnic/epartnic-backend/internal/cart"
	"github.com/epartnic/epartnic-backend/internal/orders"
	"github.com/epartnic/epartnic-backend/internal/payments"
	"github.com/epartnic/epartnic-backend/pkg/db/models"
	"github.com/epartnic/epartnic-backend/pkg/enums"
	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
	"github.com/epartnic/epartnic-backend/pkg/pagination"
)

type memorySessionStore struct {
	sessions map[uuid.UUID]*Session
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[uuid.UUID]*Session)}
}

func (m *memorySessionStore) Load(ctx context.Context, ownerID uuid.UUID) (*Session, bool, error) {
	session, ok := m.sessions[ownerID]
	if !ok {
		return nil, false, nil
	}
	copied := *session
	return &copied, true, nil
}

func (m *memorySessionStore) Save(ctx context.Context, session *Session) error {
	copied := *session
	m.sessions[session.OwnerID] = &copied
	return nil
}

func (m *memorySessionStore) Delete(ctx context.Context, ownerID uuid.UUID) error {
	delete(m.sessions, ownerID)
	return nil
}

type stubCartService struct {
	cart    *cart.Cart
	cleared bool
}

func (s *stubCartService) Get(ctx context.Context, ownerID uuid.UUID) (*cart.Cart, error) {
	if s.cart == nil {
		return &cart.Cart{}, nil
	}
	return s.cart, nil
}

func (s *stubCartService) AddLine(ctx context.Context, ownerID uuid.UUID, line cart.Line) (*cart.Cart, error) {
	return s.cart, nil
}

func (s *stubCartService) SetQuantity(ctx context.Context, ownerID, productID uuid.UUID, qty int) (*cart.Cart, error) {
	return s.cart, nil
}

func (s *stubCartService) RemoveLine(ctx context.Context, ownerID, productID uuid.UUID) (*cart.Cart, error) {
	return s.cart, nil
}

func (s *stubCartService) Clear(ctx context.Context, ownerID uuid.UUID) error {
	s.cleared = true
	s.cart = &cart.Cart{}
	return nil
}

type stubAddressService struct {
	addresses []models.Address
}

func (s *stubAddressService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Address, error) {
	return s.addresses, nil
}

func (s *stubAddressService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Address, error) {
	for i := range s.addresses {
		if s.addresses[i].ID == id && s.addresses[i].OwnerID == ownerID {
			return &s.addresses[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
}

func (s *stubAddressService) Create(ctx context.Context, ownerID uuid.UUID, input addresses.AddressInput) (*models.Address, error) {
	return nil, nil
}

func (s *stubAddressService) Update(ctx context.Context, ownerID, id uuid.UUID, input addresses.AddressInput) (*models.Address, error) {
	return nil, nil
}

func (s *stubAddressService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return nil
}

func (s *stubAddressService) SetDefault(ctx context.Context, ownerID, id uuid.UUID) error {
	return nil
}

type stubOrderService struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrderService() *stubOrderService {
	return &stubOrderService{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrderService) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderService) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok || order.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *stubOrderService) ListForOwner(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (s *stubOrderService) ListAll(ctx context.Context, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	return s.orders[id], nil
}

func (s *stubOrderService) MarkPaid(ctx context.Context, id uuid.UUID, result payments.Result) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be marked paid")
	}
	order.Status = enums.OrderStatusPaid
	order.PaymentStatus = result.Status
	order.PaymentTxnID = result.TxnID
	return order, nil
}

type checkoutFixture struct {
	svc      Service
	sessions *memorySessionStore
	carts    *stubCartService
	orders   *stubOrderService
	mock     *payments.MockAdapter
	ownerID  uuid.UUID
	address  models.Address
}

func newCheckoutFixture(t *testing.T, outcome payments.OutcomeProvider) *checkoutFixture {
	t.Helper()

	ownerID := uuid.New()
	address := models.Address{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		FullName:  "Asha Verma",
		Phone:     "9876543210",
		Line1:     "12 MG Road",
		City:      "Pune",
		State:     "MH",
		Pincode:   "411001",
		Country:   "IN",
		IsDefault: true,
	}

	mock := payments.NewMockAdapter(payments.MockOptions{Outcome: outcome})
	registry, err := payments.NewRegistry(mock)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	sessions := newMemorySessionStore()
	carts := &stubCartService{cart: &cart.Cart{Lines: []cart.Line{{
		ProductID: uuid.New(),
		SKU:       "BRK-001",
		Name:      "Brake Pad Set",
		UnitPrice: decimal.NewFromInt(500),
		Qty:       2,
		MaxQty:    5,
	}}}}
	orderSvc := newStubOrderService()

	svc, err := NewService(sessions, carts, &stubAddressService{addresses: []models.Address{address}}, orderSvc, registry, nil, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	return &checkoutFixture{
		svc:      svc,
		sessions: sessions,
		carts:    carts,
		orders:   orderSvc,
		mock:     mock,
		ownerID:  ownerID,
		address:  address,
	}
}

func (f *checkoutFixture) startAtReview(t *testing.T, method enums.PaymentProvider) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, f.ownerID); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := f.svc.SelectPaymentMethod(ctx, f.ownerID, method); err != nil {
		t.Fatalf("SelectPaymentMethod() error = %v", err)
	}
	if _, err := f.svc.Next(ctx, f.ownerID); err != nil {
		t.Fatalf("Next() to payment error = %v", err)
	}
	if _, err := f.svc.Next(ctx, f.ownerID); err != nil {
		t.Fatalf("Next() to review error = %v", err)
	}
}

func TestStartPreselectsDefaultAddress(t *testing.T) {
	f := newCheckoutFixture(t, payments.AlwaysSucceed())

	session, err := f.svc.Start(context.Background(), f.ownerID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if session.Step != enums.CheckoutStepDelivery {
		t.Errorf("step = %s, want delivery", session.Step)
	}
	if session.AddressID == nil || *session.AddressID != f.address.ID {
		t.Errorf("address id = %v, want default %s", session.AddressID, f.address.ID)
	}
}

func TestNextWithoutAddressStaysAtDelivery(t *testing.T) {
	f := newCheckoutFixture(t, payments.AlwaysSucceed())
	ctx := context.Background()

	f.sessions.sessions[f.ownerID] = &Session{OwnerID: f.ownerID, Step: enums.CheckoutStepDelivery}

	_, err := f.svc.Next(ctx, f.ownerID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeValidation)
	}

	session, _ := f.svc.Current(ctx, f.ownerID)
	if session.Step != enums.CheckoutStepDelivery {
		t.Errorf("step = %s, want delivery unchanged", session.Step)
	}
}

func TestNextClampsAtReview(t *testing.T) {
	f := newCheckoutFixture(t, payments.AlwaysSucceed())
	f.startAtReview(t, enums.PaymentProviderCOD)

	session, err := f.svc.Next(context.Background(), f.ownerID)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if session.Step != enums.CheckoutStepReview {
		t.Errorf("step = %s, want review", session.Step)
	}
}

func TestBackClampsAtDelivery(t *testing.T) {
	f := newCheckoutFixture(t, payments.AlwaysSucceed())
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, f.ownerID); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	session, err := f.svc.Back(ctx, f.ownerID)
	if err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if session.Step != enums.CheckoutStepDelivery {
		t.Errorf("step = %s, want delivery", session.Step)
	}
}

func TestPlaceOrderRequiresReviewStep(t *testing.T) {
	f := newCheckoutFixture(t, payments.AlwaysSucceed())
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, f.ownerID); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	_, err := f.svc.PlaceOrder(ctx, f.ownerID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeStateConflict)
	}
	if len(f.orders.orders) != 0 {
		t.Errorf("orders created = %d, want 0", len(f.orders.orders))
	}
}

func TestPlaceOrderCODCreatesPaidOrder(t *testing.T) {
	f := newCheckoutFixture(t, payments.AlwaysSucceed())
	f.startAtReview(t, enums.PaymentProviderCOD)

	placement, err := f.svc.PlaceOrder(context.Background(), f.ownerID)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if placement.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %s, want success", placement.Outcome)
	}

	order := f.orders.orders[placement.OrderID]
	if order.Status != enums.OrderStatusPaid {
		t.Errorf("status = %s, want paid", order.Status)
	}
	if order.PaymentStatus != enums.PaymentStatusCreated {
		t.Errorf("payment status = %s, want created", order.PaymentStatus)
	}
	if !strings.HasPrefix(order.PaymentTxnID, "COD-") {
		t.Errorf("payment txn = %s, want COD- prefix", order.PaymentTxnID)
	}
	if !order.Subtotal.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("subtotal = %s, want 1000", order.Subtotal)
	}
	if !order.DeliveryFee.IsZero() {
		t.Errorf("delivery fee = %s, want 0", order.DeliveryFee)
	}
	if !order.Total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("total = %s, want 1000", order.Total)
	}

	if !f.carts.cleared {
		t.Error("cart should be cleared after a paid placement")
	}
	if _, ok := f.sessions.sessions[f.ownerID]; ok {
		t.Error("session should be dropped after a paid placement")
	}
}

func TestPlaceOrderMockFailureKeepsCartAndSession(t *testing.T) {
	f := newCheckoutFixture(t, payments.FixedOutcome(enums.PaymentStatusFailed))
	f.startAtReview(t, enums.PaymentProviderMock)

	placement, err := f.svc.PlaceOrder(context.Background(), f.ownerID)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if placement.Outcome != OutcomeFailure {
		t.Errorf("outcome = %s, want failure", placement.Outcome)
	}

	order := f.orders.orders[placement.OrderID]
	if order == nil {
		t.Fatal("failed placement must still persist the order")
	}
	if order.Status != enums.OrderStatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}

	if f.carts.cleared {
		t.Error("cart must survive a failed placement")
	}
	if _, ok := f.sessions.sessions[f.ownerID]; !ok {
		t.Error("session must survive a failed placement")
	}
}

func TestPlaceOrderEmptyCartRejected(t *testing.T) {
	f := newCheckoutFixture(t, payments.AlwaysSucceed())
	f.startAtReview(t, enums.PaymentProviderCOD)
	f.carts.cart = &cart.Cart{}

	_, err := f.svc.PlaceOrder(context.Background(), f.ownerID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeValidation)
	}
}

func TestRetryPromotesPendingOrder(t *testing.T) {
	f := newCheckoutFixture(t, payments.FixedOutcome(enums.PaymentStatusFailed))
	f.startAtReview(t, enums.PaymentProviderMock)

	placement, err := f.svc.PlaceOrder(context.Background(), f.ownerID)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if placement.Outcome != OutcomeFailure {
		t.Fatalf("outcome = %s, want failure", placement.Outcome)
	}

	retried, err := f.svc.Retry(context.Background(), f.ownerID, placement.OrderID)
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	// The fixed outcome still declines; the order stays pending.
	if retried.Outcome != OutcomeFailure {
		t.Fatalf("outcome = %s, want failure", retried.Outcome)
	}
	if len(f.orders.orders) != 1 {
		t.Errorf("orders = %d, retry must not create a new row", len(f.orders.orders))
	}
}

func TestRetrySuccessMarksPaidAndClearsCart(t *testing.T) {
	outcome := &switchableOutcome{status: enums.PaymentStatusFailed}
	f := newCheckoutFixture(t, outcome)
	f.startAtReview(t, enums.PaymentProviderMock)

	placement, err := f.svc.PlaceOrder(context.Background(), f.ownerID)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if placement.Outcome != OutcomeFailure {
		t.Fatalf("outcome = %s, want failure", placement.Outcome)
	}

	outcome.status = enums.PaymentStatusSuccess

	retried, err := f.svc.Retry(context.Background(), f.ownerID, placement.OrderID)
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if retried.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s, want success", retried.Outcome)
	}
	if retried.Order.Status != enums.OrderStatusPaid {
		t.Errorf("status = %s, want paid", retried.Order.Status)
	}
	if !f.carts.cleared {
		t.Error("cart should be cleared after a successful retry")
	}
	if len(f.orders.orders) != 1 {
		t.Errorf("orders = %d, retry must not create a new row", len(f.orders.orders))
	}
}

func TestRetryRejectsNonPendingOrder(t *testing.T) {
	f := newCheckoutFixture(t, payments.AlwaysSucceed())
	f.startAtReview(t, enums.PaymentProviderCOD)

	placement, err := f.svc.PlaceOrder(context.Background(), f.ownerID)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	_, err = f.svc.Retry(context.Background(), f.ownerID, placement.OrderID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeStateConflict)
	}
}

type switchableOutcome struct {
	status enums.PaymentStatus
}

func (s *switchableOutcome) Outcome(string) enums.PaymentStatus {
	return s.status
}
