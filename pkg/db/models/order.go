package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/epartnic/epartnic-backend/pkg/enums"
	"github.com/epartnic/epartnic-backend/pkg/types"
)

// Order is the immutable snapshot written at placement. Amounts and the
// shipping address are copied in; the cart and saved address move on
// independently afterwards.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID         uuid.UUID             `gorm:"column:owner_id;type:uuid;not null"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	Subtotal        decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryFee     decimal.Decimal       `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
	Total           decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	ShippingAddress types.OrderAddress    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentProvider enums.PaymentProvider `gorm:"column:payment_provider;type:text;not null"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;type:text;not null"`
	PaymentTxnID    string                `gorm:"column:payment_txn_id;not null"`
	PaymentAmount   decimal.Decimal       `gorm:"column:payment_amount;type:numeric(12,2);not null"`
	Items           []OrderLineItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
