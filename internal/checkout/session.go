package checkout

import (
	"context"

	"github.com/google/uuid"

	"github.com/epartnic/epartnic-backend/pkg/enums"
)

// Session is the owner's in-flight checkout. It lives in redis with a TTL;
// an expired session simply restarts at the delivery step.
type Session struct {
	OwnerID       uuid.UUID             `json:"owner_id"`
	Step          enums.CheckoutStep    `json:"step"`
	AddressID     *uuid.UUID            `json:"address_id,omitempty"`
	PaymentMethod enums.PaymentProvider `json:"payment_method,omitempty"`
}

// SessionStore persists checkout sessions keyed by owner. Load reports
// presence so a missing session is distinguishable from a load failure.
type SessionStore interface {
	Load(ctx context.Context, ownerID uuid.UUID) (*Session, bool, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, ownerID uuid.UUID) error
}
