package payments

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/epartnic/epartnic-backend/pkg/enums"
)

// SynthesizeCOD fabricates the payment record for cash on delivery. No
// gateway is involved; the charge is collected at the door.
func SynthesizeCOD(now time.Time, amount decimal.Decimal) Result {
	return Result{
		Provider: enums.PaymentProviderCOD,
		Status:   enums.PaymentStatusCreated,
		TxnID:    fmt.Sprintf("COD-%d", now.UnixMilli()),
		Amount:   amount,
	}
}
