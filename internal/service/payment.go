package service

import (
	"time"

	"brass-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest records money received for an invoice or paid for a purchase.
type PaymentRequest struct {
	Amount    decimal.Decimal   `json:"amount" validate:"dec_gt0,dec_places=6"`
	Mode      model.PaymentMode `json:"mode"`
	Reference string            `json:"reference" validate:"max=100"`
	Note      string            `json:"note"`
	PaidAt    *Date             `json:"paidAt"`
}

func paymentMode(m model.PaymentMode) (model.PaymentMode, error) {
	if m == "" {
		return model.ModeCash, nil
	}
	if !m.Valid() {
		return "", invalid("unknown payment mode %q", m)
	}
	return m, nil
}

// checkPaid rejects payments that would take paid past total.
func checkPaid(paid, total decimal.Decimal) error {
	if paid.IsNegative() {
		return invalid("paid amount cannot be negative")
	}
	if paid.GreaterThan(total) {
		return invalid("payment of %s exceeds document total %s", paid.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

func newPayment(docID uuid.UUID, docType model.ReferenceType, amount decimal.Decimal, mode model.PaymentMode, paidAt time.Time, actor Actor) *model.Payment {
	return &model.Payment{
		DocumentID:   docID,
		DocumentType: docType,
		Amount:       amount,
		Mode:         mode,
		PaidAt:       paidAt,
		CreatedBy:    actor.auditID(),
	}
}

func paidFields(paid, remaining decimal.Decimal, status model.PaymentStatus, actor Actor) map[string]interface{} {
	return map[string]interface{}{
		"paid_amount":      paid,
		"remaining_amount": remaining,
		"payment_status":   status,
		"updated_by":       actor.auditID(),
	}
}
