package model

import (
	"time"

	"brass-inventory/internal/billing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMode string

const (
	ModeCash   PaymentMode = "Cash"
	ModeBank   PaymentMode = "Bank"
	ModeUPI    PaymentMode = "UPI"
	ModeCheque PaymentMode = "Cheque"
	ModeCredit PaymentMode = "Credit"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case ModeCash, ModeBank, ModeUPI, ModeCheque, ModeCredit:
		return true
	}
	return false
}

type Purchase struct {
	BaseModel
	// BillNo is the supplier's bill number, unique per supplier among live purchases.
	BillNo     string         `gorm:"type:varchar(50);not null;index" json:"billNo"`
	SupplierID uuid.UUID      `gorm:"type:uuid;not null;index" json:"supplierId"`
	Supplier   *Supplier      `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Date       time.Time      `gorm:"not null;index" json:"date"`
	Items      []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items"`

	Subtotal          decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"subtotal"`
	GSTAmount         decimal.Decimal `gorm:"column:gst_amount;type:decimal(20,6);not null" json:"gstAmount"`
	TransportCharges  decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"transportCharges"`
	LabourCharges     decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"labourCharges"`
	PackingCharges    decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"packingCharges"`
	AdditionalCharges decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"additionalCharges"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"totalAmount"`

	PaymentMode     PaymentMode     `gorm:"type:varchar(10);not null;default:'Cash'" json:"paymentMode"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"paidAmount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"remainingAmount"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(10);not null;default:'Unpaid'" json:"paymentStatus"`

	Notes string `gorm:"type:text" json:"notes"`
}

type PurchaseItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"purchaseId"`
	LineNo      int       `gorm:"not null" json:"lineNo"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	ProductName string    `gorm:"type:varchar(255)" json:"productName"`

	Quantity   int             `gorm:"not null" json:"quantity"`
	Rate       decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"rate"`
	GSTPercent decimal.Decimal `gorm:"column:gst_percent;type:decimal(9,4);not null;default:0" json:"gst"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"taxAmount"`
}

func (it *PurchaseItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

func (p *Purchase) LineAmounts() []billing.LineAmount {
	out := make([]billing.LineAmount, len(p.Items))
	for i, it := range p.Items {
		out[i] = billing.LineAmount{
			Quantity:   it.Quantity,
			Rate:       it.Rate,
			TaxPercent: it.GSTPercent,
			Amount:     it.Amount,
			TaxAmount:  it.TaxAmount,
		}
	}
	return out
}

func (p *Purchase) Charges() billing.Charges {
	return billing.Charges{
		Transport: p.TransportCharges,
		Labour:    p.LabourCharges,
		Packing:   p.PackingCharges,
	}
}

func (p *Purchase) Totals() billing.PurchaseTotals {
	return billing.PurchaseTotals{
		Subtotal:          p.Subtotal,
		GSTAmount:         p.GSTAmount,
		AdditionalCharges: p.AdditionalCharges,
		TotalAmount:       p.TotalAmount,
	}
}

func (p *Purchase) ApplyTotals(t billing.PurchaseTotals, c billing.Charges) {
	p.Subtotal = t.Subtotal
	p.GSTAmount = t.GSTAmount
	p.AdditionalCharges = t.AdditionalCharges
	p.TotalAmount = t.TotalAmount
	p.TransportCharges = c.Transport
	p.LabourCharges = c.Labour
	p.PackingCharges = c.Packing
}

func (p *Purchase) SetPaid(paid decimal.Decimal) {
	p.PaidAmount = paid
	p.RemainingAmount = p.TotalAmount.Sub(paid)
	p.PaymentStatus = DerivePaymentStatus(paid, p.TotalAmount)
}
