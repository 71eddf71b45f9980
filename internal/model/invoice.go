package model

import (
	"time"

	"brass-inventory/internal/billing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceType string

const (
	InvoiceTax             InvoiceType = "Tax Invoice"
	InvoiceRetail          InvoiceType = "Retail Invoice"
	InvoiceEstimate        InvoiceType = "Estimate"
	InvoiceDeliveryChallan InvoiceType = "Delivery Challan"
)

func (t InvoiceType) Valid() bool {
	switch t {
	case InvoiceTax, InvoiceRetail, InvoiceEstimate, InvoiceDeliveryChallan:
		return true
	}
	return false
}

// AffectsStock is false for quotation-like documents.
func (t InvoiceType) AffectsStock() bool {
	return t != InvoiceEstimate && t != InvoiceDeliveryChallan
}

// StockAffectingInvoiceTypes lists the types that move inventory and count as sales.
var StockAffectingInvoiceTypes = []InvoiceType{InvoiceTax, InvoiceRetail}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "Unpaid"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
)

// DerivePaymentStatus maps paid/total to a status. It never trusts a client value.
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case !paid.IsPositive():
		if !total.IsPositive() {
			return PaymentPaid
		}
		return PaymentUnpaid
	case paid.LessThan(total):
		return PaymentPartial
	default:
		return PaymentPaid
	}
}

type Invoice struct {
	BaseModel
	InvoiceNumber string        `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoiceNumber"`
	CustomerID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"customerId"`
	Customer      *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Date          time.Time     `gorm:"not null;index" json:"date"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	InvoiceType   InvoiceType   `gorm:"type:varchar(30);not null;index" json:"invoiceType"`
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`

	Subtotal        decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"discount"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0" json:"discountPercent"`
	TaxableAmount   decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"taxableAmount"`
	CGST            decimal.Decimal `gorm:"column:cgst;type:decimal(20,6);not null" json:"cgst"`
	SGST            decimal.Decimal `gorm:"column:sgst;type:decimal(20,6);not null" json:"sgst"`
	IGST            decimal.Decimal `gorm:"column:igst;type:decimal(20,6);not null;default:0" json:"igst"`
	TotalGST        decimal.Decimal `gorm:"column:total_gst;type:decimal(20,6);not null" json:"totalGst"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"totalAmount"`

	PaidAmount      decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"paidAmount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"remainingAmount"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(10);not null;default:'Unpaid'" json:"paymentStatus"`

	Notes string `gorm:"type:text" json:"notes"`
}

type InvoiceItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;not null;index" json:"invoiceId"`
	LineNo      int       `gorm:"not null" json:"lineNo"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	ProductName string    `gorm:"type:varchar(255)" json:"productName"`
	HSNCode     string    `gorm:"column:hsn_code;type:varchar(20)" json:"hsnCode,omitempty"`

	Quantity   int             `gorm:"not null" json:"quantity"`
	Rate       decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"rate"`
	GSTPercent decimal.Decimal `gorm:"column:gst_percent;type:decimal(9,4);not null;default:0" json:"gst"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"taxAmount"`
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

// LineAmounts returns the priced view of the stored items.
func (inv *Invoice) LineAmounts() []billing.LineAmount {
	out := make([]billing.LineAmount, len(inv.Items))
	for i, it := range inv.Items {
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

// Totals returns the stored aggregates.
func (inv *Invoice) Totals() billing.InvoiceTotals {
	return billing.InvoiceTotals{
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		TaxableAmount: inv.TaxableAmount,
		CGST:          inv.CGST,
		SGST:          inv.SGST,
		IGST:          inv.IGST,
		TotalGST:      inv.TotalGST,
		TotalAmount:   inv.TotalAmount,
	}
}

// ApplyTotals copies computed aggregates onto the header.
func (inv *Invoice) ApplyTotals(t billing.InvoiceTotals) {
	inv.Subtotal = t.Subtotal
	inv.Discount = t.Discount
	inv.TaxableAmount = t.TaxableAmount
	inv.CGST = t.CGST
	inv.SGST = t.SGST
	inv.IGST = t.IGST
	inv.TotalGST = t.TotalGST
	inv.TotalAmount = t.TotalAmount
}

// SetPaid records the accumulated payments and derives the remaining balance and status.
func (inv *Invoice) SetPaid(paid decimal.Decimal) {
	inv.PaidAmount = paid
	inv.RemainingAmount = inv.TotalAmount.Sub(paid)
	inv.PaymentStatus = DerivePaymentStatus(paid, inv.TotalAmount)
}
