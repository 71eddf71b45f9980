package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Domestic GST is split evenly between the central and state components.
var (
	CGSTPercent = decimal.NewFromInt(9)
	SGSTPercent = decimal.NewFromInt(9)
)

// InvoiceTotals are the computed aggregates of a sales document.
type InvoiceTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	TotalGST      decimal.Decimal `json:"totalGst"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

// Charges are purchase surcharges added on top of goods and tax.
type Charges struct {
	Transport decimal.Decimal `json:"transport"`
	Labour    decimal.Decimal `json:"labour"`
	Packing   decimal.Decimal `json:"packing"`
}

// Total sums the three surcharges.
func (c Charges) Total() decimal.Decimal {
	return c.Transport.Add(c.Labour).Add(c.Packing)
}

// PurchaseTotals are the computed aggregates of a supplier bill.
type PurchaseTotals struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	GSTAmount         decimal.Decimal `json:"gstAmount"`
	AdditionalCharges decimal.Decimal `json:"additionalCharges"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
}

// ComputeInvoiceTotals applies the discount and the fixed CGST/SGST split.
// A positive flat discount takes precedence over discountPercent.
func ComputeInvoiceTotals(items []LineAmount, discount, discountPercent decimal.Decimal) (InvoiceTotals, error) {
	if discount.IsNegative() || discountPercent.IsNegative() {
		return InvoiceTotals{}, fmt.Errorf("%w: discount must not be negative", ErrInvalidInput)
	}
	if discountPercent.GreaterThan(hundred) {
		return InvoiceTotals{}, fmt.Errorf("%w: discount percent must not exceed 100", ErrInvalidInput)
	}

	subtotal, _ := sumAmounts(items)

	effective := discount
	if !discount.IsPositive() {
		effective = percentOf(subtotal, discountPercent)
	}
	if effective.GreaterThan(subtotal) {
		return InvoiceTotals{}, fmt.Errorf("%w: discount exceeds subtotal", ErrInvalidInput)
	}

	taxable := subtotal.Sub(effective)
	cgst := percentOf(taxable, CGSTPercent)
	sgst := percentOf(taxable, SGSTPercent)

	return InvoiceTotals{
		Subtotal:      subtotal,
		Discount:      effective,
		TaxableAmount: taxable,
		CGST:          cgst,
		SGST:          sgst,
		IGST:          decimal.Zero,
		TotalGST:      cgst.Add(sgst),
		TotalAmount:   Round2(taxable.Add(cgst).Add(sgst)),
	}, nil
}

// ComputePurchaseTotals uses per-item tax and adds the surcharges.
func ComputePurchaseTotals(items []LineAmount, charges Charges) (PurchaseTotals, error) {
	if charges.Transport.IsNegative() || charges.Labour.IsNegative() || charges.Packing.IsNegative() {
		return PurchaseTotals{}, fmt.Errorf("%w: additional charges must not be negative", ErrInvalidInput)
	}

	subtotal, gst := sumAmounts(items)
	extra := charges.Total()

	return PurchaseTotals{
		Subtotal:          subtotal,
		GSTAmount:         gst,
		AdditionalCharges: extra,
		TotalAmount:       Round2(subtotal.Add(gst).Add(extra)),
	}, nil
}

// VerifyInvoice recomputes totals from items and compares them with stored.
func VerifyInvoice(items []LineAmount, stored InvoiceTotals) error {
	// the stored discount is already the effective flat amount
	got, err := ComputeInvoiceTotals(items, stored.Discount, decimal.Zero)
	if err != nil {
		return err
	}
	if !got.Subtotal.Equal(stored.Subtotal) || !got.TotalGST.Equal(stored.TotalGST) || !got.TotalAmount.Equal(stored.TotalAmount) {
		return fmt.Errorf("%w: invoice total %s, recomputed %s", ErrConsistency, stored.TotalAmount, got.TotalAmount)
	}
	return nil
}

// VerifyPurchase recomputes purchase totals and compares them with stored.
func VerifyPurchase(items []LineAmount, charges Charges, stored PurchaseTotals) error {
	got, err := ComputePurchaseTotals(items, charges)
	if err != nil {
		return err
	}
	if !got.Subtotal.Equal(stored.Subtotal) || !got.GSTAmount.Equal(stored.GSTAmount) || !got.TotalAmount.Equal(stored.TotalAmount) {
		return fmt.Errorf("%w: purchase total %s, recomputed %s", ErrConsistency, stored.TotalAmount, got.TotalAmount)
	}
	return nil
}
