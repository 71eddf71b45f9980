package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestInvoiceTypeAffectsStock(t *testing.T) {
	cases := map[InvoiceType]bool{
		InvoiceTax:             true,
		InvoiceRetail:          true,
		InvoiceEstimate:        false,
		InvoiceDeliveryChallan: false,
	}
	for typ, want := range cases {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
		if got := typ.AffectsStock(); got != want {
			t.Errorf("%q.AffectsStock() = %v, want %v", typ, got, want)
		}
	}
	if InvoiceType("Proforma").Valid() {
		t.Error("unknown type reported valid")
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	n := decimal.NewFromInt
	tests := []struct {
		paid, total int64
		want        PaymentStatus
	}{
		{0, 100, PaymentUnpaid},
		{40, 100, PaymentPartial},
		{100, 100, PaymentPaid},
		{0, 0, PaymentPaid},
	}
	for _, tt := range tests {
		if got := DerivePaymentStatus(n(tt.paid), n(tt.total)); got != tt.want {
			t.Errorf("DerivePaymentStatus(%d, %d) = %s, want %s", tt.paid, tt.total, got, tt.want)
		}
	}
}

func TestLedgerSignedQuantity(t *testing.T) {
	entries := []LedgerEntry{
		{Type: MovementIn, Quantity: 5},
		{Type: MovementOut, Quantity: 3},
		{Type: MovementAdjust, Quantity: -4},
		{Type: MovementAdjust, Quantity: 2},
	}
	sum := 0
	for i := range entries {
		sum += entries[i].SignedQuantity()
	}
	if sum != 0 {
		t.Fatalf("signed sum = %d, want 0", sum)
	}
}

func TestManualReason(t *testing.T) {
	if ReasonInvoice.ManualReason() || ReasonPurchase.ManualReason() {
		t.Fatal("document reasons must not be manual")
	}
	if !ReasonDamaged.ManualReason() {
		t.Fatal("Damaged should be a manual reason")
	}
}

func TestSetPaid(t *testing.T) {
	inv := Invoice{TotalAmount: decimal.NewFromInt(1062)}
	inv.SetPaid(decimal.NewFromInt(62))
	if inv.PaymentStatus != PaymentPartial || !inv.RemainingAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("got %s / %s", inv.PaymentStatus, inv.RemainingAmount)
	}
}
