package service

import (
	"context"
	"errors"
	"testing"

	"brass-inventory/internal/model"
)

func TestDeleteDocumentsAfterProductRetired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "ELB-15", 100, "120", "70")
	c := f.customer(t, "Shree Traders")
	s := f.supplier(t, "Jamnagar Metals")

	pu, err := f.purchases.CreatePurchase(ctx, &CreatePurchaseRequest{
		BillNo:     "JM/42",
		SupplierID: s.ID,
		Items:      []PurchaseItemInput{{ProductID: p.ID, Quantity: 10}},
	}, tester)
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	inv, err := f.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
		CustomerID: c.ID,
		Items:      []InvoiceItemInput{{ProductID: p.ID, Quantity: 10}},
	}, tester)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	// referenced, so this is a soft delete
	if err := f.inventory.DeleteProduct(ctx, p.ID, tester); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := f.inventory.GetProduct(p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProduct after delete: %v", err)
	}

	retiredStock := func() int {
		t.Helper()
		var got model.Product
		if err := f.db.Unscoped().First(&got, "id = ?", p.ID).Error; err != nil {
			t.Fatalf("load retired product: %v", err)
		}
		if !got.DeletedAt.Valid {
			t.Fatal("product should stay soft-deleted")
		}
		return got.CurrentStock
	}

	if err := f.invoices.DeleteInvoice(ctx, inv.ID, tester); err != nil {
		t.Fatalf("DeleteInvoice: %v", err)
	}
	if got := retiredStock(); got != 110 {
		t.Fatalf("stock after invoice delete = %d, want 110", got)
	}

	if err := f.purchases.DeletePurchase(ctx, pu.ID, tester); err != nil {
		t.Fatalf("DeletePurchase: %v", err)
	}
	if got := retiredStock(); got != 100 {
		t.Fatalf("stock after purchase delete = %d, want 100", got)
	}

	for _, id := range []interface{}{inv.ID, pu.ID} {
		var n int64
		f.db.Model(&model.LedgerEntry{}).Where("reference_id = ?", id).Count(&n)
		if n != 0 {
			t.Fatalf("ledger entries for %v = %d, want 0", id, n)
		}
	}
}
