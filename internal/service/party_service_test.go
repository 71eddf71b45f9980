package service

import (
	"context"
	"errors"
	"testing"

	"brass-inventory/internal/model"
)

func TestCustomerContactCleanup(t *testing.T) {
	f := newFixture(t)

	c := &model.Customer{Contact: model.Contact{Name: "  Patel Hardware ", Phone: "98765 43210", GSTIN: "27aapfu0939f1zv"}}
	c.TotalSales = dec("999")
	if err := f.parties.CreateCustomer(c, tester); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	got, err := f.parties.GetCustomer(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Patel Hardware" || got.Phone != "+919876543210" || got.GSTIN != "27AAPFU0939F1ZV" {
		t.Fatalf("contact = %+v", got.Contact)
	}
	if !got.TotalSales.IsZero() {
		t.Fatalf("client-supplied aggregate kept: %s", got.TotalSales)
	}

	bad := &model.Customer{Contact: model.Contact{Name: "X", Phone: "12"}}
	if err := f.parties.CreateCustomer(bad, tester); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad phone: err = %v", err)
	}

	updated, err := f.parties.UpdateCustomer(c.ID, &model.Contact{Name: "Patel Hardware & Sons", City: "Jamnagar"}, tester)
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if updated.Name != "Patel Hardware & Sons" || updated.City != "Jamnagar" {
		t.Fatalf("updated = %+v", updated.Contact)
	}

	list, err := f.parties.GetCustomers("sons")
	if err != nil || len(list) != 1 {
		t.Fatalf("search = %v, %v", list, err)
	}

	if err := f.parties.DeleteCustomer(c.ID, tester); err != nil {
		t.Fatal(err)
	}
	if _, err := f.parties.GetCustomer(c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: %v", err)
	}
}

func TestSupplierCRUD(t *testing.T) {
	f := newFixture(t)
	s := f.supplier(t, "Jamnagar Metals")

	if _, err := f.parties.UpdateSupplier(s.ID, &model.Contact{Name: ""}, tester); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty name: err = %v", err)
	}
	if _, err := f.parties.UpdateSupplier(s.ID, &model.Contact{Name: "Jamnagar Metals", GSTIN: "BAD"}, tester); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad gstin: err = %v", err)
	}
	if err := f.parties.DeleteSupplier(s.ID, tester); err != nil {
		t.Fatal(err)
	}
	if err := f.parties.DeleteSupplier(s.ID, tester); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestReconcileBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "BV-100", 50, "500", "300")
	c := f.customer(t, "Shree Traders")
	idle := f.customer(t, "Idle Customer")
	s := f.supplier(t, "Jamnagar Metals")

	if _, err := f.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
		CustomerID:      c.ID,
		Items:           []InvoiceItemInput{{ProductID: p.ID, Quantity: 2}},
		DiscountPercent: dec("10"),
		PaidAmount:      dec("62"),
	}, tester); err != nil {
		t.Fatal(err)
	}
	// quotations are not sales
	if _, err := f.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
		CustomerID:  c.ID,
		InvoiceType: model.InvoiceEstimate,
		Items:       []InvoiceItemInput{{ProductID: p.ID, Quantity: 4}},
	}, tester); err != nil {
		t.Fatal(err)
	}
	if _, err := f.purchases.CreatePurchase(ctx, &CreatePurchaseRequest{
		BillNo:            "JM/1",
		SupplierID:        s.ID,
		Items:             []PurchaseItemInput{{ProductID: p.ID, Quantity: 10, Rate: decPtr("50"), GST: decPtr("18")}},
		AdditionalCharges: ChargesInput{Transport: dec("20"), Labour: dec("10"), Packing: dec("5")},
	}, tester); err != nil {
		t.Fatal(err)
	}

	// document flows leave aggregates alone
	before, _ := f.parties.GetCustomer(c.ID)
	if !before.TotalSales.IsZero() {
		t.Fatalf("total sales changed inline: %s", before.TotalSales)
	}

	res, err := f.parties.ReconcileBalances(ctx)
	if err != nil {
		t.Fatalf("ReconcileBalances: %v", err)
	}
	if res.Customers != 1 || res.Suppliers != 1 {
		t.Fatalf("result = %+v", res)
	}

	got, _ := f.parties.GetCustomer(c.ID)
	if !got.TotalSales.Equal(dec("1062")) || !got.OutstandingBalance.Equal(dec("1000")) || got.ReconciledAt == nil {
		t.Fatalf("customer totals = %s / %s", got.TotalSales, got.OutstandingBalance)
	}
	quiet, _ := f.parties.GetCustomer(idle.ID)
	if !quiet.TotalSales.IsZero() || quiet.ReconciledAt == nil {
		t.Fatalf("idle customer = %s, reconciled %v", quiet.TotalSales, quiet.ReconciledAt)
	}
	sup, _ := f.parties.GetSupplier(s.ID)
	if !sup.TotalPurchases.Equal(dec("625")) || !sup.OutstandingBalance.Equal(dec("625")) {
		t.Fatalf("supplier totals = %s / %s", sup.TotalPurchases, sup.OutstandingBalance)
	}
}
