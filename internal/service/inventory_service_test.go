package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"
	"brass-inventory/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestCreateProductSetsOpeningStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "BV-100", 25, "120", "80")

	if got := f.stockOf(t, p); got != 25 {
		t.Fatalf("current stock = %d, want 25", got)
	}
	if n := f.ledgerCount(t, p); n != 0 {
		t.Fatalf("opening stock wrote %d ledger entries", n)
	}
	if err := f.inventory.VerifyProductLedger(p.ID); err != nil {
		t.Fatalf("VerifyProductLedger: %v", err)
	}
	if got := f.events.actions(); len(got) != 1 || got[0] != ws.ActionProductCreated {
		t.Fatalf("events = %v", got)
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	f := newFixture(t)
	f.product(t, "BV-100", 1, "10", "5")

	dup := &model.Product{SKU: "BV-100", Name: "Other", PurchasePrice: dec("1"), SellingPrice: dec("2"), GSTPercent: dec("0")}
	err := f.inventory.CreateProduct(context.Background(), dup, tester)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestCreateProductSurfacesLookupError(t *testing.T) {
	f := newFixture(t)
	errLookup := errors.New("lookup failed")
	if err := f.db.Callback().Query().Before("gorm:query").Register("test:fail_query", func(db *gorm.DB) {
		db.AddError(errLookup)
	}); err != nil {
		t.Fatal(err)
	}

	p := &model.Product{SKU: "BV-200", Name: "Valve", PurchasePrice: dec("1"), SellingPrice: dec("2"), GSTPercent: dec("0")}
	if err := f.inventory.CreateProduct(context.Background(), p, tester); !errors.Is(err, errLookup) {
		t.Fatalf("err = %v, want the lookup error", err)
	}
	if p.ID != uuid.Nil {
		t.Fatal("product should not be inserted when the SKU check fails")
	}
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	bad := &model.Product{SKU: "X", Name: "Bad", PurchasePrice: dec("-1"), SellingPrice: dec("2"), GSTPercent: dec("0")}
	if err := f.inventory.CreateProduct(context.Background(), bad, tester); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUpdateProductKeepsStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "BV-100", 12, "10", "5")

	updated, err := f.inventory.UpdateProduct(context.Background(), p.ID, &ProductUpdateRequest{
		Name:          "Brass valve 1/2in",
		Category:      "Valves",
		PurchasePrice: dec("6"),
		SellingPrice:  dec("11"),
		GSTPercent:    dec("18"),
		MinStockLevel: 3,
	}, tester)
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.CurrentStock != 12 || updated.Name != "Brass valve 1/2in" {
		t.Fatalf("updated = %+v", updated)
	}
	if got := f.stockOf(t, p); got != 12 {
		t.Fatalf("stock changed to %d", got)
	}
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unused := f.product(t, "UNUSED", 0, "10", "5")
	used := f.product(t, "USED", 10, "10", "5")

	if _, err := f.inventory.StockOut(ctx, &StockMovementRequest{ProductID: used.ID, Quantity: 1, Reason: model.ReasonDamaged}, tester); err != nil {
		t.Fatalf("StockOut: %v", err)
	}

	for _, p := range []*model.Product{unused, used} {
		if err := f.inventory.DeleteProduct(ctx, p.ID, tester); err != nil {
			t.Fatalf("DeleteProduct(%s): %v", p.SKU, err)
		}
		if _, err := f.inventory.GetProduct(p.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetProduct(%s) after delete: %v", p.SKU, err)
		}
	}

	var count int64
	f.db.Unscoped().Model(&model.Product{}).Where("id = ?", unused.ID).Count(&count)
	if count != 0 {
		t.Fatal("unreferenced product should be removed")
	}
	f.db.Unscoped().Model(&model.Product{}).Where("id = ?", used.ID).Count(&count)
	if count != 1 {
		t.Fatal("referenced product should be kept as a soft-deleted row")
	}
	if n := f.ledgerCount(t, used); n != 1 {
		t.Fatalf("ledger entries = %d, want 1", n)
	}
}

func TestManualMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "BV-100", 10, "10", "5")

	in, err := f.inventory.StockIn(ctx, &StockMovementRequest{ProductID: p.ID, Quantity: 5, Reason: model.ReasonReturn}, tester)
	if err != nil {
		t.Fatalf("StockIn: %v", err)
	}
	if in.StockBefore != 10 || in.StockAfter != 15 || in.Type != model.MovementIn {
		t.Fatalf("stock-in entry = %+v", in)
	}

	out, err := f.inventory.StockOut(ctx, &StockMovementRequest{ProductID: p.ID, Quantity: 4}, tester)
	if err != nil {
		t.Fatalf("StockOut: %v", err)
	}
	if out.Reason != model.ReasonAdjustment {
		t.Fatalf("default reason = %q", out.Reason)
	}
	if out.StockAfter != 11 {
		t.Fatalf("stock after = %d, want 11", out.StockAfter)
	}

	_, err = f.inventory.StockOut(ctx, &StockMovementRequest{ProductID: p.ID, Quantity: 12}, tester)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := f.stockOf(t, p); got != 11 {
		t.Fatalf("stock = %d after rejected stock-out, want 11", got)
	}
	if err := f.inventory.VerifyProductLedger(p.ID); err != nil {
		t.Fatalf("VerifyProductLedger: %v", err)
	}
}

func TestManualMovementRejectsDocumentReasons(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "BV-100", 10, "10", "5")

	for _, reason := range []model.MovementReason{model.ReasonPurchase, model.ReasonInvoice, "Gift"} {
		_, err := f.inventory.StockIn(context.Background(), &StockMovementRequest{ProductID: p.ID, Quantity: 1, Reason: reason}, tester)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("reason %q: err = %v, want ErrValidation", reason, err)
		}
	}
	if n := f.ledgerCount(t, p); n != 0 {
		t.Fatalf("ledger entries = %d, want 0", n)
	}
}

func TestAdjust(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "BV-100", 10, "10", "5")

	entry, err := f.inventory.Adjust(ctx, &AdjustRequest{ProductID: p.ID, Quantity: 10}, tester)
	if err != nil || entry != nil {
		t.Fatalf("no-op adjust = (%v, %v), want (nil, nil)", entry, err)
	}
	if n := f.ledgerCount(t, p); n != 0 {
		t.Fatalf("no-op adjust wrote %d entries", n)
	}

	entry, err = f.inventory.Adjust(ctx, &AdjustRequest{ProductID: p.ID, Quantity: 7, Reason: model.ReasonDamaged}, tester)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if entry.Type != model.MovementAdjust || entry.Quantity != -3 || entry.StockAfter != 7 {
		t.Fatalf("entry = %+v", entry)
	}

	if _, err := f.inventory.Adjust(ctx, &AdjustRequest{ProductID: p.ID, Quantity: -1}, tester); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative target: err = %v", err)
	}
	if err := f.inventory.VerifyProductLedger(p.ID); err != nil {
		t.Fatalf("VerifyProductLedger: %v", err)
	}
}

func TestVerifyProductLedgerDetectsDrift(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "BV-100", 10, "10", "5")

	if err := f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("current_stock", 99).Error; err != nil {
		t.Fatal(err)
	}
	if err := f.inventory.VerifyProductLedger(p.ID); !errors.Is(err, ErrConsistency) {
		t.Fatalf("err = %v, want ErrConsistency", err)
	}
}

func TestConcurrentStockOutNeverOversells(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "BV-100", 10, "10", "5")

	const workers = 20
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.inventory.StockOut(context.Background(), &StockMovementRequest{ProductID: p.ID, Quantity: 1}, tester)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 10 || rejected != 10 {
		t.Fatalf("ok=%d rejected=%d, want 10/10", ok, rejected)
	}
	if got := f.stockOf(t, p); got != 0 {
		t.Fatalf("stock = %d, want 0", got)
	}
	if err := f.inventory.VerifyProductLedger(p.ID); err != nil {
		t.Fatalf("VerifyProductLedger: %v", err)
	}
}

func TestStockReportAndLedgerFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	low := f.product(t, "LOW", 2, "10", "5")
	f.product(t, "OK", 50, "10", "5")

	if _, err := f.inventory.StockIn(ctx, &StockMovementRequest{ProductID: low.ID, Quantity: 1}, tester); err != nil {
		t.Fatal(err)
	}

	rows, err := f.inventory.StockReport()
	if err != nil {
		t.Fatalf("StockReport: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.SKU == "LOW" && (!r.LowStock || !r.StockValue.Equal(dec("15"))) {
			t.Fatalf("LOW row = %+v", r)
		}
		if r.SKU == "OK" && r.LowStock {
			t.Fatalf("OK row flagged low")
		}
	}

	lowOnly, err := f.inventory.GetProducts(repository.ProductFilter{LowStock: true})
	if err != nil || len(lowOnly) != 1 || lowOnly[0].SKU != "LOW" {
		t.Fatalf("low-stock filter = %v, %v", lowOnly, err)
	}

	entries, err := f.inventory.GetLedger(repository.LedgerFilter{ProductID: &low.ID})
	if err != nil || len(entries) != 1 {
		t.Fatalf("ledger = %v, %v", entries, err)
	}
}
