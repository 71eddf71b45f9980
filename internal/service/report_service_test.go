package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valve := f.product(t, "BV-100", 10, "500", "300")
	rod := f.product(t, "ROD-8", 0, "80", "40")
	c := f.customer(t, "Shree Traders")
	s := f.supplier(t, "Jamnagar Metals")

	day := onDate(2026, time.March, 10)
	if _, err := f.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
		CustomerID:      c.ID,
		Date:            day,
		Items:           []InvoiceItemInput{{ProductID: valve.ID, Quantity: 2}},
		DiscountPercent: dec("10"),
	}, tester); err != nil {
		t.Fatal(err)
	}
	if _, err := f.purchases.CreatePurchase(ctx, &CreatePurchaseRequest{
		BillNo:            "JM/1",
		SupplierID:        s.ID,
		Date:              day,
		Items:             []PurchaseItemInput{{ProductID: rod.ID, Quantity: 10, Rate: decPtr("50"), GST: decPtr("18")}},
		AdditionalCharges: ChargesInput{Transport: dec("20"), Labour: dec("10"), Packing: dec("5")},
	}, tester); err != nil {
		t.Fatal(err)
	}

	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)

	gst, err := f.reports.GSTReport(from, to)
	if err != nil {
		t.Fatalf("GSTReport: %v", err)
	}
	if gst.InvoiceCount != 1 || !gst.CGST.Equal(dec("81")) || !gst.OutputGST.Equal(dec("162")) {
		t.Fatalf("output side = %+v", gst)
	}
	if gst.PurchaseCount != 1 || !gst.InputGST.Equal(dec("90")) || !gst.NetPayable.Equal(dec("72")) {
		t.Fatalf("input side = %+v", gst)
	}

	pl, err := f.reports.ProfitLoss(from, to)
	if err != nil {
		t.Fatalf("ProfitLoss: %v", err)
	}
	// revenue 900, cost 2 x 300
	if !pl.Revenue.Equal(dec("900")) || !pl.CostOfGoodsSold.Equal(dec("600")) || !pl.GrossProfit.Equal(dec("300")) {
		t.Fatalf("profit-loss = %+v", pl)
	}
	if !pl.Purchases.Equal(dec("500")) || !pl.AdditionalCharges.Equal(dec("35")) || !pl.NetProfit.Equal(dec("265")) {
		t.Fatalf("profit-loss costs = %+v", pl)
	}

	empty, err := f.reports.GSTReport(to.AddDate(0, 1, 0), to.AddDate(0, 2, 0))
	if err != nil || empty.InvoiceCount != 0 || !empty.NetPayable.IsZero() {
		t.Fatalf("empty range = %+v, %v", empty, err)
	}
	if _, err := f.reports.ProfitLoss(to, from); !errors.Is(err, ErrValidation) {
		t.Fatalf("reversed range: err = %v", err)
	}

	val, err := f.reports.StockValuation()
	if err != nil {
		t.Fatalf("StockValuation: %v", err)
	}
	// valve 8 x 300 + rod 10 x 50
	if val.TotalQuantity != 18 || !val.TotalPurchaseValue.Equal(dec("2900")) || !val.TotalSellingValue.Equal(dec("4800")) {
		t.Fatalf("valuation = %+v", val)
	}
}

func TestDashboardWithoutCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "BV-100", 3, "10", "4")
	f.product(t, "BV-200", 50, "10", "4")
	c := f.customer(t, "Shree Traders")
	f.supplier(t, "Jamnagar Metals")

	if _, err := f.invoices.CreateInvoice(ctx, &CreateInvoiceRequest{
		CustomerID: c.ID,
		Items:      []InvoiceItemInput{{ProductID: p.ID, Quantity: 1, GST: decPtr("0")}},
	}, tester); err != nil {
		t.Fatal(err)
	}

	stats, err := f.dashboard.GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if stats.TotalProducts != 2 || stats.LowStockCount != 1 || stats.TotalCustomers != 1 || stats.TotalSuppliers != 1 {
		t.Fatalf("counts = %+v", stats)
	}
	if stats.InvoicesToday != 1 {
		t.Fatalf("invoices today = %d", stats.InvoicesToday)
	}
	// (2 + 50) x 4
	if !stats.StockValue.Equal(dec("208")) {
		t.Fatalf("stock value = %s", stats.StockValue)
	}

	movement, err := f.dashboard.GetStockMovement(7)
	if err != nil {
		t.Fatalf("GetStockMovement: %v", err)
	}
	if len(movement) != 1 || movement[0].Outbound != 1 {
		t.Fatalf("movement = %+v", movement)
	}
}
