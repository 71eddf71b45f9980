package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"brass-inventory/internal/lock"
	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"
	"brass-inventory/internal/ws"
	"brass-inventory/pkg/config"
	"brass-inventory/pkg/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var tester = Actor{ID: "u-1", Name: "Tester", Email: "tester@example.com"}

// recorder is a Notifier that keeps every published event.
type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(evt ws.Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	events    *recorder
	inventory InventoryService
	invoices  InvoiceService
	purchases PurchaseService
	parties   PartyService
	reports   ReportService
	dashboard DashboardService
	ledger    repository.LedgerRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(&config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "service.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	products := repository.NewProductRepo(db)
	ledger := repository.NewLedgerRepo(db)
	customers := repository.NewCustomerRepo(db)
	suppliers := repository.NewSupplierRepo(db)
	payments := repository.NewPaymentRepo(db)
	reports := repository.NewReportRepo(db)
	stock := NewStockKeeper(products, ledger)
	locker := lock.NewLocalLocker()
	rec := &recorder{}

	return &fixture{
		db:        db,
		events:    rec,
		inventory: NewInventoryService(products, ledger, stock, locker, db, rec),
		invoices:  NewInvoiceService(repository.NewInvoiceRepo(db), customers, products, payments, stock, locker, db, rec),
		purchases: NewPurchaseService(repository.NewPurchaseRepo(db), suppliers, products, payments, stock, locker, db, rec),
		parties:   NewPartyService(customers, suppliers, reports, db),
		reports:   NewReportService(reports),
		dashboard: NewDashboardService(ledger, reports, nil),
		ledger:    ledger,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func (f *fixture) product(t *testing.T, sku string, stock int, selling, purchase string) *model.Product {
	t.Helper()
	p := &model.Product{
		SKU:           sku,
		Name:          "Brass " + sku,
		Category:      "Fittings",
		Unit:          "pcs",
		PurchasePrice: dec(purchase),
		SellingPrice:  dec(selling),
		GSTPercent:    dec("18"),
		OpeningStock:  stock,
		MinStockLevel: 5,
	}
	if err := f.inventory.CreateProduct(context.Background(), p, tester); err != nil {
		t.Fatalf("create product %s: %v", sku, err)
	}
	return p
}

func (f *fixture) customer(t *testing.T, name string) *model.Customer {
	t.Helper()
	c := &model.Customer{Contact: model.Contact{Name: name, Phone: "9876543210"}}
	if err := f.parties.CreateCustomer(c, tester); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return c
}

func (f *fixture) supplier(t *testing.T, name string) *model.Supplier {
	t.Helper()
	s := &model.Supplier{Contact: model.Contact{Name: name, GSTIN: "27AAPFU0939F1ZV"}}
	if err := f.parties.CreateSupplier(s, tester); err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return s
}

func (f *fixture) stockOf(t *testing.T, p *model.Product) int {
	t.Helper()
	got, err := f.inventory.GetProduct(p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return got.CurrentStock
}

func (f *fixture) ledgerCount(t *testing.T, p *model.Product) int {
	t.Helper()
	entries, err := f.ledger.FindAll(repository.LedgerFilter{ProductID: &p.ID})
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	return len(entries)
}
