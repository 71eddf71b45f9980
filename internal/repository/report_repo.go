package repository

import (
	"time"

	"brass-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardStats untuk overview cards
type DashboardStats struct {
	TotalProducts  int64           `json:"totalProducts"`
	LowStockCount  int64           `json:"lowStockCount"`
	StockValue     decimal.Decimal `json:"stockValue"`
	SalesToday     decimal.Decimal `json:"salesToday"`
	InvoicesToday  int64           `json:"invoicesToday"`
	Receivables    decimal.Decimal `json:"receivables"`
	Payables       decimal.Decimal `json:"payables"`
	TotalCustomers int64           `json:"totalCustomers"`
	TotalSuppliers int64           `json:"totalSuppliers"`
}

type CategoryValuation struct {
	Category      string          `json:"category"`
	ProductCount  int64           `json:"productCount"`
	Quantity      int64           `json:"quantity"`
	PurchaseValue decimal.Decimal `json:"purchaseValue"`
	SellingValue  decimal.Decimal `json:"sellingValue"`
}

type GSTSums struct {
	TaxableAmount decimal.Decimal
	CGST          decimal.Decimal
	SGST          decimal.Decimal
	IGST          decimal.Decimal
	InputTaxable  decimal.Decimal
	InputGST      decimal.Decimal
	InvoiceCount  int64
	PurchaseCount int64
}

type ProfitLossSums struct {
	Revenue           decimal.Decimal
	CostOfGoodsSold   decimal.Decimal
	Purchases         decimal.Decimal
	AdditionalCharges decimal.Decimal
}

// PartyBalance is a per-counterparty rollup of live documents.
type PartyBalance struct {
	PartyID     uuid.UUID
	Total       decimal.Decimal
	Outstanding decimal.Decimal
}

type ReportRepository interface {
	GetDashboardStats(dayStart, dayEnd time.Time) (*DashboardStats, error)
	StockValuation() ([]CategoryValuation, error)
	GSTSummary(from, to time.Time) (*GSTSums, error)
	ProfitLoss(from, to time.Time) (*ProfitLossSums, error)
	CustomerBalances(tx *gorm.DB) ([]PartyBalance, error)
	SupplierBalances(tx *gorm.DB) ([]PartyBalance, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) GetDashboardStats(dayStart, dayEnd time.Time) (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).Where("current_stock <= min_stock_level").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM(current_stock * purchase_price), 0)").
		Scan(&stats.StockValue).Error; err != nil {
		return nil, err
	}

	var today struct {
		Total decimal.Decimal
		Count int64
	}
	if err := r.db.Model(&model.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("invoice_type IN ? AND date >= ? AND date < ?", model.StockAffectingInvoiceTypes, dayStart, dayEnd).
		Scan(&today).Error; err != nil {
		return nil, err
	}
	stats.SalesToday = today.Total
	stats.InvoicesToday = today.Count

	if err := r.db.Model(&model.Invoice{}).
		Select("COALESCE(SUM(remaining_amount), 0)").
		Where("invoice_type IN ?", model.StockAffectingInvoiceTypes).
		Scan(&stats.Receivables).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Purchase{}).
		Select("COALESCE(SUM(remaining_amount), 0)").
		Scan(&stats.Payables).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Supplier{}).Count(&stats.TotalSuppliers).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *reportRepo) StockValuation() ([]CategoryValuation, error) {
	var rows []CategoryValuation
	err := r.db.Model(&model.Product{}).
		Select(`
			category,
			COUNT(*) AS product_count,
			COALESCE(SUM(current_stock), 0) AS quantity,
			COALESCE(SUM(current_stock * purchase_price), 0) AS purchase_value,
			COALESCE(SUM(current_stock * selling_price), 0) AS selling_value
		`).
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) GSTSummary(from, to time.Time) (*GSTSums, error) {
	var out GSTSums

	var output struct {
		TaxableAmount decimal.Decimal
		CGST          decimal.Decimal `gorm:"column:cgst"`
		SGST          decimal.Decimal `gorm:"column:sgst"`
		IGST          decimal.Decimal `gorm:"column:igst"`
		Count         int64
	}
	if err := r.db.Model(&model.Invoice{}).
		Select(`
			COALESCE(SUM(taxable_amount), 0) AS taxable_amount,
			COALESCE(SUM(cgst), 0) AS cgst,
			COALESCE(SUM(sgst), 0) AS sgst,
			COALESCE(SUM(igst), 0) AS igst,
			COUNT(*) AS count
		`).
		Where("invoice_type IN ? AND date >= ? AND date <= ?", model.StockAffectingInvoiceTypes, from, to).
		Scan(&output).Error; err != nil {
		return nil, err
	}

	var input struct {
		Subtotal  decimal.Decimal
		GSTAmount decimal.Decimal `gorm:"column:gst_amount"`
		Count     int64
	}
	if err := r.db.Model(&model.Purchase{}).
		Select("COALESCE(SUM(subtotal), 0) AS subtotal, COALESCE(SUM(gst_amount), 0) AS gst_amount, COUNT(*) AS count").
		Where("date >= ? AND date <= ?", from, to).
		Scan(&input).Error; err != nil {
		return nil, err
	}

	out.TaxableAmount = output.TaxableAmount
	out.CGST = output.CGST
	out.SGST = output.SGST
	out.IGST = output.IGST
	out.InvoiceCount = output.Count
	out.InputTaxable = input.Subtotal
	out.InputGST = input.GSTAmount
	out.PurchaseCount = input.Count
	return &out, nil
}

// ProfitLoss values cost of goods sold at each product's current purchase price.
func (r *reportRepo) ProfitLoss(from, to time.Time) (*ProfitLossSums, error) {
	var out ProfitLossSums

	if err := r.db.Model(&model.Invoice{}).
		Select("COALESCE(SUM(taxable_amount), 0)").
		Where("invoice_type IN ? AND date >= ? AND date <= ?", model.StockAffectingInvoiceTypes, from, to).
		Scan(&out.Revenue).Error; err != nil {
		return nil, err
	}

	if err := r.db.Table("invoice_items AS ii").
		Select("COALESCE(SUM(ii.quantity * p.purchase_price), 0)").
		Joins("JOIN invoices i ON i.id = ii.invoice_id").
		Joins("JOIN products p ON p.id = ii.product_id").
		Where("i.deleted_at IS NULL AND i.invoice_type IN ? AND i.date >= ? AND i.date <= ?", model.StockAffectingInvoiceTypes, from, to).
		Scan(&out.CostOfGoodsSold).Error; err != nil {
		return nil, err
	}

	var purchases struct {
		Subtotal          decimal.Decimal
		AdditionalCharges decimal.Decimal
	}
	if err := r.db.Model(&model.Purchase{}).
		Select("COALESCE(SUM(subtotal), 0) AS subtotal, COALESCE(SUM(additional_charges), 0) AS additional_charges").
		Where("date >= ? AND date <= ?", from, to).
		Scan(&purchases).Error; err != nil {
		return nil, err
	}
	out.Purchases = purchases.Subtotal
	out.AdditionalCharges = purchases.AdditionalCharges
	return &out, nil
}

// CustomerBalances rolls up stock-affecting invoices per customer. Quotation-like
// documents are not sales.
func (r *reportRepo) CustomerBalances(tx *gorm.DB) ([]PartyBalance, error) {
	var rows []PartyBalance
	err := tx.Model(&model.Invoice{}).
		Select("customer_id AS party_id, COALESCE(SUM(total_amount), 0) AS total, COALESCE(SUM(remaining_amount), 0) AS outstanding").
		Where("invoice_type IN ?", model.StockAffectingInvoiceTypes).
		Group("customer_id").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) SupplierBalances(tx *gorm.DB) ([]PartyBalance, error) {
	var rows []PartyBalance
	err := tx.Model(&model.Purchase{}).
		Select("supplier_id AS party_id, COALESCE(SUM(total_amount), 0) AS total, COALESCE(SUM(remaining_amount), 0) AS outstanding").
		Group("supplier_id").
		Scan(&rows).Error
	return rows, err
}
