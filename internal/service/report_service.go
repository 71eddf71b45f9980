package service

import (
	"time"

	"brass-inventory/internal/billing"
	"brass-inventory/internal/repository"

	"github.com/shopspring/decimal"
)

type StockValuationReport struct {
	Categories         []repository.CategoryValuation `json:"categories"`
	TotalQuantity      int64                          `json:"totalQuantity"`
	TotalPurchaseValue decimal.Decimal                `json:"totalPurchaseValue"`
	TotalSellingValue  decimal.Decimal                `json:"totalSellingValue"`
}

type GSTReport struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	InvoiceCount  int64           `json:"invoiceCount"`
	OutputTaxable decimal.Decimal `json:"outputTaxable"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	OutputGST     decimal.Decimal `json:"outputGst"`
	PurchaseCount int64           `json:"purchaseCount"`
	InputTaxable  decimal.Decimal `json:"inputTaxable"`
	InputGST      decimal.Decimal `json:"inputGst"`
	NetPayable    decimal.Decimal `json:"netPayable"`
}

type ProfitLossReport struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	Revenue           decimal.Decimal `json:"revenue"`
	CostOfGoodsSold   decimal.Decimal `json:"costOfGoodsSold"`
	GrossProfit       decimal.Decimal `json:"grossProfit"`
	Purchases         decimal.Decimal `json:"purchases"`
	AdditionalCharges decimal.Decimal `json:"additionalCharges"`
	NetProfit         decimal.Decimal `json:"netProfit"`
}

type ReportService interface {
	StockValuation() (*StockValuationReport, error)
	GSTReport(from, to time.Time) (*GSTReport, error)
	ProfitLoss(from, to time.Time) (*ProfitLossReport, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(rRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: rRepo}
}

func (s *reportService) StockValuation() (*StockValuationReport, error) {
	rows, err := s.reportRepo.StockValuation()
	if err != nil {
		return nil, err
	}
	out := &StockValuationReport{Categories: rows}
	for i := range rows {
		rows[i].PurchaseValue = billing.Round2(rows[i].PurchaseValue)
		rows[i].SellingValue = billing.Round2(rows[i].SellingValue)
		out.TotalQuantity += rows[i].Quantity
		out.TotalPurchaseValue = out.TotalPurchaseValue.Add(rows[i].PurchaseValue)
		out.TotalSellingValue = out.TotalSellingValue.Add(rows[i].SellingValue)
	}
	return out, nil
}

func checkRange(from, to time.Time) error {
	if to.Before(from) {
		return invalid("'to' must not be before 'from'")
	}
	return nil
}

// GSTReport nets output tax on sales against input tax on purchases.
func (s *reportService) GSTReport(from, to time.Time) (*GSTReport, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	sums, err := s.reportRepo.GSTSummary(from, to)
	if err != nil {
		return nil, err
	}
	output := sums.CGST.Add(sums.SGST).Add(sums.IGST)
	return &GSTReport{
		From:          from,
		To:            to,
		InvoiceCount:  sums.InvoiceCount,
		OutputTaxable: billing.Round2(sums.TaxableAmount),
		CGST:          billing.Round2(sums.CGST),
		SGST:          billing.Round2(sums.SGST),
		IGST:          billing.Round2(sums.IGST),
		OutputGST:     billing.Round2(output),
		PurchaseCount: sums.PurchaseCount,
		InputTaxable:  billing.Round2(sums.InputTaxable),
		InputGST:      billing.Round2(sums.InputGST),
		NetPayable:    billing.Round2(output.Sub(sums.InputGST)),
	}, nil
}

func (s *reportService) ProfitLoss(from, to time.Time) (*ProfitLossReport, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	sums, err := s.reportRepo.ProfitLoss(from, to)
	if err != nil {
		return nil, err
	}
	gross := sums.Revenue.Sub(sums.CostOfGoodsSold)
	return &ProfitLossReport{
		From:              from,
		To:                to,
		Revenue:           billing.Round2(sums.Revenue),
		CostOfGoodsSold:   billing.Round2(sums.CostOfGoodsSold),
		GrossProfit:       billing.Round2(gross),
		Purchases:         billing.Round2(sums.Purchases),
		AdditionalCharges: billing.Round2(sums.AdditionalCharges),
		NetProfit:         billing.Round2(gross.Sub(sums.AdditionalCharges)),
	}, nil
}
