package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contact fields shared by customers and suppliers.
type Contact struct {
	Name    string `gorm:"type:varchar(255);not null;index" json:"name" validate:"required,max=255"`
	Phone   string `gorm:"type:varchar(20)" json:"phone" validate:"omitempty,phone"`
	Email   string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	GSTIN   string `gorm:"column:gstin;type:varchar(15)" json:"gstin" validate:"omitempty,gstin"`
	Address string `gorm:"type:text" json:"address"`
	City    string `gorm:"type:varchar(100)" json:"city"`
	State   string `gorm:"type:varchar(100)" json:"state"`
}

// Customer aggregates are materialized by balance reconciliation, never by document flows.
type Customer struct {
	BaseModel
	Contact
	TotalSales         decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"totalSales"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"outstandingBalance"`
	ReconciledAt       *time.Time      `json:"reconciledAt,omitempty"`
}

type Supplier struct {
	BaseModel
	Contact
	TotalPurchases     decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"totalPurchases"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"outstandingBalance"`
	ReconciledAt       *time.Time      `json:"reconciledAt,omitempty"`
}
