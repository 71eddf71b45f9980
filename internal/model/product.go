package model

import "github.com/shopspring/decimal"

type ProductKind string

const (
	KindFinished    ProductKind = "FINISHED"
	KindRawMaterial ProductKind = "RAW_MATERIAL"
)

type Product struct {
	BaseModel
	SKU      string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,max=50"`
	Name     string      `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Category string      `gorm:"type:varchar(100);index" json:"category" validate:"max=100"`
	Kind     ProductKind `gorm:"type:varchar(20);not null;default:'FINISHED'" json:"kind" validate:"omitempty,oneof=FINISHED RAW_MATERIAL"`
	Unit     string      `gorm:"type:varchar(20)" json:"unit" validate:"max=20"` // pcs, kg, set
	HSNCode  string      `gorm:"column:hsn_code;type:varchar(20)" json:"hsnCode" validate:"omitempty,numeric,max=8"`

	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"purchasePrice" validate:"dec_gte0,dec_places=6"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"sellingPrice" validate:"dec_gte0,dec_places=6"`
	GSTPercent    decimal.Decimal `gorm:"column:gst_percent;type:decimal(9,4);not null;default:0" json:"gstPercent" validate:"dec_gte0,dec_places=4"`

	OpeningStock  int `gorm:"not null;default:0" json:"openingStock" validate:"gte=0"`
	CurrentStock  int `gorm:"not null;default:0" json:"currentStock"`
	MinStockLevel int `gorm:"not null;default:0" json:"minStockLevel" validate:"gte=0"`
}

// IsLowStock reports whether stock is at or below the reorder level.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStockLevel
}

// StockValue is current stock valued at purchase price.
func (p *Product) StockValue() decimal.Decimal {
	return p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}
