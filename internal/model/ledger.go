package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

type MovementReason string

const (
	ReasonPurchase   MovementReason = "Purchase"
	ReasonInvoice    MovementReason = "Invoice"
	ReasonAdjustment MovementReason = "Adjustment"
	ReasonDamaged    MovementReason = "Damaged"
	ReasonReturn     MovementReason = "Return"
)

// ManualReason reports whether r may be used outside document flows.
func (r MovementReason) ManualReason() bool {
	switch r {
	case ReasonAdjustment, ReasonDamaged, ReasonReturn:
		return true
	}
	return false
}

type ReferenceType string

const (
	RefInvoice  ReferenceType = "Invoice"
	RefPurchase ReferenceType = "Purchase"
	RefManual   ReferenceType = "Manual"
)

// LedgerEntry is an append-only record of one stock change. Entries are only removed
// together with the document named by ReferenceID.
type LedgerEntry struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"productId"`
	Product   *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type"`
	// IN/OUT carry a positive quantity; ADJUST carries the signed difference applied.
	Quantity    int            `gorm:"not null" json:"quantity"`
	StockBefore int            `gorm:"not null" json:"stockBefore"`
	StockAfter  int            `gorm:"not null" json:"stockAfter"`
	Reason      MovementReason `gorm:"type:varchar(20);not null" json:"reason"`

	ReferenceID   *uuid.UUID          `gorm:"type:uuid;index" json:"referenceId,omitempty"`
	ReferenceType ReferenceType       `gorm:"type:varchar(20)" json:"referenceType,omitempty"`
	Rate          decimal.NullDecimal `gorm:"type:decimal(20,6)" json:"rate"`
	Notes         string              `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	CreatedBy string    `gorm:"type:varchar(255)" json:"createdBy"`
}

func (LedgerEntry) TableName() string {
	return "stock_ledger"
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SignedQuantity is the stock delta this entry represents.
func (e *LedgerEntry) SignedQuantity() int {
	if e.Type == MovementOut {
		return -e.Quantity
	}
	return e.Quantity
}
