package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is money received against an invoice or paid against a purchase.
type Payment struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_payments_document,priority:1" json:"documentId"`
	DocumentType ReferenceType   `gorm:"type:varchar(20);not null" json:"documentType"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	Mode         PaymentMode     `gorm:"type:varchar(10);not null" json:"mode"`
	Reference    string          `gorm:"type:varchar(100)" json:"reference,omitempty"`
	Note         string          `gorm:"type:text" json:"note,omitempty"`
	PaidAt       time.Time       `gorm:"not null;index:idx_payments_document,priority:2" json:"paidAt"`
	CreatedAt    time.Time       `json:"createdAt"`
	CreatedBy    string          `gorm:"type:varchar(255)" json:"createdBy"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
