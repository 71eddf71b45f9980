package repository

import (
	"time"

	"brass-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentFilter narrows invoice and purchase listings.
type DocumentFilter struct {
	PartyID       *uuid.UUID
	From, To      *time.Time
	PaymentStatus model.PaymentStatus
	InvoiceType   model.InvoiceType
}

type InvoiceRepository interface {
	Create(tx *gorm.DB, invoice *model.Invoice) error
	FindAll(filter DocumentFilter) ([]model.Invoice, error)
	FindByID(id uuid.UUID) (*model.Invoice, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Invoice, error)
	UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error
	CountNumbersWithPrefix(tx *gorm.DB, prefix string) (int64, error)
	ExistsNumber(tx *gorm.DB, number string) (bool, error)
}

type invoiceRepo struct {
	db *gorm.DB
}

func NewInvoiceRepo(db *gorm.DB) InvoiceRepository {
	return &invoiceRepo{db}
}

func (r *invoiceRepo) Create(tx *gorm.DB, invoice *model.Invoice) error {
	return tx.Omit("Customer").Create(invoice).Error
}

func (r *invoiceRepo) FindAll(filter DocumentFilter) ([]model.Invoice, error) {
	var invoices []model.Invoice
	q := r.db.Preload("Customer")
	if filter.PartyID != nil {
		q = q.Where("customer_id = ?", *filter.PartyID)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.InvoiceType != "" {
		q = q.Where("invoice_type = ?", filter.InvoiceType)
	}
	err := q.Order("date DESC, created_at DESC").Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) FindByID(id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepo) UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&model.Invoice{}).Where("id = ?", id).Updates(fields).Error
}

// Delete soft-deletes the header; items stay for audit and the number is never reused.
func (r *invoiceRepo) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.Invoice{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepo) CountNumbersWithPrefix(tx *gorm.DB, prefix string) (int64, error) {
	var n int64
	err := tx.Unscoped().Model(&model.Invoice{}).Where("invoice_number LIKE ?", prefix+"%").Count(&n).Error
	return n, err
}

func (r *invoiceRepo) ExistsNumber(tx *gorm.DB, number string) (bool, error) {
	var n int64
	err := tx.Unscoped().Model(&model.Invoice{}).Where("invoice_number = ?", number).Count(&n).Error
	return n > 0, err
}
