package repository

import (
	"brass-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(tx *gorm.DB, payment *model.Payment) error
	FindByDocument(documentID uuid.UUID) ([]model.Payment, error)
	SumByDocument(tx *gorm.DB, documentID uuid.UUID) (decimal.Decimal, error)
	DeleteByDocument(tx *gorm.DB, documentID uuid.UUID) error
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Create(tx *gorm.DB, payment *model.Payment) error {
	return tx.Create(payment).Error
}

func (r *paymentRepo) FindByDocument(documentID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Where("document_id = ?", documentID).Order("paid_at ASC, created_at ASC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) SumByDocument(tx *gorm.DB, documentID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("document_id = ?", documentID).
		Scan(&sum).Error
	return sum, err
}

func (r *paymentRepo) DeleteByDocument(tx *gorm.DB, documentID uuid.UUID) error {
	return tx.Where("document_id = ?", documentID).Delete(&model.Payment{}).Error
}
