package repository

import (
	"brass-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository interface {
	Create(tx *gorm.DB, purchase *model.Purchase) error
	FindAll(filter DocumentFilter) ([]model.Purchase, error)
	FindByID(id uuid.UUID) (*model.Purchase, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error)
	UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error
	ExistsBillNo(tx *gorm.DB, supplierID uuid.UUID, billNo string) (bool, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(tx *gorm.DB, purchase *model.Purchase) error {
	return tx.Omit("Supplier").Create(purchase).Error
}

func (r *purchaseRepo) FindAll(filter DocumentFilter) ([]model.Purchase, error) {
	var purchases []model.Purchase
	q := r.db.Preload("Supplier")
	if filter.PartyID != nil {
		q = q.Where("supplier_id = ?", *filter.PartyID)
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
	err := q.Order("date DESC, created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) FindByID(id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&model.Purchase{}).Where("id = ?", id).Updates(fields).Error
}

func (r *purchaseRepo) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.Purchase{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Purchase{}, "id = ?", id).Error
}

// ExistsBillNo only considers live purchases so a deleted bill can be re-entered.
func (r *purchaseRepo) ExistsBillNo(tx *gorm.DB, supplierID uuid.UUID, billNo string) (bool, error) {
	var n int64
	err := tx.Model(&model.Purchase{}).
		Where("supplier_id = ? AND bill_no = ?", supplierID, billNo).
		Count(&n).Error
	return n > 0, err
}
