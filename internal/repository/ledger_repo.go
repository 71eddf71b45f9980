package repository

import (
	"time"

	"brass-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerFilter struct {
	ProductID   *uuid.UUID
	ReferenceID *uuid.UUID
	From, To    *time.Time
	Limit       int
}

type LedgerRepository interface {
	Create(tx *gorm.DB, entry *model.LedgerEntry) error
	FindByReference(tx *gorm.DB, referenceID uuid.UUID) ([]model.LedgerEntry, error)
	DeleteByReference(tx *gorm.DB, referenceID uuid.UUID) (int64, error)
	FindAll(filter LedgerFilter) ([]model.LedgerEntry, error)
	NetQuantity(productID uuid.UUID) (int, error)
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
	Adjusted int    `json:"adjusted"`
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

func (r *ledgerRepo) Create(tx *gorm.DB, entry *model.LedgerEntry) error {
	return tx.Create(entry).Error
}

func (r *ledgerRepo) FindByReference(tx *gorm.DB, referenceID uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := tx.Where("reference_id = ?", referenceID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}

func (r *ledgerRepo) DeleteByReference(tx *gorm.DB, referenceID uuid.UUID) (int64, error) {
	res := tx.Where("reference_id = ?", referenceID).Delete(&model.LedgerEntry{})
	return res.RowsAffected, res.Error
}

func (r *ledgerRepo) FindAll(filter LedgerFilter) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	q := r.db.Preload("Product")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.ReferenceID != nil {
		q = q.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// NetQuantity sums the signed deltas recorded for a product.
func (r *ledgerRepo) NetQuantity(productID uuid.UUID) (int, error) {
	var net int
	err := r.db.Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN -quantity ELSE quantity END), 0)", model.MovementOut).
		Where("product_id = ?", productID).
		Scan(&net).Error
	return net, err
}

func (r *ledgerRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Query untuk aggregate ledger per hari
	rows, err := r.db.Model(&model.LedgerEntry{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound,
			COALESCE(SUM(CASE WHEN type = 'ADJUST' THEN quantity ELSE 0 END), 0) as adjusted
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound, &data.Adjusted); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}
