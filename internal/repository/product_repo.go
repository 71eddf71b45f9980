package repository

import (
	"brass-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows FindAll. Zero values mean "no filter".
type ProductFilter struct {
	Kind     model.ProductKind
	Category string
	Search   string
	LowStock bool
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(filter ProductFilter) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	LockByIDUnscoped(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	Update(tx *gorm.DB, product *model.Product) error
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	UpdatePurchasePrice(tx *gorm.DB, id uuid.UUID, price decimal.Decimal, updatedBy string) error
	IsReferenced(id uuid.UUID) (bool, error)
	Delete(tx *gorm.DB, id uuid.UUID, deletedBy string, hard bool) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindAll(filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.Model(&model.Product{})
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR sku LIKE ?", like, like)
	}
	if filter.LowStock {
		q = q.Where("current_stock <= min_stock_level")
	}
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Unscoped().First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockByID reads the row with SELECT ... FOR UPDATE inside tx.
func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockByIDUnscoped is LockByID that also finds soft-deleted products.
// Reversing a document's movements needs it after the product was retired.
func (r *productRepo) LockByIDUnscoped(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.LockByID(tx.Unscoped(), id)
}

// Update writes descriptive and pricing fields; stock columns are owned by UpdateStock.
func (r *productRepo) Update(tx *gorm.DB, product *model.Product) error {
	return tx.Model(product).
		Select("name", "category", "kind", "unit", "hsn_code", "purchase_price", "selling_price", "gst_percent", "min_stock_level", "updated_by").
		Updates(product).Error
}

// UpdateStock menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi.
// Only StockKeeper calls it, after locking the row, so soft-deleted rows are included.
func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Unscoped().Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_stock": newStock,
			"updated_by":    updatedBy,
		}).Error
}

func (r *productRepo) UpdatePurchasePrice(tx *gorm.DB, id uuid.UUID, price decimal.Decimal, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"purchase_price": price,
			"updated_by":     updatedBy,
		}).Error
}

// IsReferenced reports whether any ledger entry or document line points at the product.
func (r *productRepo) IsReferenced(id uuid.UUID) (bool, error) {
	for _, m := range []interface{}{&model.LedgerEntry{}, &model.InvoiceItem{}, &model.PurchaseItem{}} {
		var n int64
		if err := r.db.Model(m).Where("product_id = ?", id).Limit(1).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *productRepo) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string, hard bool) error {
	if hard {
		return tx.Unscoped().Delete(&model.Product{}, "id = ?", id).Error
	}
	if err := tx.Model(&model.Product{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Product{}, "id = ?", id).Error
}
