package service

import (
	"context"
	"fmt"

	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Movement describes one stock change to apply and record.
type Movement struct {
	ProductID     uuid.UUID
	Type          model.MovementType
	Quantity      int // positive for IN/OUT, signed difference for ADJUST
	Reason        model.MovementReason
	ReferenceID   *uuid.UUID
	ReferenceType model.ReferenceType
	Rate          decimal.NullDecimal
	Notes         string
	CreatedBy     string
}

// Delta is the signed change Movement applies to current stock.
func (m Movement) Delta() int {
	if m.Type == model.MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}

func (m Movement) check() error {
	switch m.Type {
	case model.MovementIn, model.MovementOut:
		if m.Quantity <= 0 {
			return invalid("quantity must be positive")
		}
	case model.MovementAdjust:
		if m.Quantity == 0 {
			return invalid("adjustment must change stock")
		}
	default:
		return invalid("unknown movement type %q", m.Type)
	}
	return nil
}

// StockKeeper owns every write to Product.CurrentStock and the stock ledger.
// Callers pass their own transaction and must hold the product lock for its duration.
type StockKeeper struct {
	products repository.ProductRepository
	ledger   repository.LedgerRepository
}

func NewStockKeeper(products repository.ProductRepository, ledger repository.LedgerRepository) *StockKeeper {
	return &StockKeeper{products: products, ledger: ledger}
}

// ApplyStockDelta locks the product row, adds delta and persists the result.
// Nothing is written when the result would be negative and allowNegative is false.
func (k *StockKeeper) ApplyStockDelta(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, allowNegative bool, updatedBy string) (int, error) {
	return k.applyDelta(ctx, tx, k.products.LockByID, productID, delta, allowNegative, updatedBy)
}

type lockFunc func(tx *gorm.DB, id uuid.UUID) (*model.Product, error)

func (k *StockKeeper) applyDelta(ctx context.Context, tx *gorm.DB, lockRow lockFunc, productID uuid.UUID, delta int, allowNegative bool, updatedBy string) (int, error) {
	product, err := lockRow(tx.WithContext(ctx), productID)
	if err != nil {
		return 0, lookupErr(err, "product "+productID.String())
	}
	newStock := product.CurrentStock + delta
	if newStock < 0 && !allowNegative {
		return product.CurrentStock, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, product.SKU, product.CurrentStock, -delta)
	}
	if err := k.products.UpdateStock(tx, productID, newStock, updatedBy); err != nil {
		return 0, err
	}
	return newStock, nil
}

// RecordMovement appends the ledger entry for a change that left stock at stockAfter.
func (k *StockKeeper) RecordMovement(tx *gorm.DB, m Movement, stockAfter int) (*model.LedgerEntry, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	entry := &model.LedgerEntry{
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		StockBefore:   stockAfter - m.Delta(),
		StockAfter:    stockAfter,
		Reason:        m.Reason,
		ReferenceID:   m.ReferenceID,
		ReferenceType: m.ReferenceType,
		Rate:          m.Rate,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
	}
	if err := k.ledger.Create(tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Move applies m and records it, so every mutation has exactly one ledger entry.
func (k *StockKeeper) Move(ctx context.Context, tx *gorm.DB, m Movement) (*model.LedgerEntry, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	after, err := k.ApplyStockDelta(ctx, tx, m.ProductID, m.Delta(), false, m.CreatedBy)
	if err != nil {
		return nil, err
	}
	return k.RecordMovement(tx, m, after)
}

// Reverse undoes every ledger entry written for a document and removes them.
// Soft-deleted products are still restored so the document can always be deleted.
func (k *StockKeeper) Reverse(ctx context.Context, tx *gorm.DB, referenceID uuid.UUID, updatedBy string) error {
	entries, err := k.ledger.FindByReference(tx, referenceID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := k.applyDelta(ctx, tx, k.products.LockByIDUnscoped, e.ProductID, -e.SignedQuantity(), false, updatedBy); err != nil {
			return err
		}
	}
	if _, err := k.ledger.DeleteByReference(tx, referenceID); err != nil {
		return err
	}
	return nil
}
