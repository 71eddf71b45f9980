package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brass-inventory/internal/lock"
	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"
	"brass-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductUpdateRequest carries the fields PUT /products/:id may change. Stock is only
// changed through inventory operations and documents.
type ProductUpdateRequest struct {
	Name          string            `json:"name" validate:"required,max=255"`
	Category      string            `json:"category" validate:"max=100"`
	Kind          model.ProductKind `json:"kind" validate:"omitempty,oneof=FINISHED RAW_MATERIAL"`
	Unit          string            `json:"unit" validate:"max=20"`
	HSNCode       string            `json:"hsnCode" validate:"omitempty,numeric,max=8"`
	PurchasePrice decimal.Decimal   `json:"purchasePrice" validate:"dec_gte0,dec_places=6"`
	SellingPrice  decimal.Decimal   `json:"sellingPrice" validate:"dec_gte0,dec_places=6"`
	GSTPercent    decimal.Decimal   `json:"gstPercent" validate:"dec_gte0,dec_places=4"`
	MinStockLevel int               `json:"minStockLevel" validate:"gte=0"`
}

// StockMovementRequest is the body of stock-in and stock-out.
type StockMovementRequest struct {
	ProductID   uuid.UUID            `json:"productId" validate:"uuid_required"`
	Quantity    int                  `json:"quantity" validate:"gt=0"`
	Reason      model.MovementReason `json:"reason"`
	ReferenceID *uuid.UUID           `json:"referenceId"`
	Rate        decimal.NullDecimal  `json:"rate" validate:"omitempty,dec_gte0,dec_places=6"`
	Notes       string               `json:"notes"`
}

// AdjustRequest sets stock to an absolute level.
type AdjustRequest struct {
	ProductID uuid.UUID            `json:"productId" validate:"uuid_required"`
	Quantity  int                  `json:"quantity" validate:"gte=0"`
	Reason    model.MovementReason `json:"reason"`
	Notes     string               `json:"notes"`
}

type StockReportRow struct {
	ProductID     uuid.UUID         `json:"productId"`
	SKU           string            `json:"sku"`
	Name          string            `json:"name"`
	Category      string            `json:"category"`
	Kind          model.ProductKind `json:"kind"`
	Unit          string            `json:"unit"`
	CurrentStock  int               `json:"currentStock"`
	MinStockLevel int               `json:"minStockLevel"`
	LowStock      bool              `json:"lowStock"`
	PurchasePrice decimal.Decimal   `json:"purchasePrice"`
	StockValue    decimal.Decimal   `json:"stockValue"`
}

type InventoryService interface {
	CreateProduct(ctx context.Context, req *model.Product, actor Actor) error
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductUpdateRequest, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error
	GetProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)

	StockIn(ctx context.Context, req *StockMovementRequest, actor Actor) (*model.LedgerEntry, error)
	StockOut(ctx context.Context, req *StockMovementRequest, actor Actor) (*model.LedgerEntry, error)
	Adjust(ctx context.Context, req *AdjustRequest, actor Actor) (*model.LedgerEntry, error)

	GetLedger(filter repository.LedgerFilter) ([]model.LedgerEntry, error)
	StockReport() ([]StockReportRow, error)
	VerifyProductLedger(id uuid.UUID) error
}

type inventoryService struct {
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
	stock       *StockKeeper
	locker      lock.Locker
	db          *gorm.DB
	notifier    Notifier
}

func NewInventoryService(pRepo repository.ProductRepository, lRepo repository.LedgerRepository, stock *StockKeeper, locker lock.Locker, db *gorm.DB, notifier Notifier) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		ledgerRepo:  lRepo,
		stock:       stock,
		locker:      locker,
		db:          db,
		notifier:    notifier,
	}
}

func productPayload(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":           p.ID,
		"sku":          p.SKU,
		"name":         p.Name,
		"currentStock": p.CurrentStock,
		"lowStock":     p.IsLowStock(),
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *model.Product, actor Actor) error {
	req.SKU = strings.TrimSpace(req.SKU)
	if req.Kind == "" {
		req.Kind = model.KindFinished
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	existing, err := s.productRepo.FindBySKU(req.SKU)
	switch {
	case err == nil && existing.ID != uuid.Nil:
		return fmt.Errorf("%w: SKU %s already exists", ErrConflict, req.SKU)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	// opening stock is the baseline the ledger is measured against
	req.ID = uuid.Nil
	req.CurrentStock = req.OpeningStock
	req.CreatedBy = actor.auditID()
	req.UpdatedBy = actor.auditID()

	if err := s.productRepo.Create(s.db.WithContext(ctx), req); err != nil {
		return writeErr(err, "SKU "+req.SKU)
	}

	publish(s.notifier, ws.Event{
		Action:  ws.ActionProductCreated,
		Data:    productPayload(req),
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s created product '%s'", actor.displayName(), req.Name),
	})
	return nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductUpdateRequest, actor Actor) (*model.Product, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var updated *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			return lookupErr(err, "product")
		}

		existing.Name = req.Name
		existing.Category = req.Category
		if req.Kind != "" {
			existing.Kind = req.Kind
		}
		existing.Unit = req.Unit
		existing.HSNCode = req.HSNCode
		existing.PurchasePrice = req.PurchasePrice
		existing.SellingPrice = req.SellingPrice
		existing.GSTPercent = req.GSTPercent
		existing.MinStockLevel = req.MinStockLevel
		existing.UpdatedBy = actor.auditID()

		if err := s.productRepo.Update(tx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(s.notifier, ws.Event{
		Action:  ws.ActionProductUpdated,
		Data:    productPayload(updated),
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s updated product '%s'", actor.displayName(), updated.Name),
	})
	return updated, nil
}

// DeleteProduct removes the row when nothing refers to it and soft-deletes it otherwise,
// so ledger history and document lines keep a valid product.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return lookupErr(err, "product")
	}
	referenced, err := s.productRepo.IsReferenced(id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.productRepo.Delete(tx, id, actor.auditID(), !referenced)
	}); err != nil {
		return err
	}

	publish(s.notifier, ws.Event{
		Action:  ws.ActionProductDeleted,
		Data:    map[string]interface{}{"id": product.ID, "sku": product.SKU, "hardDeleted": !referenced},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s deleted product '%s'", actor.displayName(), product.Name),
	})
	return nil
}

func (s *inventoryService) GetProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(filter)
}

func (s *inventoryService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "product")
	}
	return product, nil
}

func manualReason(r model.MovementReason) (model.MovementReason, error) {
	if r == "" {
		return model.ReasonAdjustment, nil
	}
	if !r.ManualReason() {
		return "", invalid("reason %q is not allowed for manual movements", r)
	}
	return r, nil
}

func (s *inventoryService) StockIn(ctx context.Context, req *StockMovementRequest, actor Actor) (*model.LedgerEntry, error) {
	return s.manualMove(ctx, model.MovementIn, req, actor)
}

func (s *inventoryService) StockOut(ctx context.Context, req *StockMovementRequest, actor Actor) (*model.LedgerEntry, error) {
	return s.manualMove(ctx, model.MovementOut, req, actor)
}

func (s *inventoryService) manualMove(ctx context.Context, typ model.MovementType, req *StockMovementRequest, actor Actor) (*model.LedgerEntry, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	reason, err := manualReason(req.Reason)
	if err != nil {
		return nil, err
	}

	m := Movement{
		ProductID:     req.ProductID,
		Type:          typ,
		Quantity:      req.Quantity,
		Reason:        reason,
		ReferenceID:   req.ReferenceID,
		ReferenceType: model.RefManual,
		Rate:          req.Rate,
		Notes:         req.Notes,
		CreatedBy:     actor.auditID(),
	}
	return s.applyManual(ctx, m, actor)
}

// Adjust sets stock to req.Quantity. A request that matches current stock writes nothing
// and returns a nil entry.
func (s *inventoryService) Adjust(ctx context.Context, req *AdjustRequest, actor Actor) (*model.LedgerEntry, error) {
	if req.Quantity < 0 {
		return nil, invalid("target stock level cannot be negative")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	reason, err := manualReason(req.Reason)
	if err != nil {
		return nil, err
	}

	release, err := lockProducts(ctx, s.locker, req.ProductID)
	if err != nil {
		return nil, err
	}
	defer release()

	var entry *model.LedgerEntry
	var product *model.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.productRepo.LockByID(tx, req.ProductID)
		if err != nil {
			return lookupErr(err, "product")
		}
		delta := req.Quantity - p.CurrentStock
		if delta == 0 {
			return nil
		}
		entry, err = s.stock.Move(ctx, tx, Movement{
			ProductID:     p.ID,
			Type:          model.MovementAdjust,
			Quantity:      delta,
			Reason:        reason,
			ReferenceType: model.RefManual,
			Notes:         req.Notes,
			CreatedBy:     actor.auditID(),
		})
		if err != nil {
			return err
		}
		p.CurrentStock = entry.StockAfter
		product = p
		return nil
	})
	if err != nil || entry == nil {
		return nil, err
	}

	s.publishStockChange(product, entry, actor)
	return entry, nil
}

func (s *inventoryService) applyManual(ctx context.Context, m Movement, actor Actor) (*model.LedgerEntry, error) {
	release, err := lockProducts(ctx, s.locker, m.ProductID)
	if err != nil {
		return nil, err
	}
	defer release()

	var entry *model.LedgerEntry
	var product *model.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.stock.Move(ctx, tx, m)
		if err != nil {
			return err
		}
		product, err = s.productRepo.LockByID(tx, m.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishStockChange(product, entry, actor)
	return entry, nil
}

func (s *inventoryService) publishStockChange(p *model.Product, e *model.LedgerEntry, actor Actor) {
	verb := "adjusted"
	switch e.Type {
	case model.MovementIn:
		verb = "added"
	case model.MovementOut:
		verb = "removed"
	}
	data := productPayload(p)
	data["movement"] = map[string]interface{}{
		"id":          e.ID,
		"type":        e.Type,
		"quantity":    e.Quantity,
		"reason":      e.Reason,
		"stockBefore": e.StockBefore,
		"stockAfter":  e.StockAfter,
	}
	publish(s.notifier, ws.Event{
		Action:  ws.ActionStockChanged,
		Data:    data,
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s %s %d units of '%s' (%s)", actor.displayName(), verb, abs(e.Quantity), p.Name, e.Type),
	})
}

func (s *inventoryService) GetLedger(filter repository.LedgerFilter) ([]model.LedgerEntry, error) {
	return s.ledgerRepo.FindAll(filter)
}

func (s *inventoryService) StockReport() ([]StockReportRow, error) {
	products, err := s.productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	rows := make([]StockReportRow, 0, len(products))
	for i := range products {
		p := &products[i]
		rows = append(rows, StockReportRow{
			ProductID:     p.ID,
			SKU:           p.SKU,
			Name:          p.Name,
			Category:      p.Category,
			Kind:          p.Kind,
			Unit:          p.Unit,
			CurrentStock:  p.CurrentStock,
			MinStockLevel: p.MinStockLevel,
			LowStock:      p.IsLowStock(),
			PurchasePrice: p.PurchasePrice,
			StockValue:    p.StockValue(),
		})
	}
	return rows, nil
}

// VerifyProductLedger checks that the ledger explains every unit moved since opening stock.
func (s *inventoryService) VerifyProductLedger(id uuid.UUID) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return lookupErr(err, "product")
	}
	net, err := s.ledgerRepo.NetQuantity(id)
	if err != nil {
		return err
	}
	if want := product.CurrentStock - product.OpeningStock; net != want {
		return fmt.Errorf("%w: ledger nets %d for %s, stock moved %d", ErrConsistency, net, product.SKU, want)
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
