package service

import (
	"context"
	"fmt"
	"strings"

	"brass-inventory/internal/billing"
	"brass-inventory/internal/lock"
	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"
	"brass-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
	// Rate and GST default to the product's purchase price and GST percent.
	Rate *decimal.Decimal `json:"rate" validate:"omitempty,dec_gte0,dec_places=6"`
	GST  *decimal.Decimal `json:"gst" validate:"omitempty,dec_gte0,dec_places=4"`
}

type ChargesInput struct {
	Transport decimal.Decimal `json:"transport" validate:"dec_gte0,dec_places=6"`
	Labour    decimal.Decimal `json:"labour" validate:"dec_gte0,dec_places=6"`
	Packing   decimal.Decimal `json:"packing" validate:"dec_gte0,dec_places=6"`
}

type CreatePurchaseRequest struct {
	BillNo            string              `json:"billNo" validate:"required,max=50"`
	SupplierID        uuid.UUID           `json:"supplierId" validate:"uuid_required"`
	Date              *Date               `json:"date"`
	Items             []PurchaseItemInput `json:"items" validate:"required,min=1,dive"`
	AdditionalCharges ChargesInput        `json:"additionalCharges"`
	PaymentMode       model.PaymentMode   `json:"paymentMode"`
	PaidAmount        decimal.Decimal     `json:"paidAmount" validate:"dec_gte0,dec_places=6"`
	Notes             string              `json:"notes"`
}

type PurchaseService interface {
	CreatePurchase(ctx context.Context, req *CreatePurchaseRequest, actor Actor) (*model.Purchase, error)
	UpdatePurchase(ctx context.Context, id uuid.UUID, patch Patch, actor Actor) (*model.Purchase, error)
	DeletePurchase(ctx context.Context, id uuid.UUID, actor Actor) error
	RecordPayment(ctx context.Context, id uuid.UUID, req *PaymentRequest, actor Actor) (*model.Purchase, error)
	GetPurchases(filter repository.DocumentFilter) ([]model.Purchase, error)
	GetPurchase(id uuid.UUID) (*model.Purchase, error)
	GetPayments(id uuid.UUID) ([]model.Payment, error)
	VerifyPurchase(id uuid.UUID) error
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	paymentRepo  repository.PaymentRepository
	stock        *StockKeeper
	locker       lock.Locker
	db           *gorm.DB
	notifier     Notifier
}

func NewPurchaseService(
	puRepo repository.PurchaseRepository,
	sRepo repository.SupplierRepository,
	pRepo repository.ProductRepository,
	payRepo repository.PaymentRepository,
	stock *StockKeeper,
	locker lock.Locker,
	db *gorm.DB,
	notifier Notifier,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: puRepo,
		supplierRepo: sRepo,
		productRepo:  pRepo,
		paymentRepo:  payRepo,
		stock:        stock,
		locker:       locker,
		db:           db,
		notifier:     notifier,
	}
}

func (s *purchaseService) CreatePurchase(ctx context.Context, req *CreatePurchaseRequest, actor Actor) (*model.Purchase, error) {
	req.BillNo = strings.TrimSpace(req.BillNo)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	mode, err := paymentMode(req.PaymentMode)
	if err != nil {
		return nil, err
	}

	supplier, err := s.supplierRepo.FindByID(req.SupplierID)
	if err != nil {
		return nil, lookupErr(err, "supplier")
	}

	keys := []string{"purchase-bill:" + supplier.ID.String() + ":" + req.BillNo}
	for _, it := range req.Items {
		keys = append(keys, productKey(it.ProductID))
	}
	release, err := lockKeys(ctx, s.locker, keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	date := documentDate(req.Date)
	charges := billing.Charges{
		Transport: req.AdditionalCharges.Transport,
		Labour:    req.AdditionalCharges.Labour,
		Packing:   req.AdditionalCharges.Packing,
	}
	pu := &model.Purchase{
		BillNo:      req.BillNo,
		SupplierID:  supplier.ID,
		Date:        date,
		PaymentMode: mode,
		Notes:       req.Notes,
	}
	pu.CreatedBy = actor.auditID()
	pu.UpdatedBy = actor.auditID()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.purchaseRepo.ExistsBillNo(tx, supplier.ID, req.BillNo)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: bill %s already recorded for %s", ErrConflict, req.BillNo, supplier.Name)
		}

		lines := make([]billing.LineAmount, len(req.Items))
		pu.Items = make([]model.PurchaseItem, len(req.Items))
		for i, it := range req.Items {
			product, err := s.productRepo.LockByID(tx, it.ProductID)
			if err != nil {
				return lookupErr(err, "product "+it.ProductID.String())
			}
			rate, gst := product.PurchasePrice, product.GSTPercent
			if it.Rate != nil {
				rate = *it.Rate
			}
			if it.GST != nil {
				gst = *it.GST
			}
			line, err := billing.PriceItem(it.Quantity, rate, gst)
			if err != nil {
				return billingErr(fmt.Errorf("item %d: %w", i+1, err))
			}
			lines[i] = line
			pu.Items[i] = model.PurchaseItem{
				LineNo:      i + 1,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Rate:        line.Rate,
				GSTPercent:  line.TaxPercent,
				Amount:      line.Amount,
				TaxAmount:   line.TaxAmount,
			}
		}

		totals, err := billing.ComputePurchaseTotals(lines, charges)
		if err != nil {
			return billingErr(err)
		}
		pu.ApplyTotals(totals, charges)

		if err := checkPaid(req.PaidAmount, pu.TotalAmount); err != nil {
			return err
		}
		pu.SetPaid(req.PaidAmount)

		if err := s.purchaseRepo.Create(tx, pu); err != nil {
			return writeErr(err, "bill "+pu.BillNo)
		}

		if req.PaidAmount.IsPositive() {
			payment := newPayment(pu.ID, model.RefPurchase, req.PaidAmount, mode, date, actor)
			payment.Note = "Paid at purchase entry"
			if err := s.paymentRepo.Create(tx, payment); err != nil {
				return err
			}
		}

		for _, item := range pu.Items {
			_, err := s.stock.Move(ctx, tx, Movement{
				ProductID:     item.ProductID,
				Type:          model.MovementIn,
				Quantity:      item.Quantity,
				Reason:        model.ReasonPurchase,
				ReferenceID:   &pu.ID,
				ReferenceType: model.RefPurchase,
				Rate:          decimal.NewNullDecimal(item.Rate),
				Notes:         pu.BillNo,
				CreatedBy:     actor.auditID(),
			})
			if err != nil {
				return err
			}
			// latest purchase rate becomes the product's cost
			if err := s.productRepo.UpdatePurchasePrice(tx, item.ProductID, item.Rate, actor.auditID()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pu.Supplier = supplier
	publish(s.notifier, ws.Event{
		Action:  ws.ActionPurchaseCreated,
		Data:    purchasePayload(pu),
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s recorded purchase %s from %s", actor.displayName(), pu.BillNo, supplier.Name),
	})
	return pu, nil
}

func purchasePayload(pu *model.Purchase) map[string]interface{} {
	items := make([]map[string]interface{}, len(pu.Items))
	for i, it := range pu.Items {
		items[i] = map[string]interface{}{"productId": it.ProductID, "quantity": it.Quantity}
	}
	return map[string]interface{}{
		"id":          pu.ID,
		"billNo":      pu.BillNo,
		"supplierId":  pu.SupplierID,
		"totalAmount": pu.TotalAmount,
		"items":       items,
	}
}

func (s *purchaseService) UpdatePurchase(ctx context.Context, id uuid.UUID, patch Patch, actor Actor) (*model.Purchase, error) {
	if err := patch.only("notes"); err != nil {
		return nil, err
	}
	var notes string
	if _, err := patch.decode("notes", &notes); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.purchaseRepo.LockByID(tx, id); err != nil {
			return lookupErr(err, "purchase")
		}
		return s.purchaseRepo.UpdateFields(tx, id, map[string]interface{}{
			"notes":      notes,
			"updated_by": actor.auditID(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetPurchase(id)
}

// DeletePurchase takes the purchased quantities back out of stock. If any of that stock
// has already been sold the delete fails and nothing changes.
func (s *purchaseService) DeletePurchase(ctx context.Context, id uuid.UUID, actor Actor) error {
	pu, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		return lookupErr(err, "purchase")
	}

	ids := make([]uuid.UUID, len(pu.Items))
	for i, it := range pu.Items {
		ids[i] = it.ProductID
	}
	release, err := lockProducts(ctx, s.locker, ids...)
	if err != nil {
		return err
	}
	defer release()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.purchaseRepo.LockByID(tx, id); err != nil {
			return lookupErr(err, "purchase")
		}
		if err := s.stock.Reverse(ctx, tx, id, actor.auditID()); err != nil {
			return err
		}
		if err := s.paymentRepo.DeleteByDocument(tx, id); err != nil {
			return err
		}
		return s.purchaseRepo.Delete(tx, id, actor.auditID())
	})
	if err != nil {
		return err
	}

	publish(s.notifier, ws.Event{
		Action:  ws.ActionPurchaseDeleted,
		Data:    purchasePayload(pu),
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s deleted purchase %s", actor.displayName(), pu.BillNo),
	})
	return nil
}

func (s *purchaseService) RecordPayment(ctx context.Context, id uuid.UUID, req *PaymentRequest, actor Actor) (*model.Purchase, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	mode, err := paymentMode(req.Mode)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pu, err := s.purchaseRepo.LockByID(tx, id)
		if err != nil {
			return lookupErr(err, "purchase")
		}
		paid := pu.PaidAmount.Add(req.Amount)
		if err := checkPaid(paid, pu.TotalAmount); err != nil {
			return err
		}

		payment := newPayment(pu.ID, model.RefPurchase, req.Amount, mode, documentDate(req.PaidAt), actor)
		payment.Reference = req.Reference
		payment.Note = req.Note
		if err := s.paymentRepo.Create(tx, payment); err != nil {
			return err
		}

		pu.SetPaid(paid)
		return s.purchaseRepo.UpdateFields(tx, id, paidFields(pu.PaidAmount, pu.RemainingAmount, pu.PaymentStatus, actor))
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetPurchase(id)
	if err != nil {
		return nil, err
	}
	publish(s.notifier, ws.Event{
		Action: ws.ActionPaymentRecorded,
		Data: map[string]interface{}{
			"documentId":    updated.ID,
			"documentType":  model.RefPurchase,
			"amount":        req.Amount,
			"paymentStatus": updated.PaymentStatus,
		},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s recorded a payment of %s on bill %s", actor.displayName(), req.Amount.StringFixed(2), updated.BillNo),
	})
	return updated, nil
}

func (s *purchaseService) GetPurchases(filter repository.DocumentFilter) ([]model.Purchase, error) {
	return s.purchaseRepo.FindAll(filter)
}

func (s *purchaseService) GetPurchase(id uuid.UUID) (*model.Purchase, error) {
	pu, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "purchase")
	}
	return pu, nil
}

func (s *purchaseService) GetPayments(id uuid.UUID) ([]model.Payment, error) {
	if _, err := s.GetPurchase(id); err != nil {
		return nil, err
	}
	return s.paymentRepo.FindByDocument(id)
}

func (s *purchaseService) VerifyPurchase(id uuid.UUID) error {
	pu, err := s.GetPurchase(id)
	if err != nil {
		return err
	}
	return billing.VerifyPurchase(pu.LineAmounts(), pu.Charges(), pu.Totals())
}
