package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brass-inventory/internal/billing"
	"brass-inventory/internal/lock"
	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"
	"brass-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
	// Rate and GST default to the product's selling price and GST percent.
	Rate *decimal.Decimal `json:"rate" validate:"omitempty,dec_gte0,dec_places=6"`
	GST  *decimal.Decimal `json:"gst" validate:"omitempty,dec_gte0,dec_places=4"`
}

// CreateInvoiceRequest carries raw quantities and rates; every total is computed here.
type CreateInvoiceRequest struct {
	InvoiceNumber   string             `json:"invoiceNumber" validate:"max=40"`
	CustomerID      uuid.UUID          `json:"customerId" validate:"uuid_required"`
	Date            *Date              `json:"date"`
	DueDate         *Date              `json:"dueDate"`
	InvoiceType     model.InvoiceType  `json:"invoiceType"`
	Items           []InvoiceItemInput `json:"items" validate:"required,min=1,dive"`
	Discount        decimal.Decimal    `json:"discount" validate:"dec_gte0,dec_places=6"`
	DiscountPercent decimal.Decimal    `json:"discountPercent" validate:"dec_gte0,dec_places=4"`
	PaidAmount      decimal.Decimal    `json:"paidAmount" validate:"dec_gte0,dec_places=6"`
	PaymentMode     model.PaymentMode  `json:"paymentMode"`
	Notes           string             `json:"notes"`
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req *CreateInvoiceRequest, actor Actor) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, id uuid.UUID, patch Patch, actor Actor) (*model.Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID, actor Actor) error
	RecordPayment(ctx context.Context, id uuid.UUID, req *PaymentRequest, actor Actor) (*model.Invoice, error)
	GetInvoices(filter repository.DocumentFilter) ([]model.Invoice, error)
	GetInvoice(id uuid.UUID) (*model.Invoice, error)
	GetPayments(id uuid.UUID) ([]model.Payment, error)
	VerifyInvoice(id uuid.UUID) error
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	paymentRepo  repository.PaymentRepository
	stock        *StockKeeper
	locker       lock.Locker
	db           *gorm.DB
	notifier     Notifier
}

func NewInvoiceService(
	iRepo repository.InvoiceRepository,
	cRepo repository.CustomerRepository,
	pRepo repository.ProductRepository,
	payRepo repository.PaymentRepository,
	stock *StockKeeper,
	locker lock.Locker,
	db *gorm.DB,
	notifier Notifier,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  iRepo,
		customerRepo: cRepo,
		productRepo:  pRepo,
		paymentRepo:  payRepo,
		stock:        stock,
		locker:       locker,
		db:           db,
		notifier:     notifier,
	}
}

func itemProductIDs(items []InvoiceItemInput) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	return ids
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest, actor Actor) (*model.Invoice, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.InvoiceType == "" {
		req.InvoiceType = model.InvoiceTax
	}
	if !req.InvoiceType.Valid() {
		return nil, invalid("unknown invoice type %q", req.InvoiceType)
	}
	mode, err := paymentMode(req.PaymentMode)
	if err != nil {
		return nil, err
	}
	if req.PaidAmount.IsPositive() && !req.InvoiceType.AffectsStock() {
		return nil, invalid("%s does not accept payments", req.InvoiceType)
	}

	customer, err := s.customerRepo.FindByID(req.CustomerID)
	if err != nil {
		return nil, lookupErr(err, "customer")
	}

	date := documentDate(req.Date)
	number := strings.TrimSpace(req.InvoiceNumber)

	keys := []string{"invoice-number:" + date.Format("20060102")}
	if req.InvoiceType.AffectsStock() {
		for _, id := range itemProductIDs(req.Items) {
			keys = append(keys, productKey(id))
		}
	}
	release, err := lockKeys(ctx, s.locker, keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	inv := &model.Invoice{
		CustomerID:  customer.ID,
		Date:        date,
		InvoiceType: req.InvoiceType,
		Notes:       req.Notes,
	}
	inv.DueDate = optionalDate(req.DueDate)
	inv.CreatedBy = actor.auditID()
	inv.UpdatedBy = actor.auditID()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if number == "" {
			n, err := s.nextNumber(tx, date)
			if err != nil {
				return err
			}
			number = n
		} else if exists, err := s.invoiceRepo.ExistsNumber(tx, number); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("%w: invoice number %s already exists", ErrConflict, number)
		}
		inv.InvoiceNumber = number

		lines := make([]billing.LineAmount, len(req.Items))
		inv.Items = make([]model.InvoiceItem, len(req.Items))
		for i, it := range req.Items {
			product, err := s.productRepo.LockByID(tx, it.ProductID)
			if err != nil {
				return lookupErr(err, "product "+it.ProductID.String())
			}
			rate, gst := product.SellingPrice, product.GSTPercent
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
			inv.Items[i] = model.InvoiceItem{
				LineNo:      i + 1,
				ProductID:   product.ID,
				ProductName: product.Name,
				HSNCode:     product.HSNCode,
				Quantity:    line.Quantity,
				Rate:        line.Rate,
				GSTPercent:  line.TaxPercent,
				Amount:      line.Amount,
				TaxAmount:   line.TaxAmount,
			}
		}

		totals, err := billing.ComputeInvoiceTotals(lines, req.Discount, req.DiscountPercent)
		if err != nil {
			return billingErr(err)
		}
		inv.ApplyTotals(totals)
		if !req.Discount.IsPositive() {
			inv.DiscountPercent = req.DiscountPercent
		}

		if err := checkPaid(req.PaidAmount, inv.TotalAmount); err != nil {
			return err
		}
		inv.SetPaid(req.PaidAmount)

		if err := s.invoiceRepo.Create(tx, inv); err != nil {
			return writeErr(err, "invoice number "+inv.InvoiceNumber)
		}

		if req.PaidAmount.IsPositive() {
			payment := newPayment(inv.ID, model.RefInvoice, req.PaidAmount, mode, date, actor)
			payment.Note = "Paid at invoice creation"
			if err := s.paymentRepo.Create(tx, payment); err != nil {
				return err
			}
		}

		if !inv.InvoiceType.AffectsStock() {
			return nil
		}
		for _, item := range inv.Items {
			_, err := s.stock.Move(ctx, tx, Movement{
				ProductID:     item.ProductID,
				Type:          model.MovementOut,
				Quantity:      item.Quantity,
				Reason:        model.ReasonInvoice,
				ReferenceID:   &inv.ID,
				ReferenceType: model.RefInvoice,
				Rate:          decimal.NewNullDecimal(item.Rate),
				Notes:         inv.InvoiceNumber,
				CreatedBy:     actor.auditID(),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv.Customer = customer
	publish(s.notifier, ws.Event{
		Action:  ws.ActionInvoiceCreated,
		Data:    invoicePayload(inv),
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s created %s %s for %s", actor.displayName(), inv.InvoiceType, inv.InvoiceNumber, customer.Name),
	})
	return inv, nil
}

// nextNumber returns the first free INV-YYYYMMDD-NNNN for date. Deleted invoices keep
// their numbers, so the count includes them.
func (s *invoiceService) nextNumber(tx *gorm.DB, date time.Time) (string, error) {
	prefix := "INV-" + date.Format("20060102") + "-"
	n, err := s.invoiceRepo.CountNumbersWithPrefix(tx, prefix)
	if err != nil {
		return "", err
	}
	for seq := n + 1; ; seq++ {
		candidate := fmt.Sprintf("%s%04d", prefix, seq)
		exists, err := s.invoiceRepo.ExistsNumber(tx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func invoicePayload(inv *model.Invoice) map[string]interface{} {
	items := make([]map[string]interface{}, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = map[string]interface{}{"productId": it.ProductID, "quantity": it.Quantity}
	}
	return map[string]interface{}{
		"id":            inv.ID,
		"invoiceNumber": inv.InvoiceNumber,
		"invoiceType":   inv.InvoiceType,
		"totalAmount":   inv.TotalAmount,
		"affectsStock":  inv.InvoiceType.AffectsStock(),
		"items":         items,
	}
}

// UpdateInvoice changes notes and due date only; totals, items and payment state are fixed
// once the invoice exists.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, patch Patch, actor Actor) (*model.Invoice, error) {
	if err := patch.only("notes", "dueDate"); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{"updated_by": actor.auditID()}

	var notes string
	if ok, err := patch.decode("notes", &notes); err != nil {
		return nil, err
	} else if ok {
		fields["notes"] = notes
	}
	var due *Date
	if ok, err := patch.decode("dueDate", &due); err != nil {
		return nil, err
	} else if ok {
		fields["due_date"] = optionalDate(due)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.invoiceRepo.LockByID(tx, id); err != nil {
			return lookupErr(err, "invoice")
		}
		return s.invoiceRepo.UpdateFields(tx, id, fields)
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(id)
}

// DeleteInvoice reverses the invoice's stock movements, drops its ledger entries and
// payments, and soft-deletes the header.
func (s *invoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID, actor Actor) error {
	inv, err := s.invoiceRepo.FindByID(id)
	if err != nil {
		return lookupErr(err, "invoice")
	}

	var ids []uuid.UUID
	if inv.InvoiceType.AffectsStock() {
		for _, it := range inv.Items {
			ids = append(ids, it.ProductID)
		}
	}
	release, err := lockProducts(ctx, s.locker, ids...)
	if err != nil {
		return err
	}
	defer release()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.invoiceRepo.LockByID(tx, id); err != nil {
			return lookupErr(err, "invoice")
		}
		if err := s.stock.Reverse(ctx, tx, id, actor.auditID()); err != nil {
			return err
		}
		if err := s.paymentRepo.DeleteByDocument(tx, id); err != nil {
			return err
		}
		return s.invoiceRepo.Delete(tx, id, actor.auditID())
	})
	if err != nil {
		return err
	}

	publish(s.notifier, ws.Event{
		Action:  ws.ActionInvoiceDeleted,
		Data:    invoicePayload(inv),
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s deleted %s %s", actor.displayName(), inv.InvoiceType, inv.InvoiceNumber),
	})
	return nil
}

func (s *invoiceService) RecordPayment(ctx context.Context, id uuid.UUID, req *PaymentRequest, actor Actor) (*model.Invoice, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	mode, err := paymentMode(req.Mode)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := s.invoiceRepo.LockByID(tx, id)
		if err != nil {
			return lookupErr(err, "invoice")
		}
		if !inv.InvoiceType.AffectsStock() {
			return invalid("%s does not accept payments", inv.InvoiceType)
		}
		paid := inv.PaidAmount.Add(req.Amount)
		if err := checkPaid(paid, inv.TotalAmount); err != nil {
			return err
		}

		payment := newPayment(inv.ID, model.RefInvoice, req.Amount, mode, documentDate(req.PaidAt), actor)
		payment.Reference = req.Reference
		payment.Note = req.Note
		if err := s.paymentRepo.Create(tx, payment); err != nil {
			return err
		}

		inv.SetPaid(paid)
		return s.invoiceRepo.UpdateFields(tx, id, paidFields(inv.PaidAmount, inv.RemainingAmount, inv.PaymentStatus, actor))
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetInvoice(id)
	if err != nil {
		return nil, err
	}
	publish(s.notifier, ws.Event{
		Action: ws.ActionPaymentRecorded,
		Data: map[string]interface{}{
			"documentId":    updated.ID,
			"documentType":  model.RefInvoice,
			"amount":        req.Amount,
			"paymentStatus": updated.PaymentStatus,
		},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s recorded a payment of %s on %s", actor.displayName(), req.Amount.StringFixed(2), updated.InvoiceNumber),
	})
	return updated, nil
}

func (s *invoiceService) GetInvoices(filter repository.DocumentFilter) ([]model.Invoice, error) {
	return s.invoiceRepo.FindAll(filter)
}

func (s *invoiceService) GetInvoice(id uuid.UUID) (*model.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "invoice")
	}
	return inv, nil
}

func (s *invoiceService) GetPayments(id uuid.UUID) ([]model.Payment, error) {
	if _, err := s.GetInvoice(id); err != nil {
		return nil, err
	}
	return s.paymentRepo.FindByDocument(id)
}

// VerifyInvoice recomputes the stored invoice from its items.
func (s *invoiceService) VerifyInvoice(id uuid.UUID) error {
	inv, err := s.GetInvoice(id)
	if err != nil {
		return err
	}
	return billing.VerifyInvoice(inv.LineAmounts(), inv.Totals())
}
