package service

import (
	"context"
	"strings"
	"time"

	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"
	"brass-inventory/pkg/logger"
	"brass-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReconcileResult summarizes one balance refresh.
type ReconcileResult struct {
	Customers    int       `json:"customers"`
	Suppliers    int       `json:"suppliers"`
	ReconciledAt time.Time `json:"reconciledAt"`
}

type PartyService interface {
	CreateCustomer(req *model.Customer, actor Actor) error
	UpdateCustomer(id uuid.UUID, req *model.Contact, actor Actor) (*model.Customer, error)
	DeleteCustomer(id uuid.UUID, actor Actor) error
	GetCustomers(search string) ([]model.Customer, error)
	GetCustomer(id uuid.UUID) (*model.Customer, error)

	CreateSupplier(req *model.Supplier, actor Actor) error
	UpdateSupplier(id uuid.UUID, req *model.Contact, actor Actor) (*model.Supplier, error)
	DeleteSupplier(id uuid.UUID, actor Actor) error
	GetSuppliers(search string) ([]model.Supplier, error)
	GetSupplier(id uuid.UUID) (*model.Supplier, error)

	ReconcileBalances(ctx context.Context) (*ReconcileResult, error)
}

type partyService struct {
	customerRepo repository.CustomerRepository
	supplierRepo repository.SupplierRepository
	reportRepo   repository.ReportRepository
	db           *gorm.DB
}

func NewPartyService(cRepo repository.CustomerRepository, sRepo repository.SupplierRepository, rRepo repository.ReportRepository, db *gorm.DB) PartyService {
	return &partyService{customerRepo: cRepo, supplierRepo: sRepo, reportRepo: rRepo, db: db}
}

// cleanContact validates c and stores the phone in E.164 and the GSTIN upper-cased.
func cleanContact(c *model.Contact) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.GSTIN = strings.ToUpper(strings.TrimSpace(c.GSTIN))
	if err := validateStruct(c); err != nil {
		return err
	}
	if c.Phone != "" {
		c.Phone = validator.NormalizePhone(c.Phone)
	}
	return nil
}

func (s *partyService) CreateCustomer(req *model.Customer, actor Actor) error {
	if err := cleanContact(&req.Contact); err != nil {
		return err
	}
	req.ID = uuid.Nil
	// aggregates are owned by reconciliation
	req.TotalSales = decimal.Zero
	req.OutstandingBalance = decimal.Zero
	req.ReconciledAt = nil
	req.CreatedBy = actor.auditID()
	req.UpdatedBy = actor.auditID()
	return s.customerRepo.Create(req)
}

func (s *partyService) UpdateCustomer(id uuid.UUID, req *model.Contact, actor Actor) (*model.Customer, error) {
	if err := cleanContact(req); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "customer")
	}
	customer.Contact = *req
	customer.UpdatedBy = actor.auditID()
	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *partyService) DeleteCustomer(id uuid.UUID, actor Actor) error {
	if _, err := s.customerRepo.FindByID(id); err != nil {
		return lookupErr(err, "customer")
	}
	return s.customerRepo.Delete(id, actor.auditID())
}

func (s *partyService) GetCustomers(search string) ([]model.Customer, error) {
	return s.customerRepo.FindAll(strings.TrimSpace(search))
}

func (s *partyService) GetCustomer(id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "customer")
	}
	return customer, nil
}

func (s *partyService) CreateSupplier(req *model.Supplier, actor Actor) error {
	if err := cleanContact(&req.Contact); err != nil {
		return err
	}
	req.ID = uuid.Nil
	req.TotalPurchases = decimal.Zero
	req.OutstandingBalance = decimal.Zero
	req.ReconciledAt = nil
	req.CreatedBy = actor.auditID()
	req.UpdatedBy = actor.auditID()
	return s.supplierRepo.Create(req)
}

func (s *partyService) UpdateSupplier(id uuid.UUID, req *model.Contact, actor Actor) (*model.Supplier, error) {
	if err := cleanContact(req); err != nil {
		return nil, err
	}
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "supplier")
	}
	supplier.Contact = *req
	supplier.UpdatedBy = actor.auditID()
	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *partyService) DeleteSupplier(id uuid.UUID, actor Actor) error {
	if _, err := s.supplierRepo.FindByID(id); err != nil {
		return lookupErr(err, "supplier")
	}
	return s.supplierRepo.Delete(id, actor.auditID())
}

func (s *partyService) GetSuppliers(search string) ([]model.Supplier, error) {
	return s.supplierRepo.FindAll(strings.TrimSpace(search))
}

func (s *partyService) GetSupplier(id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "supplier")
	}
	return supplier, nil
}

// ReconcileBalances recomputes every counterparty aggregate from live documents in one
// transaction. Parties without documents are reset to zero.
func (s *partyService) ReconcileBalances(ctx context.Context) (*ReconcileResult, error) {
	now := time.Now().UTC()
	result := &ReconcileResult{ReconciledAt: now}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		zero := map[string]interface{}{"total_sales": decimal.Zero, "outstanding_balance": decimal.Zero, "reconciled_at": now}
		if err := tx.Model(&model.Customer{}).Where("1 = 1").Updates(zero).Error; err != nil {
			return err
		}
		zero = map[string]interface{}{"total_purchases": decimal.Zero, "outstanding_balance": decimal.Zero, "reconciled_at": now}
		if err := tx.Model(&model.Supplier{}).Where("1 = 1").Updates(zero).Error; err != nil {
			return err
		}

		customers, err := s.reportRepo.CustomerBalances(tx)
		if err != nil {
			return err
		}
		for _, b := range customers {
			if err := s.customerRepo.UpdateAggregates(tx, b.PartyID, map[string]interface{}{
				"total_sales":         b.Total,
				"outstanding_balance": b.Outstanding,
				"reconciled_at":       now,
			}); err != nil {
				return err
			}
		}
		result.Customers = len(customers)

		suppliers, err := s.reportRepo.SupplierBalances(tx)
		if err != nil {
			return err
		}
		for _, b := range suppliers {
			if err := s.supplierRepo.UpdateAggregates(tx, b.PartyID, map[string]interface{}{
				"total_purchases":     b.Total,
				"outstanding_balance": b.Outstanding,
				"reconciled_at":       now,
			}); err != nil {
				return err
			}
		}
		result.Suppliers = len(suppliers)
		return nil
	})
	if err != nil {
		logger.LogError("service", "ReconcileBalances", "refresh party aggregates", nil, err)
		return nil, err
	}

	logger.Get().WithFields(logrus.Fields{
		"customers": result.Customers,
		"suppliers": result.Suppliers,
	}).Info("party balances reconciled")
	return result, nil
}
