package handler

import (
	"brass-inventory/internal/model"
	"brass-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PartyHandler struct {
	service service.PartyService
}

func NewPartyHandler(s service.PartyService) *PartyHandler {
	return &PartyHandler{service: s}
}

// CreateCustomer handles customer creation
// POST /api/v1/customers
func (h *PartyHandler) CreateCustomer(c *fiber.Ctx) error {
	var customer model.Customer
	if err := c.BodyParser(&customer); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := h.service.CreateCustomer(&customer, getActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Customer created", "data": customer})
}

func (h *PartyHandler) GetCustomers(c *fiber.Ctx) error {
	customers, err := h.service.GetCustomers(c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(customers)
}

func (h *PartyHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid customer ID")
	}
	customer, err := h.service.GetCustomer(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(customer)
}

// UpdateCustomer replaces contact details; balances are reconciled, not edited
// PUT /api/v1/customers/:id
func (h *PartyHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid customer ID")
	}
	var contact model.Contact
	if err := c.BodyParser(&contact); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	customer, err := h.service.UpdateCustomer(id, &contact, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer updated", "data": customer})
}

func (h *PartyHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid customer ID")
	}
	if err := h.service.DeleteCustomer(id, getActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer deleted"})
}

func (h *PartyHandler) CreateSupplier(c *fiber.Ctx) error {
	var supplier model.Supplier
	if err := c.BodyParser(&supplier); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := h.service.CreateSupplier(&supplier, getActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Supplier created", "data": supplier})
}

func (h *PartyHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.GetSuppliers(c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(suppliers)
}

func (h *PartyHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid supplier ID")
	}
	supplier, err := h.service.GetSupplier(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(supplier)
}

func (h *PartyHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid supplier ID")
	}
	var contact model.Contact
	if err := c.BodyParser(&contact); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	supplier, err := h.service.UpdateSupplier(id, &contact, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": supplier})
}

func (h *PartyHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid supplier ID")
	}
	if err := h.service.DeleteSupplier(id, getActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}

// Reconcile recomputes customer and supplier balances from documents
// POST /api/v1/parties/reconcile
func (h *PartyHandler) Reconcile(c *fiber.Ctx) error {
	result, err := h.service.ReconcileBalances(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
