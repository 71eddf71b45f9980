package handler

import (
	"encoding/json"

	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"
	"brass-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InvoiceHandler struct {
	service service.InvoiceService
}

func NewInvoiceHandler(s service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: s}
}

// documentFilter reads the list filters shared by invoices and purchases.
func documentFilter(c *fiber.Ctx, partyParam string) (repository.DocumentFilter, error) {
	var filter repository.DocumentFilter
	partyID, err := queryUUID(c, partyParam)
	if err != nil {
		return filter, err
	}
	filter.PartyID = partyID
	filter.PaymentStatus = model.PaymentStatus(c.Query("paymentStatus"))
	if c.Query("from") != "" {
		from, to, err := parseRange(c)
		if err != nil {
			return filter, err
		}
		filter.From, filter.To = &from, &to
	}
	return filter, nil
}

func (h *InvoiceHandler) CreateInvoice(c *fiber.Ctx) error {
	var req service.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	inv, err := h.service.CreateInvoice(c.UserContext(), &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(inv)
}

func (h *InvoiceHandler) GetInvoices(c *fiber.Ctx) error {
	filter, err := documentFilter(c, "customerId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter.InvoiceType = model.InvoiceType(c.Query("invoiceType"))
	invoices, err := h.service.GetInvoices(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoices)
}

func (h *InvoiceHandler) GetInvoice(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	inv, err := h.service.GetInvoice(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inv)
}

func (h *InvoiceHandler) UpdateInvoice(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	var patch service.Patch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	inv, err := h.service.UpdateInvoice(c.UserContext(), id, patch, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invoice updated", "data": inv})
}

func (h *InvoiceHandler) DeleteInvoice(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	if err := h.service.DeleteInvoice(c.UserContext(), id, getActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invoice deleted and stock restored"})
}

func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	var req service.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	inv, err := h.service.RecordPayment(c.UserContext(), id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Payment recorded", "data": inv})
}

func (h *InvoiceHandler) GetPayments(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	payments, err := h.service.GetPayments(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payments)
}
