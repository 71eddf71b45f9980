package handler

import (
	"encoding/json"

	"brass-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var req service.CreatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	pu, err := h.service.CreatePurchase(c.UserContext(), &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(pu)
}

func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	filter, err := documentFilter(c, "supplierId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	purchases, err := h.service.GetPurchases(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(purchases)
}

func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	pu, err := h.service.GetPurchase(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pu)
}

func (h *PurchaseHandler) UpdatePurchase(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	var patch service.Patch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	pu, err := h.service.UpdatePurchase(c.UserContext(), id, patch, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase updated", "data": pu})
}

func (h *PurchaseHandler) DeletePurchase(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	if err := h.service.DeletePurchase(c.UserContext(), id, getActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase deleted and stock reversed"})
}

func (h *PurchaseHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	var req service.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	pu, err := h.service.RecordPayment(c.UserContext(), id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Payment recorded", "data": pu})
}

func (h *PurchaseHandler) GetPayments(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	payments, err := h.service.GetPayments(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payments)
}
