package handler

import (
	"time"

	"brass-inventory/internal/repository"
	"brass-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	var req service.StockMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	entry, err := h.service.StockIn(c.UserContext(), &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock added", "data": entry})
}

func (h *InventoryHandler) StockOut(c *fiber.Ctx) error {
	var req service.StockMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	entry, err := h.service.StockOut(c.UserContext(), &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock removed", "data": entry})
}

func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var req service.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	entry, err := h.service.Adjust(c.UserContext(), &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}
	if entry == nil {
		return c.JSON(fiber.Map{"message": "Stock already at requested level"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock adjusted", "data": entry})
}

func (h *InventoryHandler) GetStockReport(c *fiber.Ctx) error {
	rows, err := h.service.StockReport()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

// GetLedger supports ?productId=&referenceId=&from=&to=&limit=
func (h *InventoryHandler) GetLedger(c *fiber.Ctx) error {
	productID, err := queryUUID(c, "productId")
	if err != nil {
		return badRequest(c, "Invalid productId")
	}
	referenceID, err := queryUUID(c, "referenceId")
	if err != nil {
		return badRequest(c, "Invalid referenceId")
	}
	filter := repository.LedgerFilter{
		ProductID:   productID,
		ReferenceID: referenceID,
		Limit:       c.QueryInt("limit", 0),
	}
	if c.Query("from") != "" {
		from, to, err := parseRange(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
		filter.From, filter.To = &from, &to
	}

	entries, err := h.service.GetLedger(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	if err := h.service.VerifyProductLedger(productID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ledger consistent", "checkedAt": time.Now().UTC()})
}
