package handler

import (
	"brass-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

func (h *ReportHandler) GetStockValuation(c *fiber.Ctx) error {
	report, err := h.service.StockValuation()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// GetGSTReport query params: from, to (YYYY-MM-DD) or range
func (h *ReportHandler) GetGSTReport(c *fiber.Ctx) error {
	from, to, err := parseRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	report, err := h.service.GSTReport(from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) GetProfitLoss(c *fiber.Ctx) error {
	from, to, err := parseRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	report, err := h.service.ProfitLoss(from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
