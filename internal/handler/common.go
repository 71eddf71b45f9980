package handler

import (
	"errors"
	"strings"
	"time"

	"brass-inventory/internal/middleware"
	"brass-inventory/internal/service"
	"brass-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getActor(c *fiber.Ctx) service.Actor {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	name, _ := c.Locals(middleware.LocalUserName).(string)
	email, _ := c.Locals(middleware.LocalUserEmail).(string)
	return service.Actor{ID: id, Name: name, Email: email}
}

// Helper untuk parse UUID dari path param
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

func queryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "code": "VALIDATION_ERROR"})
}

// respondError maps service errors to status codes. Unknown errors are logged and hidden.
func respondError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, service.ErrInsufficientStock):
		status, code = fiber.StatusBadRequest, "INSUFFICIENT_STOCK"
	case errors.Is(err, service.ErrValidation):
		status, code = fiber.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, service.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, service.ErrBusy):
		status, code = fiber.StatusConflict, "BUSY"
	case errors.Is(err, service.ErrConsistency):
		code = "CONSISTENCY_ERROR"
	}

	if status >= fiber.StatusInternalServerError {
		logger.LogError("handler", c.Route().Path, c.Method()+" "+c.OriginalURL(), nil, err)
		if code == "INTERNAL" {
			return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error", "code": code})
		}
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error(), "code": code})
}

// parseRange reads from/to (YYYY-MM-DD, inclusive) or a preset range=7d|1m|3m|6m|12m.
// Without either it covers the current month.
func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	endDate := now

	if from := c.Query("from"); from != "" {
		startDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
			}
			endDate = t.Add(24*time.Hour - time.Nanosecond)
		}
		return startDate, endDate, nil
	}

	var startDate time.Time
	switch c.Query("range") {
	case "7d":
		startDate = now.AddDate(0, 0, -7)
	case "1m":
		startDate = now.AddDate(0, -1, 0)
	case "3m":
		startDate = now.AddDate(0, -3, 0)
	case "6m":
		startDate = now.AddDate(0, -6, 0)
	case "12m":
		startDate = now.AddDate(0, -12, 0)
	default:
		startDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return startDate, endDate, nil
}
