package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"brass-inventory/internal/model"
	"brass-inventory/internal/repository"
	"brass-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Idempotency replays the stored response for a repeated Idempotency-Key on mutating
// requests. Run it after RequireAuth so the key is bound to the caller.
func Idempotency(repo repository.IdempotencyRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		userID, _ := c.Locals(LocalUserID).(string)
		path := c.OriginalURL()

		// method|path|body|user
		h := sha256.New()
		h.Write([]byte(method))
		h.Write([]byte{'\n'})
		h.Write([]byte(path))
		h.Write([]byte{'\n'})
		h.Write(c.Body())
		h.Write([]byte{'\n'})
		h.Write([]byte(userID))
		reqHash := hex.EncodeToString(h.Sum(nil))

		rec, created, err := repo.Reserve(&model.IdempotencyKey{
			Key:         key,
			RequestHash: reqHash,
			Method:      method,
			Path:        path,
			UserID:      userID,
		})
		if err != nil {
			return err
		}
		if rec.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if rec.ResponseStatus != 0 {
			c.Set("Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(rec.ResponseStatus).Send(rec.ResponseBody)
		}
		if !created {
			return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is still in progress")
		}

		if err := c.Next(); err != nil {
			_ = repo.Release(key)
			return err
		}

		status := c.Response().StatusCode()
		if status >= 500 {
			// let the client retry a server failure with the same key
			if err := repo.Release(key); err != nil {
				logger.LogError("middleware", "Idempotency", "release key", key, err)
			}
			return nil
		}
		if err := repo.Complete(key, status, c.Response().Body()); err != nil {
			logger.LogError("middleware", "Idempotency", "store response", key, err)
		}
		return nil
	}
}
