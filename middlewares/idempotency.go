package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"freight-billing-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	maxIdempotencyKeyLen = 128
	// pending records older than this belong to a request that never finished
	pendingTTL = 2 * time.Minute
)

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Phase 1 claims the key in a short transaction; phase 2 stores the
// response once the handler succeeded. A failed handler releases the key.
func Idempotency(db *gorm.DB, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(IdempotencyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		principal := ""
		if p, ok := PrincipalFrom(c); ok {
			principal = p.Subject
		}
		path := c.OriginalURL()
		reqHash := RequestHash(method, path, c.Body(), principal)

		// ---- Phase 1: claim the key or find the earlier attempt
		var existing models.IdempotencyKey
		claimed := false
		err := db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			rec := models.IdempotencyKey{
				Key:         key,
				RequestHash: reqHash,
				Method:      method,
				Path:        path,
				Principal:   principal,
				CreatedAt:   time.Now().UTC(),
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				existing = rec
				claimed = true
				return nil
			}
			if err := tx.Where("key = ?", key).Take(&existing).Error; err != nil {
				return err
			}
			if existing.ResponseStatus == 0 && existing.RequestHash == reqHash &&
				time.Since(existing.CreatedAt) > pendingTTL {
				// abandoned attempt; take it over
				existing.CreatedAt = time.Now().UTC()
				claimed = true
				return tx.Model(&models.IdempotencyKey{}).Where("key = ?", key).
					Update("created_at", existing.CreatedAt).Error
			}
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("idempotency lookup failed")
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
		}

		if existing.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if existing.ResponseStatus != 0 {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			c.Set("Idempotent-Replayed", "true")
			return c.Status(existing.ResponseStatus).Send(existing.ResponseBody)
		}
		if !claimed {
			return fiber.NewError(fiber.StatusConflict, "a request with this Idempotency-Key is still in progress")
		}

		// ---- Run the handler once
		chainErr := c.Next()
		status := c.Response().StatusCode()
		if chainErr != nil || status < 200 || status >= 300 {
			if err := db.Where("key = ? AND response_status = 0", key).Delete(&models.IdempotencyKey{}).Error; err != nil {
				log.Warn().Err(err).Str("key", key).Msg("could not release idempotency key")
			}
			return chainErr
		}

		// ---- Phase 2: store the response
		blob := make([]byte, len(c.Response().Body()))
		copy(blob, c.Response().Body())
		now := time.Now().UTC()
		if err := db.Model(&models.IdempotencyKey{}).
			Where("key = ?", key).
			Updates(map[string]any{
				"response_status": status,
				"response_body":   datatypes.JSON(blob),
				"completed_at":    &now,
			}).Error; err != nil {
			// best-effort: the response itself succeeded
			log.Warn().Err(err).Str("key", key).Msg("could not store idempotent response")
		}
		return nil
	}
}

// RequestHash fingerprints a request as method|path|body|principal.
func RequestHash(method, path string, body []byte, principal string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	h.Write([]byte{'\n'})
	h.Write([]byte(principal))
	return hex.EncodeToString(h.Sum(nil))
}
