package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Pinger func(ctx context.Context) error

type HealthController struct {
	Ping Pinger
}

func (hc *HealthController) Health(c *fiber.Ctx) error {
	if hc.Ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := hc.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "degraded",
				"database": "unreachable",
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
