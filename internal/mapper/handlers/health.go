package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe проверяет доступность базы карт.
func (h *Handler) ReadinessProbe(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		log.WithError(err).Warn("readiness: database unavailable")
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  "database unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "ready",
		"sessions": h.sessions.Len(),
	})
}
