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

// ReadinessProbe готов, когда отвечает /health/ready сервиса карт.
func ReadinessProbe(mapperURL string) fiber.Handler {
	client := &http.Client{Timeout: 2 * time.Second}
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, mapperURL+"/health/ready", nil)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
		}
		resp, err := client.Do(req)
		if err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "mapper": "unreachable"})
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "mapper": resp.StatusCode})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	}
}

// StartupProbe проверяет, что приложение успешно запустилось
func StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}
