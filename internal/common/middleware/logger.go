package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger логирует запросы; пробы здоровья и кадры редактора пропускаются,
// их опрашивают слишком часто.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | Content-Type: ${reqHeader:Content-Type}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Next:       skipNoisy,
	})
}

func skipNoisy(c fiber.Ctx) bool {
	path := c.Path()
	return strings.HasPrefix(path, "/health/") || strings.HasSuffix(path, "/frame.png")
}
