package middleware

import (
	"fmt"

	commonlogger "fair-mapper/internal/common/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// Recover перехватывает панику обработчика и пишет ее в лог со стеком.
func Recover() fiber.Handler {
	log := commonlogger.Get("http")
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.WithFields(map[string]any{
				"method": c.Method(),
				"path":   c.Path(),
			}).Errorf("panic recovered: %v", e)
		},
	})
}

// ErrorHandler отвечает JSON вида {"error": ...} и для ошибок самого fiber
// (404 маршрута, 413 тела и т.п.).
func ErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = fmt.Sprintf("internal error: %v", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
