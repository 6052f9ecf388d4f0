package handlers

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v3"
)

// Asset отдает файл из хранилища карт: подложки, логотипы, экспорты.
func (h *Handler) Asset(c fiber.Ctx) error {
	path, err := h.assets.Resolve(c.Params("*"))
	if err != nil {
		return fail(c, err)
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "file not found"})
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fail(c, err)
	}
	return c.SendFile(abs)
}
