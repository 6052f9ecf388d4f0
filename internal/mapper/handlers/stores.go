package handlers

import (
	"context"
	"net/http"

	"fair-mapper/internal/mapper/models"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Store directory
// ============================================================

func (h *Handler) ListStores(c fiber.Ctx) error {
	ctx := context.Background()
	mapID := c.Params("id")
	if _, err := h.repo.GetMap(ctx, mapID); err != nil {
		return fail(c, err)
	}
	stores, err := h.repo.ListStores(ctx, mapID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stores)
}

// CreateStore добавляет магазин в справочник карты. Открытые сессии
// увидят его после POST /sessions/:sid/stores/refresh.
func (h *Handler) CreateStore(c fiber.Ctx) error {
	var req models.CreateStoreRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}

	store, err := h.repo.CreateStore(context.Background(), req.Store(c.Params("id")))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(store)
}

func (h *Handler) DeleteStore(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.DeleteStore(context.Background(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": id})
}
