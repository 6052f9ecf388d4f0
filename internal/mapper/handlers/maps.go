package handlers

import (
	"context"
	"net/http"

	"fair-mapper/internal/editor/codec"
	"fair-mapper/internal/editor/layers"
	"fair-mapper/internal/mapper/models"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Maps
// ============================================================

// CreateMap создает пустую или демонстрационную карту.
func (h *Handler) CreateMap(c fiber.Ctx) error {
	var req models.CreateMapRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}

	ctx := context.Background()
	id := ""
	if req.Sample {
		sampleID, err := h.repo.CreateSampleMap(ctx, req.Name, req.Description)
		if err != nil {
			return fail(c, err)
		}
		id = sampleID
	} else {
		m, err := h.repo.CreateMap(ctx, req.Name, req.Description, nil)
		if err != nil {
			return fail(c, err)
		}
		id = m.ID
	}

	m, err := h.repo.GetMap(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	log.WithField("map", m.ID).Infof("map %q created", m.Name)
	return c.Status(http.StatusCreated).JSON(m)
}

func (h *Handler) ListMaps(c fiber.Ctx) error {
	maps, err := h.repo.ListMaps(context.Background())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(maps)
}

func (h *Handler) GetMap(c fiber.Ctx) error {
	m, err := h.repo.GetMap(context.Background(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(m)
}

// DeleteMap удаляет карту и закрывает ее открытые сессии.
func (h *Handler) DeleteMap(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.DeleteMap(context.Background(), id); err != nil {
		return fail(c, err)
	}
	closed := h.sessions.CloseMap(id)
	return c.JSON(fiber.Map{
		"deleted":        id,
		"closedSessions": closed,
	})
}

// SaveFeatures заменяет коллекцию карты массивом фич. Битые фичи
// пропускаются, коллекция сохраняется в нормализованном виде.
func (h *Handler) SaveFeatures(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return badRequest(c, errEmptyBody)
	}
	l, nextID, err := codec.DecodeJSON(c.Body())
	if err != nil {
		return badRequest(c, err)
	}

	features := codec.Encode(l)
	if err := h.repo.SaveFeatures(context.Background(), c.Params("id"), features); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"saved":  len(features),
		"counts": layers.Counts(l),
		"nextId": nextID,
	})
}
