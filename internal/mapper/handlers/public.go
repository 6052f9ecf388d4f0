package handlers

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"fair-mapper/internal/editor/codec"
	"fair-mapper/internal/editor/elements"
	"fair-mapper/internal/editor/geometry"
	"fair-mapper/internal/editor/layers"
	emodels "fair-mapper/internal/editor/models"
	"fair-mapper/internal/editor/render"
	"fair-mapper/internal/editor/viewer"
	"fair-mapper/internal/mapper/models"

	"github.com/gofiber/fiber/v3"
)

const maxPublicCanvas = 4096

type categoryPayload struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// ============================================================
// Public viewer
// ============================================================

// publicMap загружает карту для просмотра: коллекция уже обогащена
// данными магазинов.
func (h *Handler) publicMap(ctx context.Context, id string) (*models.Map, emodels.Layers, []emodels.Store, error) {
	m, err := h.repo.GetMap(ctx, id)
	if err != nil {
		return nil, emodels.Layers{}, nil, err
	}
	stores, err := h.repo.ListStores(ctx, id)
	if err != nil {
		return nil, emodels.Layers{}, nil, err
	}
	l, _ := codec.Decode(m.Features)
	return m, layers.Enrich(l, stores), stores, nil
}

// PublicMap отдает коллекцию, магазины и категории с количеством.
func (h *Handler) PublicMap(c fiber.Ctx) error {
	m, l, stores, err := h.publicMap(context.Background(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	counts := viewer.CategoryCounts(stores)
	categories := make([]categoryPayload, 0, len(emodels.StoreCategories))
	for _, cat := range emodels.StoreCategories {
		categories = append(categories, categoryPayload{
			ID:    cat,
			Label: elements.StoreCategoryLabel(cat),
			Color: elements.StoreCategoryColor(cat),
			Count: counts[cat],
		})
	}

	return c.JSON(fiber.Map{
		"id":          m.ID,
		"name":        m.Name,
		"description": m.Description,
		"layers":      l,
		"stores":      stores,
		"categories":  categories,
		"total":       len(stores),
	})
}

// PublicRender рисует карту для посетителя; category и q приглушают
// магазины, не прошедшие фильтр.
func (h *Handler) PublicRender(c fiber.Ctx) error {
	width, height, zoom, err := h.viewport(c)
	if err != nil {
		return badRequest(c, err)
	}
	_, l, stores, err := h.publicMap(context.Background(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	scene := render.Scene{
		Layers: l,
		Zoom:   zoom,
		Filter: viewer.FilterStores(stores, c.Query("category"), c.Query("q")),
	}
	img, _, err := h.renderer.Render(scene, int(width), int(height))
	if err != nil {
		return fail(c, err)
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		return fail(c, err)
	}
	c.Set("Content-Type", "image/png")
	return c.Send(data)
}

// PublicStoreAt находит магазин под точкой клика на отрисованной карте.
func (h *Handler) PublicStoreAt(c fiber.Ctx) error {
	width, height, zoom, err := h.viewport(c)
	if err != nil {
		return badRequest(c, err)
	}
	x, err := queryFloat(c, "x", 0)
	if err != nil {
		return badRequest(c, err)
	}
	y, err := queryFloat(c, "y", 0)
	if err != nil {
		return badRequest(c, err)
	}

	_, l, stores, err := h.publicMap(context.Background(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	store, ok := viewer.StoreAt(l, stores, emodels.Point{X: x, Y: y}, width, height, zoom)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no store at point"})
	}
	return c.JSON(store)
}

// viewport читает размер холста и масштаб посетителя из query.
// viewport: размеры холста только целые, render.png и store-at видят одну сетку пикселей.
func (h *Handler) viewport(c fiber.Ctx) (width, height, zoom float64, err error) {
	w, err := queryInt(c, "width", h.canvas.Width)
	if err != nil {
		return 0, 0, 0, err
	}
	hh, err := queryInt(c, "height", h.canvas.Height)
	if err != nil {
		return 0, 0, 0, err
	}
	if zoom, err = queryFloat(c, "zoom", 1); err != nil {
		return 0, 0, 0, err
	}
	if w < 1 || hh < 1 || w > maxPublicCanvas || hh > maxPublicCanvas {
		return 0, 0, 0, fmt.Errorf("canvas %dx%d out of range", w, hh)
	}
	return float64(w), float64(hh), geometry.ClampZoom(zoom), nil
}

func queryInt(c fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

func queryFloat(c fiber.Ctx, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}
