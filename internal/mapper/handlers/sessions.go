package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	emodels "fair-mapper/internal/editor/models"
	"fair-mapper/internal/editor/render"
	"fair-mapper/internal/editor/session"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Requests
// ============================================================

type canvasRequest struct {
	Width  int `json:"width" validate:"required,min=1,max=8192"`
	Height int `json:"height" validate:"required,min=1,max=8192"`
}

type toolRequest struct {
	Tool string `json:"tool" validate:"required,tool"`
}

type drawModeRequest struct {
	Layer   string `json:"layer" validate:"required,layer"`
	Subtype string `json:"subtype" validate:"max=60"`
}

type eventsRequest struct {
	Events []session.Event `json:"events" validate:"required,min=1,max=500,dive"`
}

type selectRequest struct {
	ID int `json:"id" validate:"min=0"`
}

type zoomRequest struct {
	Action string  `json:"action" validate:"omitempty,oneof=in out set reset"`
	Zoom   float64 `json:"zoom" validate:"omitempty,gt=0"`
}

type debugRequest struct {
	Enabled bool `json:"enabled"`
}

type patchRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=120"`
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Width       *float64 `json:"width" validate:"omitempty,gt=0"`
	Height      *float64 `json:"height" validate:"omitempty,gt=0"`
	Color       *string  `json:"color" validate:"omitempty,hexcolor"`
	BorderColor *string  `json:"borderColor" validate:"omitempty,hexcolor"`
	Type        *string  `json:"type" validate:"omitempty,max=60"`
	StoreID     *string  `json:"storeId" validate:"omitempty,max=64"`
}

func (p patchRequest) patch() emodels.Patch {
	return emodels.Patch{
		Name:        p.Name,
		X:           p.X,
		Y:           p.Y,
		Width:       p.Width,
		Height:      p.Height,
		Color:       p.Color,
		BorderColor: p.BorderColor,
		Type:        p.Type,
		StoreID:     p.StoreID,
	}
}

type backgroundRequest struct {
	Opacity *float64 `json:"opacity" validate:"omitempty,min=0,max=1"`
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
	Width   *float64 `json:"width" validate:"omitempty,gt=0"`
	Height  *float64 `json:"height" validate:"omitempty,gt=0"`
}

func (r backgroundRequest) movesImage() bool {
	return r.X != nil || r.Y != nil || r.Width != nil || r.Height != nil
}

// ============================================================
// Session lifecycle
// ============================================================

// OpenSession открывает редактор карты. Размер холста можно передать
// в теле, иначе берется размер по умолчанию.
func (h *Handler) OpenSession(c fiber.Ctx) error {
	canvas := h.canvas
	if len(c.Body()) > 0 {
		var req canvasRequest
		if err := h.bind(c, &req); err != nil {
			return badRequest(c, err)
		}
		canvas = session.Canvas{Width: req.Width, Height: req.Height}
	}

	s, err := h.sessions.Open(context.Background(), c.Params("id"), canvas.Width, canvas.Height)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(s.Snapshot())
}

func (h *Handler) GetSession(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(s.Snapshot())
}

func (h *Handler) CloseSession(c fiber.Ctx) error {
	if err := h.sessions.Close(c.Params("sid")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"closed": c.Params("sid")})
}

// ============================================================
// Tools & pointer events
// ============================================================

func (h *Handler) SetTool(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	var req toolRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	s.SetTool(emodels.Tool(req.Tool))
	return c.JSON(s.Snapshot())
}

func (h *Handler) SetDrawMode(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	var req drawModeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	s.SetDrawMode(emodels.LayerType(req.Layer), req.Subtype)
	return c.JSON(s.Snapshot())
}

// HandleEvents применяет пачку событий указателя по порядку.
func (h *Handler) HandleEvents(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	var req eventsRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}

	changed := false
	created := []emodels.Element{}
	for _, ev := range req.Events {
		out, err := s.HandleEvent(ev)
		if err != nil {
			return fail(c, err)
		}
		changed = changed || out.LayersChanged
		if out.Created != nil {
			created = append(created, out.Created)
		}
	}
	return c.JSON(fiber.Map{
		"layersChanged": changed,
		"created":       created,
		"session":       s.Snapshot(),
	})
}

func (h *Handler) Select(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	var req selectRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	if err := s.Select(req.ID); err != nil {
		return fail(c, err)
	}
	return c.JSON(s.Snapshot())
}

// ============================================================
// Elements
// ============================================================

func elementID(c fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("eid"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid element id %q", c.Params("eid"))
	}
	return id, nil
}

func (h *Handler) UpdateElement(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := elementID(c)
	if err != nil {
		return badRequest(c, err)
	}
	var req patchRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	if err := s.UpdateElement(id, req.patch()); err != nil {
		return fail(c, err)
	}
	return c.JSON(s.Snapshot())
}

func (h *Handler) DeleteElement(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := elementID(c)
	if err != nil {
		return badRequest(c, err)
	}
	if err := s.DeleteElement(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(s.Snapshot())
}

// ============================================================
// View
// ============================================================

func (h *Handler) SetCanvas(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	var req canvasRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	if err := s.SetCanvas(req.Width, req.Height); err != nil {
		return fail(c, err)
	}
	return c.JSON(s.Snapshot())
}

// Zoom: action in/out шагает на 0.2, set задает значение, reset
// возвращает 1. Значение всегда ограничено диапазоном [0.5, 3].
func (h *Handler) Zoom(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	var req zoomRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}

	var zoom float64
	switch req.Action {
	case "in":
		zoom = s.ZoomIn()
	case "out":
		zoom = s.ZoomOut()
	case "reset":
		zoom = s.SetZoom(1)
	default:
		if req.Zoom == 0 {
			return badRequest(c, fmt.Errorf("zoom required"))
		}
		zoom = s.SetZoom(req.Zoom)
	}
	return c.JSON(fiber.Map{"zoom": zoom})
}

func (h *Handler) SetDebug(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	var req debugRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}
	s.SetDebug(req.Enabled)
	return c.JSON(fiber.Map{"debug": req.Enabled})
}

// Frame отдает текущий кадр редактора в PNG.
func (h *Handler) Frame(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	img, err := s.Frame()
	if err != nil {
		return fail(c, err)
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		return fail(c, err)
	}
	c.Set("Cache-Control", "no-store")
	c.Set("Content-Type", "image/png")
	return c.Send(data)
}

// ============================================================
// Persistence
// ============================================================

func (h *Handler) Save(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	if err := s.Save(context.Background()); err != nil {
		return fail(c, err)
	}
	return c.JSON(s.Snapshot())
}

// Export отдает документ экспорта и кладет его копию в exports/ карты.
func (h *Handler) Export(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	now := h.now()
	data, err := s.Export(now)
	if err != nil {
		return fail(c, err)
	}

	if url, err := h.assets.SaveExport(s.MapID(), data, now); err != nil {
		log.WithError(err).WithField("map", s.MapID()).Warn("export copy not saved")
	} else {
		c.Set("X-Export-Url", url)
	}

	filename := fmt.Sprintf("mapa-%s.json", now.Format("2006-01-02"))
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Set("Content-Type", "application/json")
	return c.Send(data)
}

// Import заменяет коллекцию документом экспорта (тело JSON или поле file).
func (h *Handler) Import(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}

	data := c.Body()
	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		data, err = formFile(c)
		if err != nil {
			return badRequest(c, err)
		}
	}
	if len(data) == 0 {
		return badRequest(c, errEmptyBody)
	}

	if _, err := s.Import(data); err != nil {
		return badRequest(c, err)
	}
	return c.JSON(s.Snapshot())
}

func (h *Handler) RefreshStores(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	stores, err := s.RefreshStores(context.Background())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"stores":  stores,
		"session": s.Snapshot(),
	})
}

// ============================================================
// Background image
// ============================================================

func (h *Handler) UploadBackground(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, fmt.Errorf("file required"))
	}
	data, err := readHeader(fileHeader)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	meta, err := s.UploadBackground(fileHeader.Filename, data)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(meta)
}

// UpdateBackground меняет прозрачность и/или положение подложки.
func (h *Handler) UpdateBackground(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	var req backgroundRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err)
	}

	current := s.Snapshot().Background
	if current == nil {
		return fail(c, session.ErrNoBackground)
	}
	meta := *current
	if req.Opacity != nil {
		if meta, err = s.SetBackgroundOpacity(*req.Opacity); err != nil {
			return fail(c, err)
		}
	}
	if req.movesImage() {
		x, y, w, hh := meta.X, meta.Y, meta.Width, meta.Height
		if req.X != nil {
			x = *req.X
		}
		if req.Y != nil {
			y = *req.Y
		}
		if req.Width != nil {
			w = *req.Width
		}
		if req.Height != nil {
			hh = *req.Height
		}
		if meta, err = s.SetBackgroundTransform(x, y, w, hh); err != nil {
			return fail(c, err)
		}
	}
	return c.JSON(meta)
}

func (h *Handler) RemoveBackground(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return fail(c, err)
	}
	if err := s.RemoveBackground(); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"removed": true})
}

// ============================================================
// Multipart helpers
// ============================================================

func formFile(c fiber.Ctx) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file required")
	}
	return readHeader(fileHeader)
}

func readHeader(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
