package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fair-mapper/internal/common/logger"
	"fair-mapper/internal/editor/gesture"
	emodels "fair-mapper/internal/editor/models"
	"fair-mapper/internal/editor/render"
	"fair-mapper/internal/editor/session"
	"fair-mapper/internal/mapper/models"
	"fair-mapper/internal/mapper/repository"
	"fair-mapper/internal/mapper/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

var log = logger.Get("handlers")

var (
	errEmptyBody   = errors.New("empty body")
	errInvalidJSON = errors.New("invalid json")
)

// Repository хранит карты и справочник магазинов.
type Repository interface {
	Ping(ctx context.Context) error
	CreateMap(ctx context.Context, name, description string, features []emodels.Feature) (*models.Map, error)
	CreateSampleMap(ctx context.Context, name, description string) (string, error)
	GetMap(ctx context.Context, id string) (*models.Map, error)
	ListMaps(ctx context.Context) ([]models.MapSummary, error)
	DeleteMap(ctx context.Context, id string) error
	SaveFeatures(ctx context.Context, mapID string, features []emodels.Feature) error
	CreateStore(ctx context.Context, s emodels.Store) (emodels.Store, error)
	ListStores(ctx context.Context, mapID string) ([]emodels.Store, error)
	DeleteStore(ctx context.Context, id string) error
}

// Файловое хранилище карт.
type Assets interface {
	SaveExport(mapID string, data []byte, now time.Time) (string, error)
	Resolve(url string) (string, error)
}

// ============================================================
// Mapper Handler
// ============================================================

type Handler struct {
	repo     Repository
	sessions *session.Registry
	assets   Assets
	renderer *render.Renderer
	validate *validator.Validate
	canvas   session.Canvas
	now      func() time.Time
}

func New(repo Repository, sessions *session.Registry, assets Assets, renderer *render.Renderer, canvas session.Canvas) *Handler {
	return &Handler{
		repo:     repo,
		sessions: sessions,
		assets:   assets,
		renderer: renderer,
		validate: newValidator(),
		canvas:   canvas,
		now:      time.Now,
	}
}

// Register вешает маршруты сервиса на router.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/health/live", LivenessProbe)
	r.Get("/health/ready", h.ReadinessProbe)

	maps := r.Group("/maps")
	maps.Post("/", h.CreateMap)
	maps.Get("/", h.ListMaps)
	maps.Get("/:id", h.GetMap)
	maps.Delete("/:id", h.DeleteMap)
	maps.Put("/:id/features", h.SaveFeatures)
	maps.Get("/:id/stores", h.ListStores)
	maps.Post("/:id/stores", h.CreateStore)
	maps.Post("/:id/sessions", h.OpenSession)

	r.Delete("/stores/:id", h.DeleteStore)

	s := r.Group("/sessions/:sid")
	s.Get("/", h.GetSession)
	s.Delete("/", h.CloseSession)
	s.Post("/tool", h.SetTool)
	s.Post("/draw-mode", h.SetDrawMode)
	s.Post("/events", h.HandleEvents)
	s.Post("/select", h.Select)
	s.Patch("/elements/:eid", h.UpdateElement)
	s.Delete("/elements/:eid", h.DeleteElement)
	s.Post("/canvas", h.SetCanvas)
	s.Post("/zoom", h.Zoom)
	s.Post("/debug", h.SetDebug)
	s.Get("/frame.png", h.Frame)
	s.Post("/save", h.Save)
	s.Get("/export", h.Export)
	s.Post("/import", h.Import)
	s.Post("/background", h.UploadBackground)
	s.Patch("/background", h.UpdateBackground)
	s.Delete("/background", h.RemoveBackground)
	s.Post("/stores/refresh", h.RefreshStores)

	r.Get("/assets/*", h.Asset)

	pub := r.Group("/public/maps/:id")
	pub.Get("/", h.PublicMap)
	pub.Get("/render.png", h.PublicRender)
	pub.Get("/store-at", h.PublicStoreAt)
}

// ============================================================
// Helpers
// ============================================================

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("tool", func(fl validator.FieldLevel) bool {
		_, err := emodels.ParseTool(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("layer", func(fl validator.FieldLevel) bool {
		_, err := emodels.ParseLayer(fl.Field().String())
		return err == nil
	})
	return v
}

// bind разбирает JSON-тело и проверяет теги validate.
func (h *Handler) bind(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return errInvalidJSON
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("validation: %w", err)
	}
	return nil
}

func badRequest(c fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// fail переводит доменную ошибку в HTTP-ответ.
func fail(c fiber.Ctx, err error) error {
	var (
		saveErr  *session.SaveError
		imageErr *session.ImageError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, gesture.ErrElementNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNoBackground):
		status = http.StatusConflict
	case errors.Is(err, render.ErrCanvasSize),
		errors.Is(err, session.ErrInvalidEvent),
		errors.Is(err, storage.ErrBadPath):
		status = http.StatusBadRequest
	case errors.As(err, &saveErr):
		status = http.StatusBadGateway
	case errors.As(err, &imageErr):
		status = http.StatusBadGateway
		if imageErr.Op == "decode" {
			status = http.StatusUnprocessableEntity
		}
	}

	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (h *Handler) session(c fiber.Ctx) (*session.Session, error) {
	return h.sessions.Get(c.Params("sid"))
}
