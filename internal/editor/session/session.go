package session

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"fair-mapper/internal/common/logger"
	"fair-mapper/internal/editor/codec"
	"fair-mapper/internal/editor/geometry"
	"fair-mapper/internal/editor/gesture"
	"fair-mapper/internal/editor/layers"
	"fair-mapper/internal/editor/models"
	"fair-mapper/internal/editor/render"
)

var log = logger.Get("session")

// ============================================================
// Collaborators
// ============================================================

// Persistence хранит коллекцию карты в виде фич.
type Persistence interface {
	SaveFeatures(ctx context.Context, mapID string, features []models.Feature) error
	LoadFeatures(ctx context.Context, mapID string) ([]models.Feature, error)
}

// StoreDirectory отдаёт справочник магазинов карты.
type StoreDirectory interface {
	ListStores(ctx context.Context, mapID string) ([]models.Store, error)
}

// ImageUploader сохраняет файл подложки и возвращает его URL.
type ImageUploader interface {
	SaveBackground(mapID, filename string, data []byte) (string, error)
}

// Зависимости сессии.
type Deps struct {
	Persistence Persistence
	Stores      StoreDirectory
	Images      ImageUploader
	Renderer    *render.Renderer
}

// ============================================================
// Events
// ============================================================

type EventKind string

const (
	EventDown   EventKind = "down"
	EventMove   EventKind = "move"
	EventUp     EventKind = "up"
	EventCancel EventKind = "cancel"
)

// Event: событие указателя в экранных координатах холста.
type Event struct {
	Kind EventKind `json:"kind" validate:"required,oneof=down move up cancel"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// ============================================================
// Session
// ============================================================

// Session обслуживает один редактор карты. Все методы сериализуются мьютексом,
// что заменяет очередь событий.
type Session struct {
	mu sync.Mutex

	id    string
	mapID string
	deps  Deps

	machine   *gesture.Machine
	stores    []models.Store
	width     int
	height    int
	zoom      float64
	debug     bool
	bg        *render.Background
	transform geometry.Transform

	dirty   bool
	savedAt time.Time
	touched time.Time
}

// Open загружает карту, декодирует фичи и проецирует на них магазины.
// Недоступный справочник магазинов не мешает открытию.
func Open(ctx context.Context, id, mapID string, deps Deps, width, height int) (*Session, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("open session: %w: %dx%d", render.ErrCanvasSize, width, height)
	}
	s := &Session{
		id:      id,
		mapID:   mapID,
		deps:    deps,
		machine: gesture.New(models.Layers{}, 1),
		width:   width,
		height:  height,
		zoom:    1,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(ctx context.Context) error {
	features, err := s.deps.Persistence.LoadFeatures(ctx, s.mapID)
	if err != nil {
		return fmt.Errorf("load map %s: %w", s.mapID, err)
	}
	l, nextID := codec.Decode(features)

	stores, err := s.deps.Stores.ListStores(ctx, s.mapID)
	if err != nil {
		log.WithField("map", s.mapID).Warnf("list stores: %v", err)
	} else {
		s.stores = stores
	}

	s.machine.Replace(layers.Enrich(l, s.stores), nextID)
	s.dirty = false
	s.touch()
	log.WithField("map", s.mapID).Infof("session %s: loaded %d elements", s.id, l.Len())
	return nil
}

func (s *Session) ID() string    { return s.id }
func (s *Session) MapID() string { return s.mapID }

// LastActive возвращает время последнего обращения.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) touch() {
	s.touched = time.Now()
	s.transform = geometry.ForLayers(s.machine.Layers(), float64(s.width), float64(s.height), s.zoom)
}

// Reload перечитывает карту из хранилища; несохранённые изменения теряются.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// ============================================================
// Tools & editing
// ============================================================

func (s *Session) SetTool(t models.Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.SetTool(t)
	s.touch()
}

func (s *Session) SetDrawMode(layer models.LayerType, subtype string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.SetDrawMode(layer, subtype)
	s.touch()
}

func (s *Session) Select(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.touch()
	return s.machine.Select(id)
}

// UpdateElement применяет патч. При смене магазина данные магазина
// проецируются заново.
func (s *Session) UpdateElement(id int, p models.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.machine.Update(id, p); err != nil {
		return err
	}
	if p.StoreID != nil {
		s.machine.Enrich(s.stores)
	}
	s.dirty = true
	s.touch()
	return nil
}

func (s *Session) DeleteElement(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.machine.Delete(id); err != nil {
		return err
	}
	s.dirty = true
	s.touch()
	return nil
}

// HandleEvent переводит событие в мировые координаты через последнее
// преобразование и передаёт его автомату жестов.
func (s *Session) HandleEvent(ev Event) (gesture.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.transform.ScreenToWorld(models.Point{X: ev.X, Y: ev.Y})
	var out gesture.Outcome
	switch ev.Kind {
	case EventDown:
		out = s.machine.PointerDown(p)
	case EventMove:
		out = s.machine.PointerMove(p)
	case EventUp:
		out = s.machine.PointerUp(p)
	case EventCancel:
		s.machine.Cancel()
	default:
		return gesture.Outcome{}, fmt.Errorf("%w: kind %q", ErrInvalidEvent, ev.Kind)
	}
	if out.LayersChanged {
		s.dirty = true
	}
	s.touch()
	return out, nil
}

// ============================================================
// View
// ============================================================

// SetCanvas меняет размер холста в пикселях.
func (s *Session) SetCanvas(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", render.ErrCanvasSize, width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.touch()
	return nil
}

// SetZoom задаёт масштаб с ограничением диапазона и возвращает итоговое значение.
func (s *Session) SetZoom(z float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = geometry.ClampZoom(z)
	s.touch()
	return s.zoom
}

func (s *Session) ZoomIn() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = geometry.ZoomIn(s.zoom)
	s.touch()
	return s.zoom
}

func (s *Session) ZoomOut() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = geometry.ZoomOut(s.zoom)
	s.touch()
	return s.zoom
}

func (s *Session) SetDebug(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = on
}

// Frame рисует текущий кадр и запоминает его преобразование.
func (s *Session) Frame() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.machine.State()
	scene := render.Scene{
		Layers:     s.machine.Layers(),
		Selected:   st.Selected,
		Tool:       st.Tool,
		Zoom:       s.zoom,
		Background: s.bg,
		Debug:      s.debug,
	}
	if r, layer, ok := s.machine.Preview(); ok {
		scene.Preview = &render.Preview{Rect: r, Layer: layer}
	}

	img, t, err := s.deps.Renderer.Render(scene, s.width, s.height)
	if err != nil {
		return nil, fmt.Errorf("render frame: %w", err)
	}
	s.transform = t
	return img, nil
}

// ============================================================
// Persistence
// ============================================================

// Save кодирует коллекцию и сохраняет её. При ошибке возвращается *SaveError,
// состояние не меняется.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	features := codec.Encode(s.machine.Layers())
	if err := s.deps.Persistence.SaveFeatures(ctx, s.mapID, features); err != nil {
		log.WithField("map", s.mapID).Errorf("save: %v", err)
		return &SaveError{MapID: s.mapID, Err: err}
	}
	s.dirty = false
	s.savedAt = time.Now()
	log.WithField("map", s.mapID).Infof("saved %d features", len(features))
	return nil
}

// Export сериализует документ экспорта.
func (s *Session) Export(now time.Time) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codec.Export(s.machine.Layers(), s.machine.NextID(), now)
}

// Import заменяет коллекцию документом экспорта. Битый документ не меняет состояние.
func (s *Session) Import(data []byte) (models.MapData, error) {
	doc, err := codec.Import(data)
	if err != nil {
		return models.MapData{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Replace(layers.Enrich(doc.Layers, s.stores), doc.NextID)
	s.dirty = true
	s.touch()
	return doc, nil
}

// RefreshStores перечитывает справочник и заново проецирует магазины.
func (s *Session) RefreshStores(ctx context.Context) ([]models.Store, error) {
	stores, err := s.deps.Stores.ListStores(ctx, s.mapID)
	if err != nil {
		return nil, fmt.Errorf("refresh stores: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.machine.Layers()
	s.stores = stores
	s.machine.Enrich(stores)
	if layersDiffer(before, s.machine.Layers()) {
		s.dirty = true
	}
	s.touch()
	return stores, nil
}

func layersDiffer(a, b models.Layers) bool {
	ea, eb := layers.AllInZOrder(a), layers.AllInZOrder(b)
	if len(ea) != len(eb) {
		return true
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return true
		}
	}
	return false
}

// ============================================================
// Snapshot
// ============================================================

type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Snapshot: состояние сессии для JSON-ответов.
type Snapshot struct {
	ID         string                   `json:"id"`
	MapID      string                   `json:"mapId"`
	State      gesture.State            `json:"state"`
	Layers     models.Layers            `json:"layers"`
	Counts     map[models.LayerType]int `json:"counts"`
	NextID     int                      `json:"nextId"`
	Canvas     Canvas                   `json:"canvas"`
	Zoom       float64                  `json:"zoom"`
	Debug      bool                     `json:"debug"`
	Transform  geometry.Transform       `json:"transform"`
	Background *models.BackgroundImage  `json:"background,omitempty"`
	Preview    *render.Preview          `json:"preview,omitempty"`
	Dirty      bool                     `json:"dirty"`
	SavedAt    *time.Time               `json:"savedAt,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.machine.Layers()
	snap := Snapshot{
		ID:        s.id,
		MapID:     s.mapID,
		State:     s.machine.State(),
		Layers:    l,
		Counts:    layers.Counts(l),
		NextID:    s.machine.NextID(),
		Canvas:    Canvas{Width: s.width, Height: s.height},
		Zoom:      s.zoom,
		Debug:     s.debug,
		Transform: s.transform,
		Dirty:     s.dirty,
	}
	if s.bg != nil {
		meta := s.bg.Meta
		snap.Background = &meta
	}
	if r, layer, ok := s.machine.Preview(); ok {
		snap.Preview = &render.Preview{Rect: r, Layer: layer}
	}
	if !s.savedAt.IsZero() {
		t := s.savedAt
		snap.SavedAt = &t
	}
	return snap
}
