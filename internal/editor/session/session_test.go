package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"
	"time"

	"fair-mapper/internal/common/logger"
	"fair-mapper/internal/editor/codec"
	"fair-mapper/internal/editor/elements"
	"fair-mapper/internal/editor/gesture"
	"fair-mapper/internal/editor/models"
	"fair-mapper/internal/editor/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Fakes
// ============================================================

type memPersistence struct {
	features map[string][]models.Feature
	saveErr  error
	loadErr  error
}

func (p *memPersistence) SaveFeatures(_ context.Context, mapID string, f []models.Feature) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.features[mapID] = f
	return nil
}

func (p *memPersistence) LoadFeatures(_ context.Context, mapID string) ([]models.Feature, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	return p.features[mapID], nil
}

type memStores struct {
	stores []models.Store
	err    error
}

func (s *memStores) ListStores(context.Context, string) ([]models.Store, error) {
	return s.stores, s.err
}

type memImages struct {
	saved map[string][]byte
	err   error
}

func (m *memImages) SaveBackground(mapID, filename string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved[filename] = data
	return "/assets/" + mapID + "/backgrounds/" + filename, nil
}

type fixture struct {
	persistence *memPersistence
	stores      *memStores
	images      *memImages
	deps        Deps
}

func newFixture(l models.Layers) *fixture {
	f := &fixture{
		persistence: &memPersistence{features: map[string][]models.Feature{"map-1": codec.Encode(l)}},
		stores:      &memStores{},
		images:      &memImages{saved: map[string][]byte{}},
	}
	f.deps = Deps{
		Persistence: f.persistence,
		Stores:      f.stores,
		Images:      f.images,
		Renderer:    render.NewRenderer(render.DefaultOptions(), nil),
	}
	return f
}

func oneLocation() models.Layers {
	return models.Layers{Locations: []models.LocationElement{{
		Base: models.Base{ID: 1, Name: "Banca", Width: 100, Height: 100, Color: "#4CAF50", BorderColor: "#2E7D32"},
		Type: "Alimentação",
	}}}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// ============================================================
// Tests
// ============================================================

func TestOpenEnrichesStores(t *testing.T) {
	l := oneLocation()
	l.Locations[0].StoreID = "s1"
	f := newFixture(l)
	f.stores.stores = []models.Store{{ID: "s1", Name: "Pastelaria", Category: "food"}}

	s, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Layers.Locations, 1)
	assert.Equal(t, "Pastelaria", snap.Layers.Locations[0].StoreName)
	assert.Equal(t, "food", snap.Layers.Locations[0].StoreCategory)
	assert.Equal(t, 2, snap.NextID)
	assert.False(t, snap.Dirty)
}

func TestOpenToleratesStoreDirectoryFailure(t *testing.T) {
	f := newFixture(oneLocation())
	f.stores.err = errors.New("directory down")

	s, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Layers.Locations, 1)
}

func TestOpenFailsWhenLoadFails(t *testing.T) {
	f := newFixture(oneLocation())
	f.persistence.loadErr = errors.New("db locked")

	_, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	assert.Error(t, err)

	_, err = Open(context.Background(), "sess", "map-1", f.deps, 0, 200)
	assert.ErrorIs(t, err, render.ErrCanvasSize)
}

func TestEventsUseScreenCoordinates(t *testing.T) {
	f := newFixture(oneLocation())
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	require.NoError(t, err)

	// масштаб 1, смещение (50, 50): мировая (10, 10) = экранная (60, 60)
	s.SetTool(models.ToolMove)
	_, err = s.HandleEvent(Event{Kind: EventDown, X: 60, Y: 60})
	require.NoError(t, err)
	out, err := s.HandleEvent(Event{Kind: EventMove, X: 80, Y: 70})
	require.NoError(t, err)
	assert.True(t, out.LayersChanged)
	_, err = s.HandleEvent(Event{Kind: EventUp, X: 80, Y: 70})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, models.Rect{X: 20, Y: 10, Width: 100, Height: 100}, snap.Layers.Locations[0].Rect())
	assert.True(t, snap.Dirty)
	assert.Equal(t, 1, snap.State.Selected)

	_, err = s.HandleEvent(Event{Kind: "wheel"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestDrawOnEmptyMapUsesIdentity(t *testing.T) {
	f := newFixture(models.Layers{})
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 300, 300)
	require.NoError(t, err)

	s.SetDrawMode(models.LayerSubmaps, "")
	_, err = s.HandleEvent(Event{Kind: EventDown, X: 10, Y: 20})
	require.NoError(t, err)
	_, err = s.HandleEvent(Event{Kind: EventMove, X: 50, Y: 60})
	require.NoError(t, err)
	require.NotNil(t, s.Snapshot().Preview)

	out, err := s.HandleEvent(Event{Kind: EventUp, X: 70, Y: 80})
	require.NoError(t, err)
	require.NotNil(t, out.Created)
	assert.Equal(t, models.Rect{X: 10, Y: 20, Width: 60, Height: 60}, out.Created.Common().Rect())
	assert.Nil(t, s.Snapshot().Preview)
}

func TestSaveFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(oneLocation())
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	require.NoError(t, err)

	name := "Nova"
	require.NoError(t, s.UpdateElement(1, models.Patch{Name: &name}))
	before := s.Snapshot()

	f.persistence.saveErr = errors.New("disk full")
	err = s.Save(context.Background())
	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, "map-1", saveErr.MapID)
	assert.Equal(t, before, s.Snapshot())

	f.persistence.saveErr = nil
	require.NoError(t, s.Save(context.Background()))
	snap := s.Snapshot()
	assert.False(t, snap.Dirty)
	assert.NotNil(t, snap.SavedAt)
	assert.Equal(t, "Nova", f.persistence.features["map-1"][0].Properties.Name)
}

func TestUpdateStoreLinkReEnriches(t *testing.T) {
	f := newFixture(oneLocation())
	f.stores.stores = []models.Store{{ID: "s9", Name: "Doceria", Category: "food", Logo: "/l.png"}}
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	require.NoError(t, err)

	id := "s9"
	require.NoError(t, s.UpdateElement(1, models.Patch{StoreID: &id}))
	loc := s.Snapshot().Layers.Locations[0]
	assert.Equal(t, "Doceria", loc.Name)
	assert.Equal(t, "/l.png", loc.StoreLogo)

	assert.ErrorIs(t, s.UpdateElement(42, models.Patch{}), gesture.ErrElementNotFound)
	assert.ErrorIs(t, s.DeleteElement(42), gesture.ErrElementNotFound)
}

func TestRefreshStores(t *testing.T) {
	l := oneLocation()
	l.Locations[0].StoreID = "s1"
	f := newFixture(l)
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	require.NoError(t, err)

	f.stores.stores = []models.Store{{ID: "s1", Name: "Renomeada", Category: "books"}}
	stores, err := s.RefreshStores(context.Background())
	require.NoError(t, err)
	assert.Len(t, stores, 1)
	snap := s.Snapshot()
	assert.Equal(t, "Renomeada", snap.Layers.Locations[0].Name)
	assert.True(t, snap.Dirty)

	f.stores.err = errors.New("down")
	_, err = s.RefreshStores(context.Background())
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	f := newFixture(oneLocation())
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	require.NoError(t, err)

	data, err := s.Export(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	other := newFixture(models.Layers{})
	s2, err := Open(context.Background(), "sess-2", "map-1", other.deps, 200, 200)
	require.NoError(t, err)
	doc, err := s2.Import(data)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.NextID)
	assert.Equal(t, s.Snapshot().Layers, s2.Snapshot().Layers)

	_, err = s2.Import([]byte("{"))
	assert.Error(t, err)
	assert.Len(t, s2.Snapshot().Layers.Locations, 1)
}

func TestImportedDuplicateIDsMoveOnlyGrabbedElement(t *testing.T) {
	f := newFixture(models.Layers{})
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	require.NoError(t, err)

	_, err = s.Import([]byte(`{"layers":{
		"background":[{"id":5,"type":"corridor","x":0,"y":0,"width":100,"height":100}],
		"locations":[{"id":5,"name":"Loja","x":10,"y":10,"width":20,"height":20}]
	},"nextId":6,"version":"1.0"}`))
	require.NoError(t, err)

	tr := s.Snapshot().Transform
	from := tr.WorldToScreen(models.Point{X: 15, Y: 15})
	to := tr.WorldToScreen(models.Point{X: 55, Y: 55})

	s.SetTool(models.ToolMove)
	_, err = s.HandleEvent(Event{Kind: EventDown, X: from.X, Y: from.Y})
	require.NoError(t, err)
	_, err = s.HandleEvent(Event{Kind: EventMove, X: to.X, Y: to.Y})
	require.NoError(t, err)
	_, err = s.HandleEvent(Event{Kind: EventUp, X: to.X, Y: to.Y})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.InDelta(t, 50, snap.Layers.Locations[0].X, 1e-9)
	assert.InDelta(t, 50, snap.Layers.Locations[0].Y, 1e-9)
	assert.Equal(t, models.Rect{X: 0, Y: 0, Width: 100, Height: 100}, snap.Layers.Background[0].Rect())
	assert.NotEqual(t, snap.Layers.Background[0].ID, snap.Layers.Locations[0].ID)
}

func TestBackgroundLifecycle(t *testing.T) {
	f := newFixture(oneLocation())
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 320, 240)
	require.NoError(t, err)

	_, err = s.SetBackgroundOpacity(0.3)
	assert.ErrorIs(t, err, ErrNoBackground)

	_, err = s.UploadBackground("plan.png", []byte("not an image"))
	var imgErr *ImageError
	require.ErrorAs(t, err, &imgErr)
	assert.Equal(t, "decode", imgErr.Op)
	assert.Nil(t, s.Snapshot().Background)

	meta, err := s.UploadBackground("plan.png", pngBytes(t, 64, 32))
	require.NoError(t, err)
	assert.Equal(t, models.BackgroundImage{
		Src:           "/assets/map-1/backgrounds/plan.png",
		Opacity:       0.5,
		Width:         320,
		Height:        240,
		NaturalWidth:  64,
		NaturalHeight: 32,
	}, meta)

	meta, err = s.SetBackgroundOpacity(0.8)
	require.NoError(t, err)
	assert.Equal(t, 0.8, meta.Opacity)
	_, err = s.SetBackgroundOpacity(1.5)
	assert.Error(t, err)

	meta, err = s.SetBackgroundTransform(10, 20, 30, 40)
	require.NoError(t, err)
	assert.Equal(t, models.Rect{X: 10, Y: 20, Width: 30, Height: 40}, meta.Rect())

	_, err = s.Frame()
	require.NoError(t, err)

	require.NoError(t, s.RemoveBackground())
	assert.ErrorIs(t, s.RemoveBackground(), ErrNoBackground)
}

func TestUploadRejectsOversizedImage(t *testing.T) {
	f := newFixture(oneLocation())
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 320, 240)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, maxBackgroundSide+1, 1))))
	_, err = s.UploadBackground("huge.png", buf.Bytes())
	var imgErr *ImageError
	require.ErrorAs(t, err, &imgErr)
	assert.Equal(t, "decode", imgErr.Op)
	assert.ErrorContains(t, err, "too large")
	assert.Empty(t, f.images.saved)
	assert.Nil(t, s.Snapshot().Background)
}

func TestUploadFailureKeepsPreviousBackground(t *testing.T) {
	f := newFixture(oneLocation())
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 320, 240)
	require.NoError(t, err)
	_, err = s.UploadBackground("a.png", pngBytes(t, 8, 8))
	require.NoError(t, err)

	f.images.err = errors.New("read-only fs")
	_, err = s.UploadBackground("b.png", pngBytes(t, 8, 8))
	var imgErr *ImageError
	require.ErrorAs(t, err, &imgErr)
	assert.Equal(t, "upload", imgErr.Op)
	assert.Equal(t, "/assets/map-1/backgrounds/a.png", s.Snapshot().Background.Src)
}

func TestFrameAndView(t *testing.T) {
	f := newFixture(oneLocation())
	s, err := Open(context.Background(), "sess", "map-1", f.deps, 200, 200)
	require.NoError(t, err)

	img, err := s.Frame()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())

	assert.ErrorIs(t, s.SetCanvas(0, 10), render.ErrCanvasSize)
	require.NoError(t, s.SetCanvas(640, 480))
	img, err = s.Frame()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 640, 480), img.Bounds())

	assert.Equal(t, 3.0, s.SetZoom(10))
	assert.Equal(t, 2.8, s.ZoomOut())
	assert.Equal(t, 3.0, s.ZoomIn())
	s.SetDebug(true)
	assert.True(t, s.Snapshot().Debug)
}

func TestRegistry(t *testing.T) {
	f := newFixture(elements.SampleLayers())
	r := NewRegistry(f.deps)

	s, err := r.Open(context.Background(), "map-1", 800, 600)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())

	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = r.Open(context.Background(), "map-1", 800, 600)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, r.CloseMap("map-1"))
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, r.Close(s.ID()), ErrSessionNotFound)

	_, err = r.Open(context.Background(), "map-1", 800, 600)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Expire(time.Hour))
	assert.Equal(t, 1, r.Expire(-time.Second))
}

func TestSweepLogsExpiryOnce(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	f := newFixture(oneLocation())
	r := NewRegistry(f.deps)
	_, err := r.Open(context.Background(), "map-1", 200, 200)
	require.NoError(t, err)
	_, err = r.Open(context.Background(), "map-1", 200, 200)
	require.NoError(t, err)

	ticks := make(chan time.Time, 2)
	ticks <- time.Now()
	ticks <- time.Now()
	close(ticks)
	r.Sweep(ticks, -time.Second)

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, strings.Count(buf.String(), "expired 2 idle sessions"))
	assert.NotContains(t, buf.String(), "expired 0")
}
