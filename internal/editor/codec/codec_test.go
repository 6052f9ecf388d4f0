package codec

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"fair-mapper/internal/editor/elements"
	"fair-mapper/internal/editor/layers"
	"fair-mapper/internal/editor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func polygon(ring ...[]float64) *models.Geometry {
	return &models.Geometry{Type: models.PolygonType, Coordinates: [][][]float64{ring}}
}

func TestDecodeLocationFeature(t *testing.T) {
	features := []models.Feature{{
		Type:       models.FeatureType,
		ID:         "7",
		Geometry:   polygon([]float64{0, 0}, []float64{30, 0}, []float64{30, 20}, []float64{0, 20}, []float64{0, 0}),
		Properties: &models.Properties{Type: TypeLocation, Name: "Banca"},
	}}

	l, next := Decode(features)
	require.Len(t, l.Locations, 1)
	el := l.Locations[0]
	assert.Equal(t, models.Rect{X: 0, Y: 0, Width: 30, Height: 20}, el.Rect())
	assert.Equal(t, 7, el.ID)
	assert.Equal(t, "Banca", el.Name)
	assert.Equal(t, "Outros", el.Type)
	assert.Equal(t, DefaultColor, el.Color)
	assert.Equal(t, DefaultBorderColor, el.BorderColor)
	assert.Equal(t, 8, next)
}

func TestDecodeSkipsMalformedFeatures(t *testing.T) {
	good := polygon([]float64{0, 0}, []float64{10, 0}, []float64{10, 10}, []float64{0, 10}, []float64{0, 0})
	features := []models.Feature{
		{ID: "1", Geometry: nil, Properties: &models.Properties{Type: TypeLocation}},
		{ID: "2", Geometry: polygon([]float64{0, 0}, []float64{1, 0}, []float64{1, 1}), Properties: &models.Properties{Type: TypeLocation}},
		{ID: "3", Geometry: good, Properties: nil},
		{ID: "4", Geometry: &models.Geometry{Type: "Point"}, Properties: &models.Properties{Type: TypeLocation}},
		{ID: "5", Geometry: polygon([]float64{math.NaN(), 0}, []float64{10, 0}, []float64{10, 10}, []float64{0, 10}), Properties: &models.Properties{Type: TypeLocation}},
		{ID: "6", Geometry: good, Properties: &models.Properties{Type: TypeSubmap}},
	}

	l, next := Decode(features)
	assert.Equal(t, 1, l.Len())
	require.Len(t, l.Submaps, 1)
	assert.Equal(t, 6, l.Submaps[0].ID)
	assert.Equal(t, "Setor", l.Submaps[0].Type)
	assert.Equal(t, 7, next)
}

func TestDecodeUnknownTypeFallsBackToBackground(t *testing.T) {
	features := []models.Feature{{
		ID:         "3",
		Geometry:   polygon([]float64{5, 5}, []float64{15, 5}, []float64{15, 25}, []float64{5, 25}, []float64{5, 5}),
		Properties: &models.Properties{Type: "quiosque", BackgroundType: "Praça"},
	}}

	l, _ := Decode(features)
	require.Len(t, l.Background, 1)
	assert.Equal(t, "Customizado", l.Background[0].Type)
}

func TestDecodeReassignsBadIDs(t *testing.T) {
	g := polygon([]float64{0, 0}, []float64{10, 0}, []float64{10, 10}, []float64{0, 10}, []float64{0, 0})
	props := &models.Properties{Type: TypeBackground}
	features := []models.Feature{
		{ID: "abc", Geometry: g, Properties: props},
		{ID: "4", Geometry: g, Properties: props},
		{ID: "4", Geometry: g, Properties: props},
		{ID: "", Geometry: g, Properties: props},
	}

	l, next := Decode(features)
	got := []int{}
	for _, e := range l.Background {
		got = append(got, e.ID)
	}
	assert.Equal(t, []int{5, 4, 6, 7}, got)
	assert.Equal(t, 8, next)
}

func TestDecodeEmpty(t *testing.T) {
	l, next := Decode(nil)
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 1, next)
}

func TestEncodeRing(t *testing.T) {
	l := layers.Add(models.Layers{}, elements.Create(models.LayerLocations, 9, models.Rect{X: 10, Y: 20, Width: 30, Height: 40}, "Alimentação"))

	features := Encode(l)
	require.Len(t, features, 1)
	f := features[0]
	assert.Equal(t, models.FeatureID("9"), f.ID)
	assert.Equal(t, TypeLocation, f.Properties.Type)
	assert.Equal(t, "Alimentação", f.Properties.LocationType)
	assert.Equal(t, [][][]float64{{{10, 20}, {40, 20}, {40, 60}, {10, 60}, {10, 20}}}, f.Geometry.Coordinates)
}

func TestRoundTrip(t *testing.T) {
	l := elements.SampleLayers()
	linked := l.Locations[0]
	linked.StoreID = "store-1"
	l.Locations[0] = linked

	back, next := Decode(Encode(l))

	assert.Equal(t, 21, next)
	assert.Equal(t, l, back)
}

func TestDecodeJSONSkipsBrokenItems(t *testing.T) {
	data := []byte(`[
		{"type":"Feature","id":1,"geometry":{"type":"Polygon","coordinates":"oops"},"properties":{"type":"local"}},
		{"type":"Feature","id":"2","geometry":{"type":"Polygon","coordinates":[[[0,0],[30,0],[30,20],[0,20],[0,0]]]},"properties":{"type":"local","name":"A"}}
	]`)

	l, next, err := DecodeJSON(data)
	require.NoError(t, err)
	require.Len(t, l.Locations, 1)
	assert.Equal(t, "A", l.Locations[0].Name)
	assert.Equal(t, 3, next)

	_, _, err = DecodeJSON([]byte(`{"features": []}`))
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	l := elements.SampleLayers()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	data, err := Export(l, 21, now)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "1.0", raw["version"])
	assert.Equal(t, "2026-03-01T12:00:00Z", raw["timestamp"])
	assert.Equal(t, float64(21), raw["nextId"])

	doc, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, l, doc.Layers)
	assert.Equal(t, 21, doc.NextID)
}

func TestImportFixesStaleNextID(t *testing.T) {
	doc, err := Import([]byte(`{"layers":{"locations":[{"id":9,"name":"x","x":0,"y":0,"width":10,"height":10}]},"nextId":2,"version":"1.0"}`))
	require.NoError(t, err)
	assert.Equal(t, 10, doc.NextID)
	assert.NotNil(t, doc.Layers.Background)
}

func TestImportRepairsDuplicateIDs(t *testing.T) {
	doc, err := Import([]byte(`{"layers":{
		"background":[{"id":5,"type":"corridor","x":0,"y":0,"width":100,"height":100}],
		"locations":[{"id":5,"name":"Loja","x":10,"y":10,"width":20,"height":20},{"id":0,"name":"Zero","x":50,"y":50,"width":5,"height":5}]
	},"nextId":3,"version":"1.0"}`))
	require.NoError(t, err)

	require.Len(t, doc.Layers.Background, 1)
	require.Len(t, doc.Layers.Locations, 2)
	assert.Equal(t, 5, doc.Layers.Background[0].ID)
	assert.Equal(t, 6, doc.Layers.Locations[0].ID)
	assert.Equal(t, "Loja", doc.Layers.Locations[0].Name)
	assert.Equal(t, 7, doc.Layers.Locations[1].ID)
	assert.Equal(t, 8, doc.NextID)

	seen := map[int]bool{}
	for _, e := range layers.AllInZOrder(doc.Layers) {
		assert.False(t, seen[e.Common().ID], "id %d repeated", e.Common().ID)
		seen[e.Common().ID] = true
	}
}
