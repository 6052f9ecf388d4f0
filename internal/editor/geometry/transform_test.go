package geometry

import (
	"math"
	"testing"

	"fair-mapper/internal/editor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func rect(id int, x, y, w, h float64) models.Base {
	return models.Base{ID: id, X: x, Y: y, Width: w, Height: h}
}

func TestBoundingBoxEmpty(t *testing.T) {
	_, ok := BoundingBox(models.Layers{})
	assert.False(t, ok)
}

func TestBoundingBoxSkipsInvalid(t *testing.T) {
	layers := models.Layers{
		Background: []models.BackgroundElement{{Base: rect(1, 0, 0, 100, 50)}},
		Locations: []models.LocationElement{
			{Base: rect(2, 90, 40, 30, 30)},
			{Base: rect(3, -500, -500, math.NaN(), 10)},
			{Base: rect(4, 1000, 1000, -1, 10)},
		},
	}

	box, ok := BoundingBox(layers)
	require.True(t, ok)
	assert.Equal(t, r2.Vec{X: 0, Y: 0}, box.Min)
	assert.Equal(t, r2.Vec{X: 120, Y: 70}, box.Max)
}

func TestComputeTransformFitsWithoutUpscaling(t *testing.T) {
	box := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 100, Y: 100}}

	tr := ComputeTransform(box, 200, 200, 1)

	assert.InDelta(t, 1.0, tr.Scale, 1e-9)
	assert.InDelta(t, 50.0, tr.Offset.X, 1e-9)
	assert.InDelta(t, 50.0, tr.Offset.Y, 1e-9)
}

func TestComputeTransformShrinksLargeContent(t *testing.T) {
	box := r2.Box{Min: r2.Vec{X: 100, Y: 100}, Max: r2.Vec{X: 1100, Y: 600}}

	tr := ComputeTransform(box, 600, 400, 1)

	// min((600-80)/1000, (400-80)/500) = 0.52
	assert.InDelta(t, 0.52, tr.Scale, 1e-9)
	center := tr.WorldToScreen(models.Point{X: 600, Y: 350})
	assert.InDelta(t, 300.0, center.X, 1e-9)
	assert.InDelta(t, 200.0, center.Y, 1e-9)
}

func TestComputeTransformZoomKeepsCenter(t *testing.T) {
	box := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 100, Y: 100}}

	tr := ComputeTransform(box, 400, 400, 2)

	assert.InDelta(t, 2.0, tr.Scale, 1e-9)
	c := tr.WorldToScreen(models.Point{X: 50, Y: 50})
	assert.InDelta(t, 200.0, c.X, 1e-9)
	assert.InDelta(t, 200.0, c.Y, 1e-9)
}

func TestComputeTransformDegenerateBox(t *testing.T) {
	box := r2.Box{Min: r2.Vec{X: 5, Y: 5}, Max: r2.Vec{X: 5, Y: 5}}

	tr := ComputeTransform(box, 300, 300, 1)

	assert.False(t, math.IsInf(tr.Scale, 0))
	assert.False(t, math.IsNaN(tr.Offset.X))
	assert.Greater(t, tr.Scale, 0.0)
}

func TestTransformRoundTrip(t *testing.T) {
	transforms := []Transform{
		Identity(),
		{Scale: 0.37, Offset: models.Point{X: 12.5, Y: -40}},
		{Scale: 3, Offset: models.Point{X: -1000, Y: 77.7}},
	}
	points := []models.Point{{X: 0, Y: 0}, {X: 123.456, Y: -987.1}, {X: 1e6, Y: 3.3}}

	for _, tr := range transforms {
		for _, p := range points {
			back := tr.ScreenToWorld(tr.WorldToScreen(p))
			assert.InDelta(t, p.X, back.X, 1e-6)
			assert.InDelta(t, p.Y, back.Y, 1e-6)
		}
	}
}

func TestForLayersEmptyIsIdentity(t *testing.T) {
	assert.Equal(t, Identity(), ForLayers(models.Layers{}, 800, 600, 2))
}

func TestZoomSteps(t *testing.T) {
	assert.InDelta(t, 1.2, ZoomIn(1), 1e-9)
	assert.InDelta(t, 0.8, ZoomOut(1), 1e-9)
	assert.InDelta(t, 3.0, ZoomIn(2.9), 1e-9)
	assert.InDelta(t, 0.5, ZoomOut(0.6), 1e-9)
	assert.InDelta(t, 0.5, ClampZoom(0.1), 1e-9)
}
