package geometry

import (
	"math"

	"fair-mapper/internal/editor/models"

	"gonum.org/v1/gonum/spatial/r2"
)

// ============================================================
// Bounding box
// ============================================================

const (
	// отступ контента от краёв холста, px
	Padding = 40.0
	// MinContentSize защищает масштаб от деления на ноль.
	MinContentSize = 1.0

	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.2
)

// BoundingBox возвращает рамку всех корректных элементов; ok=false для пустой коллекции.
func BoundingBox(layers models.Layers) (r2.Box, bool) {
	var box r2.Box
	found := false
	for _, e := range allElements(layers) {
		r := e.Common().Rect()
		if !r.Valid() {
			continue
		}
		lo := r2.Vec{X: r.X, Y: r.Y}
		hi := r2.Add(lo, r2.Vec{X: r.Width, Y: r.Height})
		if !found {
			box = r2.Box{Min: lo, Max: hi}
			found = true
			continue
		}
		box.Min = r2.Vec{X: math.Min(box.Min.X, lo.X), Y: math.Min(box.Min.Y, lo.Y)}
		box.Max = r2.Vec{X: math.Max(box.Max.X, hi.X), Y: math.Max(box.Max.Y, hi.Y)}
	}
	return box, found
}

func allElements(layers models.Layers) []models.Element {
	out := make([]models.Element, 0, layers.Len())
	for _, e := range layers.Background {
		out = append(out, e)
	}
	for _, e := range layers.Submaps {
		out = append(out, e)
	}
	for _, e := range layers.Locations {
		out = append(out, e)
	}
	return out
}

// ============================================================
// World <-> screen transform
// ============================================================

// Transform: screen = world*Scale + Offset.
type Transform struct {
	Scale  float64      `json:"scale"`
	Offset models.Point `json:"offset"`
}

// Identity используется для пустой коллекции.
func Identity() Transform {
	return Transform{Scale: 1}
}

func (t Transform) WorldToScreen(p models.Point) models.Point {
	v := r2.Add(r2.Scale(t.Scale, r2.Vec{X: p.X, Y: p.Y}), r2.Vec{X: t.Offset.X, Y: t.Offset.Y})
	return models.Point{X: v.X, Y: v.Y}
}

func (t Transform) ScreenToWorld(p models.Point) models.Point {
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	v := r2.Scale(1/scale, r2.Sub(r2.Vec{X: p.X, Y: p.Y}, r2.Vec{X: t.Offset.X, Y: t.Offset.Y}))
	return models.Point{X: v.X, Y: v.Y}
}

// RectToScreen переводит мировой прямоугольник в экранный.
func (t Transform) RectToScreen(r models.Rect) models.Rect {
	p := t.WorldToScreen(models.Point{X: r.X, Y: r.Y})
	return models.Rect{X: p.X, Y: p.Y, Width: r.Width * t.Scale, Height: r.Height * t.Scale}
}

// ComputeTransform вписывает рамку в холст с отступом Padding, не увеличивая
// базовый масштаб больше 1, и умножает его на zoom.
func ComputeTransform(box r2.Box, canvasW, canvasH, zoom float64) Transform {
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = 1
	}
	size := r2.Sub(box.Max, box.Min)
	contentW := math.Max(size.X, MinContentSize)
	contentH := math.Max(size.Y, MinContentSize)

	availW := math.Max(canvasW-2*Padding, 1)
	availH := math.Max(canvasH-2*Padding, 1)

	base := math.Min(math.Min(availW/contentW, availH/contentH), 1)
	scale := base * zoom

	return Transform{
		Scale: scale,
		Offset: models.Point{
			X: (canvasW-size.X*scale)/2 - box.Min.X*scale,
			Y: (canvasH-size.Y*scale)/2 - box.Min.Y*scale,
		},
	}
}

// ForLayers строит преобразование для текущей коллекции; для пустой возвращает Identity.
func ForLayers(layers models.Layers, canvasW, canvasH, zoom float64) Transform {
	box, ok := BoundingBox(layers)
	if !ok {
		return Identity()
	}
	return ComputeTransform(box, canvasW, canvasH, zoom)
}

// ============================================================
// Zoom controls
// ============================================================

// ClampZoom ограничивает zoom диапазоном [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

func ZoomIn(z float64) float64 {
	return ClampZoom(round2(z + ZoomStep))
}

func ZoomOut(z float64) float64 {
	return ClampZoom(round2(z - ZoomStep))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
