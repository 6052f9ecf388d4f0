package selection

import (
	"math"

	"fair-mapper/internal/editor/layers"
	"fair-mapper/internal/editor/models"
)

// ============================================================
// Hit testing (world coordinates)
// ============================================================

const (
	// Tolerance расширяет кликабельную область элемента.
	Tolerance = 5.0
	// допуск попадания в угловой маркер по каждой оси.
	HandleTolerance = 8.0
)

// HitTest возвращает верхний элемент под точкой или nil.
func HitTest(l models.Layers, p models.Point, tol float64) models.Element {
	return firstHit(layers.AllInHitTestOrder(l), p, tol)
}

// HitTestLayer проверяет только один слой (просмотрщик кликает по локациям).
func HitTestLayer(l models.Layers, layer models.LayerType, p models.Point, tol float64) models.Element {
	candidates := layers.Layer(l, layer)
	for i, j := 0, len(candidates)-1; i < j; i, j = i+1, j-1 {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return firstHit(candidates, p, tol)
}

func firstHit(candidates []models.Element, p models.Point, tol float64) models.Element {
	for _, e := range candidates {
		r := e.Common().Rect()
		if !r.Valid() {
			continue
		}
		if r.Contains(p, tol) {
			return e
		}
	}
	return nil
}

// Corners возвращает углы в порядке nw, ne, sw, se.
func Corners(r models.Rect) map[models.Handle]models.Point {
	return map[models.Handle]models.Point{
		models.HandleNW: {X: r.X, Y: r.Y},
		models.HandleNE: {X: r.X + r.Width, Y: r.Y},
		models.HandleSW: {X: r.X, Y: r.Y + r.Height},
		models.HandleSE: {X: r.X + r.Width, Y: r.Y + r.Height},
	}
}

// ResizeHandleAt возвращает маркер под точкой: |p - corner| < tol по обеим осям.
func ResizeHandleAt(p models.Point, r models.Rect, tol float64) models.Handle {
	corners := Corners(r)
	for _, h := range models.HandleOrder {
		c := corners[h]
		if math.Abs(p.X-c.X) < tol && math.Abs(p.Y-c.Y) < tol {
			return h
		}
	}
	return models.HandleNone
}
