package models

import (
	"fmt"
	"math"
)

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect: осевой прямоугольник в мировых координатах.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints нормализует прямоугольник по двум противоположным углам.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// Valid: все поля конечны, ширина и высота положительны.
func (r Rect) Valid() bool {
	return finite(r.X) && finite(r.Y) && finite(r.Width) && finite(r.Height) &&
		r.Width > 0 && r.Height > 0
}

// Contains проверяет попадание точки с допуском tol по каждой оси.
func (r Rect) Contains(p Point, tol float64) bool {
	return p.X >= r.X-tol && p.X <= r.X+r.Width+tol &&
		p.Y >= r.Y-tol && p.Y <= r.Y+r.Height+tol
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ============================================================
// Layers, tools, handles
// ============================================================

type LayerType string

const (
	LayerNone       LayerType = ""
	LayerBackground LayerType = "background"
	LayerSubmaps    LayerType = "submaps"
	LayerLocations  LayerType = "locations"
)

// Порядок отрисовки слоёв снизу вверх.
var ZOrder = []LayerType{LayerBackground, LayerSubmaps, LayerLocations}

// ParseLayer разбирает имя слоя.
func ParseLayer(s string) (LayerType, error) {
	switch LayerType(s) {
	case LayerBackground, LayerSubmaps, LayerLocations:
		return LayerType(s), nil
	}
	return LayerNone, fmt.Errorf("unknown layer %q", s)
}

type Tool string

const (
	ToolSelect Tool = "select"
	ToolMove   Tool = "move"
	ToolResize Tool = "resize"
	ToolPaint  Tool = "paint"
	ToolDraw   Tool = "draw"
)

// ParseTool разбирает имя инструмента.
func ParseTool(s string) (Tool, error) {
	switch Tool(s) {
	case ToolSelect, ToolMove, ToolResize, ToolPaint, ToolDraw:
		return Tool(s), nil
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

type Handle string

const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleNE   Handle = "ne"
	HandleSW   Handle = "sw"
	HandleSE   Handle = "se"
)

// Порядок проверки угловых маркеров.
var HandleOrder = []Handle{HandleNW, HandleNE, HandleSW, HandleSE}

// ============================================================
// Background image
// ============================================================

// BackgroundImage: метаданные подложки в мировых координатах.
type BackgroundImage struct {
	Src           string  `json:"src"`
	Opacity       float64 `json:"opacity"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	NaturalWidth  int     `json:"naturalWidth"`
	NaturalHeight int     `json:"naturalHeight"`
}

func (b BackgroundImage) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}
