package elements

import (
	"fmt"

	"fair-mapper/internal/editor/models"
)

// ============================================================
// Element Factory
// ============================================================

// MinSize задаёт минимальную ширину и высота элемента после рисования и ресайза.
const MinSize = 10.0

// Create строит элемент слоя с цветами из палитры. Пустой subtype заменяется подтипом по умолчанию.
func Create(layer models.LayerType, id int, r models.Rect, subtype string) models.Element {
	if subtype == "" {
		subtype = DefaultSubtype(layer)
	}
	style := StyleFor(layer, subtype)
	base := models.Base{
		ID:          id,
		Name:        fmt.Sprintf("%s %d", LayerLabels[layerOrDefault(layer)], id),
		X:           r.X,
		Y:           r.Y,
		Width:       r.Width,
		Height:      r.Height,
		Color:       style.Color,
		BorderColor: style.BorderColor,
	}

	switch layer {
	case models.LayerSubmaps:
		return models.SubmapElement{Base: base, Type: subtype}
	case models.LayerLocations:
		return models.LocationElement{Base: base, Type: subtype}
	default:
		return models.BackgroundElement{Base: base, Type: subtype}
	}
}

func layerOrDefault(layer models.LayerType) models.LayerType {
	if _, ok := LayerLabels[layer]; ok {
		return layer
	}
	return models.LayerBackground
}

// Resize считает новую геометрию при перетаскивании угла h в точку p.
// Противоположный угол остаётся якорем; при упоре в MinSize якорь не сдвигается.
func Resize(r models.Rect, h models.Handle, p models.Point) models.Rect {
	right, bottom := r.X+r.Width, r.Y+r.Height
	out := r

	switch h {
	case models.HandleNW:
		out.Width = r.Width + (r.X - p.X)
		out.Height = r.Height + (r.Y - p.Y)
		out.X, out.Y = p.X, p.Y
	case models.HandleNE:
		out.Width = p.X - r.X
		out.Height = r.Height + (r.Y - p.Y)
		out.Y = p.Y
	case models.HandleSW:
		out.Width = r.Width + (r.X - p.X)
		out.Height = p.Y - r.Y
		out.X = p.X
	case models.HandleSE:
		out.Width = p.X - r.X
		out.Height = p.Y - r.Y
	default:
		return r
	}

	if out.Width < MinSize {
		out.Width = MinSize
		if h == models.HandleNW || h == models.HandleSW {
			out.X = right - MinSize
		}
	}
	if out.Height < MinSize {
		out.Height = MinSize
		if h == models.HandleNW || h == models.HandleNE {
			out.Y = bottom - MinSize
		}
	}
	return out
}

// ResizePatch делает то же, что Resize, но в виде частичного обновления.
func ResizePatch(e models.Element, h models.Handle, p models.Point) models.Patch {
	r := Resize(e.Common().Rect(), h, p)
	return models.Patch{X: &r.X, Y: &r.Y, Width: &r.Width, Height: &r.Height}
}

// Paint перекрашивает элемент в следующий цвет категории.
func Paint(e models.Element) models.Patch {
	next := NextCategoryColor(e.Common().Color)
	return models.Patch{Color: &next}
}
