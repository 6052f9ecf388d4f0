package models

import "encoding/json"

// ============================================================
// Map elements
// ============================================================

// Base: общие поля любого элемента карты.
type Base struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Color       string  `json:"color"`
	BorderColor string  `json:"borderColor"`
}

func (b Base) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// Element реализуют только BackgroundElement, SubmapElement, LocationElement.
// Слой определяется конкретным типом и не меняется после создания.
type Element interface {
	Layer() LayerType
	Common() Base
	Subtype() string
	withBase(b Base) Element
}

// WithBase возвращает копию элемента с заменёнными общими полями (ID сохраняется).
func WithBase(e Element, b Base) Element {
	b.ID = e.Common().ID
	return e.withBase(b)
}

// WithRect возвращает копию элемента с новой геометрией.
func WithRect(e Element, r Rect) Element {
	b := e.Common()
	b.X, b.Y, b.Width, b.Height = r.X, r.Y, r.Width, r.Height
	return e.withBase(b)
}

type BackgroundElement struct {
	Base
	Type string `json:"type"`
}

func (e BackgroundElement) Layer() LayerType { return LayerBackground }
func (e BackgroundElement) Common() Base     { return e.Base }
func (e BackgroundElement) Subtype() string  { return e.Type }
func (e BackgroundElement) withBase(b Base) Element {
	e.Base = b
	return e
}

func (e BackgroundElement) MarshalJSON() ([]byte, error) {
	type alias BackgroundElement
	return json.Marshal(struct {
		alias
		Layer LayerType `json:"layer"`
	}{alias(e), LayerBackground})
}

type SubmapElement struct {
	Base
	Type string `json:"type"`
}

func (e SubmapElement) Layer() LayerType { return LayerSubmaps }
func (e SubmapElement) Common() Base     { return e.Base }
func (e SubmapElement) Subtype() string  { return e.Type }
func (e SubmapElement) withBase(b Base) Element {
	e.Base = b
	return e
}

func (e SubmapElement) MarshalJSON() ([]byte, error) {
	type alias SubmapElement
	return json.Marshal(struct {
		alias
		Layer LayerType `json:"layer"`
	}{alias(e), LayerSubmaps})
}

// LocationElement: точка продаж, может быть привязана к магазину (StoreID).
// StoreName, StoreCategory и StoreLogo заполняются обогащением.
type LocationElement struct {
	Base
	Type          string `json:"type"`
	StoreID       string `json:"storeId,omitempty"`
	StoreName     string `json:"storeName,omitempty"`
	StoreCategory string `json:"storeCategory,omitempty"`
	StoreLogo     string `json:"storeLogo,omitempty"`
}

func (e LocationElement) Layer() LayerType { return LayerLocations }
func (e LocationElement) Common() Base     { return e.Base }
func (e LocationElement) Subtype() string  { return e.Type }
func (e LocationElement) withBase(b Base) Element {
	e.Base = b
	return e
}

func (e LocationElement) MarshalJSON() ([]byte, error) {
	type alias LocationElement
	return json.Marshal(struct {
		alias
		Layer LayerType `json:"layer"`
	}{alias(e), LayerLocations})
}

// IsStore: локация связана с магазином.
func (e LocationElement) IsStore() bool {
	return e.StoreID != ""
}

// ============================================================
// Layer collection
// ============================================================

// Layers: три упорядоченных списка, порядок внутри слоя задаёт z-order.
type Layers struct {
	Background []BackgroundElement `json:"background"`
	Submaps    []SubmapElement     `json:"submaps"`
	Locations  []LocationElement   `json:"locations"`
}

// Normalize заменяет nil-срезы пустыми (для стабильного JSON).
func (l Layers) Normalize() Layers {
	if l.Background == nil {
		l.Background = []BackgroundElement{}
	}
	if l.Submaps == nil {
		l.Submaps = []SubmapElement{}
	}
	if l.Locations == nil {
		l.Locations = []LocationElement{}
	}
	return l
}

func (l Layers) Len() int {
	return len(l.Background) + len(l.Submaps) + len(l.Locations)
}

// ============================================================
// Partial update
// ============================================================

// Patch: частичное обновление. ID и слой не меняются никогда.
// StoreID применяется только к локациям; пустая строка отвязывает магазин.
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Color       *string  `json:"color,omitempty"`
	BorderColor *string  `json:"borderColor,omitempty"`
	Type        *string  `json:"type,omitempty"`
	StoreID     *string  `json:"storeId,omitempty"`
}

// Apply применяет патч к элементу и возвращает новую копию.
func (p Patch) Apply(e Element) Element {
	b := e.Common()
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.X != nil {
		b.X = *p.X
	}
	if p.Y != nil {
		b.Y = *p.Y
	}
	if p.Width != nil {
		b.Width = *p.Width
	}
	if p.Height != nil {
		b.Height = *p.Height
	}
	if p.Color != nil {
		b.Color = *p.Color
	}
	if p.BorderColor != nil {
		b.BorderColor = *p.BorderColor
	}

	switch el := e.withBase(b).(type) {
	case BackgroundElement:
		if p.Type != nil {
			el.Type = *p.Type
		}
		return el
	case SubmapElement:
		if p.Type != nil {
			el.Type = *p.Type
		}
		return el
	case LocationElement:
		if p.Type != nil {
			el.Type = *p.Type
		}
		if p.StoreID != nil && *p.StoreID != el.StoreID {
			el.StoreID = *p.StoreID
			el.StoreName, el.StoreCategory, el.StoreLogo = "", "", ""
		}
		return el
	default:
		return el
	}
}
