package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"fair-mapper/internal/common/logger"
	"fair-mapper/internal/editor/elements"
	"fair-mapper/internal/editor/layers"
	"fair-mapper/internal/editor/models"
)

var log = logger.Get("codec")

// ============================================================
// Layer <-> feature type mapping
// ============================================================

const (
	TypeBackground = "background"
	TypeSubmap     = "submapa"
	TypeLocation   = "local"
)

const (
	DefaultName        = "Elemento sem nome"
	DefaultColor       = "#E5E7EB"
	DefaultBorderColor = "#9CA3AF"
)

func externalType(layer models.LayerType) string {
	switch layer {
	case models.LayerSubmaps:
		return TypeSubmap
	case models.LayerLocations:
		return TypeLocation
	default:
		return TypeBackground
	}
}

// layerFor возвращает слой по внешнему типу; ok=false для неизвестного типа.
func layerFor(t string) (models.LayerType, bool) {
	switch t {
	case TypeBackground:
		return models.LayerBackground, true
	case TypeSubmap:
		return models.LayerSubmaps, true
	case TypeLocation:
		return models.LayerLocations, true
	}
	return models.LayerBackground, false
}

// ============================================================
// Encode
// ============================================================

// Encode переводит коллекцию в список фич в порядке отрисовки.
func Encode(l models.Layers) []models.Feature {
	all := layers.AllInZOrder(l)
	out := make([]models.Feature, 0, len(all))
	for _, e := range all {
		out = append(out, encodeElement(e))
	}
	return out
}

func encodeElement(e models.Element) models.Feature {
	b := e.Common()
	props := &models.Properties{
		Type:        externalType(e.Layer()),
		Name:        b.Name,
		Color:       b.Color,
		BorderColor: b.BorderColor,
	}
	switch el := e.(type) {
	case models.BackgroundElement:
		props.BackgroundType = el.Type
	case models.SubmapElement:
		props.SubmapType = el.Type
	case models.LocationElement:
		props.LocationType = el.Type
		props.StoreID = el.StoreID
	}

	x0, y0 := b.X, b.Y
	x1, y1 := b.X+b.Width, b.Y+b.Height
	return models.Feature{
		Type: models.FeatureType,
		ID:   models.FeatureID(strconv.Itoa(b.ID)),
		Geometry: &models.Geometry{
			Type:        models.PolygonType,
			Coordinates: [][][]float64{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}},
		},
		Properties: props,
	}
}

// ============================================================
// Decode
// ============================================================

// Decode восстанавливает коллекцию из фич. Некорректные фичи пропускаются
// с предупреждением. Фичи без корректного уникального id получают новые id
// после максимального. nextID = max(id) + 1.
func Decode(features []models.Feature) (models.Layers, int) {
	type pending struct {
		el models.Element
		id int
		ok bool
	}

	decoded := make([]pending, 0, len(features))
	seen := make(map[int]bool)
	maxID := 0

	for i, f := range features {
		el, err := decodeFeature(f)
		if err != nil {
			log.WithField("index", i).Warnf("skip feature %q: %v", f.ID, err)
			continue
		}
		id, ok := f.ID.Int()
		if ok && (id <= 0 || seen[id]) {
			log.WithField("index", i).Warnf("feature id %q is invalid or duplicated, reassigning", f.ID)
			ok = false
		}
		if ok {
			seen[id] = true
			maxID = max(maxID, id)
		}
		decoded = append(decoded, pending{el: el, id: id, ok: ok})
	}

	l := models.Layers{}.Normalize()
	nextID := maxID + 1
	for _, p := range decoded {
		id := p.id
		if !p.ok {
			id = nextID
			nextID++
		}
		b := p.el.Common()
		b.ID = id
		l = layers.Add(l, withID(p.el, b))
	}
	return l, nextID
}

// withID назначает id только что декодированному элементу.
func withID(e models.Element, b models.Base) models.Element {
	switch el := e.(type) {
	case models.BackgroundElement:
		el.Base = b
		return el
	case models.SubmapElement:
		el.Base = b
		return el
	case models.LocationElement:
		el.Base = b
		return el
	}
	return e
}

func decodeFeature(f models.Feature) (models.Element, error) {
	if f.Geometry == nil {
		return nil, fmt.Errorf("missing geometry")
	}
	if f.Geometry.Type != models.PolygonType {
		return nil, fmt.Errorf("geometry type %q is not %s", f.Geometry.Type, models.PolygonType)
	}
	if len(f.Geometry.Coordinates) == 0 || len(f.Geometry.Coordinates[0]) < 4 {
		return nil, fmt.Errorf("polygon ring has fewer than 4 points")
	}
	if f.Properties == nil {
		return nil, fmt.Errorf("missing properties")
	}

	ring := f.Geometry.Coordinates[0]
	for i := 0; i < 3; i++ {
		if len(ring[i]) < 2 {
			return nil, fmt.Errorf("ring point %d has fewer than 2 coordinates", i)
		}
	}
	x, y := ring[0][0], ring[0][1]
	r := models.Rect{X: x, Y: y, Width: ring[1][0] - x, Height: ring[2][1] - y}
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite coordinates")
		}
	}

	p := f.Properties
	layer, known := layerFor(p.Type)
	if !known {
		log.Warnf("feature %q: unknown type %q, using %s", f.ID, p.Type, layer)
	}

	base := models.Base{
		Name:        orDefault(p.Name, DefaultName),
		X:           r.X,
		Y:           r.Y,
		Width:       r.Width,
		Height:      r.Height,
		Color:       orDefault(p.Color, DefaultColor),
		BorderColor: orDefault(p.BorderColor, DefaultBorderColor),
	}

	switch layer {
	case models.LayerSubmaps:
		return models.SubmapElement{Base: base, Type: orDefault(p.SubmapType, elements.DefaultSubmapType)}, nil
	case models.LayerLocations:
		return models.LocationElement{
			Base:    base,
			Type:    orDefault(p.LocationType, elements.DefaultLocationType),
			StoreID: p.StoreID,
		}, nil
	default:
		subtype := p.BackgroundType
		if !known || subtype == "" {
			subtype = elements.DefaultBackgroundType
		}
		return models.BackgroundElement{Base: base, Type: subtype}, nil
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// DecodeJSON разбирает массив фич по одной: фича с битым JSON пропускается,
// остальные декодируются. Ошибка возвращается только если это не массив.
func DecodeJSON(data []byte) (models.Layers, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Layers{}, 0, fmt.Errorf("decode features: %w", err)
	}
	features := make([]models.Feature, 0, len(raw))
	for i, item := range raw {
		var f models.Feature
		if err := json.Unmarshal(item, &f); err != nil {
			log.WithField("index", i).Warnf("skip malformed feature: %v", err)
			continue
		}
		features = append(features, f)
	}
	l, next := Decode(features)
	return l, next, nil
}
