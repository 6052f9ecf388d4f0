package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// GeoJSON-like features (remote persistence format)
// ============================================================

const (
	FeatureType = "Feature"
	PolygonType = "Polygon"
)

// FeatureID принимает в JSON и строку, и число; сериализуется строкой.
type FeatureID string

func (id *FeatureID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FeatureID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("feature id: %w", err)
	}
	*id = FeatureID(n.String())
	return nil
}

// Int возвращает числовой id, если он корректен.
func (id FeatureID) Int() (int, bool) {
	n, err := strconv.Atoi(string(id))
	if err != nil {
		return 0, false
	}
	return n, true
}

type Geometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// Properties: свойства фичи; подтип хранится в ключе своего слоя.
type Properties struct {
	Type           string `json:"type"` // background | submapa | local
	Name           string `json:"name"`
	Color          string `json:"color"`
	BorderColor    string `json:"borderColor"`
	StoreID        string `json:"storeId,omitempty"`
	BackgroundType string `json:"backgroundType,omitempty"`
	SubmapType     string `json:"submapType,omitempty"`
	LocationType   string `json:"locationType,omitempty"`
}

type Feature struct {
	Type       string      `json:"type"`
	ID         FeatureID   `json:"id"`
	Geometry   *Geometry   `json:"geometry"`
	Properties *Properties `json:"properties"`
}

// ============================================================
// Export document
// ============================================================

const ExportVersion = "1.0"

// MapData: документ экспорта в файл.
type MapData struct {
	Layers    Layers `json:"layers"`
	NextID    int    `json:"nextId"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
