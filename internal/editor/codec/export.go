package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"fair-mapper/internal/editor/layers"
	"fair-mapper/internal/editor/models"
)

// ============================================================
// Export document
// ============================================================

// Export сериализует документ {layers, nextId, timestamp, version}.
func Export(l models.Layers, nextID int, now time.Time) ([]byte, error) {
	doc := models.MapData{
		Layers:    l.Normalize(),
		NextID:    max(nextID, layers.MaxID(l)+1),
		Timestamp: now.UTC().Format(time.RFC3339),
		Version:   models.ExportVersion,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export map: %w", err)
	}
	return data, nil
}

// Import читает документ экспорта. Версия, отличная от текущей, допускается с предупреждением.
func Import(data []byte) (models.MapData, error) {
	var doc models.MapData
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.MapData{}, fmt.Errorf("import map: %w", err)
	}
	if doc.Version != models.ExportVersion {
		log.Warnf("import: document version %q, expected %q", doc.Version, models.ExportVersion)
	}
	repaired, nextID := repairIDs(doc.Layers.Normalize())
	doc.Layers = repaired
	doc.NextID = max(doc.NextID, nextID)
	return doc, nil
}

// repairIDs выдаёт новые id элементам с id <= 0 и повторам. Первый в
// порядке отрисовки сохраняет свой id, новые идут после максимального.
func repairIDs(l models.Layers) (models.Layers, int) {
	all := layers.AllInZOrder(l)
	bad := make([]bool, len(all))
	seen := make(map[int]bool, len(all))
	maxID := 0
	for i, e := range all {
		id := e.Common().ID
		if id <= 0 || seen[id] {
			bad[i] = true
			continue
		}
		seen[id] = true
		maxID = max(maxID, id)
	}

	out := models.Layers{}.Normalize()
	nextID := maxID + 1
	for i, e := range all {
		if bad[i] {
			b := e.Common()
			log.WithField("layer", e.Layer()).Warnf("element id %d is invalid or duplicated, reassigning to %d", b.ID, nextID)
			b.ID = nextID
			nextID++
			e = withID(e, b)
		}
		out = layers.Add(out, e)
	}
	return out, nextID
}
