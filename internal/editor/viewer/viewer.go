package viewer

import (
	"strings"

	"fair-mapper/internal/editor/geometry"
	"fair-mapper/internal/editor/models"
	"fair-mapper/internal/editor/render"
	"fair-mapper/internal/editor/selection"
)

// CategoryAll: значение фильтра без ограничения по категории.
const CategoryAll = "all"

// ============================================================
// Store filter
// ============================================================

// FilterStores отбирает магазины по категории и подстроке имени (без учёта регистра).
// Фильтр активен, если задана категория, отличная от "all", или непустой запрос.
func FilterStores(stores []models.Store, category, query string) render.Filter {
	category = strings.TrimSpace(category)
	query = strings.ToLower(strings.TrimSpace(query))
	byCategory := category != "" && category != CategoryAll

	ids := make(map[string]struct{}, len(stores))
	for _, s := range stores {
		if byCategory && s.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(s.Name), query) {
			continue
		}
		ids[s.ID] = struct{}{}
	}
	return render.Filter{Active: byCategory || query != "", StoreIDs: ids}
}

// CategoryCounts считает магазины по категориям.
func CategoryCounts(stores []models.Store) map[string]int {
	counts := make(map[string]int)
	for _, s := range stores {
		counts[s.Category]++
	}
	return counts
}

// ============================================================
// Click lookup
// ============================================================

// StoreAt возвращает магазин верхней локации под экранной точкой.
// Проверяется только слой locations, без допуска.
func StoreAt(l models.Layers, stores []models.Store, screen models.Point, canvasW, canvasH, zoom float64) (models.Store, bool) {
	t := geometry.ForLayers(l, canvasW, canvasH, zoom)
	world := t.ScreenToWorld(screen)

	hit := selection.HitTestLayer(l, models.LayerLocations, world, 0)
	loc, ok := hit.(models.LocationElement)
	if !ok || !loc.IsStore() {
		return models.Store{}, false
	}
	for _, s := range stores {
		if s.ID == loc.StoreID {
			return s, true
		}
	}
	return models.Store{}, false
}
