package layers

import (
	"slices"

	"fair-mapper/internal/editor/models"
)

// Enrich копирует данные магазинов в связанные локации (name, storeName,
// storeCategory, storeLogo). Повторный вызов с теми же магазинами ничего не меняет.
func Enrich(l models.Layers, stores []models.Store) models.Layers {
	if len(stores) == 0 || len(l.Locations) == 0 {
		return l
	}
	byID := make(map[string]models.Store, len(stores))
	for _, s := range stores {
		byID[s.ID] = s
	}

	l.Locations = slices.Clone(l.Locations)
	for i, loc := range l.Locations {
		if loc.StoreID == "" {
			continue
		}
		store, ok := byID[loc.StoreID]
		if !ok {
			continue
		}
		loc.Name = store.Name
		loc.StoreName = store.Name
		loc.StoreCategory = store.Category
		loc.StoreLogo = store.Logo
		l.Locations[i] = loc
	}
	return l
}
