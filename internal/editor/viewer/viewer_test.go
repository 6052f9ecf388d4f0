package viewer

import (
	"testing"

	"fair-mapper/internal/editor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stores = []models.Store{
	{ID: "a", Name: "Pastel do Zé", Category: "food"},
	{ID: "b", Name: "Moda Praia", Category: "clothing"},
	{ID: "c", Name: "Zé Eletrônicos", Category: "electronics"},
}

func TestFilterStores(t *testing.T) {
	tests := []struct {
		name     string
		category string
		query    string
		active   bool
		ids      []string
	}{
		{"no filters", "all", "", false, []string{"a", "b", "c"}},
		{"empty category", "", "", false, []string{"a", "b", "c"}},
		{"by category", "food", "", true, []string{"a"}},
		{"by name, case-insensitive", "all", "zé", true, []string{"a", "c"}},
		{"both", "electronics", "ZÉ", true, []string{"c"}},
		{"nothing matches", "toys", "", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FilterStores(stores, tt.category, tt.query)
			assert.Equal(t, tt.active, f.Active)
			got := make([]string, 0, len(f.StoreIDs))
			for _, s := range stores {
				if _, ok := f.StoreIDs[s.ID]; ok {
					got = append(got, s.ID)
				}
			}
			assert.ElementsMatch(t, tt.ids, got)
		})
	}
}

func TestCategoryCounts(t *testing.T) {
	counts := CategoryCounts(append(stores, models.Store{ID: "d", Category: "food"}))
	assert.Equal(t, map[string]int{"food": 2, "clothing": 1, "electronics": 1}, counts)
}

func TestStoreAt(t *testing.T) {
	l := models.Layers{
		Background: []models.BackgroundElement{{Base: models.Base{ID: 1, Width: 100, Height: 100}}},
		Locations: []models.LocationElement{
			{Base: models.Base{ID: 2, X: 0, Y: 0, Width: 50, Height: 50}, StoreID: "a"},
			{Base: models.Base{ID: 3, X: 25, Y: 0, Width: 50, Height: 50}, StoreID: "b"},
			{Base: models.Base{ID: 4, X: 0, Y: 60, Width: 20, Height: 20}},
		},
	}

	// холст 200x200: масштаб 1, смещение (50, 50)
	s, ok := StoreAt(l, stores, models.Point{X: 60, Y: 60}, 200, 200, 1)
	require.True(t, ok)
	assert.Equal(t, "a", s.ID)

	s, ok = StoreAt(l, stores, models.Point{X: 90, Y: 60}, 200, 200, 1)
	require.True(t, ok)
	assert.Equal(t, "b", s.ID, "topmost location wins")

	_, ok = StoreAt(l, stores, models.Point{X: 55, Y: 115}, 200, 200, 1)
	assert.False(t, ok, "location without store")

	_, ok = StoreAt(l, stores, models.Point{X: 140, Y: 140}, 200, 200, 1)
	assert.False(t, ok, "background is not clickable")

	l.Locations[0].StoreID = "missing"
	_, ok = StoreAt(l, stores, models.Point{X: 60, Y: 60}, 200, 200, 1)
	assert.False(t, ok)
}
