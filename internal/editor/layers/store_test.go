package layers

import (
	"testing"

	"fair-mapper/internal/editor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bg(id int) models.BackgroundElement {
	return models.BackgroundElement{Base: models.Base{ID: id, Width: 10, Height: 10}, Type: "Corredor"}
}

func sub(id int) models.SubmapElement {
	return models.SubmapElement{Base: models.Base{ID: id, Width: 10, Height: 10}, Type: "Setor"}
}

func loc(id int) models.LocationElement {
	return models.LocationElement{Base: models.Base{ID: id, Width: 10, Height: 10}, Type: "Outros"}
}

func ids(elements []models.Element) []int {
	out := make([]int, 0, len(elements))
	for _, e := range elements {
		out = append(out, e.Common().ID)
	}
	return out
}

func sample() models.Layers {
	var l models.Layers
	l = Add(l, loc(1))
	l = Add(l, bg(2))
	l = Add(l, sub(3))
	l = Add(l, loc(4))
	l = Add(l, bg(5))
	return l
}

func TestAddRoutesByLayer(t *testing.T) {
	l := sample()
	assert.Len(t, l.Background, 2)
	assert.Len(t, l.Submaps, 1)
	assert.Len(t, l.Locations, 2)
	assert.Equal(t, map[models.LayerType]int{
		models.LayerBackground: 2,
		models.LayerSubmaps:    1,
		models.LayerLocations:  2,
	}, Counts(l))
}

func TestAddDoesNotMutateInput(t *testing.T) {
	before := Add(models.Layers{}, loc(1))
	after := Add(before, loc(2))

	assert.Len(t, before.Locations, 1)
	assert.Len(t, after.Locations, 2)
}

func TestOrders(t *testing.T) {
	l := sample()
	assert.Equal(t, []int{2, 5, 3, 1, 4}, ids(AllInZOrder(l)))
	assert.Equal(t, []int{4, 1, 3, 5, 2}, ids(AllInHitTestOrder(l)))
}

func TestUpdatePreservesIDAndPosition(t *testing.T) {
	l := sample()
	x := 77.0
	name := "Praça central"

	updated, ok := Update(l, 5, models.Patch{X: &x, Name: &name})
	require.True(t, ok)

	e, ok := Find(updated, 5)
	require.True(t, ok)
	assert.Equal(t, models.LayerBackground, e.Layer())
	assert.Equal(t, 77.0, e.Common().X)
	assert.Equal(t, "Praça central", e.Common().Name)
	assert.Equal(t, []int{2, 5, 3, 1, 4}, ids(AllInZOrder(updated)))

	orig, _ := Find(l, 5)
	assert.Equal(t, 0.0, orig.Common().X)
}

func TestUpdateMissing(t *testing.T) {
	_, ok := Update(sample(), 99, models.Patch{})
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	l, ok := Remove(sample(), 3)
	require.True(t, ok)
	assert.Empty(t, l.Submaps)
	_, found := Find(l, 3)
	assert.False(t, found)

	_, ok = Remove(l, 3)
	assert.False(t, ok)
}

func TestMaxID(t *testing.T) {
	assert.Equal(t, 0, MaxID(models.Layers{}))
	assert.Equal(t, 5, MaxID(sample()))
}

func TestEnrichIsIdempotent(t *testing.T) {
	linked := loc(10)
	linked.StoreID = "s1"
	linked.Name = "Local 10"
	orphan := loc(11)
	orphan.StoreID = "missing"
	orphan.Name = "Local 11"

	l := models.Layers{Locations: []models.LocationElement{linked, orphan, loc(12)}}
	stores := []models.Store{{ID: "s1", Name: "Pastelaria", Category: "food", Logo: "/assets/logo.png"}}

	once := Enrich(l, stores)
	twice := Enrich(once, stores)

	assert.Equal(t, once, twice)
	assert.Equal(t, "Pastelaria", once.Locations[0].Name)
	assert.Equal(t, "Pastelaria", once.Locations[0].StoreName)
	assert.Equal(t, "food", once.Locations[0].StoreCategory)
	assert.Equal(t, "/assets/logo.png", once.Locations[0].StoreLogo)
	assert.Equal(t, "Local 11", once.Locations[1].Name)
	assert.Equal(t, "Local 10", l.Locations[0].Name)
}
