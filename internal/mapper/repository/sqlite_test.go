package repository

import (
	"context"
	"path/filepath"
	"testing"

	"fair-mapper/internal/editor/codec"
	emodels "fair-mapper/internal/editor/models"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T, seed bool) *Repository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "mapper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init(context.Background(), seed))
	return repo
}

func TestMapLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, false)

	m, err := repo.CreateMap(ctx, "Feira", "teste", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Feira", m.Name)
	assert.Empty(t, m.Features)

	maps, err := repo.ListMaps(ctx)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, m.ID, maps[0].ID)

	require.NoError(t, repo.DeleteMap(ctx, m.ID))
	_, err = repo.GetMap(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteMap(ctx, m.ID), ErrNotFound)
}

func TestSaveAndLoadFeatures(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, false)
	m, err := repo.CreateMap(ctx, "Feira", "", nil)
	require.NoError(t, err)

	l := emodels.Layers{Locations: []emodels.LocationElement{{
		Base: emodels.Base{ID: 7, Name: "Banca", X: 10, Y: 20, Width: 30, Height: 40, Color: "#4CAF50", BorderColor: "#2E7D32"},
		Type: "Alimentação",
	}}}
	require.NoError(t, repo.SaveFeatures(ctx, m.ID, codec.Encode(l)))

	features, err := repo.LoadFeatures(ctx, m.ID)
	require.NoError(t, err)
	got, next := codec.Decode(features)
	assert.Equal(t, 8, next)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "Banca", got.Locations[0].Name)

	assert.ErrorIs(t, repo.SaveFeatures(ctx, "missing", nil), ErrNotFound)
	_, err = repo.LoadFeatures(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSkipsBrokenFeatures(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, false)
	m, err := repo.CreateMap(ctx, "Feira", "", nil)
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx, `UPDATE maps SET features = ? WHERE id = ?`,
		`[{"type":"Feature","id":1,"properties":{"type":"local"}}, 42, "x"]`, m.ID)
	require.NoError(t, err)

	features, err := repo.LoadFeatures(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, features, 1)

	_, err = repo.db.ExecContext(ctx, `UPDATE maps SET features = 'nope' WHERE id = ?`, m.ID)
	require.NoError(t, err)
	features, err = repo.LoadFeatures(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, false)
	m, err := repo.CreateMap(ctx, "Feira", "", nil)
	require.NoError(t, err)

	b, err := repo.CreateStore(ctx, emodels.Store{MapID: m.ID, Name: "B", Category: "books"})
	require.NoError(t, err)
	a, err := repo.CreateStore(ctx, emodels.Store{MapID: m.ID, Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, "other", a.Category)

	_, err = repo.CreateStore(ctx, emodels.Store{MapID: "missing", Name: "C"})
	assert.ErrorIs(t, err, ErrNotFound)

	stores, err := repo.ListStores(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, []string{"A", "B"}, []string{stores[0].Name, stores[1].Name})

	maps, err := repo.ListMaps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, maps[0].StoreCount)

	require.NoError(t, repo.DeleteStore(ctx, b.ID))
	assert.ErrorIs(t, repo.DeleteStore(ctx, b.ID), ErrNotFound)

	require.NoError(t, repo.DeleteMap(ctx, m.ID))
	stores, err = repo.ListStores(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestSeedSample(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, true)
	require.NoError(t, repo.Init(ctx, true))

	maps, err := repo.ListMaps(ctx)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, SampleMapName, maps[0].Name)
	assert.Equal(t, len(sampleStores), maps[0].StoreCount)

	features, err := repo.LoadFeatures(ctx, maps[0].ID)
	require.NoError(t, err)
	l, next := codec.Decode(features)
	assert.Equal(t, 21, next)
	assert.Len(t, l.Locations, 12)
	assert.NotEmpty(t, l.Locations[0].StoreID)
	assert.Empty(t, l.Locations[len(l.Locations)-1].StoreID)
}
