package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fair-mapper/internal/common/logger"
	emodels "fair-mapper/internal/editor/models"
	"fair-mapper/internal/mapper/models"

	"github.com/google/uuid"
)

var log = logger.Get("repository")

// ErrNotFound: карта или магазин не найдены.
var ErrNotFound = errors.New("not found")

//go:embed migrations/001_init_mapper.sql
var initMigration string

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init применяет миграцию и, если попросили, создает демонстрационную карту.
func (r *Repository) Init(ctx context.Context, seedSample bool) error {
	if err := r.runMigrations(initMigration); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if !seedSample {
		return nil
	}
	return r.ensureSample(ctx)
}

// Ping проверяет доступность базы.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ============================================================
// Maps
// ============================================================

func (r *Repository) CreateMap(ctx context.Context, name, description string, features []emodels.Feature) (*models.Map, error) {
	if features == nil {
		features = []emodels.Feature{}
	}
	data, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO maps (id, name, description, features)
        VALUES (?, ?, ?, ?)
    `, id, name, description, string(data))
	if err != nil {
		return nil, fmt.Errorf("insert map: %w", err)
	}
	return r.GetMap(ctx, id)
}

func (r *Repository) GetMap(ctx context.Context, id string) (*models.Map, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, description, features, created_at, updated_at
        FROM maps
        WHERE id = ?
    `, id)

	var (
		m        models.Map
		features string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &features, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("map %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	m.Features = decodeFeatures(m.ID, features)
	return &m, nil
}

func (r *Repository) ListMaps(ctx context.Context) ([]models.MapSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT m.id, m.name, m.description, m.updated_at,
               (SELECT COUNT(*) FROM stores s WHERE s.map_id = m.id)
        FROM maps m
        ORDER BY m.created_at, m.name
    `)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	defer rows.Close()

	maps := []models.MapSummary{}
	for rows.Next() {
		var m models.MapSummary
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.UpdatedAt, &m.StoreCount); err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// DeleteMap удаляет карту вместе с ее магазинами.
func (r *Repository) DeleteMap(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stores WHERE map_id = ?`, id); err != nil {
		return fmt.Errorf("delete stores: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM maps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("map %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// SaveFeatures перезаписывает коллекцию карты целиком.
func (r *Repository) SaveFeatures(ctx context.Context, mapID string, features []emodels.Feature) error {
	if features == nil {
		features = []emodels.Feature{}
	}
	data, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
        UPDATE maps SET features = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `, string(data), mapID)
	if err != nil {
		return fmt.Errorf("update features: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("map %s: %w", mapID, ErrNotFound)
	}
	return nil
}

func (r *Repository) LoadFeatures(ctx context.Context, mapID string) ([]emodels.Feature, error) {
	m, err := r.GetMap(ctx, mapID)
	if err != nil {
		return nil, err
	}
	return m.Features, nil
}

// decodeFeatures разбирает коллекцию по одной фиче: битые записи
// пропускаются, остальные загружаются.
func decodeFeatures(mapID, data string) []emodels.Feature {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		log.WithError(err).WithField("map", mapID).Warn("features column is not a json array")
		return []emodels.Feature{}
	}

	features := make([]emodels.Feature, 0, len(raw))
	for i, item := range raw {
		var f emodels.Feature
		if err := json.Unmarshal(item, &f); err != nil {
			log.WithError(err).WithFields(map[string]any{"map": mapID, "index": i}).Warn("skip broken feature")
			continue
		}
		features = append(features, f)
	}
	return features
}

// ============================================================
// Stores
// ============================================================

func (r *Repository) CreateStore(ctx context.Context, s emodels.Store) (emodels.Store, error) {
	if _, err := r.GetMap(ctx, s.MapID); err != nil {
		return emodels.Store{}, err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Category == "" {
		s.Category = "other"
	}

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO stores (id, map_id, name, category, logo, floor, opening_hours, description, phone, email, website, feature_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, s.ID, s.MapID, s.Name, s.Category, s.Logo, s.Floor, s.OpeningHours, s.Description, s.Phone, s.Email, s.Website, s.FeatureID)
	if err != nil {
		return emodels.Store{}, fmt.Errorf("insert store: %w", err)
	}
	return s, nil
}

func (r *Repository) ListStores(ctx context.Context, mapID string) ([]emodels.Store, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, map_id, name, category, logo, floor, opening_hours, description, phone, email, website, feature_id
        FROM stores
        WHERE map_id = ?
        ORDER BY name, id
    `, mapID)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	stores := []emodels.Store{}
	for rows.Next() {
		var s emodels.Store
		if err := rows.Scan(&s.ID, &s.MapID, &s.Name, &s.Category, &s.Logo, &s.Floor, &s.OpeningHours,
			&s.Description, &s.Phone, &s.Email, &s.Website, &s.FeatureID); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *Repository) DeleteStore(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store %s: %w", id, ErrNotFound)
	}
	return nil
}

// ============================================================
// Migrations & Seeding
// ============================================================

func (r *Repository) runMigrations(sqlText string) error {
	if _, err := r.db.Exec(sqlText); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
