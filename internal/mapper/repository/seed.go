package repository

import (
	"context"
	"fmt"

	"fair-mapper/internal/editor/codec"
	"fair-mapper/internal/editor/elements"
	emodels "fair-mapper/internal/editor/models"
)

// Имя демонстрационной карты.
const SampleMapName = "Feira Central"

var sampleStores = []emodels.Store{
	{Name: "Frutas do João", Category: "food", Floor: "Térreo", OpeningHours: "07:00 - 13:00"},
	{Name: "Verduras da Maria", Category: "food", Floor: "Térreo", OpeningHours: "07:00 - 13:00"},
	{Name: "Roupas Fashion", Category: "clothing", Floor: "Térreo", OpeningHours: "09:00 - 18:00"},
	{Name: "Arte & Craft", Category: "home", Floor: "Térreo"},
	{Name: "Serviços Gerais", Category: "services", Phone: "+55 11 4000-0000"},
	{Name: "Moda Jovem", Category: "clothing"},
	{Name: "Lanchonete", Category: "food", OpeningHours: "08:00 - 20:00"},
}

// ensureSample создает демонстрационную карту, если карт еще нет.
func (r *Repository) ensureSample(ctx context.Context) error {
	maps, err := r.ListMaps(ctx)
	if err != nil {
		return err
	}
	if len(maps) > 0 {
		return nil
	}
	if _, err := r.CreateSampleMap(ctx, SampleMapName, "Mapa de demonstração"); err != nil {
		return fmt.Errorf("seed sample: %w", err)
	}
	log.WithField("name", SampleMapName).Info("sample map created")
	return nil
}

// CreateSampleMap создает карту с демонстрационной ярмаркой и
// привязывает первые локации к магазинам справочника.
func (r *Repository) CreateSampleMap(ctx context.Context, name, description string) (string, error) {
	m, err := r.CreateMap(ctx, name, description, nil)
	if err != nil {
		return "", err
	}

	l := elements.SampleLayers()
	for i, s := range sampleStores {
		if i >= len(l.Locations) {
			break
		}
		s.MapID = m.ID
		s.FeatureID = fmt.Sprint(l.Locations[i].ID)
		created, err := r.CreateStore(ctx, s)
		if err != nil {
			return "", err
		}
		l.Locations[i].StoreID = created.ID
	}

	if err := r.SaveFeatures(ctx, m.ID, codec.Encode(l)); err != nil {
		return "", err
	}
	return m.ID, nil
}
