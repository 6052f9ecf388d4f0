package elements

import "fair-mapper/internal/editor/models"

type sampleItem struct {
	layer   models.LayerType
	rect    models.Rect
	subtype string
	name    string
}

var sampleVenue = []sampleItem{
	{models.LayerBackground, models.Rect{X: 50, Y: 50, Width: 700, Height: 60}, "Corredor", "Corredor Principal"},
	{models.LayerBackground, models.Rect{X: 50, Y: 150, Width: 700, Height: 60}, "Corredor", "Corredor Secundário"},
	{models.LayerBackground, models.Rect{X: 300, Y: 250, Width: 200, Height: 100}, "Praça", "Praça Central"},
	{models.LayerBackground, models.Rect{X: 50, Y: 500, Width: 80, Height: 80}, "Banheiro", "Banheiros"},
	{models.LayerBackground, models.Rect{X: 150, Y: 500, Width: 80, Height: 80}, "Entrada", "Entrada Principal"},

	{models.LayerSubmaps, models.Rect{X: 100, Y: 120, Width: 200, Height: 150}, "", "Setor Alimentação"},
	{models.LayerSubmaps, models.Rect{X: 350, Y: 120, Width: 200, Height: 150}, "", "Setor Vestuário"},
	{models.LayerSubmaps, models.Rect{X: 600, Y: 120, Width: 150, Height: 150}, "", "Setor Artesanato"},

	{models.LayerLocations, models.Rect{X: 120, Y: 140, Width: 60, Height: 40}, "Alimentação", "Frutas do João"},
	{models.LayerLocations, models.Rect{X: 200, Y: 140, Width: 60, Height: 40}, "Alimentação", "Verduras da Maria"},
	{models.LayerLocations, models.Rect{X: 120, Y: 200, Width: 60, Height: 40}, "Vestuário", "Roupas Fashion"},
	{models.LayerLocations, models.Rect{X: 200, Y: 200, Width: 60, Height: 40}, "Artesanato", "Arte & Craft"},
	{models.LayerLocations, models.Rect{X: 370, Y: 140, Width: 60, Height: 40}, "Serviços", "Serviços Gerais"},
	{models.LayerLocations, models.Rect{X: 450, Y: 140, Width: 60, Height: 40}, "Vestuário", "Moda Jovem"},
	{models.LayerLocations, models.Rect{X: 370, Y: 200, Width: 60, Height: 40}, "Alimentação", "Lanchonete"},
	{models.LayerLocations, models.Rect{X: 450, Y: 200, Width: 60, Height: 40}, "Outros", "Diversos"},
	{models.LayerLocations, models.Rect{X: 620, Y: 140, Width: 60, Height: 40}, "Artesanato", "Artesanato Local"},
	{models.LayerLocations, models.Rect{X: 690, Y: 140, Width: 60, Height: 40}, "Alimentação", "Padaria"},
	{models.LayerLocations, models.Rect{X: 620, Y: 200, Width: 60, Height: 40}, "Serviços", "Conserto de Roupas"},
	{models.LayerLocations, models.Rect{X: 690, Y: 200, Width: 60, Height: 40}, "Vestuário", "Boutique"},
}

// SampleLayers возвращает демонстрационную ярмарку (ids 1..20) для новых карт.
func SampleLayers() models.Layers {
	l := models.Layers{}.Normalize()
	for i, item := range sampleVenue {
		e := Create(item.layer, i+1, item.rect, item.subtype)
		b := e.Common()
		b.Name = item.name
		switch el := models.WithBase(e, b).(type) {
		case models.BackgroundElement:
			l.Background = append(l.Background, el)
		case models.SubmapElement:
			l.Submaps = append(l.Submaps, el)
		case models.LocationElement:
			l.Locations = append(l.Locations, el)
		}
	}
	return l
}
