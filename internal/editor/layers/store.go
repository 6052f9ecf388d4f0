package layers

import (
	"slices"

	"fair-mapper/internal/editor/models"
)

// ============================================================
// Layer Store
// ============================================================
//
// Все функции работают со значениями: входная коллекция не изменяется,
// изменённые срезы копируются.

// Add добавляет элемент в конец своего слоя.
func Add(l models.Layers, e models.Element) models.Layers {
	switch el := e.(type) {
	case models.BackgroundElement:
		l.Background = append(slices.Clone(l.Background), el)
	case models.SubmapElement:
		l.Submaps = append(slices.Clone(l.Submaps), el)
	case models.LocationElement:
		l.Locations = append(slices.Clone(l.Locations), el)
	}
	return l
}

// Update применяет патч к элементу с указанным id. ok=false, если элемента нет.
func Update(l models.Layers, id int, p models.Patch) (models.Layers, bool) {
	e, ok := Find(l, id)
	if !ok {
		return l, false
	}
	return Replace(l, p.Apply(e))
}

// Replace заменяет элемент с тем же id и слоем, сохраняя его позицию в слое.
func Replace(l models.Layers, e models.Element) (models.Layers, bool) {
	id := e.Common().ID
	switch el := e.(type) {
	case models.BackgroundElement:
		if i := slices.IndexFunc(l.Background, func(x models.BackgroundElement) bool { return x.ID == id }); i >= 0 {
			l.Background = slices.Clone(l.Background)
			l.Background[i] = el
			return l, true
		}
	case models.SubmapElement:
		if i := slices.IndexFunc(l.Submaps, func(x models.SubmapElement) bool { return x.ID == id }); i >= 0 {
			l.Submaps = slices.Clone(l.Submaps)
			l.Submaps[i] = el
			return l, true
		}
	case models.LocationElement:
		if i := slices.IndexFunc(l.Locations, func(x models.LocationElement) bool { return x.ID == id }); i >= 0 {
			l.Locations = slices.Clone(l.Locations)
			l.Locations[i] = el
			return l, true
		}
	}
	return l, false
}

// Remove удаляет элемент по id из всех слоёв.
func Remove(l models.Layers, id int) (models.Layers, bool) {
	n := l.Len()
	l.Background = slices.DeleteFunc(slices.Clone(l.Background), func(x models.BackgroundElement) bool { return x.ID == id })
	l.Submaps = slices.DeleteFunc(slices.Clone(l.Submaps), func(x models.SubmapElement) bool { return x.ID == id })
	l.Locations = slices.DeleteFunc(slices.Clone(l.Locations), func(x models.LocationElement) bool { return x.ID == id })
	return l, l.Len() != n
}

// Find ищет элемент по id.
func Find(l models.Layers, id int) (models.Element, bool) {
	for _, e := range AllInZOrder(l) {
		if e.Common().ID == id {
			return e, true
		}
	}
	return nil, false
}

// AllInZOrder отдаёт элементы в порядке отрисовки: background, submaps, locations.
func AllInZOrder(l models.Layers) []models.Element {
	out := make([]models.Element, 0, l.Len())
	for _, e := range l.Background {
		out = append(out, e)
	}
	for _, e := range l.Submaps {
		out = append(out, e)
	}
	for _, e := range l.Locations {
		out = append(out, e)
	}
	return out
}

// AllInHitTestOrder отдаёт обратный порядок, верхний элемент проверяется первым.
func AllInHitTestOrder(l models.Layers) []models.Element {
	out := AllInZOrder(l)
	slices.Reverse(out)
	return out
}

// Layer возвращает элементы одного слоя в порядке отрисовки.
func Layer(l models.Layers, layer models.LayerType) []models.Element {
	var out []models.Element
	switch layer {
	case models.LayerBackground:
		for _, e := range l.Background {
			out = append(out, e)
		}
	case models.LayerSubmaps:
		for _, e := range l.Submaps {
			out = append(out, e)
		}
	case models.LayerLocations:
		for _, e := range l.Locations {
			out = append(out, e)
		}
	}
	return out
}

// Counts считает элементы в каждом слое.
func Counts(l models.Layers) map[models.LayerType]int {
	return map[models.LayerType]int{
		models.LayerBackground: len(l.Background),
		models.LayerSubmaps:    len(l.Submaps),
		models.LayerLocations:  len(l.Locations),
	}
}

// MaxID возвращает наибольший id в коллекции (0 для пустой).
func MaxID(l models.Layers) int {
	maxID := 0
	for _, e := range AllInZOrder(l) {
		maxID = max(maxID, e.Common().ID)
	}
	return maxID
}
