package gesture

import (
	"errors"
	"fmt"

	"fair-mapper/internal/common/logger"
	"fair-mapper/internal/editor/elements"
	"fair-mapper/internal/editor/layers"
	"fair-mapper/internal/editor/models"
	"fair-mapper/internal/editor/selection"
)

var ErrElementNotFound = errors.New("element not found")

var log = logger.Get("gesture")

// ============================================================
// Machine
// ============================================================

// Machine владеет коллекцией слоёв, состоянием жеста и счётчиком id.
// Не потокобезопасна: события подаются последовательно.
type Machine struct {
	state  State
	layers models.Layers
	nextID int
}

func New(l models.Layers, nextID int) *Machine {
	m := &Machine{state: State{Tool: models.ToolSelect}}
	m.Replace(l, nextID)
	return m
}

func (m *Machine) State() State          { return m.state }
func (m *Machine) Layers() models.Layers { return m.layers }
func (m *Machine) NextID() int           { return m.nextID }

// Selected возвращает выделенный элемент, если он существует.
func (m *Machine) Selected() (models.Element, bool) {
	if !m.state.HasSelection() {
		return nil, false
	}
	return layers.Find(m.layers, m.state.Selected)
}

// Replace загружает новую коллекцию (после load/import), сохраняя инструмент.
func (m *Machine) Replace(l models.Layers, nextID int) {
	m.layers = l.Normalize()
	m.nextID = max(nextID, layers.MaxID(l)+1, 1)
	m.state = State{Tool: m.state.Tool}
}

// SetTool переключает инструмент: выделение и все флаги сбрасываются.
func (m *Machine) SetTool(t models.Tool) {
	m.state = State{Tool: t}
	log.Debugf("tool -> %s", t)
}

// SetDrawMode включает рисование в слое layer.
func (m *Machine) SetDrawMode(layer models.LayerType, subtype string) {
	m.SetTool(models.ToolDraw)
	m.state.DrawLayer = layer
	m.state.DrawSubtype = subtype
}

// Select выделяет элемент; NoSelection снимает выделение.
func (m *Machine) Select(id int) error {
	if id == NoSelection {
		m.state.Selected = NoSelection
		return nil
	}
	if _, ok := layers.Find(m.layers, id); !ok {
		return fmt.Errorf("select %d: %w", id, ErrElementNotFound)
	}
	m.state.Selected = id
	return nil
}

// Update применяет частичное обновление к элементу.
func (m *Machine) Update(id int, p models.Patch) error {
	next, ok := layers.Update(m.layers, id, p)
	if !ok {
		return fmt.Errorf("update %d: %w", id, ErrElementNotFound)
	}
	m.layers = next
	return nil
}

// Delete удаляет элемент и снимает с него выделение.
func (m *Machine) Delete(id int) error {
	next, ok := layers.Remove(m.layers, id)
	if !ok {
		return fmt.Errorf("delete %d: %w", id, ErrElementNotFound)
	}
	m.layers = next
	if m.state.Selected == id {
		m.state.Selected = NoSelection
	}
	return nil
}

// Enrich перепроецирует данные магазинов на локации.
func (m *Machine) Enrich(stores []models.Store) {
	m.layers = layers.Enrich(m.layers, stores)
}

// ============================================================
// Pointer events (мировые координаты)
// ============================================================

func (m *Machine) PointerDown(p models.Point) Outcome {
	switch m.state.Tool {
	case models.ToolDraw:
		if m.state.DrawLayer == models.LayerNone {
			return Outcome{}
		}
		m.state.Mode = Drawing
		m.state.DrawStart = p
		m.state.DrawCurrent = p

	case models.ToolMove:
		hit := selection.HitTest(m.layers, p, selection.Tolerance)
		if hit == nil {
			return Outcome{}
		}
		b := hit.Common()
		m.state.Selected = b.ID
		m.state.Mode = Dragging
		m.state.DragOffset = models.Point{X: p.X - b.X, Y: p.Y - b.Y}

	case models.ToolResize:
		if h, ok := m.selectedHandleAt(p); ok {
			m.state.Mode = Resizing
			m.state.Handle = h
			return Outcome{}
		}
		hit := selection.HitTest(m.layers, p, selection.Tolerance)
		if hit == nil {
			return Outcome{}
		}
		m.state.Selected = hit.Common().ID
		if h := selection.ResizeHandleAt(p, hit.Common().Rect(), selection.HandleTolerance); h != models.HandleNone {
			m.state.Mode = Resizing
			m.state.Handle = h
		}

	case models.ToolSelect:
		hit := selection.HitTest(m.layers, p, selection.Tolerance)
		if hit == nil {
			m.state.Selected = NoSelection
			return Outcome{}
		}
		m.state.Selected = hit.Common().ID

	case models.ToolPaint:
		hit := selection.HitTest(m.layers, p, selection.Tolerance)
		if hit == nil {
			return Outcome{}
		}
		id := hit.Common().ID
		m.state.Selected = id
		if err := m.Update(id, elements.Paint(hit)); err != nil {
			return Outcome{}
		}
		return Outcome{LayersChanged: true}
	}

	log.Debugf("pointer-down %s at (%.1f, %.1f): %s", m.state.Tool, p.X, p.Y, m.state.Mode)
	return Outcome{}
}

// selectedHandleAt проверяет маркеры уже выделенного элемента: они видны
// и могут выступать за границу допуска попадания.
func (m *Machine) selectedHandleAt(p models.Point) (models.Handle, bool) {
	el, ok := m.Selected()
	if !ok || !el.Common().Rect().Valid() {
		return models.HandleNone, false
	}
	h := selection.ResizeHandleAt(p, el.Common().Rect(), selection.HandleTolerance)
	return h, h != models.HandleNone
}

func (m *Machine) PointerMove(p models.Point) Outcome {
	switch m.state.Mode {
	case Drawing:
		m.state.DrawCurrent = p
		return Outcome{}

	case Dragging:
		x, y := p.X-m.state.DragOffset.X, p.Y-m.state.DragOffset.Y
		if err := m.Update(m.state.Selected, models.Patch{X: &x, Y: &y}); err != nil {
			m.reset()
			return Outcome{}
		}
		return Outcome{LayersChanged: true}

	case Resizing:
		el, ok := m.Selected()
		if !ok {
			m.reset()
			return Outcome{}
		}
		if err := m.Update(el.Common().ID, elements.ResizePatch(el, m.state.Handle, p)); err != nil {
			return Outcome{}
		}
		return Outcome{LayersChanged: true}
	}
	return Outcome{}
}

func (m *Machine) PointerUp(p models.Point) Outcome {
	var out Outcome
	if m.state.Mode == Drawing {
		r := models.RectFromPoints(m.state.DrawStart, p)
		if r.Width >= elements.MinSize && r.Height >= elements.MinSize {
			el := elements.Create(m.state.DrawLayer, m.nextID, r, m.state.DrawSubtype)
			m.nextID++
			m.layers = layers.Add(m.layers, el)
			m.state.Selected = el.Common().ID
			out = Outcome{LayersChanged: true, Created: el}
			log.Debugf("created %s #%d (%.0fx%.0f)", el.Layer(), el.Common().ID, r.Width, r.Height)
		} else {
			log.Debugf("draw discarded: %.1fx%.1f below minimum", r.Width, r.Height)
		}
		m.state.DrawLayer = models.LayerNone
		m.state.DrawSubtype = ""
	}
	m.reset()
	return out
}

// Cancel (контекстное меню) прерывает любой жест и сбрасывает слой рисования.
func (m *Machine) Cancel() {
	m.reset()
	m.state.DrawLayer = models.LayerNone
	m.state.DrawSubtype = ""
}

func (m *Machine) reset() {
	m.state.Mode = Idle
	m.state.Handle = models.HandleNone
	m.state.DragOffset = models.Point{}
	m.state.DrawStart = models.Point{}
	m.state.DrawCurrent = models.Point{}
}

// Preview возвращает прямоугольник рисуемого элемента и его слой.
func (m *Machine) Preview() (models.Rect, models.LayerType, bool) {
	if m.state.Mode != Drawing {
		return models.Rect{}, models.LayerNone, false
	}
	return models.RectFromPoints(m.state.DrawStart, m.state.DrawCurrent), m.state.DrawLayer, true
}
