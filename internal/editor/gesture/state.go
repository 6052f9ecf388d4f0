package gesture

import (
	"fmt"

	"fair-mapper/internal/editor/models"
)

// ============================================================
// Gesture state
// ============================================================

// Mode: активный жест. Одновременно активен не более одного.
type Mode int

const (
	Idle Mode = iota
	Drawing
	Dragging
	Resizing
)

func (m Mode) String() string {
	switch m {
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*m = Idle
	case "drawing":
		*m = Drawing
	case "dragging":
		*m = Dragging
	case "resizing":
		*m = Resizing
	default:
		return fmt.Errorf("unknown gesture mode %q", text)
	}
	return nil
}

// NoSelection: значение Selected без выделения (id начинаются с 1).
const NoSelection = 0

type State struct {
	Tool        models.Tool      `json:"tool"`
	DrawLayer   models.LayerType `json:"drawLayer,omitempty"`
	DrawSubtype string           `json:"drawSubtype,omitempty"`
	Mode        Mode             `json:"mode"`
	DrawStart   models.Point     `json:"drawStart"`
	DrawCurrent models.Point     `json:"drawCurrent"`
	DragOffset  models.Point     `json:"dragOffset"`
	Handle      models.Handle    `json:"handle,omitempty"`
	Selected    int              `json:"selected"`
}

func (s State) IsDrawing() bool  { return s.Mode == Drawing }
func (s State) IsDragging() bool { return s.Mode == Dragging }
func (s State) IsResizing() bool { return s.Mode == Resizing }

func (s State) HasSelection() bool { return s.Selected != NoSelection }

// Outcome описывает результат одного события ввода.
type Outcome struct {
	LayersChanged bool
	Created       models.Element
}
