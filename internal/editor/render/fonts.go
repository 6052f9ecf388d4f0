package render

import (
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ============================================================
// Fonts
// ============================================================

var (
	fontsOnce   sync.Once
	fontRegular *opentype.Font
	fontBold    *opentype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if fontRegular, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		fontBold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

type faceKey struct {
	bold bool
	size float64
}

// faceSet кеширует гарнитуры на время одного кадра: font.Face из opentype
// нельзя делить между горутинами.
type faceSet struct {
	faces map[faceKey]font.Face
}

func newFaceSet() *faceSet {
	return &faceSet{faces: make(map[faceKey]font.Face)}
}

// face возвращает гарнитуру размера size px (шаг 0.5 px).
func (s *faceSet) face(size float64, bold bool) font.Face {
	key := faceKey{bold: bold, size: math.Round(size*2) / 2}
	if f, ok := s.faces[key]; ok {
		return f
	}

	var f font.Face = basicfont.Face7x13
	if loadFonts() == nil {
		src := fontRegular
		if bold {
			src = fontBold
		}
		if nf, err := opentype.NewFace(src, &opentype.FaceOptions{
			Size:    key.size,
			DPI:     72,
			Hinting: font.HintingFull,
		}); err == nil {
			f = nf
		}
	}
	s.faces[key] = f
	return f
}

func (s *faceSet) close() {
	for _, f := range s.faces {
		_ = f.Close()
	}
}
