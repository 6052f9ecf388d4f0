package session

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"fair-mapper/internal/editor/models"
	"fair-mapper/internal/editor/render"
)

const (
	// прозрачность новой подложки
	DefaultBackgroundOpacity = 0.5
	// холст меньше minCanvasSide считается неизмеренным
	minCanvasSide = 10
	// пределы размеров подложки до декодирования пикселей
	maxBackgroundSide   = 8192
	maxBackgroundPixels = 40_000_000
)

// ============================================================
// Background reference image
// ============================================================

// UploadBackground декодирует изображение, сохраняет файл и ставит подложку
// во весь холст. При ошибке подложка остаётся прежней.
func (s *Session) UploadBackground(filename string, data []byte) (models.BackgroundImage, error) {
	if err := checkBackgroundSize(data); err != nil {
		return models.BackgroundImage{}, &ImageError{Op: "decode", Err: err}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return models.BackgroundImage{}, &ImageError{Op: "decode", Err: err}
	}

	url, err := s.deps.Images.SaveBackground(s.mapID, filename, data)
	if err != nil {
		return models.BackgroundImage{}, &ImageError{Op: "upload", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nw, nh := img.Bounds().Dx(), img.Bounds().Dy()
	w, h := s.width, s.height
	if w < minCanvasSide {
		w = nw
	}
	if h < minCanvasSide {
		h = nh
	}

	meta := models.BackgroundImage{
		Src:           url,
		Opacity:       DefaultBackgroundOpacity,
		Width:         float64(w),
		Height:        float64(h),
		NaturalWidth:  nw,
		NaturalHeight: nh,
	}
	s.bg = &render.Background{Meta: meta, Image: img}
	log.WithField("map", s.mapID).Infof("background %s (%s, %dx%d)", url, format, nw, nh)
	return meta, nil
}

// checkBackgroundSize читает только заголовок и отсекает слишком большие картинки.
func checkBackgroundSize(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if cfg.Width > maxBackgroundSide || cfg.Height > maxBackgroundSide ||
		cfg.Width*cfg.Height > maxBackgroundPixels {
		return fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}
	return nil
}

// SetBackgroundOpacity меняет прозрачность подложки (0..1).
func (s *Session) SetBackgroundOpacity(opacity float64) (models.BackgroundImage, error) {
	if opacity < 0 || opacity > 1 {
		return models.BackgroundImage{}, fmt.Errorf("opacity %.2f out of range [0, 1]", opacity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bg == nil {
		return models.BackgroundImage{}, ErrNoBackground
	}
	s.bg.Meta.Opacity = opacity
	return s.bg.Meta, nil
}

// SetBackgroundTransform задаёт положение и размер подложки в мировых координатах.
func (s *Session) SetBackgroundTransform(x, y, width, height float64) (models.BackgroundImage, error) {
	r := models.Rect{X: x, Y: y, Width: width, Height: height}
	if !r.Valid() {
		return models.BackgroundImage{}, fmt.Errorf("invalid background rect %+v", r)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bg == nil {
		return models.BackgroundImage{}, ErrNoBackground
	}
	s.bg.Meta.X, s.bg.Meta.Y = x, y
	s.bg.Meta.Width, s.bg.Meta.Height = width, height
	return s.bg.Meta, nil
}

func (s *Session) RemoveBackground() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bg == nil {
		return ErrNoBackground
	}
	s.bg = nil
	return nil
}
