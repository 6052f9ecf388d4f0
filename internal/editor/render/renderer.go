package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sort"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"fair-mapper/internal/editor/elements"
	"fair-mapper/internal/editor/geometry"
	"fair-mapper/internal/editor/layers"
	"fair-mapper/internal/editor/models"
	"fair-mapper/internal/editor/selection"
)

var ErrCanvasSize = errors.New("invalid canvas size")

// текст мельче minTextPx на экране не рисуется
const minTextPx = 3

// ============================================================
// Scene
// ============================================================

// LogoSource отдаёт декодированный логотип магазина. Не блокирует:
// ok=false, пока изображение не загружено.
type LogoSource interface {
	Logo(url string) (image.Image, bool)
}

// Background: метаданные подложки и декодированное изображение.
type Background struct {
	Meta  models.BackgroundImage
	Image image.Image
}

// Filter: результат фильтра магазинов публичного просмотра.
type Filter struct {
	Active   bool
	StoreIDs map[string]struct{}
}

// match: matched, если магазин прошёл фильтр, dimmed, если отфильтрован.
// Элементы без магазина не выделяются и не затемняются.
func (f Filter) match(e models.Element) (matched, dimmed bool) {
	loc, ok := e.(models.LocationElement)
	if !f.Active || !ok || !loc.IsStore() {
		return false, false
	}
	_, hit := f.StoreIDs[loc.StoreID]
	return hit, !hit
}

// Preview: прямоугольник рисуемого элемента в мировых координатах.
type Preview struct {
	Rect  models.Rect      `json:"rect"`
	Layer models.LayerType `json:"layer"`
}

// Scene содержит всё, что нужно для одного кадра.
type Scene struct {
	Layers     models.Layers
	Selected   int
	Tool       models.Tool
	Zoom       float64
	Background *Background
	Filter     Filter
	Preview    *Preview
	Debug      bool
}

// ============================================================
// Renderer
// ============================================================

type Renderer struct {
	opts  Options
	logos LogoSource
}

// NewRenderer создаёт рендерер; logos может быть nil.
func NewRenderer(opts Options, logos LogoSource) *Renderer {
	return &Renderer{opts: opts, logos: logos}
}

func (r *Renderer) Options() Options { return r.opts }

// Render рисует кадр и возвращает использованное преобразование.
// Кадр зависит только от сцены и размера холста.
func (r *Renderer) Render(sc Scene, width, height int) (*image.RGBA, geometry.Transform, error) {
	if width <= 0 || height <= 0 {
		return nil, geometry.Transform{}, fmt.Errorf("%w: %dx%d", ErrCanvasSize, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(withAlpha(r.opts.CanvasColor, 1))
	dc.Clear()

	t := geometry.ForLayers(sc.Layers, float64(width), float64(height), sc.Zoom)
	f := &frame{opts: r.opts, logos: r.logos, dc: dc, img: img, t: t, faces: newFaceSet()}
	defer f.faces.close()

	if sc.Background != nil {
		f.drawBackground(*sc.Background)
	}
	if sc.Debug {
		f.drawGrid()
	}

	for _, e := range layers.AllInZOrder(sc.Layers) {
		if !e.Common().Rect().Valid() {
			log.WithField("id", e.Common().ID).Debug("skip invalid element")
			continue
		}
		f.drawElement(e, sc.Filter)
	}

	if sc.Selected != 0 {
		if sel, ok := layers.Find(sc.Layers, sc.Selected); ok && sel.Common().Rect().Valid() {
			f.drawSelection(sel.Common().Rect())
			if sc.Tool == models.ToolResize {
				f.drawHandles(sel.Common().Rect())
			}
		}
	}

	if sc.Preview != nil {
		f.drawPreview(*sc.Preview)
	}
	return img, t, nil
}

// EncodePNG кодирует кадр в PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ============================================================
// Frame
// ============================================================

// frame рисует в экранных координатах: размеры в мировых единицах
// умножаются на t.Scale.
type frame struct {
	opts  Options
	logos LogoSource
	dc    *gg.Context
	img   *image.RGBA
	t     geometry.Transform
	faces *faceSet
}

func (f *frame) px(world float64) float64 { return world * f.t.Scale }

func (f *frame) drawImage(src image.Image, r models.Rect, alpha float64) {
	if src == nil || alpha <= 0 || r.Width <= 0 || r.Height <= 0 {
		return
	}
	dst := image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)), int(math.Round(r.Y+r.Height)),
	)
	if dst.Empty() || !dst.Overlaps(f.img.Bounds()) {
		return
	}
	var opts *xdraw.Options
	if alpha < 1 {
		opts = &xdraw.Options{DstMask: image.NewUniform(color.Alpha{A: uint8(clamp01(alpha)*255 + 0.5)})}
	}
	xdraw.ApproxBiLinear.Scale(f.img, dst, src, src.Bounds(), xdraw.Over, opts)
}

func (f *frame) drawBackground(bg Background) {
	if bg.Image == nil || !bg.Meta.Rect().Valid() {
		return
	}
	f.drawImage(bg.Image, f.t.RectToScreen(bg.Meta.Rect()), bg.Meta.Opacity)
}

func (f *frame) drawGrid() {
	w, h := float64(f.img.Bounds().Dx()), float64(f.img.Bounds().Dy())
	f.dc.SetColor(withAlpha(f.opts.GridColor, 1))
	f.dc.SetLineWidth(0.5)
	f.dc.SetDash()
	for x := 0.0; x <= w; x += f.opts.GridSize {
		f.dc.DrawLine(x, 0, x, h)
	}
	for y := 0.0; y <= h; y += f.opts.GridSize {
		f.dc.DrawLine(0, y, w, y)
	}
	f.dc.Stroke()
}

// ============================================================
// Elements
// ============================================================

func (f *frame) drawElement(e models.Element, filter Filter) {
	b := e.Common()
	world := b.Rect()
	sr := f.t.RectToScreen(world)

	matched, dimmed := filter.match(e)
	alpha := 1.0
	if dimmed {
		alpha = f.opts.DimOpacity
	}

	radius := f.px(math.Min(f.opts.CornerRadius, math.Min(world.Width, world.Height)/2))

	f.dc.SetColor(withAlpha(b.Color, alpha))
	f.dc.DrawRoundedRectangle(sr.X, sr.Y, sr.Width, sr.Height, radius)
	f.dc.Fill()

	f.dc.SetColor(withAlpha(b.BorderColor, alpha))
	f.dc.SetLineWidth(f.px(f.opts.BorderWidth))
	if e.Layer() == models.LayerSubmaps {
		dash := f.px(f.opts.DashLength)
		f.dc.SetDash(dash, dash)
	} else {
		f.dc.SetDash()
	}
	f.dc.DrawRoundedRectangle(sr.X, sr.Y, sr.Width, sr.Height, radius)
	f.dc.Stroke()
	f.dc.SetDash()

	if matched {
		f.dc.SetColor(withAlpha(f.opts.AccentColor, alpha))
		f.dc.SetLineWidth(f.px(f.opts.AccentWidth))
		f.dc.DrawRoundedRectangle(sr.X, sr.Y, sr.Width, sr.Height, radius)
		f.dc.Stroke()
	}

	if loc, ok := e.(models.LocationElement); ok && loc.StoreLogo != "" {
		f.drawLogo(loc.StoreLogo, world, alpha)
	}
	f.drawBadge(e, world, alpha)
	f.drawLabel(e, world, alpha)
}

// drawLogo вписывает логотип с сохранением пропорций внутрь отступа.
func (f *frame) drawLogo(url string, world models.Rect, alpha float64) {
	if f.logos == nil {
		return
	}
	img, ok := f.logos.Logo(url)
	if !ok || img == nil {
		return
	}
	iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	maxW := world.Width - 2*f.opts.LogoPadding
	maxH := world.Height - 2*f.opts.LogoPadding
	if iw <= 0 || ih <= 0 || maxW <= 0 || maxH <= 0 {
		return
	}

	aspect := iw / ih
	w, h := maxW, maxH
	if maxW/maxH > aspect {
		w = maxH * aspect
	} else {
		h = maxW / aspect
	}
	r := models.Rect{X: world.X + (world.Width-w)/2, Y: world.Y + (world.Height-h)/2, Width: w, Height: h}
	f.drawImage(img, f.t.RectToScreen(r), f.opts.LogoOpacity*alpha)
}

// drawBadge рисует круглый значок в правом верхнем углу.
// Локации без магазина значка не имеют.
func (f *frame) drawBadge(e models.Element, world models.Rect, alpha float64) {
	var fill string
	loc, isLoc := e.(models.LocationElement)
	switch {
	case isLoc && loc.IsStore():
		fill = elements.StoreCategoryColor(loc.StoreCategory)
	case e.Layer() == models.LayerSubmaps, e.Layer() == models.LayerBackground:
		fill = elements.LayerColors[e.Layer()]
	default:
		return
	}

	size := math.Min(f.opts.BadgeMaxSize, world.Width/4)
	if size <= 0 {
		return
	}
	center := f.t.WorldToScreen(models.Point{
		X: world.X + world.Width - size - f.opts.BadgeMargin + size/2,
		Y: world.Y + f.opts.BadgeMargin + size/2,
	})
	sz := f.px(size)

	f.dc.SetColor(withAlpha(fill, alpha))
	f.dc.DrawCircle(center.X, center.Y, sz/2)
	f.dc.Fill()

	icon := sz * 0.5
	f.dc.SetColor(withAlpha("#FFFFFF", alpha))
	f.dc.SetLineCapRound()
	f.dc.SetLineJoinRound()

	switch {
	case isLoc && loc.StoreCategory != "":
		f.strokeIcon(iconFor(loc.StoreCategory), center, icon)
	case isLoc:
		f.strokePin(center, icon)
	case e.Layer() == models.LayerSubmaps:
		f.strokeGridIcon(center, icon/2)
	default:
		r := icon / 2
		for _, dy := range []float64{-0.8, -0.2, 0.4} {
			f.dc.DrawRectangle(center.X-r*0.8, center.Y+r*dy, r*1.6, r*0.4)
		}
		f.dc.Fill()
	}
}

// strokeIcon рисует иконку 24x24, вписанную в квадрат size с центром c.
func (f *frame) strokeIcon(p Path, c models.Point, size float64) {
	k := size / iconViewBox
	f.dc.SetLineWidth(2 * k)
	for _, sub := range p {
		if len(sub) == 0 {
			continue
		}
		for i, pt := range sub {
			x := c.X + (pt.X-iconViewBox/2)*k
			y := c.Y + (pt.Y-iconViewBox/2)*k
			if i == 0 {
				f.dc.MoveTo(x, y)
			} else {
				f.dc.LineTo(x, y)
			}
		}
	}
	f.dc.Stroke()
}

func (f *frame) strokePin(c models.Point, size float64) {
	r := size / 3
	f.dc.SetLineWidth(2 * size / iconViewBox)
	f.dc.DrawCircle(c.X, c.Y-r*0.5, r)
	f.dc.Stroke()
	f.dc.DrawLine(c.X, c.Y+r*0.5, c.X, c.Y+r*1.5)
	f.dc.Stroke()
}

func (f *frame) strokeGridIcon(c models.Point, r float64) {
	f.dc.SetLineWidth(2 * r * 2 / iconViewBox)
	f.dc.DrawLine(c.X-r*0.6, c.Y-r, c.X-r*0.6, c.Y+r)
	f.dc.DrawLine(c.X+r*0.6, c.Y-r, c.X+r*0.6, c.Y+r)
	f.dc.DrawLine(c.X-r, c.Y-r*0.6, c.X+r, c.Y-r*0.6)
	f.dc.DrawLine(c.X-r, c.Y+r*0.6, c.X+r, c.Y+r*0.6)
	f.dc.Stroke()
}

// ============================================================
// Labels
// ============================================================

// labelFor возвращает заголовок и подпись; при пустой подписи рисуется одна строка.
func labelFor(e models.Element) (title, subtitle string) {
	b := e.Common()
	title = b.Name
	if title == "" {
		title = e.Subtype()
	}
	if title == "" {
		title = "Sem nome"
	}

	loc, isLoc := e.(models.LocationElement)
	switch {
	case isLoc && loc.IsStore():
		if loc.StoreCategory == "" {
			return title, "ESPAÇO"
		}
		return title, elements.StoreCategoryLabel(loc.StoreCategory)
	case e.Layer() == models.LayerSubmaps:
		return title, "SUBMAPA"
	case e.Layer() == models.LayerBackground:
		return title, "FUNDO"
	}
	return title, ""
}

func (f *frame) drawLabel(e models.Element, world models.Rect, alpha float64) {
	title, subtitle := labelFor(e)
	c := f.t.WorldToScreen(world.Center())
	maxW := f.px(world.Width - 24)

	if subtitle == "" {
		size := math.Min(12, math.Max(10, world.Width/12))
		f.drawText(title, c.X, c.Y, f.px(size), true, f.opts.TitleColor, maxW, alpha)
		return
	}

	titleSize := math.Min(13, math.Max(11, world.Width/12))
	subSize := math.Min(10, math.Max(8, world.Width/16))
	f.drawText(title, c.X, c.Y-f.px(6), f.px(titleSize), true, f.opts.TitleColor, maxW, alpha)
	f.drawText(subtitle, c.X, c.Y+f.px(8), f.px(subSize), false, f.opts.SubtitleColor, maxW, alpha)
}

// drawText рисует строку по центру (x, y), обрезая её до maxW.
func (f *frame) drawText(s string, x, y, sizePx float64, bold bool, hex string, maxW, alpha float64) {
	if sizePx < minTextPx || maxW <= 0 {
		return
	}
	f.dc.SetFontFace(f.faces.face(sizePx, bold))
	s = f.fitText(s, maxW)
	if s == "" {
		return
	}
	f.dc.SetColor(withAlpha(hex, alpha))
	f.dc.DrawStringAnchored(s, x, y, 0.5, 0.5)
}

func (f *frame) fitText(s string, maxW float64) string {
	return fitRunes(s, maxW, func(t string) float64 {
		w, _ := f.dc.MeasureString(t)
		return w
	})
}

// fitRunes обрезает s с многоточием до ширины maxW. Ширина префикса растёт
// с длиной, поэтому самый длинный подходящий префикс ищется бинарным поиском.
func fitRunes(s string, maxW float64, measure func(string) float64) string {
	if measure(s) <= maxW {
		return s
	}
	runes := []rune(s)
	fits := func(n int) bool { return measure(string(runes[:n])+"…") <= maxW }
	// первый n в [1, len), который уже не помещается
	n := 1 + sort.Search(len(runes)-1, func(i int) bool { return !fits(i + 1) })
	if n <= 1 {
		return ""
	}
	return string(runes[:n-1]) + "…"
}

// ============================================================
// Selection & preview
// ============================================================

func (f *frame) drawSelection(world models.Rect) {
	outline := models.Rect{X: world.X - 2, Y: world.Y - 2, Width: world.Width + 4, Height: world.Height + 4}
	sr := f.t.RectToScreen(outline)
	f.dc.SetDash()
	f.dc.SetColor(withAlpha(f.opts.HighlightColor, 1))
	f.dc.SetLineWidth(f.px(f.opts.HighlightWidth))
	f.dc.DrawRectangle(sr.X, sr.Y, sr.Width, sr.Height)
	f.dc.Stroke()
}

func (f *frame) drawHandles(world models.Rect) {
	size := f.px(f.opts.HandleSize)
	f.dc.SetColor(withAlpha(f.opts.HighlightColor, 1))
	corners := selection.Corners(world)
	for _, h := range models.HandleOrder {
		corner := f.t.WorldToScreen(corners[h])
		f.dc.DrawRectangle(corner.X-size/2, corner.Y-size/2, size, size)
	}
	f.dc.Fill()
}

func (f *frame) drawPreview(p Preview) {
	if p.Rect.Width <= 0 || p.Rect.Height <= 0 {
		return
	}
	hex, ok := elements.LayerColors[p.Layer]
	if !ok {
		hex = elements.LayerColors[models.LayerBackground]
	}
	sr := f.t.RectToScreen(p.Rect)

	f.dc.SetColor(withAlpha(hex, 0x40/255.0))
	f.dc.DrawRectangle(sr.X, sr.Y, sr.Width, sr.Height)
	f.dc.Fill()

	dash := f.px(f.opts.DashLength)
	f.dc.SetDash(dash, dash)
	f.dc.SetColor(withAlpha(hex, 1))
	f.dc.SetLineWidth(f.px(2))
	f.dc.DrawRectangle(sr.X, sr.Y, sr.Width, sr.Height)
	f.dc.Stroke()
	f.dc.SetDash()
}
