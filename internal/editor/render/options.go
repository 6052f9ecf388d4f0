package render

// Options задаёт оформление кадра. Размеры в мировых единицах,
// при отрисовке умножаются на масштаб трансформации.
type Options struct {
	CanvasColor string
	DimOpacity  float64

	CornerRadius float64
	BorderWidth  float64
	DashLength   float64

	HighlightColor string
	HighlightWidth float64
	HandleSize     float64

	AccentColor string
	AccentWidth float64

	TitleColor    string
	SubtitleColor string

	BadgeMaxSize float64
	BadgeMargin  float64

	LogoOpacity float64
	LogoPadding float64

	GridSize  float64
	GridColor string
}

// DefaultOptions возвращает оформление редактора по умолчанию.
func DefaultOptions() Options {
	return Options{
		CanvasColor:    "#F5F7FA",
		DimOpacity:     0.25,
		CornerRadius:   12,
		BorderWidth:    1,
		DashLength:     5,
		HighlightColor: "#FF0000",
		HighlightWidth: 3,
		HandleSize:     8,
		AccentColor:    "#3B82F6",
		AccentWidth:    3,
		TitleColor:     "#1F2937",
		SubtitleColor:  "#9CA3AF",
		BadgeMaxSize:   32,
		BadgeMargin:    8,
		LogoOpacity:    0.15,
		LogoPadding:    10,
		GridSize:       20,
		GridColor:      "#0000001A",
	}
}
