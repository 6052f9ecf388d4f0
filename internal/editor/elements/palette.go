package elements

import (
	"slices"
	"strconv"
	"strings"

	"fair-mapper/internal/editor/models"
)

// ============================================================
// Palettes
// ============================================================

// Style: пара цветов заливки и обводки.
type Style struct {
	Color       string
	BorderColor string
}

const (
	DefaultBackgroundType = "Customizado"
	DefaultSubmapType     = "Setor"
	DefaultLocationType   = "Outros"
)

// Типы фоновых зон.
var BackgroundTypes = map[string]Style{
	"Corredor":    {"#E5E7EB", "#9CA3AF"},
	"Praça":       {"#D1FAE5", "#10B981"},
	"Área Comum":  {"#DBEAFE", "#3B82F6"},
	"Entrada":     {"#FEF3C7", "#F59E0B"},
	"Banheiro":    {"#EDE9FE", "#8B5CF6"},
	"Customizado": {"#F3F4F6", "#6B7280"},
}

// У секторов один тип.
var SubmapTypes = map[string]Style{
	"Setor": {"#DBEAFE", "#3B82F6"},
}

// LocationCategoryOrder задаёт порядок цикла кисти (paint).
var LocationCategoryOrder = []string{"Alimentação", "Vestuário", "Artesanato", "Serviços", "Outros"}

// Категории точек.
var LocationCategories = map[string]Style{
	"Alimentação": {"#4CAF50", "#2E7D32"},
	"Vestuário":   {"#2196F3", "#1565C0"},
	"Artesanato":  {"#FF9800", "#E65100"},
	"Serviços":    {"#9C27B0", "#6A1B9A"},
	"Outros":      {"#607D8B", "#455A64"},
}

// LayerColors задаёт цвет слоя в панели и в превью рисования.
var LayerColors = map[models.LayerType]string{
	models.LayerBackground: "#6B7280",
	models.LayerSubmaps:    "#3B82F6",
	models.LayerLocations:  "#EF4444",
}

// Подписи слоёв используются в именах по умолчанию.
var LayerLabels = map[models.LayerType]string{
	models.LayerBackground: "Background",
	models.LayerSubmaps:    "Submapa",
	models.LayerLocations:  "Local",
}

// DefaultSubtype возвращает подтип слоя по умолчанию.
func DefaultSubtype(layer models.LayerType) string {
	switch layer {
	case models.LayerSubmaps:
		return DefaultSubmapType
	case models.LayerLocations:
		return DefaultLocationType
	default:
		return DefaultBackgroundType
	}
}

// StyleFor подбирает цвета по слою и подтипу; неизвестный подтип получает стиль по умолчанию.
func StyleFor(layer models.LayerType, subtype string) Style {
	var table map[string]Style
	switch layer {
	case models.LayerSubmaps:
		table = SubmapTypes
	case models.LayerLocations:
		table = LocationCategories
	default:
		table = BackgroundTypes
	}
	if s, ok := table[subtype]; ok {
		return s
	}
	return table[DefaultSubtype(layer)]
}

// NextCategoryColor возвращает следующий цвет категории; неизвестный цвет даёт первый.
func NextCategoryColor(current string) string {
	colors := make([]string, len(LocationCategoryOrder))
	for i, name := range LocationCategoryOrder {
		colors[i] = LocationCategories[name].Color
	}
	i := slices.IndexFunc(colors, func(c string) bool { return strings.EqualFold(c, current) })
	return colors[(i+1)%len(colors)]
}

// ContrastColor выбирает чёрный или белый текст поверх hex-цвета.
func ContrastColor(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) < 6 {
		return "#000000"
	}
	r, errR := strconv.ParseUint(hex[0:2], 16, 8)
	g, errG := strconv.ParseUint(hex[2:4], 16, 8)
	b, errB := strconv.ParseUint(hex[4:6], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return "#000000"
	}
	brightness := float64(r*299+g*587+b*114) / 1000
	if brightness > 155 {
		return "#000000"
	}
	return "#FFFFFF"
}

// ============================================================
// Store categories
// ============================================================

// Цвет значка магазина по категории справочника.
var StoreCategoryColors = map[string]string{
	"food":        "#F97316",
	"clothing":    "#3B82F6",
	"electronics": "#9333EA",
	"jewelry":     "#EC4899",
	"books":       "#EAB308",
	"sports":      "#EF4444",
	"home":        "#10B981",
	"beauty":      "#EC4899",
	"toys":        "#6366F1",
	"services":    "#22D3EE",
	"other":       "#6B7280",
}

// Подписи категорий на карте.
var StoreCategoryLabels = map[string]string{
	"food":        "ALIMENTAÇÃO",
	"clothing":    "ROUPAS",
	"electronics": "TECNOLOGIA",
	"jewelry":     "JOIAS",
	"books":       "LIVROS",
	"sports":      "ESPORTES",
	"home":        "CASA",
	"beauty":      "BELEZA",
	"toys":        "BRINQUEDOS",
	"services":    "SERVIÇOS",
	"other":       "OUTROS",
}

// StoreCategoryColor возвращает цвет значка; неизвестная или пустая категория даёт серый.
func StoreCategoryColor(category string) string {
	if c, ok := StoreCategoryColors[category]; ok {
		return c
	}
	return StoreCategoryColors["other"]
}

// StoreCategoryLabel возвращает подпись категории; неизвестная категория даёт OUTROS.
func StoreCategoryLabel(category string) string {
	if l, ok := StoreCategoryLabels[category]; ok {
		return l
	}
	return StoreCategoryLabels["other"]
}
