package models

// ============================================================
// Store directory
// ============================================================

// Store: магазин из справочника ярмарки.
type Store struct {
	ID           string `json:"id"`
	MapID        string `json:"mapId"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Logo         string `json:"logo,omitempty"`
	Floor        string `json:"floor,omitempty"`
	OpeningHours string `json:"openingHours,omitempty"`
	Description  string `json:"description,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Website      string `json:"website,omitempty"`
	FeatureID    string `json:"featureId,omitempty"`
}

// Допустимые категории магазинов.
var StoreCategories = []string{
	"food", "clothing", "electronics", "jewelry", "books", "sports",
	"home", "beauty", "toys", "services", "other",
}
