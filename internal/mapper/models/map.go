package models

import (
	emodels "fair-mapper/internal/editor/models"
)

// ============================================================
// Map Model
// ============================================================

type Map struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Features    []emodels.Feature `json:"features"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

// MapSummary: карта без коллекции, для списков.
type MapSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StoreCount  int    `json:"storeCount"`
	UpdatedAt   string `json:"updatedAt"`
}

// ============================================================
// Requests
// ============================================================

type CreateMapRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
	Sample      bool   `json:"sample"`
}

type CreateStoreRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Category     string `json:"category" validate:"omitempty,oneof=food clothing electronics jewelry books sports home beauty toys services other"`
	Logo         string `json:"logo" validate:"omitempty,max=2048"`
	Floor        string `json:"floor" validate:"max=40"`
	OpeningHours string `json:"openingHours" validate:"max=120"`
	Description  string `json:"description" validate:"max=1000"`
	Phone        string `json:"phone" validate:"max=40"`
	Email        string `json:"email" validate:"omitempty,email"`
	Website      string `json:"website" validate:"omitempty,url"`
	FeatureID    string `json:"featureId" validate:"max=64"`
}

// Store переводит запрос в запись справочника.
func (r CreateStoreRequest) Store(mapID string) emodels.Store {
	category := r.Category
	if category == "" {
		category = "other"
	}
	return emodels.Store{
		MapID:        mapID,
		Name:         r.Name,
		Category:     category,
		Logo:         r.Logo,
		Floor:        r.Floor,
		OpeningHours: r.OpeningHours,
		Description:  r.Description,
		Phone:        r.Phone,
		Email:        r.Email,
		Website:      r.Website,
		FeatureID:    r.FeatureID,
	}
}
