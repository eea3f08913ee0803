package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un ítem del catálogo.
type CreateItemRequest struct {
	SKU           string           `json:"sku" validate:"required,min=1,max=100"`
	Name          string           `json:"name" validate:"required,min=1,max=200"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	UnitMeasure   string           `json:"unit_measure"`
	IsRentable    *bool            `json:"is_rentable"`
	BaseDailyRate *decimal.Decimal `json:"base_daily_rate"`
	Attributes    json.RawMessage  `json:"attributes"`
}

// UpdateItemRequest entrada para actualizar un ítem (campos nil no cambian).
type UpdateItemRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
	UnitMeasure   *string          `json:"unit_measure"`
	IsRentable    *bool            `json:"is_rentable"`
	BaseDailyRate *decimal.Decimal `json:"base_daily_rate"`
	Attributes    json.RawMessage  `json:"attributes"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID            string           `json:"id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	UnitMeasure   string           `json:"unit_measure"`
	IsRentable    bool             `json:"is_rentable"`
	BaseDailyRate *decimal.Decimal `json:"base_daily_rate,omitempty"`
	Attributes    json.RawMessage  `json:"attributes,omitempty"`
	IsActive      bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
