package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockLevelRequest body para POST /api/stock-levels.
// Si available se omite se calcula como on_hand menos el resto de particiones.
type CreateStockLevelRequest struct {
	ItemID          string           `json:"item_id"`
	LocationID      string           `json:"location_id"`
	OnHand          decimal.Decimal  `json:"on_hand"`
	Available       *decimal.Decimal `json:"available,omitempty"`
	Reserved        decimal.Decimal  `json:"reserved"`
	OnRent          decimal.Decimal  `json:"on_rent"`
	Damaged         decimal.Decimal  `json:"damaged"`
	UnderRepair     decimal.Decimal  `json:"under_repair"`
	BeyondRepair    decimal.Decimal  `json:"beyond_repair"`
	ReorderPoint    *decimal.Decimal `json:"reorder_point,omitempty"`
	ReorderQuantity *decimal.Decimal `json:"reorder_quantity,omitempty"`
	MaximumStock    *decimal.Decimal `json:"maximum_stock,omitempty"`
	AverageCost     *decimal.Decimal `json:"average_cost,omitempty"`
}

// MutationMeta campos comunes de toda mutación: control de versión y auditoría.
type MutationMeta struct {
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
	Reference       string `json:"reference,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// AdjustQuantityRequest body para POST /api/stock-levels/:id/adjust.
type AdjustQuantityRequest struct {
	MutationMeta
	Delta           decimal.Decimal `json:"delta"`
	AffectAvailable *bool           `json:"affect_available,omitempty"` // por defecto true
}

// QuantityRequest body de las operaciones con una sola cantidad
// (reserve, release, rent-out, repair, complete-repair, write-off).
type QuantityRequest struct {
	MutationMeta
	Quantity decimal.Decimal `json:"quantity"`
}

// ReturnFromRentRequest body para POST /api/stock-levels/:id/return.
type ReturnFromRentRequest struct {
	MutationMeta
	Quantity        decimal.Decimal `json:"quantity"`
	DamagedQuantity decimal.Decimal `json:"damaged_quantity"`
}

// BeyondRepairRequest body para POST /api/stock-levels/:id/beyond-repair.
type BeyondRepairRequest struct {
	MutationMeta
	Quantity   decimal.Decimal `json:"quantity"`
	FromRepair bool            `json:"from_repair"`
}

// UpdateCostRequest body para POST /api/stock-levels/:id/cost.
type UpdateCostRequest struct {
	MutationMeta
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// UpdateThresholdsRequest body para PUT /api/stock-levels/:id/thresholds.
type UpdateThresholdsRequest struct {
	MutationMeta
	ReorderPoint    *decimal.Decimal `json:"reorder_point"`
	ReorderQuantity *decimal.Decimal `json:"reorder_quantity"`
	MaximumStock    *decimal.Decimal `json:"maximum_stock"`
}

// StockLevelResponse salida de un nivel de stock.
type StockLevelResponse struct {
	ID               string           `json:"id"`
	ItemID           string           `json:"item_id"`
	LocationID       string           `json:"location_id"`
	OnHand           decimal.Decimal  `json:"on_hand"`
	Available        decimal.Decimal  `json:"available"`
	Reserved         decimal.Decimal  `json:"reserved"`
	OnRent           decimal.Decimal  `json:"on_rent"`
	Damaged          decimal.Decimal  `json:"damaged"`
	UnderRepair      decimal.Decimal  `json:"under_repair"`
	BeyondRepair     decimal.Decimal  `json:"beyond_repair"`
	ReorderPoint     *decimal.Decimal `json:"reorder_point,omitempty"`
	ReorderQuantity  *decimal.Decimal `json:"reorder_quantity,omitempty"`
	MaximumStock     *decimal.Decimal `json:"maximum_stock,omitempty"`
	AverageCost      *decimal.Decimal `json:"average_cost,omitempty"`
	LastPurchaseCost *decimal.Decimal `json:"last_purchase_cost,omitempty"`
	TotalValue       decimal.Decimal  `json:"total_value"`
	StockStatus      string           `json:"stock_status"`
	Version          int64            `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// StockLevelListResponse lista paginada de niveles de stock.
type StockLevelListResponse struct {
	Items []StockLevelResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// StockMovementResponse salida de un movimiento del libro de stock.
type StockMovementResponse struct {
	ID              string           `json:"id"`
	StockLevelID    string           `json:"stock_level_id"`
	Type            string           `json:"type"`
	Quantity        decimal.Decimal  `json:"quantity"`
	DamagedQuantity decimal.Decimal  `json:"damaged_quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	OnHandBefore    decimal.Decimal  `json:"on_hand_before"`
	OnHandAfter     decimal.Decimal  `json:"on_hand_after"`
	AvailableBefore decimal.Decimal  `json:"available_before"`
	AvailableAfter  decimal.Decimal  `json:"available_after"`
	Version         int64            `json:"version"`
	Reference       string           `json:"reference,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	CreatedBy       string           `json:"created_by,omitempty"`
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un nivel de stock
// en LOW_STOCK u OUT_OF_STOCK.
type ReplenishmentSuggestionDTO struct {
	StockLevelID       string           `json:"stock_level_id"`
	ItemID             string           `json:"item_id"`
	LocationID         string           `json:"location_id"`
	StockStatus        string           `json:"stock_status"`
	OnHand             decimal.Decimal  `json:"on_hand"`
	Available          decimal.Decimal  `json:"available"`
	ReorderPoint       *decimal.Decimal `json:"reorder_point,omitempty"`
	SuggestedOrderQty  decimal.Decimal  `json:"suggested_order_qty"`
	UnitCost           decimal.Decimal  `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal  `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int              `json:"priority"`             // 1 = más urgente
}

// LocationValuationDTO valor del inventario por ubicación.
type LocationValuationDTO struct {
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	Levels       int             `json:"levels"`
	OnHand       decimal.Decimal `json:"on_hand"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// ValuationReport resumen de valorización de inventario.
type ValuationReport struct {
	Locations  []LocationValuationDTO `json:"locations"`
	TotalValue decimal.Decimal        `json:"total_value"`
}
