package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTierRequest body para POST /api/items/:id/pricing-tiers.
// Fechas en formato YYYY-MM-DD; effective_date vacío = hoy.
type CreateTierRequest struct {
	TierName      string          `json:"tier_name"`
	PeriodType    string          `json:"period_type"`
	PeriodDays    *int            `json:"period_days,omitempty"`
	PeriodHours   *int            `json:"period_hours,omitempty"`
	RatePerPeriod decimal.Decimal `json:"rate_per_period"`
	EffectiveDate string          `json:"effective_date,omitempty"`
	ExpiryDate    string          `json:"expiry_date,omitempty"`
	MinRentalDays *int            `json:"min_rental_days,omitempty"`
	MaxRentalDays *int            `json:"max_rental_days,omitempty"`
	Priority      int             `json:"priority"`
	IsDefault     bool            `json:"is_default"`
}

// UpdateTierRequest body para PUT /api/pricing-tiers/:id (campos nil no cambian).
// La marca default no se cambia aquí: usar PUT /api/items/:id/pricing-tiers/:tier_id/default.
type UpdateTierRequest struct {
	TierName      *string          `json:"tier_name"`
	RatePerPeriod *decimal.Decimal `json:"rate_per_period"`
	EffectiveDate *string          `json:"effective_date"`
	ExpiryDate    *string          `json:"expiry_date"`
	ClearExpiry   bool             `json:"clear_expiry"`
	MinRentalDays *int             `json:"min_rental_days"`
	MaxRentalDays *int             `json:"max_rental_days"`
	Priority      *int             `json:"priority"`
	IsActive      *bool            `json:"is_active"`
}

// StandardTemplateRequest body para POST /api/items/:id/pricing-tiers/standard.
// daily_rate es obligatorio; weekly_rate y monthly_rate opcionales.
type StandardTemplateRequest struct {
	DailyRate     decimal.Decimal  `json:"daily_rate"`
	WeeklyRate    *decimal.Decimal `json:"weekly_rate,omitempty"`
	MonthlyRate   *decimal.Decimal `json:"monthly_rate,omitempty"`
	EffectiveDate string           `json:"effective_date,omitempty"`
}

// TierResponse salida de un tramo de precio.
type TierResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	TierName      string          `json:"tier_name"`
	PeriodType    string          `json:"period_type"`
	PeriodDays    *int            `json:"period_days,omitempty"`
	PeriodHours   *int            `json:"period_hours,omitempty"`
	RatePerPeriod decimal.Decimal `json:"rate_per_period"`
	EffectiveDate string          `json:"effective_date"`
	ExpiryDate    *string         `json:"expiry_date,omitempty"`
	MinRentalDays *int            `json:"min_rental_days,omitempty"`
	MaxRentalDays *int            `json:"max_rental_days,omitempty"`
	Priority      int             `json:"priority"`
	IsDefault     bool            `json:"is_default"`
	IsActive      bool            `json:"is_active"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TierCostDTO costo de un tramo para la duración consultada.
type TierCostDTO struct {
	Tier      TierResponse    `json:"tier"`
	Periods   int64           `json:"periods"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// BestPricingResponse salida de GET /api/items/:id/pricing/best.
// Found=false indica que no hay tramo aplicable (no es un error).
type BestPricingResponse struct {
	ItemID          string       `json:"item_id"`
	RentalDays      int          `json:"rental_days"`
	CalculationDate string       `json:"calculation_date"`
	Found           bool         `json:"found"`
	Best            *TierCostDTO `json:"best,omitempty"`
}

// QuoteRequest body para POST /api/rental-quotes.
type QuoteRequest struct {
	ItemID          string `json:"item_id"`
	RentalDays      int    `json:"rental_days"`
	Quantity        int    `json:"quantity"`
	CalculationDate string `json:"calculation_date,omitempty"`
	CustomerID      string `json:"customer_id,omitempty"`
}

// QuoteResponse cotización de alquiler.
type QuoteResponse struct {
	ItemID          string          `json:"item_id"`
	ItemName        string          `json:"item_name"`
	SKU             string          `json:"sku"`
	CustomerID      string          `json:"customer_id,omitempty"`
	CustomerName    string          `json:"customer_name,omitempty"`
	RentalDays      int             `json:"rental_days"`
	Quantity        int             `json:"quantity"`
	CalculationDate string          `json:"calculation_date"`
	PricingSource   string          `json:"pricing_source"` // TIER | BASE_RATE
	Selected        *TierCostDTO    `json:"selected,omitempty"`
	Alternatives    []TierCostDTO   `json:"alternatives"`
	UnitTotal       decimal.Decimal `json:"unit_total"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	Available       decimal.Decimal `json:"available"`
	GeneratedAt     time.Time       `json:"generated_at"`
}
