package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo del catálogo que se alquila (y eventualmente se vende).
// El stock se maneja por ubicación en StockLevel; el precio de alquiler en RentalPricingTier.
type Item struct {
	ID            string
	SKU           string // código único
	Name          string
	Description   string
	Category      string
	UnitMeasure   string
	IsRentable    bool
	BaseDailyRate *decimal.Decimal // tarifa de respaldo cuando ningún tramo aplica
	Attributes    json.RawMessage
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
