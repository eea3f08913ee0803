package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock: uno por operación de StockLevel.
const (
	MovementTypeInitial        = "INITIAL"
	MovementTypeAdjustment     = "ADJUSTMENT"
	MovementTypeReserve        = "RESERVE"
	MovementTypeRelease        = "RELEASE"
	MovementTypeRentOut        = "RENT_OUT"
	MovementTypeReturn         = "RETURN"
	MovementTypeRepairStart    = "REPAIR_START"
	MovementTypeRepairComplete = "REPAIR_COMPLETE"
	MovementTypeBeyondRepair   = "BEYOND_REPAIR"
	MovementTypeWriteOff       = "WRITE_OFF"
	MovementTypeCostUpdate     = "COST_UPDATE"
	MovementTypeThresholds     = "THRESHOLDS"
)

// StockMovement registro inmutable de una mutación sobre un StockLevel.
// Guarda on_hand y available antes y después para auditoría.
type StockMovement struct {
	ID              string
	StockLevelID    string
	ItemID          string
	LocationID      string
	Type            string
	Quantity        decimal.Decimal // cantidad principal de la operación (con signo en ajustes)
	DamagedQuantity decimal.Decimal // solo RETURN
	UnitCost        *decimal.Decimal
	OnHandBefore    decimal.Decimal
	OnHandAfter     decimal.Decimal
	AvailableBefore decimal.Decimal
	AvailableAfter  decimal.Decimal
	Version         int64 // versión del StockLevel resultante
	Reference       string
	Notes           string
	CreatedAt       time.Time
	CreatedBy       string // UserID
}
