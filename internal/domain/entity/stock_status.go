package entity

import "github.com/shopspring/decimal"

// StockStatus estado agregado de un nivel de stock, derivado de sus particiones.
type StockStatus string

// Estados posibles; solo uno está activo a la vez.
const (
	StockStatusInStock     StockStatus = "IN_STOCK"
	StockStatusLowStock    StockStatus = "LOW_STOCK"
	StockStatusOutOfStock  StockStatus = "OUT_OF_STOCK"
	StockStatusOverstocked StockStatus = "OVERSTOCKED"
)

// Valid informa si s es uno de los estados conocidos.
func (s StockStatus) Valid() bool {
	switch s {
	case StockStatusInStock, StockStatusLowStock, StockStatusOutOfStock, StockStatusOverstocked:
		return true
	}
	return false
}

// ClassifyStockStatus calcula el estado a partir de las particiones y umbrales.
// Precedencia: quiebre de stock > stock bajo > sobre-stock > en stock.
func ClassifyStockStatus(onHand, available decimal.Decimal, reorderPoint, maximumStock *decimal.Decimal) StockStatus {
	if onHand.IsZero() {
		return StockStatusOutOfStock
	}
	if available.IsZero() {
		return StockStatusOutOfStock
	}
	if reorderPoint != nil && available.LessThanOrEqual(*reorderPoint) {
		return StockStatusLowStock
	}
	if maximumStock != nil && onHand.GreaterThan(*maximumStock) {
		return StockStatusOverstocked
	}
	return StockStatusInStock
}
