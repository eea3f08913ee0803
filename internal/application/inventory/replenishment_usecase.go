package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// maxReplenishmentRows tope de niveles considerados en un solo reporte.
const maxReplenishmentRows = 1000

// ReplenishmentUseCase genera la lista de reposición y la valorización de inventario.
type ReplenishmentUseCase struct {
	levelRepo repository.StockLevelRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(levelRepo repository.StockLevelRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{levelRepo: levelRepo}
}

// GenerateReplenishmentList devuelve los niveles en LOW_STOCK u OUT_OF_STOCK con la cantidad
// sugerida de pedido. locationID vacío considera todas las ubicaciones.
// Cantidad sugerida: reorder_quantity; si no hay, maximum_stock - on_hand; si no, reorder_point*1.5 - available.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, locationID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	levels, err := uc.levelRepo.List(ctx, repository.StockLevelFilter{
		LocationID: locationID,
		Statuses:   []entity.StockStatus{entity.StockStatusLowStock, entity.StockStatusOutOfStock},
		Limit:      maxReplenishmentRows,
	})
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(levels))
	for _, l := range levels {
		unitCost := decimal.Zero
		if l.AverageCost != nil {
			unitCost = *l.AverageCost
		}
		qty := SuggestedOrderQuantity(l)
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			StockLevelID:       l.ID,
			ItemID:             l.ItemID,
			LocationID:         l.LocationID,
			StockStatus:        string(l.Status),
			OnHand:             l.OnHand,
			Available:          l.Available,
			ReorderPoint:       l.ReorderPoint,
			SuggestedOrderQty:  qty,
			UnitCost:           unitCost,
			EstimatedOrderCost: qty.Mul(unitCost).Round(2),
		})
	}

	// Orden: primero quiebres de stock, luego mayor déficit frente al punto de reorden.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		aOut := a.StockStatus == string(entity.StockStatusOutOfStock)
		bOut := b.StockStatus == string(entity.StockStatusOutOfStock)
		if aOut != bOut {
			return aOut
		}
		defA, defB := deficit(a), deficit(b)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.StockLevelID < b.StockLevelID
	})

	// Prioridad 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// SuggestedOrderQuantity cantidad a pedir para un nivel bajo el punto de reorden. Nunca negativa.
func SuggestedOrderQuantity(l *entity.StockLevel) decimal.Decimal {
	var qty decimal.Decimal
	switch {
	case l.ReorderQuantity != nil && l.ReorderQuantity.IsPositive():
		qty = *l.ReorderQuantity
	case l.MaximumStock != nil && l.MaximumStock.GreaterThan(l.OnHand):
		qty = l.MaximumStock.Sub(l.OnHand)
	case l.ReorderPoint != nil:
		qty = l.ReorderPoint.Mul(decimal.NewFromFloat(1.5)).Sub(l.Available)
	}
	if qty.IsNegative() {
		return decimal.Zero
	}
	return qty.Round(2)
}

func deficit(s dto.ReplenishmentSuggestionDTO) decimal.Decimal {
	if s.ReorderPoint == nil {
		return s.Available.Neg()
	}
	return s.ReorderPoint.Sub(s.Available)
}

// Valuation resume el valor del inventario por ubicación y el total general.
func (uc *ReplenishmentUseCase) Valuation(ctx context.Context) (*dto.ValuationReport, error) {
	rows, err := uc.levelRepo.ValuationByLocation(ctx)
	if err != nil {
		return nil, err
	}
	report := &dto.ValuationReport{
		Locations:  make([]dto.LocationValuationDTO, 0, len(rows)),
		TotalValue: decimal.Zero,
	}
	for _, r := range rows {
		report.Locations = append(report.Locations, dto.LocationValuationDTO{
			LocationID:   r.LocationID,
			LocationName: r.LocationName,
			Levels:       r.Levels,
			OnHand:       r.OnHand,
			TotalValue:   r.TotalValue,
		})
		report.TotalValue = report.TotalValue.Add(r.TotalValue)
	}
	return report, nil
}
