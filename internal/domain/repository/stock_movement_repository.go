package repository

import (
	"context"

	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de movimientos.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByStockLevel(ctx context.Context, stockLevelID string, limit, offset int) ([]*entity.StockMovement, error)
}
