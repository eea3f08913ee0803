package repository

import (
	"context"

	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockLevelFilter criterios de listado de niveles de stock. Campos vacíos no filtran.
type StockLevelFilter struct {
	ItemID     string
	LocationID string
	Statuses   []entity.StockStatus
	Limit      int
	Offset     int
}

// LocationValuation valor total del inventario de una ubicación.
type LocationValuation struct {
	LocationID   string
	LocationName string
	Levels       int
	OnHand       decimal.Decimal
	TotalValue   decimal.Decimal
}

// StockLevelRepository define el puerto de persistencia de StockLevel (DIP).
// Get* devuelven (nil, nil) si no existe la fila.
type StockLevelRepository interface {
	// Create inserta un nivel nuevo; domain.ErrConflict si ya existe (item, ubicación).
	Create(ctx context.Context, level *entity.StockLevel) error
	GetByID(ctx context.Context, id string) (*entity.StockLevel, error)
	GetByItemAndLocation(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error)
	// GetForUpdate obtiene el nivel y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockLevel, error)
	// UpdateWithVersion persiste el nivel solo si la versión almacenada sigue siendo expectedVersion.
	// domain.ErrVersionConflict si otra operación la cambió.
	UpdateWithVersion(ctx context.Context, level *entity.StockLevel, expectedVersion int64) error
	List(ctx context.Context, filter StockLevelFilter) ([]*entity.StockLevel, error)
	// SumAvailableByItem suma available de todos los niveles activos del ítem, sin paginar.
	SumAvailableByItem(ctx context.Context, itemID string) (decimal.Decimal, error)
	ValuationByLocation(ctx context.Context) ([]LocationValuation, error)
}
