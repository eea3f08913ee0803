package repository

import (
	"context"

	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
)

// RentalPricingRepository define el puerto de persistencia de tramos de precio de alquiler.
type RentalPricingRepository interface {
	// Create inserta un tramo; domain.ErrConflict ante (item, nombre, vigencia) duplicado
	// o un segundo default activo.
	Create(ctx context.Context, tier *entity.RentalPricingTier) error
	GetByID(ctx context.Context, id string) (*entity.RentalPricingTier, error)
	Update(ctx context.Context, tier *entity.RentalPricingTier) error
	// ListByItem lista los tramos de un ítem; onlyActive excluye los inactivos.
	ListByItem(ctx context.Context, itemID string, onlyActive bool) ([]*entity.RentalPricingTier, error)
	// ListByItemForUpdate lista y bloquea todos los tramos del ítem (SELECT FOR UPDATE).
	ListByItemForUpdate(ctx context.Context, itemID string) ([]*entity.RentalPricingTier, error)
	// ClearDefaults quita la marca default de todos los tramos del ítem.
	ClearDefaults(ctx context.Context, itemID string) error
	SetDefault(ctx context.Context, tierID string) error
}
