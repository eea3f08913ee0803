package inventory

import (
	"context"

	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; el nivel de stock y su movimiento se guardan juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		levelRepo repository.StockLevelRepository,
		movementRepo repository.StockMovementRepository,
	) error) error
}
