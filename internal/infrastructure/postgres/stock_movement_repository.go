package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo persiste el libro de movimientos de stock. Solo inserta y lee.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, stock_level_id, item_id, location_id, type, quantity, damaged_quantity,
			unit_cost, on_hand_before, on_hand_after, available_before, available_after, version,
			reference, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.StockLevelID, m.ItemID, m.LocationID, m.Type, m.Quantity, m.DamagedQuantity,
		m.UnitCost, m.OnHandBefore, m.OnHandAfter, m.AvailableBefore, m.AvailableAfter, m.Version,
		m.Reference, m.Notes, m.CreatedAt, nullableString(m.CreatedBy),
	)
	if err != nil {
		return mapError("insert stock movement", err)
	}
	return nil
}

// ListByStockLevel lista los movimientos de un nivel, del más reciente al más antiguo.
func (r *StockMovementRepo) ListByStockLevel(ctx context.Context, stockLevelID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, stock_level_id, item_id, location_id, type, quantity, damaged_quantity,
			unit_cost, on_hand_before, on_hand_after, available_before, available_after, version,
			reference, notes, created_at, COALESCE(created_by::text, '')
		FROM stock_movements WHERE stock_level_id = $1
		ORDER BY created_at DESC, version DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, stockLevelID, limit, offset)
	if err != nil {
		return nil, mapError("list stock movements", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.StockLevelID, &m.ItemID, &m.LocationID, &m.Type, &m.Quantity, &m.DamagedQuantity,
			&m.UnitCost, &m.OnHandBefore, &m.OnHandAfter, &m.AvailableBefore, &m.AvailableAfter, &m.Version,
			&m.Reference, &m.Notes, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list stock movements", err)
	}
	return list, nil
}

// nullableString convierte "" en NULL para columnas UUID opcionales.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
