package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const stockLevelColumns = `id, item_id, location_id,
	quantity_on_hand, quantity_available, quantity_reserved, quantity_on_rent,
	quantity_damaged, quantity_under_repair, quantity_beyond_repair,
	reorder_point, reorder_quantity, maximum_stock,
	average_cost, last_purchase_cost, total_value,
	stock_status, version, is_active, created_at, updated_at`

func scanStockLevel(row pgx.Row) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := row.Scan(
		&s.ID, &s.ItemID, &s.LocationID,
		&s.OnHand, &s.Available, &s.Reserved, &s.OnRent,
		&s.Damaged, &s.UnderRepair, &s.BeyondRepair,
		&s.ReorderPoint, &s.ReorderQuantity, &s.MaximumStock,
		&s.AverageCost, &s.LastPurchaseCost, &s.TotalValue,
		&s.Status, &s.Version, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta el nivel. (item, ubicación) duplicado → domain.ErrConflict.
func (r *StockLevelRepo) Create(ctx context.Context, s *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (` + stockLevelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.ItemID, s.LocationID,
		s.OnHand, s.Available, s.Reserved, s.OnRent,
		s.Damaged, s.UnderRepair, s.BeyondRepair,
		s.ReorderPoint, s.ReorderQuantity, s.MaximumStock,
		s.AverageCost, s.LastPurchaseCost, s.TotalValue,
		s.Status, s.Version, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return mapError("insert stock level", err)
	}
	return nil
}

// GetByID obtiene un nivel por ID.
func (r *StockLevelRepo) GetByID(ctx context.Context, id string) (*entity.StockLevel, error) {
	return r.getOne(ctx, "get stock level",
		`SELECT `+stockLevelColumns+` FROM stock_levels WHERE id = $1`, id)
}

// GetByItemAndLocation obtiene el nivel de un ítem en una ubicación.
func (r *StockLevelRepo) GetByItemAndLocation(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	return r.getOne(ctx, "get stock level by item and location",
		`SELECT `+stockLevelColumns+` FROM stock_levels WHERE item_id = $1 AND location_id = $2`, itemID, locationID)
}

// GetForUpdate obtiene el nivel con bloqueo de fila. Solo tiene efecto dentro de una transacción.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockLevel, error) {
	return r.getOne(ctx, "get stock level for update",
		`SELECT `+stockLevelColumns+` FROM stock_levels WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockLevelRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockLevel, error) {
	s, err := scanStockLevel(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return s, nil
}

// UpdateWithVersion compare-and-swap sobre version: 0 filas afectadas → domain.ErrVersionConflict.
func (r *StockLevelRepo) UpdateWithVersion(ctx context.Context, s *entity.StockLevel, expectedVersion int64) error {
	query := `
		UPDATE stock_levels SET
			quantity_on_hand = $3, quantity_available = $4, quantity_reserved = $5, quantity_on_rent = $6,
			quantity_damaged = $7, quantity_under_repair = $8, quantity_beyond_repair = $9,
			reorder_point = $10, reorder_quantity = $11, maximum_stock = $12,
			average_cost = $13, last_purchase_cost = $14, total_value = $15,
			stock_status = $16, version = $17, is_active = $18, updated_at = $19
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		s.ID, expectedVersion,
		s.OnHand, s.Available, s.Reserved, s.OnRent,
		s.Damaged, s.UnderRepair, s.BeyondRepair,
		s.ReorderPoint, s.ReorderQuantity, s.MaximumStock,
		s.AverageCost, s.LastPurchaseCost, s.TotalValue,
		s.Status, s.Version, s.IsActive, s.UpdatedAt,
	)
	if err != nil {
		return mapError("update stock level", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.VersionConflictf("el nivel de stock %s cambió (versión esperada %d)", s.ID, expectedVersion)
	}
	return nil
}

// List lista niveles según el filtro, ordenados por ítem y ubicación.
func (r *StockLevelRepo) List(ctx context.Context, f repository.StockLevelFilter) ([]*entity.StockLevel, error) {
	var (
		where []string
		args  []any
	)
	if f.ItemID != "" {
		args = append(args, f.ItemID)
		where = append(where, fmt.Sprintf("item_id = $%d", len(args)))
	}
	if f.LocationID != "" {
		args = append(args, f.LocationID)
		where = append(where, fmt.Sprintf("location_id = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			statuses = append(statuses, string(st))
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("stock_status = ANY($%d)", len(args)))
	}
	query := `SELECT ` + stockLevelColumns + ` FROM stock_levels`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY item_id, location_id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list stock levels", err)
	}
	defer rows.Close()
	list := make([]*entity.StockLevel, 0)
	for rows.Next() {
		s, err := scanStockLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list stock levels", err)
	}
	return list, nil
}

// SumAvailableByItem suma quantity_available de los niveles activos del ítem.
func (r *StockLevelRepo) SumAvailableByItem(ctx context.Context, itemID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_available), 0) FROM stock_levels WHERE item_id = $1 AND is_active`,
		itemID).Scan(&total)
	if err != nil {
		if isNoRows(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, mapError("sum available stock", err)
	}
	return total, nil
}

// ValuationByLocation suma on_hand y total_value de los niveles activos por ubicación.
func (r *StockLevelRepo) ValuationByLocation(ctx context.Context) ([]repository.LocationValuation, error) {
	query := `
		SELECT l.id, l.name, COUNT(s.id), COALESCE(SUM(s.quantity_on_hand), 0), COALESCE(SUM(s.total_value), 0)
		FROM stock_levels s
		JOIN locations l ON l.id = s.location_id
		WHERE s.is_active
		GROUP BY l.id, l.name
		ORDER BY l.name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, mapError("stock valuation", err)
	}
	defer rows.Close()
	out := make([]repository.LocationValuation, 0)
	for rows.Next() {
		var v repository.LocationValuation
		if err := rows.Scan(&v.LocationID, &v.LocationName, &v.Levels, &v.OnHand, &v.TotalValue); err != nil {
			return nil, fmt.Errorf("scan stock valuation: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("stock valuation", err)
	}
	return out, nil
}
