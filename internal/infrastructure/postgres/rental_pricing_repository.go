package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
)

var _ repository.RentalPricingRepository = (*RentalPricingRepo)(nil)

// RentalPricingRepo implementación de RentalPricingRepository sobre PostgreSQL (pool o tx).
type RentalPricingRepo struct {
	q Querier
}

// NewRentalPricingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRentalPricingRepository(q Querier) *RentalPricingRepo {
	return &RentalPricingRepo{q: q}
}

const tierColumns = `id, item_id, tier_name, period_type, period_days, period_hours, rate_per_period,
	effective_date, expiry_date, min_rental_days, max_rental_days,
	priority, is_default, is_active, version, created_at, updated_at`

func scanTier(row pgx.Row) (*entity.RentalPricingTier, error) {
	var t entity.RentalPricingTier
	err := row.Scan(
		&t.ID, &t.ItemID, &t.TierName, &t.PeriodType, &t.PeriodDays, &t.PeriodHours, &t.RatePerPeriod,
		&t.EffectiveDate, &t.ExpiryDate, &t.MinRentalDays, &t.MaxRentalDays,
		&t.Priority, &t.IsDefault, &t.IsActive, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.EffectiveDate = entity.DateOnly(t.EffectiveDate)
	if t.ExpiryDate != nil {
		d := entity.DateOnly(*t.ExpiryDate)
		t.ExpiryDate = &d
	}
	return &t, nil
}

// Create inserta un tramo. Duplicado (ítem, nombre, vigencia) o segundo default activo → domain.ErrConflict.
func (r *RentalPricingRepo) Create(ctx context.Context, t *entity.RentalPricingTier) error {
	query := `
		INSERT INTO rental_pricing_tiers (` + tierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ItemID, t.TierName, t.PeriodType, t.PeriodDays, t.PeriodHours, t.RatePerPeriod,
		t.EffectiveDate, t.ExpiryDate, t.MinRentalDays, t.MaxRentalDays,
		t.Priority, t.IsDefault, t.IsActive, t.Version, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapError("insert rental pricing tier", err)
	}
	return nil
}

// GetByID obtiene un tramo por ID.
func (r *RentalPricingRepo) GetByID(ctx context.Context, id string) (*entity.RentalPricingTier, error) {
	t, err := scanTier(r.q.QueryRow(ctx, `SELECT `+tierColumns+` FROM rental_pricing_tiers WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapError("get rental pricing tier", err)
	}
	return t, nil
}

// Update persiste los campos editables e incrementa version; t.Version queda con el valor nuevo.
func (r *RentalPricingRepo) Update(ctx context.Context, t *entity.RentalPricingTier) error {
	query := `
		UPDATE rental_pricing_tiers SET
			tier_name = $2, rate_per_period = $3, effective_date = $4, expiry_date = $5,
			min_rental_days = $6, max_rental_days = $7, priority = $8, is_default = $9,
			is_active = $10, updated_at = $11, version = version + 1
		WHERE id = $1
		RETURNING version`
	err := r.q.QueryRow(ctx, query,
		t.ID, t.TierName, t.RatePerPeriod, t.EffectiveDate, t.ExpiryDate,
		t.MinRentalDays, t.MaxRentalDays, t.Priority, t.IsDefault,
		t.IsActive, t.UpdatedAt,
	).Scan(&t.Version)
	if err != nil {
		if isNoRows(err) {
			return domain.NotFoundf("tramo de precio %s no encontrado", t.ID)
		}
		return mapError("update rental pricing tier", err)
	}
	return nil
}

// ListByItem lista los tramos del ítem por prioridad y luego ID.
func (r *RentalPricingRepo) ListByItem(ctx context.Context, itemID string, onlyActive bool) ([]*entity.RentalPricingTier, error) {
	query := `SELECT ` + tierColumns + ` FROM rental_pricing_tiers WHERE item_id = $1`
	if onlyActive {
		query += ` AND is_active`
	}
	query += ` ORDER BY priority, id`
	return r.list(ctx, "list rental pricing tiers", query, itemID)
}

// ListByItemForUpdate igual que ListByItem (todos) pero bloquea las filas.
func (r *RentalPricingRepo) ListByItemForUpdate(ctx context.Context, itemID string) ([]*entity.RentalPricingTier, error) {
	query := `SELECT ` + tierColumns + ` FROM rental_pricing_tiers WHERE item_id = $1 ORDER BY priority, id FOR UPDATE`
	return r.list(ctx, "lock rental pricing tiers", query, itemID)
}

func (r *RentalPricingRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.RentalPricingTier, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	list := make([]*entity.RentalPricingTier, 0)
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rental pricing tier: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return list, nil
}

// ClearDefaults quita la marca default de los tramos del ítem.
func (r *RentalPricingRepo) ClearDefaults(ctx context.Context, itemID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE rental_pricing_tiers SET is_default = FALSE, version = version + 1, updated_at = now()
		 WHERE item_id = $1 AND is_default`, itemID)
	if err != nil {
		return mapError("clear default tiers", err)
	}
	return nil
}

// SetDefault marca el tramo como default.
func (r *RentalPricingRepo) SetDefault(ctx context.Context, tierID string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE rental_pricing_tiers SET is_default = TRUE, version = version + 1, updated_at = now()
		 WHERE id = $1`, tierID)
	if err != nil {
		return mapError("set default tier", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("tramo de precio %s no encontrado", tierID)
	}
	return nil
}
