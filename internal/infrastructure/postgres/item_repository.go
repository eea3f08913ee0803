package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, sku, name, description, category, unit_measure, is_rentable, base_daily_rate,
	attributes, is_active, created_at, updated_at`

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	if err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Description, &it.Category, &it.UnitMeasure,
		&it.IsRentable, &it.BaseDailyRate, &it.Attributes, &it.IsActive, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un nuevo ítem. SKU duplicado → domain.ErrConflict.
func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.SKU, it.Name, it.Description, it.Category, it.UnitMeasure, it.IsRentable,
		it.BaseDailyRate, nullableJSON(it.Attributes), it.IsActive, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return mapError("insert item", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapError("get item", err)
	}
	return it, nil
}

// GetBySKU obtiene un ítem por SKU.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE sku = $1`, sku))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapError("get item by sku", err)
	}
	return it, nil
}

// Update actualiza los datos de catálogo. El SKU no cambia.
func (r *ItemRepo) Update(ctx context.Context, it *entity.Item) error {
	query := `
		UPDATE items SET name = $2, description = $3, category = $4, unit_measure = $5, is_rentable = $6,
			base_daily_rate = $7, attributes = $8, is_active = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		it.ID, it.Name, it.Description, it.Category, it.UnitMeasure, it.IsRentable,
		it.BaseDailyRate, nullableJSON(it.Attributes), it.IsActive, it.UpdatedAt,
	)
	if err != nil {
		return mapError("update item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("ítem %s no encontrado", it.ID)
	}
	return nil
}

// List lista ítems activos; search filtra por SKU o nombre (ILIKE).
func (r *ItemRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Item, error) {
	query := `
		SELECT ` + itemColumns + ` FROM items
		WHERE is_active AND ($1 = '' OR sku ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')
		ORDER BY name, sku LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, mapError("list items", err)
	}
	defer rows.Close()
	list := make([]*entity.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list items", err)
	}
	return list, nil
}

// Deactivate baja lógica del ítem.
func (r *ItemRepo) Deactivate(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE items SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return mapError("deactivate item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("ítem %s no encontrado", id)
	}
	return nil
}

// nullableJSON guarda NULL cuando no hay atributos.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
