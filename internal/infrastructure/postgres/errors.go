package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Alquiler-api/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateForeignKeyViolation  = "23503"
	sqlStateCheckViolation       = "23514"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"

	sqlStateInvalidTextRepresentation = "22P02"
)

// Mensajes por constraint; la clasificación usa el nombre del constraint, nunca el texto del error.
var constraintMessages = map[string]string{
	"users_email_key":                         "el email ya está registrado",
	"items_sku_key":                           "ya existe un ítem con ese SKU",
	"locations_code_key":                      "ya existe una ubicación con ese código",
	"customers_tax_id_key":                    "ya existe un cliente con ese documento",
	"stock_levels_item_location_key":          "ya existe un nivel de stock para ese ítem y ubicación",
	"rental_pricing_tiers_item_name_date_key": "ya existe un tramo con ese nombre y fecha de vigencia para el ítem",
	"rental_pricing_tiers_one_default_idx":    "el ítem ya tiene un tramo default activo",
	"stock_levels_partition_sum_check":        "la suma de particiones no coincide con on_hand",
	"stock_levels_non_negative_check":         "las cantidades no pueden ser negativas",
	"stock_levels_thresholds_check":           "reorder_point no puede superar maximum_stock",
	"stock_levels_item_id_fkey":               "el ítem no existe",
	"stock_levels_location_id_fkey":           "la ubicación no existe",
	"rental_pricing_tiers_item_id_fkey":       "el ítem no existe",
}

// mapError traduce errores de PostgreSQL a errores de dominio; el resto se envuelve con op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg, ok := constraintMessages[pgErr.ConstraintName]
	if !ok {
		msg = fmt.Sprintf("%s: violación de %s", op, pgErr.ConstraintName)
	}
	switch pgErr.Code {
	case sqlStateUniqueViolation:
		if pgErr.ConstraintName == "users_email_key" {
			return domain.ErrEmailAlreadyExists
		}
		return domain.Conflictf("%s", msg)
	case sqlStateCheckViolation:
		return domain.Validationf("%s", msg)
	case sqlStateForeignKeyViolation:
		return domain.NotFoundf("%s", msg)
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return domain.VersionConflictf("%s: operación concurrente, reintente", op)
	case sqlStateInvalidTextRepresentation:
		return domain.NotFoundf("%s: identificador con formato inválido", op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation
}

// isNoRows informa si la lectura no encontró fila. Un identificador que no es UUID
// tampoco puede existir, así que se trata igual.
func isNoRows(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateInvalidTextRepresentation
}
