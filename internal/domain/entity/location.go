package entity

import "time"

// Tipos de ubicación.
const (
	LocationTypeWarehouse = "WAREHOUSE"
	LocationTypeStore     = "STORE"
	LocationTypeService   = "SERVICE_CENTER"
)

// Location representa una bodega, tienda o centro de servicio donde se guarda inventario.
type Location struct {
	ID        string
	Code      string // único
	Name      string
	Type      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
