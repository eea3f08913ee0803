package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StockUseCase opera los niveles de stock por (ítem, ubicación).
// Cada mutación: bloquea la fila (SELECT FOR UPDATE), aplica la operación del entity,
// persiste con compare-and-swap de versión y registra el movimiento, todo en una transacción.
type StockUseCase struct {
	txRunner     TxRunner
	levelRepo    repository.StockLevelRepository
	movementRepo repository.StockMovementRepository
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	levelRepo repository.StockLevelRepository,
	movementRepo repository.StockMovementRepository,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	log zerolog.Logger,
) *StockUseCase {
	return &StockUseCase{
		txRunner:     txRunner,
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		log:          log.With().Str("component", "stock").Logger(),
		now:          time.Now,
	}
}

// CreateStockLevel crea el nivel de stock de un ítem en una ubicación.
// El ítem y la ubicación deben existir; un segundo nivel para el mismo par es CONFLICT.
func (uc *StockUseCase) CreateStockLevel(ctx context.Context, userID string, in dto.CreateStockLevelRequest) (*dto.StockLevelResponse, error) {
	if in.ItemID == "" || in.LocationID == "" {
		return nil, domain.Validationf("item_id y location_id son requeridos")
	}
	item, err := uc.itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("ítem %s no encontrado", in.ItemID)
	}
	location, err := uc.locationRepo.GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.NotFoundf("ubicación %s no encontrada", in.LocationID)
	}

	level, err := entity.NewStockLevel(in.ItemID, in.LocationID, entity.InitialQuantities{
		OnHand:          in.OnHand,
		Available:       in.Available,
		Reserved:        in.Reserved,
		OnRent:          in.OnRent,
		Damaged:         in.Damaged,
		UnderRepair:     in.UnderRepair,
		BeyondRepair:    in.BeyondRepair,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
		MaximumStock:    in.MaximumStock,
		AverageCost:     in.AverageCost,
	})
	if err != nil {
		return nil, err
	}
	now := uc.now()
	level.ID = uuid.New().String()
	level.CreatedAt = now
	level.UpdatedAt = now

	err = uc.txRunner.Run(ctx, func(levelRepo repository.StockLevelRepository, movementRepo repository.StockMovementRepository) error {
		existing, err := levelRepo.GetByItemAndLocation(ctx, in.ItemID, in.LocationID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflictf("ya existe un nivel de stock para el ítem %s en la ubicación %s", in.ItemID, in.LocationID)
		}
		if err := levelRepo.Create(ctx, level); err != nil {
			return err
		}
		return movementRepo.Create(ctx, &entity.StockMovement{
			ID:             uuid.New().String(),
			StockLevelID:   level.ID,
			ItemID:         level.ItemID,
			LocationID:     level.LocationID,
			Type:           entity.MovementTypeInitial,
			Quantity:       level.OnHand,
			UnitCost:       level.AverageCost,
			OnHandAfter:    level.OnHand,
			AvailableAfter: level.Available,
			Version:        level.Version,
			CreatedAt:      now,
			CreatedBy:      userID,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("stock_level_id", level.ID).
		Str("item_id", level.ItemID).
		Str("location_id", level.LocationID).
		Str("on_hand", level.OnHand.String()).
		Str("user_id", userID).
		Msg("nivel de stock creado")
	return ToStockLevelResponse(level), nil
}

// GetByID obtiene un nivel de stock; NOT_FOUND si no existe.
func (uc *StockUseCase) GetByID(ctx context.Context, id string) (*dto.StockLevelResponse, error) {
	level, err := uc.levelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.NotFoundf("nivel de stock %s no encontrado", id)
	}
	return ToStockLevelResponse(level), nil
}

// GetByItemAndLocation obtiene el nivel de stock de un par (ítem, ubicación).
func (uc *StockUseCase) GetByItemAndLocation(ctx context.Context, itemID, locationID string) (*dto.StockLevelResponse, error) {
	level, err := uc.levelRepo.GetByItemAndLocation(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.NotFoundf("no hay stock del ítem %s en la ubicación %s", itemID, locationID)
	}
	return ToStockLevelResponse(level), nil
}

// List lista niveles de stock con filtros opcionales.
func (uc *StockUseCase) List(ctx context.Context, filter repository.StockLevelFilter) (*dto.StockLevelListResponse, error) {
	for _, s := range filter.Statuses {
		if !s.Valid() {
			return nil, domain.Validationf("stock_status inválido: %q", s)
		}
	}
	list, err := uc.levelRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockLevelResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *ToStockLevelResponse(l))
	}
	return &dto.StockLevelListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// ListMovements devuelve el historial de movimientos de un nivel de stock, más reciente primero.
func (uc *StockUseCase) ListMovements(ctx context.Context, stockLevelID string, limit, offset int) ([]dto.StockMovementResponse, error) {
	level, err := uc.levelRepo.GetByID(ctx, stockLevelID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.NotFoundf("nivel de stock %s no encontrado", stockLevelID)
	}
	list, err := uc.movementRepo.ListByStockLevel(ctx, stockLevelID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toStockMovementResponse(m))
	}
	return out, nil
}

// AdjustQuantity suma delta a on_hand y available (recepción o conteo físico).
func (uc *StockUseCase) AdjustQuantity(ctx context.Context, userID, id string, in dto.AdjustQuantityRequest) (*dto.StockLevelResponse, error) {
	affect := true
	if in.AffectAvailable != nil {
		affect = *in.AffectAvailable
	}
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeAdjustment,
		func(l *entity.StockLevel) error { return l.AdjustQuantity(in.Delta, affect) },
		func(m *entity.StockMovement) { m.Quantity = in.Delta.Round(2) },
	)
}

// Reserve aparta unidades disponibles.
func (uc *StockUseCase) Reserve(ctx context.Context, userID, id string, in dto.QuantityRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeReserve,
		func(l *entity.StockLevel) error { return l.Reserve(in.Quantity) },
		quantityOf(in.Quantity),
	)
}

// ReleaseReservation devuelve unidades reservadas a disponibles.
func (uc *StockUseCase) ReleaseReservation(ctx context.Context, userID, id string, in dto.QuantityRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeRelease,
		func(l *entity.StockLevel) error { return l.ReleaseReservation(in.Quantity) },
		quantityOf(in.Quantity),
	)
}

// RentOut entrega unidades disponibles en alquiler.
func (uc *StockUseCase) RentOut(ctx context.Context, userID, id string, in dto.QuantityRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeRentOut,
		func(l *entity.StockLevel) error { return l.RentOut(in.Quantity) },
		quantityOf(in.Quantity),
	)
}

// ReturnFromRent recibe unidades alquiladas; las dañadas pasan a damaged.
func (uc *StockUseCase) ReturnFromRent(ctx context.Context, userID, id string, in dto.ReturnFromRentRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeReturn,
		func(l *entity.StockLevel) error { return l.ReturnFromRent(in.Quantity, in.DamagedQuantity) },
		func(m *entity.StockMovement) {
			m.Quantity = in.Quantity.Round(2)
			m.DamagedQuantity = in.DamagedQuantity.Round(2)
		},
	)
}

// MoveToRepair envía unidades dañadas a reparación.
func (uc *StockUseCase) MoveToRepair(ctx context.Context, userID, id string, in dto.QuantityRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeRepairStart,
		func(l *entity.StockLevel) error { return l.MoveToRepair(in.Quantity) },
		quantityOf(in.Quantity),
	)
}

// CompleteRepair reincorpora unidades reparadas a disponibles.
func (uc *StockUseCase) CompleteRepair(ctx context.Context, userID, id string, in dto.QuantityRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeRepairComplete,
		func(l *entity.StockLevel) error { return l.CompleteRepair(in.Quantity) },
		quantityOf(in.Quantity),
	)
}

// MarkBeyondRepair declara unidades irreparables.
func (uc *StockUseCase) MarkBeyondRepair(ctx context.Context, userID, id string, in dto.BeyondRepairRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeBeyondRepair,
		func(l *entity.StockLevel) error { return l.MarkBeyondRepair(in.Quantity, in.FromRepair) },
		quantityOf(in.Quantity),
	)
}

// WriteOff da de baja unidades irreparables.
func (uc *StockUseCase) WriteOff(ctx context.Context, userID, id string, in dto.QuantityRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeWriteOff,
		func(l *entity.StockLevel) error { return l.WriteOff(in.Quantity) },
		quantityOf(in.Quantity.Neg()),
	)
}

// UpdateAverageCost recalcula el costo promedio ponderado con una compra.
func (uc *StockUseCase) UpdateAverageCost(ctx context.Context, userID, id string, in dto.UpdateCostRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeCostUpdate,
		func(l *entity.StockLevel) error { return l.UpdateAverageCost(in.Quantity, in.UnitCost) },
		func(m *entity.StockMovement) {
			cost := in.UnitCost
			m.Quantity = in.Quantity.Round(2)
			m.UnitCost = &cost
		},
	)
}

// UpdateThresholds reemplaza punto de reorden, cantidad de reorden y stock máximo.
func (uc *StockUseCase) UpdateThresholds(ctx context.Context, userID, id string, in dto.UpdateThresholdsRequest) (*dto.StockLevelResponse, error) {
	return uc.mutate(ctx, userID, id, in.MutationMeta, entity.MovementTypeThresholds,
		func(l *entity.StockLevel) error {
			return l.UpdateThresholds(in.ReorderPoint, in.ReorderQuantity, in.MaximumStock)
		},
		nil,
	)
}

// mutate carga y bloquea el nivel, verifica expected_version, aplica op y persiste con CAS.
// El movimiento se registra en la misma transacción.
func (uc *StockUseCase) mutate(
	ctx context.Context,
	userID, id string,
	meta dto.MutationMeta,
	movementType string,
	op func(*entity.StockLevel) error,
	fill func(*entity.StockMovement),
) (*dto.StockLevelResponse, error) {
	var result *entity.StockLevel
	err := uc.txRunner.Run(ctx, func(levelRepo repository.StockLevelRepository, movementRepo repository.StockMovementRepository) error {
		level, err := levelRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if level == nil {
			return domain.NotFoundf("nivel de stock %s no encontrado", id)
		}
		if meta.ExpectedVersion != nil && *meta.ExpectedVersion != level.Version {
			return domain.VersionConflictf("versión esperada %d, actual %d", *meta.ExpectedVersion, level.Version)
		}

		prevVersion := level.Version
		onHandBefore, availableBefore := level.OnHand, level.Available
		if err := op(level); err != nil {
			return err
		}
		now := uc.now()
		level.UpdatedAt = now
		if err := levelRepo.UpdateWithVersion(ctx, level, prevVersion); err != nil {
			return err
		}

		mov := &entity.StockMovement{
			ID:              uuid.New().String(),
			StockLevelID:    level.ID,
			ItemID:          level.ItemID,
			LocationID:      level.LocationID,
			Type:            movementType,
			OnHandBefore:    onHandBefore,
			OnHandAfter:     level.OnHand,
			AvailableBefore: availableBefore,
			AvailableAfter:  level.Available,
			Version:         level.Version,
			Reference:       meta.Reference,
			Notes:           meta.Notes,
			CreatedAt:       now,
			CreatedBy:       userID,
		}
		if fill != nil {
			fill(mov)
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}
		result = level
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).
			Str("stock_level_id", id).
			Str("movement_type", movementType).
			Str("kind", string(domain.KindOf(err))).
			Msg("operación de stock rechazada")
		return nil, err
	}
	uc.log.Info().
		Str("stock_level_id", result.ID).
		Str("movement_type", movementType).
		Int64("version", result.Version).
		Str("stock_status", string(result.Status)).
		Str("user_id", userID).
		Msg("operación de stock aplicada")
	return ToStockLevelResponse(result), nil
}

func quantityOf(qty decimal.Decimal) func(*entity.StockMovement) {
	return func(m *entity.StockMovement) { m.Quantity = qty.Round(2) }
}

// ToStockLevelResponse convierte el entity en su DTO de salida.
func ToStockLevelResponse(l *entity.StockLevel) *dto.StockLevelResponse {
	if l == nil {
		return nil
	}
	return &dto.StockLevelResponse{
		ID:               l.ID,
		ItemID:           l.ItemID,
		LocationID:       l.LocationID,
		OnHand:           l.OnHand,
		Available:        l.Available,
		Reserved:         l.Reserved,
		OnRent:           l.OnRent,
		Damaged:          l.Damaged,
		UnderRepair:      l.UnderRepair,
		BeyondRepair:     l.BeyondRepair,
		ReorderPoint:     l.ReorderPoint,
		ReorderQuantity:  l.ReorderQuantity,
		MaximumStock:     l.MaximumStock,
		AverageCost:      l.AverageCost,
		LastPurchaseCost: l.LastPurchaseCost,
		TotalValue:       l.TotalValue,
		StockStatus:      string(l.Status),
		Version:          l.Version,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func toStockMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:              m.ID,
		StockLevelID:    m.StockLevelID,
		Type:            m.Type,
		Quantity:        m.Quantity,
		DamagedQuantity: m.DamagedQuantity,
		UnitCost:        m.UnitCost,
		OnHandBefore:    m.OnHandBefore,
		OnHandAfter:     m.OnHandAfter,
		AvailableBefore: m.AvailableBefore,
		AvailableAfter:  m.AvailableAfter,
		Version:         m.Version,
		Reference:       m.Reference,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
	}
}
