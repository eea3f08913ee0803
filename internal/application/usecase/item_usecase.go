package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Alquiler-api/internal/application/dto"
	"github.com/jhoicas/Alquiler-api/internal/domain"
	"github.com/jhoicas/Alquiler-api/internal/domain/entity"
	"github.com/jhoicas/Alquiler-api/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD para ítems. Cantidades y costos se manejan en los niveles de stock.
type ItemUseCase struct {
	repo repository.ItemRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{repo: repo}
}

// Create crea un nuevo ítem. El SKU es único.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" {
		return nil, domain.Validationf("sku y name son requeridos")
	}
	if in.BaseDailyRate != nil && in.BaseDailyRate.IsNegative() {
		return nil, domain.Validationf("base_daily_rate no puede ser negativo")
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflictf("ya existe un ítem con SKU %s", in.SKU)
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "UND"
	}
	rentable := true
	if in.IsRentable != nil {
		rentable = *in.IsRentable
	}
	now := time.Now()
	item := &entity.Item{
		ID:            uuid.New().String(),
		SKU:           in.SKU,
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		UnitMeasure:   in.UnitMeasure,
		IsRentable:    rentable,
		BaseDailyRate: in.BaseDailyRate,
		Attributes:    in.Attributes,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("ítem %s no encontrado", id)
	}
	return toItemResponse(item), nil
}

// Update actualiza un ítem. El SKU no cambia.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("ítem %s no encontrado", id)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.Validationf("name no puede estar vacío")
		}
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.UnitMeasure != nil {
		item.UnitMeasure = *in.UnitMeasure
	}
	if in.IsRentable != nil {
		item.IsRentable = *in.IsRentable
	}
	if in.BaseDailyRate != nil {
		if in.BaseDailyRate.IsNegative() {
			return nil, domain.Validationf("base_daily_rate no puede ser negativo")
		}
		item.BaseDailyRate = in.BaseDailyRate
	}
	if len(in.Attributes) > 0 {
		item.Attributes = in.Attributes
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// List lista ítems activos con búsqueda opcional por SKU o nombre.
func (uc *ItemUseCase) List(ctx context.Context, search string, limit, offset int) (*dto.ItemListResponse, error) {
	list, err := uc.repo.List(ctx, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, i := range list {
		items = append(items, *toItemResponse(i))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete da de baja lógica un ítem.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.NotFoundf("ítem %s no encontrado", id)
	}
	return uc.repo.Deactivate(ctx, id)
}

func toItemResponse(i *entity.Item) *dto.ItemResponse {
	if i == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:            i.ID,
		SKU:           i.SKU,
		Name:          i.Name,
		Description:   i.Description,
		Category:      i.Category,
		UnitMeasure:   i.UnitMeasure,
		IsRentable:    i.IsRentable,
		BaseDailyRate: i.BaseDailyRate,
		Attributes:    i.Attributes,
		IsActive:      i.IsActive,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}
