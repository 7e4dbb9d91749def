package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

// CatalogueServiceInterface обслуживает все справочники "только название".
type CatalogueServiceInterface interface {
	GetItems(ctx context.Context, kind entities.CatalogueKind, filter types.Filter) ([]dto.CatalogueItemDTO, uint64, error)
	FindItem(ctx context.Context, kind entities.CatalogueKind, id uint64) (*dto.CatalogueItemDTO, error)
	CreateItem(ctx context.Context, kind entities.CatalogueKind, payload dto.CatalogueItemInputDTO) (*dto.CatalogueItemDTO, error)
	UpdateItem(ctx context.Context, kind entities.CatalogueKind, id uint64, payload dto.CatalogueItemInputDTO) (*dto.CatalogueItemDTO, error)
	DeleteItem(ctx context.Context, kind entities.CatalogueKind, id uint64) error
}

type CatalogueService struct {
	catalogueRepo repositories.CatalogueRepositoryInterface
	logger        *zap.Logger
}

func NewCatalogueService(catalogueRepo repositories.CatalogueRepositoryInterface, logger *zap.Logger) CatalogueServiceInterface {
	return &CatalogueService{catalogueRepo: catalogueRepo, logger: logger}
}

func checkKind(kind entities.CatalogueKind) error {
	if !kind.Valid() {
		return apperrors.NewHttpError(http.StatusNotFound, fmt.Sprintf("Справочник '%s' не существует", kind), apperrors.ErrNotFound, nil)
	}
	return nil
}

func (s *CatalogueService) GetItems(ctx context.Context, kind entities.CatalogueKind, filter types.Filter) ([]dto.CatalogueItemDTO, uint64, error) {
	if err := checkKind(kind); err != nil {
		return nil, 0, err
	}
	items, total, err := s.catalogueRepo.GetItems(ctx, kind, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.CatalogueItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.CatalogueItemFromEntity(item))
	}
	return out, total, nil
}

func (s *CatalogueService) FindItem(ctx context.Context, kind entities.CatalogueKind, id uint64) (*dto.CatalogueItemDTO, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	item, err := s.catalogueRepo.FindItem(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	result := dto.CatalogueItemFromEntity(*item)
	return &result, nil
}

func (s *CatalogueService) CreateItem(ctx context.Context, kind entities.CatalogueKind, payload dto.CatalogueItemInputDTO) (*dto.CatalogueItemDTO, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("Название не может быть пустым")
	}

	id, err := s.catalogueRepo.CreateItem(ctx, nil, kind, name)
	if err != nil {
		s.logger.Warn("Не удалось добавить запись справочника", zap.String("catalogue", string(kind)), zap.String("name", name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Запись справочника добавлена", zap.String("catalogue", string(kind)), zap.Uint64("id", id))
	return &dto.CatalogueItemDTO{ID: id, Name: name}, nil
}

func (s *CatalogueService) UpdateItem(ctx context.Context, kind entities.CatalogueKind, id uint64, payload dto.CatalogueItemInputDTO) (*dto.CatalogueItemDTO, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("Название не может быть пустым")
	}
	if err := s.catalogueRepo.UpdateItem(ctx, nil, kind, id, name); err != nil {
		return nil, err
	}
	return &dto.CatalogueItemDTO{ID: id, Name: name}, nil
}

func (s *CatalogueService) DeleteItem(ctx context.Context, kind entities.CatalogueKind, id uint64) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := s.catalogueRepo.DeleteItem(ctx, kind, id); err != nil {
		s.logger.Warn("Не удалось удалить запись справочника", zap.String("catalogue", string(kind)), zap.Uint64("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("Запись справочника удалена", zap.String("catalogue", string(kind)), zap.Uint64("id", id))
	return nil
}
