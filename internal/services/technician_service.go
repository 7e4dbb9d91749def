package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
	"maintenance-system/pkg/utils"
)

type TechnicianServiceInterface interface {
	GetTechnicians(ctx context.Context, filter types.Filter) ([]dto.TechnicianDTO, uint64, error)
	FindTechnician(ctx context.Context, id uint64) (*dto.TechnicianDTO, error)
	CreateTechnician(ctx context.Context, payload dto.CreateTechnicianDTO) (*dto.TechnicianDTO, error)
	UpdateTechnician(ctx context.Context, id uint64, payload dto.UpdateTechnicianDTO) (*dto.TechnicianDTO, error)
	DeleteTechnician(ctx context.Context, id uint64) error
}

type TechnicianService struct {
	txManager      repositories.TxManagerInterface
	technicianRepo repositories.TechnicianRepositoryInterface
	catalogueRepo  repositories.CatalogueRepositoryInterface
	logger         *zap.Logger
}

func NewTechnicianService(
	txManager repositories.TxManagerInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	catalogueRepo repositories.CatalogueRepositoryInterface,
	logger *zap.Logger,
) TechnicianServiceInterface {
	return &TechnicianService{
		txManager:      txManager,
		technicianRepo: technicianRepo,
		catalogueRepo:  catalogueRepo,
		logger:         logger,
	}
}

func (s *TechnicianService) ensureBranch(ctx context.Context, branchID uint64) (string, error) {
	branch, err := s.catalogueRepo.FindItem(ctx, entities.CatalogueBranches, branchID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", apperrors.NewHttpError(http.StatusBadRequest, "Филиал не найден", apperrors.ErrBadRequest,
			map[string]interface{}{"branch_id": branchID})
	}
	if err != nil {
		return "", err
	}
	return branch.Name, nil
}

func (s *TechnicianService) GetTechnicians(ctx context.Context, filter types.Filter) ([]dto.TechnicianDTO, uint64, error) {
	technicians, total, err := s.technicianRepo.GetTechnicians(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.TechnicianDTO, 0, len(technicians))
	for _, t := range technicians {
		out = append(out, dto.TechnicianFromEntity(t))
	}
	return out, total, nil
}

func (s *TechnicianService) FindTechnician(ctx context.Context, id uint64) (*dto.TechnicianDTO, error) {
	technician, err := s.technicianRepo.FindTechnician(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	result := dto.TechnicianFromEntity(*technician)
	return &result, nil
}

func (s *TechnicianService) CreateTechnician(ctx context.Context, payload dto.CreateTechnicianDTO) (*dto.TechnicianDTO, error) {
	technician := entities.Technician{
		Name:        strings.TrimSpace(payload.Name),
		PhoneNumber: utils.NormalizePhoneNumber(payload.PhoneNumber),
		BranchID:    payload.BranchID,
	}
	if payload.TelegramChatID.Valid {
		technician.TelegramChatID = utils.ToPtr(payload.TelegramChatID.Int64)
	}

	branchName, err := s.ensureBranch(ctx, payload.BranchID)
	if err != nil {
		return nil, err
	}
	technician.BranchName = branchName

	technician.ID, err = s.technicianRepo.CreateTechnician(ctx, nil, technician)
	if err != nil {
		s.logger.Warn("Не удалось добавить техника", zap.String("name", technician.Name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Техник добавлен", zap.Uint64("technician_id", technician.ID))
	result := dto.TechnicianFromEntity(technician)
	return &result, nil
}

func (s *TechnicianService) UpdateTechnician(ctx context.Context, id uint64, payload dto.UpdateTechnicianDTO) (*dto.TechnicianDTO, error) {
	var updated *entities.Technician
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.technicianRepo.FindTechnician(ctx, tx, id)
		if err != nil {
			return err
		}
		if payload.Name.Valid {
			current.Name = strings.TrimSpace(payload.Name.String)
		}
		if payload.PhoneNumber.Valid {
			current.PhoneNumber = utils.NormalizePhoneNumber(payload.PhoneNumber.String)
		}
		if payload.BranchID.Valid {
			name, err := s.ensureBranch(ctx, payload.BranchID.Uint64)
			if err != nil {
				return err
			}
			current.BranchID = payload.BranchID.Uint64
			current.BranchName = name
		}
		if payload.TelegramChatID.Valid {
			current.TelegramChatID = utils.ToPtr(payload.TelegramChatID.Int64)
		}
		if err := s.technicianRepo.UpdateTechnician(ctx, tx, id, *current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	result := dto.TechnicianFromEntity(*updated)
	return &result, nil
}

func (s *TechnicianService) DeleteTechnician(ctx context.Context, id uint64) error {
	if err := s.technicianRepo.DeleteTechnician(ctx, id); err != nil {
		s.logger.Warn("Не удалось удалить техника", zap.Uint64("technician_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("Техник удалён", zap.Uint64("technician_id", id))
	return nil
}
