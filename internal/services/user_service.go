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

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserPublicDTO, uint64, error)
	FindUser(ctx context.Context, id uint64) (*dto.UserPublicDTO, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserPublicDTO, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserPublicDTO, error)
	DeleteUser(ctx context.Context, id uint64) error
}

type UserService struct {
	txManager      repositories.TxManagerInterface
	userRepo       repositories.UserRepositoryInterface
	technicianRepo repositories.TechnicianRepositoryInterface
	logger         *zap.Logger
}

func NewUserService(
	txManager repositories.TxManagerInterface,
	userRepo repositories.UserRepositoryInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		txManager:      txManager,
		userRepo:       userRepo,
		technicianRepo: technicianRepo,
		logger:         logger,
	}
}

// checkTechnicianLink: у техника должна быть существующая карточка, у остальных ролей её нет.
func (s *UserService) checkTechnicianLink(ctx context.Context, tx pgx.Tx, user *entities.User) error {
	if user.Role != entities.RoleTechnician {
		user.TechnicianID = nil
		return nil
	}
	if user.TechnicianID == nil {
		return apperrors.NewBadRequestError("Для роли technician укажите technician_id")
	}
	_, err := s.technicianRepo.FindTechnician(ctx, tx, *user.TechnicianID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewHttpError(http.StatusBadRequest, "Техник не найден", apperrors.ErrBadRequest,
			map[string]interface{}{"technician_id": *user.TechnicianID})
	}
	return err
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserPublicDTO, uint64, error) {
	users, total, err := s.userRepo.GetUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.UserPublicDTO, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserFromEntity(u))
	}
	return out, total, nil
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*dto.UserPublicDTO, error) {
	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	result := dto.UserFromEntity(*user)
	return &result, nil
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserPublicDTO, error) {
	hashed, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}
	user := entities.User{
		Username: strings.TrimSpace(payload.Username),
		Password: hashed,
		Role:     entities.Role(payload.Role),
	}
	if payload.TechnicianID.Valid {
		user.TechnicianID = utils.ToPtr(payload.TechnicianID.Uint64)
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.checkTechnicianLink(ctx, tx, &user); err != nil {
			return err
		}
		id, err := s.userRepo.CreateUser(ctx, tx, user)
		if err != nil {
			return err
		}
		user.ID = id
		return nil
	})
	if err != nil {
		s.logger.Warn("Не удалось создать пользователя", zap.String("username", user.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Пользователь создан", zap.Uint64("userID", user.ID), zap.String("role", string(user.Role)))
	result := dto.UserFromEntity(user)
	return &result, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserPublicDTO, error) {
	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload.Username.Valid {
		user.Username = strings.TrimSpace(payload.Username.String)
	}
	if payload.Role.Valid {
		user.Role = entities.Role(payload.Role.String)
	}
	if payload.TechnicianID.Valid {
		user.TechnicianID = utils.ToPtr(payload.TechnicianID.Uint64)
	}

	var hashed string
	if payload.Password.Valid {
		if hashed, err = utils.HashPassword(payload.Password.String); err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.checkTechnicianLink(ctx, tx, user); err != nil {
			return err
		}
		if err := s.userRepo.UpdateUser(ctx, tx, id, *user); err != nil {
			return err
		}
		if hashed == "" {
			return nil
		}
		return s.userRepo.UpdatePassword(ctx, tx, id, hashed)
	})
	if err != nil {
		return nil, err
	}
	if hashed != "" {
		s.logger.Info("Пароль пользователя изменён администратором", zap.Uint64("userID", id))
	}

	result := dto.UserFromEntity(*user)
	return &result, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	if currentID, err := utils.GetUserIDFromCtx(ctx); err == nil && currentID == id {
		return apperrors.NewBadRequestError("Нельзя удалить собственную учётную запись")
	}
	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Пользователь удалён", zap.Uint64("userID", id))
	return nil
}
