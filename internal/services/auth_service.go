// Файл: internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error)
	GetUserByID(ctx context.Context, userID uint64) (*entities.User, error)
}

type AuthService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	cfg       *config.AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cfg:       cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error) {
	logger := s.logger.With(zap.String("username", payload.Username))

	user, err := s.userRepo.FindByUsername(ctx, payload.Username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Ошибка поиска пользователя при входе", zap.Error(err))
		}
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		logger.Warn("Попытка входа в заблокированную учётную запись")
		return nil, err
	}

	if !utils.IsPasswordHashed(user.Password) {
		// старые учётные записи хранят пароль открытым текстом
		if user.Password != payload.Password {
			s.handleFailedLoginAttempt(ctx, user.ID)
			return nil, apperrors.ErrInvalidCredentials
		}
		s.upgradePassword(ctx, user, payload.Password)
	} else if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	s.resetLoginAttempts(ctx, user.ID)
	logger.Info("Пользователь вошёл в систему", zap.Uint64("userID", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// upgradePassword заменяет открытый пароль на bcrypt-хеш. Ошибка не мешает входу.
func (s *AuthService) upgradePassword(ctx context.Context, user *entities.User, plain string) {
	hashed, err := utils.HashPassword(plain)
	if err != nil {
		s.logger.Error("Не удалось захешировать старый пароль", zap.Uint64("userID", user.ID), zap.Error(err))
		return
	}
	if err := s.userRepo.UpdatePassword(ctx, nil, user.ID, hashed); err != nil {
		s.logger.Error("Не удалось обновить старый пароль", zap.Uint64("userID", user.ID), zap.Error(err))
		return
	}
	user.Password = hashed
	s.logger.Info("Пароль пользователя переведён на bcrypt", zap.Uint64("userID", user.ID))
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uint64) (*entities.User, error) {
	user, err := s.userRepo.FindUser(ctx, userID)
	if err != nil {
		s.logger.Warn("GetUserByID: не удалось найти пользователя", zap.Uint64("userID", userID), zap.Error(err))
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, userID)

	// Если ключ существует - аккаунт заблокирован
	locked, err := s.cacheRepo.Exists(ctx, lockoutKey)
	if err != nil {
		s.logger.Warn("Не удалось проверить блокировку входа", zap.Uint64("userID", userID), zap.Error(err))
		return nil
	}
	if locked {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, userID)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось увеличить счётчик попыток входа", zap.Uint64("userID", userID), zap.Error(err))
		return
	}
	if attempts == 1 {
		s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, userID)
		s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Учётная запись заблокирована после неудачных попыток входа",
			zap.Uint64("userID", userID),
			zap.Int64("attempts", attempts))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, userID)
	lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, userID)
	s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}
