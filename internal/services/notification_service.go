package services

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
	"maintenance-system/pkg/utils"
)

type NotificationServiceInterface interface {
	// GetInbox - непрочитанные уведомления ящика текущего пользователя, новые сверху.
	// Администратор может передать recipientType и смотреть чужой ящик.
	GetInbox(ctx context.Context, recipientType string, filter types.Filter) ([]dto.NotificationDTO, uint64, error)
	MarkRead(ctx context.Context, id uint64) error
}

type NotificationService struct {
	notificationRepo repositories.NotificationRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationService(notificationRepo repositories.NotificationRepositoryInterface, logger *zap.Logger) NotificationServiceInterface {
	return &NotificationService{notificationRepo: notificationRepo, logger: logger}
}

// callerInbox определяет ящик по роли из контекста.
func callerInbox(ctx context.Context) (entities.Role, entities.Inbox, error) {
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		return "", entities.Inbox{}, err
	}
	inbox, ok := entities.Role(role).Inbox(utils.GetTechnicianIDFromCtx(ctx))
	if !ok {
		return "", entities.Inbox{}, apperrors.NewHttpError(
			http.StatusForbidden,
			"Для пользователя не определён ящик уведомлений",
			apperrors.ErrForbidden,
			map[string]interface{}{"role": role},
		)
	}
	return entities.Role(role), inbox, nil
}

func (s *NotificationService) GetInbox(ctx context.Context, recipientType string, filter types.Filter) ([]dto.NotificationDTO, uint64, error) {
	role, inbox, err := callerInbox(ctx)
	if err != nil {
		return nil, 0, err
	}

	if recipientType != "" && entities.RecipientType(recipientType) != inbox.RecipientType {
		if role != entities.RoleAdmin {
			return nil, 0, apperrors.ErrForbidden
		}
		if !entities.RecipientType(recipientType).Valid() {
			return nil, 0, apperrors.NewBadRequestError(fmt.Sprintf("Неизвестный тип получателя '%s'", recipientType))
		}
		inbox = entities.Inbox{RecipientType: entities.RecipientType(recipientType)}
	}

	list, total, err := s.notificationRepo.GetUnread(ctx, inbox, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.NotificationDTO, 0, len(list))
	for _, n := range list {
		out = append(out, dto.NotificationFromEntity(n))
	}
	return out, total, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint64) error {
	role, inbox, err := callerInbox(ctx)
	if err != nil {
		return err
	}
	notification, err := s.notificationRepo.FindNotification(ctx, id)
	if err != nil {
		return err
	}
	if role != entities.RoleAdmin && !inbox.Matches(notification) {
		s.logger.Warn("Попытка прочитать чужое уведомление",
			zap.Uint64("notification_id", id),
			zap.String("role", string(role)))
		return apperrors.ErrForbidden
	}
	if notification.IsRead {
		return nil
	}
	return s.notificationRepo.MarkRead(ctx, id)
}
