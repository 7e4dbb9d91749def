package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/internal/events"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/constants"
	"maintenance-system/pkg/eventbus"
)

// ReminderServiceInterface напоминает инженеру о заявках, которые долго стоят без движения.
type ReminderServiceInterface interface {
	SendStaleReminders(ctx context.Context) (int, error)
}

type ReminderService struct {
	txManager        repositories.TxManagerInterface
	requestRepo      repositories.RequestRepositoryInterface
	notificationRepo repositories.NotificationRepositoryInterface
	cacheRepo        repositories.CacheRepositoryInterface
	publisher        EventPublisher
	cfg              config.SchedulerConfig
	logger           *zap.Logger
	now              func() time.Time
}

func NewReminderService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	notificationRepo repositories.NotificationRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	publisher EventPublisher,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) ReminderServiceInterface {
	return &ReminderService{
		txManager:        txManager,
		requestRepo:      requestRepo,
		notificationRepo: notificationRepo,
		cacheRepo:        cacheRepo,
		publisher:        publisher,
		cfg:              cfg,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *ReminderService) SendStaleReminders(ctx context.Context) (int, error) {
	stale, err := s.requestRepo.FindStale(ctx, s.now().Add(-s.cfg.StaleAfter))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, request := range stale {
		key := fmt.Sprintf(constants.CacheKeyRequestReminder, request.ID)
		fresh, err := s.cacheRepo.SetNX(ctx, key, "sent", s.cfg.ReminderTTL)
		if err != nil {
			s.logger.Warn("Не удалось проверить метку напоминания", zap.Uint64("request_id", request.ID), zap.Error(err))
			continue
		}
		if !fresh {
			continue
		}

		var created *entities.Notification
		err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			created, err = s.notificationRepo.CreateNotification(ctx, tx, entities.Notification{
				RequestID:     request.ID,
				RecipientType: entities.RecipientEngineer,
				Message:       fmt.Sprintf(constants.MsgRequestReminder, request.ID),
			})
			return err
		})
		if err != nil {
			// метку снимаем, чтобы напоминание ушло в следующий запуск
			s.cacheRepo.Del(ctx, key)
			s.logger.Error("Не удалось создать напоминание", zap.Uint64("request_id", request.ID), zap.Error(err))
			continue
		}
		publishAll(ctx, s.publisher, []eventbus.Event{events.NotificationCreatedEvent{Notification: *created}})
		sent++
	}

	if sent > 0 {
		s.logger.Info("Отправлены напоминания по зависшим заявкам", zap.Int("count", sent), zap.Int("stale", len(stale)))
	}
	return sent, nil
}
