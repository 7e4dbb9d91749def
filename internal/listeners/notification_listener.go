package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"maintenance-system/internal/events"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/eventbus"
	"maintenance-system/pkg/telegram"
)

// NotificationListener доставляет уведомления после коммита: WebSocket всем
// владельцам почтового ящика, Telegram технику при назначении.
type NotificationListener struct {
	wsNotificationService services.WebSocketNotificationServiceInterface
	telegramService       telegram.ServiceInterface
	logger                *zap.Logger
}

func NewNotificationListener(
	wsNotificationService services.WebSocketNotificationServiceInterface,
	telegramService telegram.ServiceInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		wsNotificationService: wsNotificationService,
		telegramService:       telegramService,
		logger:                logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.NotificationCreated, l.handleNotificationCreated)
	bus.Subscribe(events.TechnicianAssigned, l.handleTechnicianAssigned)
	l.logger.Info("NotificationListener подписан на события",
		zap.Strings("events", []string{events.NotificationCreated, events.TechnicianAssigned}))
}

func (l *NotificationListener) handleNotificationCreated(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.NotificationCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}
	if _, err := l.wsNotificationService.SendToInbox(e.Notification); err != nil {
		l.logger.Error("Не удалось разослать уведомление по WebSocket",
			zap.Uint64("notification_id", e.Notification.ID),
			zap.Error(err))
		return err
	}
	return nil
}

func (l *NotificationListener) handleTechnicianAssigned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.TechnicianAssignedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}
	if e.Technician.TelegramChatID == nil {
		l.logger.Debug("У техника нет Telegram, сообщение не отправлено", zap.Uint64("technician_id", e.Technician.ID))
		return nil
	}

	text := fmt.Sprintf("%s\n%s / %s\n%s", e.Message, e.Request.Branch, e.Request.EquipmentName, e.Request.FaultType)
	if err := l.telegramService.SendMessage(ctx, *e.Technician.TelegramChatID, text); err != nil {
		l.logger.Error("Не удалось отправить уведомление в Telegram",
			zap.Uint64("technician_id", e.Technician.ID),
			zap.Uint64("request_id", e.Request.ID),
			zap.Error(err))
		return err
	}
	l.logger.Info("Техник уведомлён в Telegram",
		zap.Uint64("technician_id", e.Technician.ID),
		zap.Uint64("request_id", e.Request.ID))
	return nil
}
