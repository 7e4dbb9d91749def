package services

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/pkg/websocket"
)

// Интерфейс, чтобы можно было легко подменять в тестах
type WebSocketNotificationServiceInterface interface {
	// SendToInbox рассылает уведомление всем подключённым владельцам его почтового ящика.
	SendToInbox(notification entities.Notification) (int, error)
}

type WebSocketNotificationService struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewWebSocketNotificationService(hub *websocket.Hub, logger *zap.Logger) WebSocketNotificationServiceInterface {
	return &WebSocketNotificationService{
		hub:    hub,
		logger: logger,
	}
}

func (s *WebSocketNotificationService) SendToInbox(n entities.Notification) (int, error) {
	payload := websocket.NotificationPayload{
		EventID:       uuid.NewString(),
		ID:            n.ID,
		RequestID:     n.RequestID,
		RecipientType: string(n.RecipientType),
		RecipientID:   n.RecipientID,
		Message:       n.Message,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
	}

	match := func(c *websocket.Client) bool {
		inbox, ok := entities.Role(c.Role).Inbox(c.TechnicianID)
		return ok && inbox.Matches(&n)
	}
	sent, err := s.hub.SendMessageWhere(match, payload, websocket.MessageTypeNotification)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("Уведомление разослано по WebSocket",
		zap.Uint64("notification_id", n.ID),
		zap.String("recipient_type", string(n.RecipientType)),
		zap.Int("clients", sent))
	return sent, nil
}
