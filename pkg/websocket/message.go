package websocket

import "time"

// Envelope - это "конверт", в котором мы отправляем наши сообщения.
// Тип сообщения позволяет фронтенду понять, что делать.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const MessageTypeNotification = "notification"

// NotificationPayload - новое уведомление почтового ящика.
type NotificationPayload struct {
	EventID       string    `json:"eventId"`
	ID            uint64    `json:"id"`
	RequestID     uint64    `json:"requestId"`
	RecipientType string    `json:"recipientType"`
	RecipientID   *uint64   `json:"recipientId,omitempty"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"isRead"`
	CreatedAt     time.Time `json:"created_at"`
}
