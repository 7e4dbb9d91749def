package dto

import (
	"time"

	"maintenance-system/internal/entities"
)

type NotificationDTO struct {
	ID            uint64    `json:"id"`
	RequestID     uint64    `json:"request_id"`
	RecipientType string    `json:"recipient_type"`
	RecipientID   *uint64   `json:"recipient_id,omitempty"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
	IsRead        bool      `json:"is_read"`
}

func NotificationFromEntity(e entities.Notification) NotificationDTO {
	return NotificationDTO{
		ID:            e.ID,
		RequestID:     e.RequestID,
		RecipientType: string(e.RecipientType),
		RecipientID:   e.RecipientID,
		Message:       e.Message,
		CreatedAt:     e.CreatedAt,
		IsRead:        e.IsRead,
	}
}
