package entities

import "time"

type RecipientType string

const (
	RecipientEngineer   RecipientType = "engineer"
	RecipientTechnician RecipientType = "technician"
	RecipientStore      RecipientType = "store"
	RecipientAdmin      RecipientType = "admin"
	RecipientRequester  RecipientType = "requester"
)

func (r RecipientType) Valid() bool {
	switch r {
	case RecipientEngineer, RecipientTechnician, RecipientStore, RecipientAdmin, RecipientRequester:
		return true
	}
	return false
}

type Notification struct {
	ID            uint64        `json:"id" db:"id"`
	RequestID     uint64        `json:"request_id" db:"request_id"`
	RecipientType RecipientType `json:"recipient_type" db:"recipient_type"`
	RecipientID   *uint64       `json:"recipient_id,omitempty" db:"recipient_id"`
	Message       string        `json:"message" db:"message"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	IsRead        bool          `json:"is_read" db:"is_read"`
}

// Inbox - почтовый ящик: тип получателя и, для техника, его id.
type Inbox struct {
	RecipientType RecipientType
	RecipientID   *uint64
}

// Matches проверяет, что уведомление лежит в этом ящике.
func (i Inbox) Matches(n *Notification) bool {
	if n.RecipientType != i.RecipientType {
		return false
	}
	if i.RecipientID == nil {
		return true
	}
	return n.RecipientID != nil && *n.RecipientID == *i.RecipientID
}
