package events

import "maintenance-system/internal/entities"

const (
	NotificationCreated = "notification.created"
	TechnicianAssigned  = "request.technician_assigned"
)

// NotificationCreatedEvent публикуется после коммита транзакции, в которой создано уведомление.
type NotificationCreatedEvent struct {
	Notification entities.Notification
}

// Name - реализуем интерфейс eventbus.Event
func (e NotificationCreatedEvent) Name() string {
	return NotificationCreated
}

// TechnicianAssignedEvent - техник назначен на заявку.
type TechnicianAssignedEvent struct {
	Request    entities.MaintenanceRequest
	Technician entities.Technician
	Message    string
}

func (e TechnicianAssignedEvent) Name() string {
	return TechnicianAssigned
}
