// Файл: internal/entities/request-entity.go
package entities

import "time"

type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "open"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusWaiting    RequestStatus = "waiting"
	RequestStatusClosed     RequestStatus = "closed"
)

// requestTransitions - разрешённые переходы статуса заявки.
// Назначение техника статус не меняет и проверяется отдельно.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusOpen:       {RequestStatusInProgress},
	RequestStatusInProgress: {RequestStatusWaiting, RequestStatusClosed},
	RequestStatusWaiting:    {RequestStatusClosed},
}

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusInProgress, RequestStatusWaiting, RequestStatusClosed:
		return true
	}
	return false
}

func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type MaintenanceRequest struct {
	ID                   uint64        `json:"id" db:"id"`
	RequestDate          time.Time     `json:"request_date" db:"request_date"`
	RequesterName        string        `json:"requester_name" db:"requester_name"`
	PhoneNumber          string        `json:"phone_number" db:"phone_number"`
	Branch               string        `json:"branch" db:"branch"`
	MaintenanceType      string        `json:"maintenance_type" db:"maintenance_type"`
	EquipmentName        string        `json:"equipment_name" db:"equipment_name"`
	FaultType            string        `json:"fault_type" db:"fault_type"`
	Notes                *string       `json:"notes,omitempty" db:"notes"`
	AssignedTechnician   *string       `json:"assigned_technician,omitempty" db:"assigned_technician"`
	AssignedTechnicianID *uint64       `json:"assigned_technician_id,omitempty" db:"assigned_technician_id"`
	Status               RequestStatus `json:"status" db:"status"`
	StartTime            *time.Time    `json:"start_time,omitempty" db:"start_time"`
	EndTime              *time.Time    `json:"end_time,omitempty" db:"end_time"`
}

// IsAssignedTo проверяет, что заявка назначена указанному технику.
func (r *MaintenanceRequest) IsAssignedTo(technicianID *uint64) bool {
	return technicianID != nil && r.AssignedTechnicianID != nil && *r.AssignedTechnicianID == *technicianID
}
