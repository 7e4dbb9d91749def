// Файл: internal/dto/request-dto.go
package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"maintenance-system/internal/entities"
)

type CreateRequestDTO struct {
	RequesterName   string      `json:"requester_name" validate:"required,max=150"`
	PhoneNumber     string      `json:"phone_number" validate:"required,phone"`
	Branch          string      `json:"branch" validate:"required,max=100"`
	MaintenanceType string      `json:"maintenance_type" validate:"required,max=100"`
	EquipmentName   string      `json:"equipment_name" validate:"required,max=100"`
	FaultType       string      `json:"fault_type" validate:"required,max=100"`
	Notes           null.String `json:"notes" validate:"omitempty,max=2000"`
}

// AssignTechnicianDTO - техник указывается по id или по имени.
type AssignTechnicianDTO struct {
	TechnicianID   null.Uint64 `json:"technician_id" validate:"omitempty,gt=0"`
	TechnicianName null.String `json:"technician_name" validate:"omitempty,max=150"`
}

type UpdateStatusDTO struct {
	Status string `json:"status" validate:"required,request_status"`
}

type RequestSparePartsDTO struct {
	Parts []string `json:"parts" validate:"required,min=1,dive,required,max=100"`
}

type SparePartDecisionDTO struct {
	Status string `json:"status" validate:"required,oneof=available unavailable"`
}

type PurchaseOrderDecisionDTO struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type RequestDTO struct {
	ID                   uint64     `json:"id"`
	RequestDate          time.Time  `json:"request_date"`
	RequesterName        string     `json:"requester_name"`
	PhoneNumber          string     `json:"phone_number"`
	Branch               string     `json:"branch"`
	MaintenanceType      string     `json:"maintenance_type"`
	EquipmentName        string     `json:"equipment_name"`
	FaultType            string     `json:"fault_type"`
	Notes                *string    `json:"notes,omitempty"`
	AssignedTechnician   *string    `json:"assigned_technician,omitempty"`
	AssignedTechnicianID *uint64    `json:"assigned_technician_id,omitempty"`
	Status               string     `json:"status"`
	StartTime            *time.Time `json:"start_time,omitempty"`
	EndTime              *time.Time `json:"end_time,omitempty"`
}

type RequestDetailsDTO struct {
	RequestDTO
	SpareParts     []SparePartRequestDTO `json:"spare_parts"`
	PurchaseOrders []PurchaseOrderDTO    `json:"purchase_orders"`
}

type SparePartRequestDTO struct {
	ID        uint64    `json:"id"`
	RequestID uint64    `json:"request_id"`
	PartName  string    `json:"part_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PurchaseOrderDTO struct {
	ID        uint64    `json:"id"`
	RequestID uint64    `json:"request_id"`
	PartName  string    `json:"part_name"`
	Details   string    `json:"details"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func RequestFromEntity(e entities.MaintenanceRequest) RequestDTO {
	return RequestDTO{
		ID:                   e.ID,
		RequestDate:          e.RequestDate,
		RequesterName:        e.RequesterName,
		PhoneNumber:          e.PhoneNumber,
		Branch:               e.Branch,
		MaintenanceType:      e.MaintenanceType,
		EquipmentName:        e.EquipmentName,
		FaultType:            e.FaultType,
		Notes:                e.Notes,
		AssignedTechnician:   e.AssignedTechnician,
		AssignedTechnicianID: e.AssignedTechnicianID,
		Status:               string(e.Status),
		StartTime:            e.StartTime,
		EndTime:              e.EndTime,
	}
}

func RequestsFromEntities(list []entities.MaintenanceRequest) []RequestDTO {
	out := make([]RequestDTO, 0, len(list))
	for _, e := range list {
		out = append(out, RequestFromEntity(e))
	}
	return out
}

func SparePartRequestFromEntity(e entities.SparePartsRequest) SparePartRequestDTO {
	return SparePartRequestDTO{
		ID:        e.ID,
		RequestID: e.RequestID,
		PartName:  e.PartName,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
}

func PurchaseOrderFromEntity(e entities.PurchaseOrder) PurchaseOrderDTO {
	return PurchaseOrderDTO{
		ID:        e.ID,
		RequestID: e.RequestID,
		PartName:  e.PartName,
		Details:   e.Details,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
}
