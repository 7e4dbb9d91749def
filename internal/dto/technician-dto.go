package dto

import (
	"github.com/aarondl/null/v8"

	"maintenance-system/internal/entities"
)

type CreateTechnicianDTO struct {
	Name           string     `json:"name" validate:"required,max=150"`
	PhoneNumber    string     `json:"phone_number" validate:"required,phone"`
	BranchID       uint64     `json:"branch_id" validate:"required,gt=0"`
	TelegramChatID null.Int64 `json:"telegram_chat_id" validate:"omitempty"`
}

// UpdateTechnicianDTO - частичное обновление: меняются только переданные поля.
type UpdateTechnicianDTO struct {
	Name           null.String `json:"name" validate:"omitempty,max=150"`
	PhoneNumber    null.String `json:"phone_number" validate:"omitempty,phone"`
	BranchID       null.Uint64 `json:"branch_id" validate:"omitempty,gt=0"`
	TelegramChatID null.Int64  `json:"telegram_chat_id" validate:"omitempty"`
}

type TechnicianDTO struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number"`
	BranchID       uint64 `json:"branch_id"`
	BranchName     string `json:"branch_name"`
	TelegramChatID *int64 `json:"telegram_chat_id,omitempty"`
}

func TechnicianFromEntity(e entities.Technician) TechnicianDTO {
	return TechnicianDTO{
		ID:             e.ID,
		Name:           e.Name,
		PhoneNumber:    e.PhoneNumber,
		BranchID:       e.BranchID,
		BranchName:     e.BranchName,
		TelegramChatID: e.TelegramChatID,
	}
}
