package dto

import (
	"github.com/aarondl/null/v8"

	"maintenance-system/internal/entities"
)

type CreateUserDTO struct {
	Username     string      `json:"username" validate:"required,max=100"`
	Password     string      `json:"password" validate:"required,min=6"`
	Role         string      `json:"role" validate:"required,role"`
	TechnicianID null.Uint64 `json:"technician_id" validate:"omitempty,gt=0"`
}

type UpdateUserDTO struct {
	Username     null.String `json:"username" validate:"omitempty,max=100"`
	Password     null.String `json:"password" validate:"omitempty,min=6"`
	Role         null.String `json:"role" validate:"omitempty,role"`
	TechnicianID null.Uint64 `json:"technician_id" validate:"omitempty,gt=0"`
}

func UserFromEntity(e entities.User) UserPublicDTO {
	return UserPublicDTO{
		ID:           e.ID,
		Username:     e.Username,
		Role:         string(e.Role),
		TechnicianID: e.TechnicianID,
	}
}
