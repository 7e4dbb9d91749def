package dto

type LoginDTO struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken string        `json:"accessToken"`
	User        UserPublicDTO `json:"user"`
}

type UserPublicDTO struct {
	ID           uint64  `json:"id"`
	Username     string  `json:"username"`
	Role         string  `json:"role"`
	TechnicianID *uint64 `json:"technician_id,omitempty"`
}
