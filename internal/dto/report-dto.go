package dto

import "maintenance-system/pkg/types"

type ReportQueryDTO struct {
	Status string `query:"status" validate:"omitempty,request_status"`
	Branch string `query:"branch" validate:"omitempty,max=100"`
	Format string `query:"format" validate:"omitempty,oneof=json xlsx"`
}

type ReportDTO struct {
	Requests []RequestDTO       `json:"requests"`
	Stats    types.RequestStats `json:"stats"`
}
