package entities

import "time"

type SparePartStatus string

const (
	SparePartPending     SparePartStatus = "pending"
	SparePartAvailable   SparePartStatus = "available"
	SparePartUnavailable SparePartStatus = "unavailable"
)

type SparePartsRequest struct {
	ID        uint64          `json:"id" db:"id"`
	RequestID uint64          `json:"request_id" db:"request_id"`
	PartName  string          `json:"part_name" db:"part_name"`
	Status    SparePartStatus `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
