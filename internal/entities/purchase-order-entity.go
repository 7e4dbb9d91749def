package entities

import "time"

type PurchaseOrderStatus string

const (
	PurchaseOrderPending  PurchaseOrderStatus = "pending"
	PurchaseOrderApproved PurchaseOrderStatus = "approved"
	PurchaseOrderRejected PurchaseOrderStatus = "rejected"
)

type PurchaseOrder struct {
	ID        uint64              `json:"id" db:"id"`
	RequestID uint64              `json:"request_id" db:"request_id"`
	PartName  string              `json:"part_name" db:"part_name"`
	Details   string              `json:"details" db:"details"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
	Status    PurchaseOrderStatus `json:"status" db:"status"`
}
