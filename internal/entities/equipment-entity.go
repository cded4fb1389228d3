package entities

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type EquipmentStatus string

const (
	EquipmentStatusActive   EquipmentStatus = "active"
	EquipmentStatusScrapped EquipmentStatus = "scrapped"
)

type Equipment struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	SerialNumber      string          `json:"serial_number"`
	Category          null.String     `json:"category"`
	PurchaseDate      null.Time       `json:"purchase_date"`
	WarrantyExpiry    null.Time       `json:"warranty_expiry"`
	Location          null.String     `json:"location"`
	AssignedEmployee  null.String     `json:"assigned_employee"`
	DepartmentID      uuid.UUID       `json:"department_id"`
	MaintenanceTeamID uuid.UUID       `json:"maintenance_team_id"`
	Status            EquipmentStatus `json:"status"`
}
