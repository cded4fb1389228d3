package dto

import (
	"github.com/google/uuid"
)

type CreateEquipmentDTO struct {
	Name              string    `json:"name" validate:"required,min=2,max=255"`
	SerialNumber      string    `json:"serial_number" validate:"required,min=2,max=255"`
	Category          *string   `json:"category,omitempty"`
	PurchaseDate      *string   `json:"purchase_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WarrantyExpiry    *string   `json:"warranty_expiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Location          *string   `json:"location,omitempty"`
	AssignedEmployee  *string   `json:"assigned_employee,omitempty"`
	DepartmentID      uuid.UUID `json:"department_id" validate:"required"`
	MaintenanceTeamID uuid.UUID `json:"maintenance_team_id" validate:"required"`
	Status            *string   `json:"status,omitempty" validate:"omitempty,equipment_status"`
}

type UpdateEquipmentDTO struct {
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	SerialNumber      *string    `json:"serial_number,omitempty" validate:"omitempty,min=2,max=255"`
	Category          *string    `json:"category,omitempty"`
	PurchaseDate      *string    `json:"purchase_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WarrantyExpiry    *string    `json:"warranty_expiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Location          *string    `json:"location,omitempty"`
	AssignedEmployee  *string    `json:"assigned_employee,omitempty"`
	DepartmentID      *uuid.UUID `json:"department_id,omitempty"`
	MaintenanceTeamID *uuid.UUID `json:"maintenance_team_id,omitempty"`
	Status            *string    `json:"status,omitempty" validate:"omitempty,equipment_status"`
}

type EquipmentDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	SerialNumber      string    `json:"serial_number"`
	Category          *string   `json:"category"`
	PurchaseDate      *string   `json:"purchase_date"`
	WarrantyExpiry    *string   `json:"warranty_expiry"`
	Location          *string   `json:"location"`
	AssignedEmployee  *string   `json:"assigned_employee"`
	DepartmentID      uuid.UUID `json:"department_id"`
	MaintenanceTeamID uuid.UUID `json:"maintenance_team_id"`
	Status            string    `json:"status"`
}

// EquipmentDetailDTO дополняет карточку живыми счётчиками заявок.
// Счётчики считаются запросом на каждое чтение, без кеша.
type EquipmentDetailDTO struct {
	EquipmentDTO
	DepartmentName      string `json:"department_name"`
	MaintenanceTeamName string `json:"maintenance_team_name"`
	RequestCount        uint64 `json:"request_count"`
	OpenRequestCount    uint64 `json:"open_request_count"`
}
