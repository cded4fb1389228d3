package dto

import (
	"github.com/google/uuid"
)

type CreateMaintenanceRequestDTO struct {
	Subject       string     `json:"subject" validate:"required,min=3,max=255"`
	Description   *string    `json:"description,omitempty"`
	RequestType   string     `json:"request_type" validate:"required,request_type"`
	EquipmentID   uuid.UUID  `json:"equipment_id" validate:"required"`
	ScheduledDate *string    `json:"scheduled_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateMaintenanceRequestDTO struct {
	Subject       *string    `json:"subject,omitempty" validate:"omitempty,min=3,max=255"`
	Description   *string    `json:"description,omitempty"`
	RequestType   *string    `json:"request_type,omitempty" validate:"omitempty,request_type"`
	AssignedTo    *uuid.UUID `json:"assigned_to,omitempty"`
	Stage         *string    `json:"stage,omitempty" validate:"omitempty,request_stage"`
	ScheduledDate *string    `json:"scheduled_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Overdue       *bool      `json:"overdue,omitempty"`
}

type MaintenanceRequestDTO struct {
	ID            uuid.UUID  `json:"id"`
	Subject       string     `json:"subject"`
	Description   *string    `json:"description"`
	RequestType   string     `json:"request_type"`
	EquipmentID   uuid.UUID  `json:"equipment_id"`
	DetectedBy    uuid.UUID  `json:"detected_by"`
	AssignedTo    *uuid.UUID `json:"assigned_to"`
	ScheduledDate *string    `json:"scheduled_date"`
	Stage         string     `json:"stage"`
	Overdue       bool       `json:"overdue"`
	CreatedAt     string     `json:"created_at"`
}

// MaintenanceRequestDetailDTO - заявка, обогащённая данными оборудования,
// команды и людей. IsOverdue - вычисляемая просрочка на момент чтения,
// Overdue - сохранённый флаг (движок его сам не меняет).
type MaintenanceRequestDetailDTO struct {
	ID                  uuid.UUID  `json:"id"`
	Subject             string     `json:"subject"`
	Description         *string    `json:"description"`
	RequestType         string     `json:"request_type"`
	EquipmentID         uuid.UUID  `json:"equipment_id"`
	EquipmentName       string     `json:"equipment_name"`
	EquipmentCategory   *string    `json:"equipment_category"`
	EquipmentLocation   *string    `json:"equipment_location"`
	DetectedBy          uuid.UUID  `json:"detected_by"`
	DetectedByName      string     `json:"detected_by_name"`
	AssignedTo          *uuid.UUID `json:"assigned_to"`
	AssignedToName      *string    `json:"assigned_to_name"`
	MaintenanceTeamID   uuid.UUID  `json:"maintenance_team_id"`
	MaintenanceTeamName string     `json:"maintenance_team_name"`
	Stage               string     `json:"stage"`
	ScheduledDate       *string    `json:"scheduled_date"`
	CreatedAt           string     `json:"created_at"`
	Overdue             bool       `json:"overdue"`
	IsOverdue           bool       `json:"is_overdue"`
}

// MaintenanceRequestAutoFillDTO - значения, подставляемые в форму новой
// заявки из карточки оборудования.
type MaintenanceRequestAutoFillDTO struct {
	EquipmentCategory   *string   `json:"equipment_category"`
	MaintenanceTeamID   uuid.UUID `json:"maintenance_team_id"`
	MaintenanceTeamName string    `json:"maintenance_team_name"`
	EquipmentLocation   *string   `json:"equipment_location"`
}
