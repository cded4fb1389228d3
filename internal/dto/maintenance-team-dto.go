package dto

import (
	"github.com/google/uuid"
)

type CreateMaintenanceTeamDTO struct {
	Name           string  `json:"name" validate:"required,min=2,max=255"`
	Specialization *string `json:"specialization,omitempty"`
}

type UpdateMaintenanceTeamDTO struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Specialization *string `json:"specialization,omitempty"`
}

type MaintenanceTeamDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Specialization *string   `json:"specialization"`
}
