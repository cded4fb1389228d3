package dto

import (
	"github.com/google/uuid"
)

type CreateTechnicianDTO struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	TeamID   uuid.UUID `json:"team_id" validate:"required"`
	IsActive *bool     `json:"is_active,omitempty"`
}

type UpdateTechnicianDTO struct {
	TeamID   *uuid.UUID `json:"team_id,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}

type TechnicianDTO struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	TeamID   uuid.UUID `json:"team_id"`
	IsActive bool      `json:"is_active"`
}

type TechnicianDetailDTO struct {
	TechnicianDTO
	UserName string `json:"user_name"`
	TeamName string `json:"team_name"`
}
