package dto

import (
	"github.com/google/uuid"
)

type CreateTimeLogDTO struct {
	RequestID    uuid.UUID `json:"request_id" validate:"required"`
	TechnicianID uuid.UUID `json:"technician_id" validate:"required"`
	HoursSpent   float64   `json:"hours_spent" validate:"required,gt=0"`
	LoggedAt     *string   `json:"logged_at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type UpdateTimeLogDTO struct {
	HoursSpent *float64 `json:"hours_spent,omitempty" validate:"omitempty,gt=0"`
	LoggedAt   *string  `json:"logged_at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type TimeLogDTO struct {
	ID           uuid.UUID `json:"id"`
	RequestID    uuid.UUID `json:"request_id"`
	TechnicianID uuid.UUID `json:"technician_id"`
	HoursSpent   float64   `json:"hours_spent"`
	LoggedAt     string    `json:"logged_at"`
}

type TimeLogDetailDTO struct {
	ID             uuid.UUID `json:"id"`
	RequestID      uuid.UUID `json:"request_id"`
	RequestSubject string    `json:"request_subject"`
	TechnicianID   uuid.UUID `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	HoursSpent     float64   `json:"hours_spent"`
	LoggedAt       string    `json:"logged_at"`
}
