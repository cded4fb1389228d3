package entities

import (
	"time"

	"github.com/google/uuid"
)

type TimeLog struct {
	ID           uuid.UUID `json:"id"`
	RequestID    uuid.UUID `json:"request_id"`
	TechnicianID uuid.UUID `json:"technician_id"`
	HoursSpent   float64   `json:"hours_spent"`
	LoggedAt     time.Time `json:"logged_at"`
}
