package entities

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type MaintenanceTeam struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Specialization null.String `json:"specialization"`
}
