package dto

import (
	"github.com/google/uuid"
)

type RequestAuditLogDTO struct {
	ID            uuid.UUID `json:"id"`
	RequestID     uuid.UUID `json:"request_id"`
	OldStage      *string   `json:"old_stage"`
	NewStage      string    `json:"new_stage"`
	ChangedBy     uuid.UUID `json:"changed_by"`
	ChangedByName string    `json:"changed_by_name"`
	ChangedAt     string    `json:"changed_at"`
}
