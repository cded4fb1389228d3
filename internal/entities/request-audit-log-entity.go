package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

// RequestAuditLog - одна неизменяемая запись о смене стадии заявки.
// OldStage пуст только у записи, созданной вместе с самой заявкой.
type RequestAuditLog struct {
	ID        uuid.UUID    `json:"id"`
	RequestID uuid.UUID    `json:"request_id"`
	OldStage  null.String  `json:"old_stage"`
	NewStage  RequestStage `json:"new_stage"`
	ChangedBy uuid.UUID    `json:"changed_by"`
	ChangedAt time.Time    `json:"changed_at"`
}
