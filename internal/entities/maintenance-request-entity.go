package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type RequestType string

const (
	RequestTypeCorrective RequestType = "corrective"
	RequestTypePreventive RequestType = "preventive"
)

type RequestStage string

const (
	RequestStageNew        RequestStage = "new"
	RequestStageInProgress RequestStage = "in_progress"
	RequestStageRepaired   RequestStage = "repaired"
	RequestStageScrap      RequestStage = "scrap"
)

// IsOpen сообщает, считается ли заявка в этой стадии "открытой".
// Только открытые заявки могут быть просроченными.
func (s RequestStage) IsOpen() bool {
	return s == RequestStageNew || s == RequestStageInProgress
}

type MaintenanceRequest struct {
	ID            uuid.UUID     `json:"id"`
	Subject       string        `json:"subject"`
	Description   null.String   `json:"description"`
	RequestType   RequestType   `json:"request_type"`
	EquipmentID   uuid.UUID     `json:"equipment_id"`
	DetectedBy    uuid.UUID     `json:"detected_by"`
	AssignedTo    uuid.NullUUID `json:"assigned_to"`
	ScheduledDate null.Time     `json:"scheduled_date"`
	Stage         RequestStage  `json:"stage"`
	Overdue       bool          `json:"overdue"`
	CreatedAt     time.Time     `json:"created_at"`
}
