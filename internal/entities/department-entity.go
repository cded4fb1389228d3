package entities

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type Department struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description null.String `json:"description"`
}
