package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gearguard/internal/dto"
	"gearguard/internal/repositories"
	"gearguard/pkg/types"
)

// Сервис журнала аудита только читает: записи создаёт движок жизненного
// цикла заявок, и никто их после этого не меняет.
type AuditLogServiceInterface interface {
	GetAuditLogs(ctx context.Context, requestID uuid.NullUUID, filter types.Filter) ([]dto.RequestAuditLogDTO, uint64, error)
}

type AuditLogService struct {
	auditRepo repositories.RequestAuditLogRepositoryInterface
}

func NewAuditLogService(auditRepo repositories.RequestAuditLogRepositoryInterface) AuditLogServiceInterface {
	return &AuditLogService{auditRepo: auditRepo}
}

func (s *AuditLogService) GetAuditLogs(ctx context.Context, requestID uuid.NullUUID, filter types.Filter) ([]dto.RequestAuditLogDTO, uint64, error) {
	items, total, err := s.auditRepo.GetAuditLogs(ctx, requestID, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.RequestAuditLogDTO, 0, len(items))
	for _, item := range items {
		entry := dto.RequestAuditLogDTO{
			ID:            item.ID,
			RequestID:     item.RequestID,
			NewStage:      string(item.NewStage),
			ChangedBy:     item.ChangedBy,
			ChangedByName: item.ChangedByName,
			ChangedAt:     item.ChangedAt.Format(time.RFC3339),
		}
		if item.OldStage.Valid {
			entry.OldStage = &item.OldStage.String
		}
		result = append(result, entry)
	}
	return result, total, nil
}
