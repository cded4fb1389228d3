package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/clock"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

type TimeLogServiceInterface interface {
	CreateTimeLog(ctx context.Context, payload dto.CreateTimeLogDTO) (*dto.TimeLogDetailDTO, error)
	FindTimeLog(ctx context.Context, id uuid.UUID) (*dto.TimeLogDetailDTO, error)
	GetTimeLogs(ctx context.Context, requestID, technicianID uuid.NullUUID, filter types.Filter) ([]dto.TimeLogDetailDTO, uint64, error)
	UpdateTimeLog(ctx context.Context, id uuid.UUID, payload dto.UpdateTimeLogDTO) (*dto.TimeLogDetailDTO, error)
	DeleteTimeLog(ctx context.Context, id uuid.UUID) error
}

type TimeLogService struct {
	timeLogRepo    repositories.TimeLogRepositoryInterface
	requestRepo    repositories.RequestRepositoryInterface
	technicianRepo repositories.TechnicianRepositoryInterface
	clock          clock.Clock
	logger         *zap.Logger
}

func NewTimeLogService(
	timeLogRepo repositories.TimeLogRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	clk clock.Clock,
	logger *zap.Logger,
) TimeLogServiceInterface {
	return &TimeLogService{
		timeLogRepo:    timeLogRepo,
		requestRepo:    requestRepo,
		technicianRepo: technicianRepo,
		clock:          clk,
		logger:         logger,
	}
}

func timeLogItemToDTO(item *repositories.TimeLogItem) *dto.TimeLogDetailDTO {
	return &dto.TimeLogDetailDTO{
		ID:             item.ID,
		RequestID:      item.RequestID,
		RequestSubject: item.RequestSubject,
		TechnicianID:   item.TechnicianID,
		TechnicianName: item.TechnicianName,
		HoursSpent:     item.HoursSpent,
		LoggedAt:       item.LoggedAt.Format(time.RFC3339),
	}
}

func (s *TimeLogService) CreateTimeLog(ctx context.Context, payload dto.CreateTimeLogDTO) (*dto.TimeLogDetailDTO, error) {
	if payload.HoursSpent <= 0 {
		return nil, apperrors.NewInvalidInputError("затраченные часы должны быть больше нуля")
	}
	if _, err := s.requestRepo.FindRequest(ctx, payload.RequestID); err != nil {
		return nil, fmt.Errorf("заявка для записи времени: %w", err)
	}
	if _, err := s.technicianRepo.FindTechnician(ctx, payload.TechnicianID); err != nil {
		return nil, fmt.Errorf("техник для записи времени: %w", err)
	}

	log := &entities.TimeLog{
		RequestID:    payload.RequestID,
		TechnicianID: payload.TechnicianID,
		HoursSpent:   payload.HoursSpent,
		LoggedAt:     s.clock.Now(),
	}
	if payload.LoggedAt != nil {
		loggedAt, err := time.Parse(time.RFC3339, *payload.LoggedAt)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("некорректный формат времени записи")
		}
		log.LoggedAt = loggedAt
	}

	if err := s.timeLogRepo.CreateTimeLog(ctx, log); err != nil {
		s.logger.Error("не удалось создать запись времени", zap.Error(err))
		return nil, err
	}
	return s.FindTimeLog(ctx, log.ID)
}

func (s *TimeLogService) FindTimeLog(ctx context.Context, id uuid.UUID) (*dto.TimeLogDetailDTO, error) {
	item, err := s.timeLogRepo.FindTimeLog(ctx, id)
	if err != nil {
		return nil, err
	}
	return timeLogItemToDTO(item), nil
}

func (s *TimeLogService) GetTimeLogs(ctx context.Context, requestID, technicianID uuid.NullUUID, filter types.Filter) ([]dto.TimeLogDetailDTO, uint64, error) {
	items, total, err := s.timeLogRepo.GetTimeLogs(ctx, requestID, technicianID, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.TimeLogDetailDTO, 0, len(items))
	for i := range items {
		result = append(result, *timeLogItemToDTO(&items[i]))
	}
	return result, total, nil
}

func (s *TimeLogService) UpdateTimeLog(ctx context.Context, id uuid.UUID, payload dto.UpdateTimeLogDTO) (*dto.TimeLogDetailDTO, error) {
	item, err := s.timeLogRepo.FindTimeLog(ctx, id)
	if err != nil {
		return nil, err
	}

	log := item.TimeLog
	if payload.HoursSpent != nil {
		if *payload.HoursSpent <= 0 {
			return nil, apperrors.NewInvalidInputError("затраченные часы должны быть больше нуля")
		}
		log.HoursSpent = *payload.HoursSpent
	}
	if payload.LoggedAt != nil {
		loggedAt, err := time.Parse(time.RFC3339, *payload.LoggedAt)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("некорректный формат времени записи")
		}
		log.LoggedAt = loggedAt
	}

	if err := s.timeLogRepo.UpdateTimeLog(ctx, &log); err != nil {
		return nil, err
	}
	return s.FindTimeLog(ctx, id)
}

func (s *TimeLogService) DeleteTimeLog(ctx context.Context, id uuid.UUID) error {
	return s.timeLogRepo.DeleteTimeLog(ctx, id)
}
