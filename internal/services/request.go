package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/clock"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
	"gearguard/pkg/utils"
)

const dateLayout = "2006-01-02"

type RequestServiceInterface interface {
	CreateRequest(ctx context.Context, payload dto.CreateMaintenanceRequestDTO) (*dto.MaintenanceRequestDetailDTO, error)
	UpdateRequest(ctx context.Context, id uuid.UUID, payload dto.UpdateMaintenanceRequestDTO) (*dto.MaintenanceRequestDetailDTO, error)
	FindRequest(ctx context.Context, id uuid.UUID) (*dto.MaintenanceRequestDetailDTO, error)
	GetRequests(ctx context.Context, filter types.Filter) ([]dto.MaintenanceRequestDetailDTO, uint64, error)
	GetOverdueRequests(ctx context.Context) ([]dto.MaintenanceRequestDetailDTO, error)
	GetCalendarRequests(ctx context.Context, start, end time.Time) ([]dto.MaintenanceRequestDetailDTO, error)
	DeleteRequest(ctx context.Context, id uuid.UUID) error
}

type RequestService struct {
	txManager      repositories.TxManagerInterface
	requestRepo    repositories.RequestRepositoryInterface
	auditRepo      repositories.RequestAuditLogRepositoryInterface
	timeLogRepo    repositories.TimeLogRepositoryInterface
	equipmentRepo  repositories.EquipmentRepositoryInterface
	technicianRepo repositories.TechnicianRepositoryInterface
	policy         StagePolicy
	clock          clock.Clock
	logger         *zap.Logger
}

func NewRequestService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	auditRepo repositories.RequestAuditLogRepositoryInterface,
	timeLogRepo repositories.TimeLogRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	policy StagePolicy,
	clk clock.Clock,
	logger *zap.Logger,
) RequestServiceInterface {
	return &RequestService{
		txManager:      txManager,
		requestRepo:    requestRepo,
		auditRepo:      auditRepo,
		timeLogRepo:    timeLogRepo,
		equipmentRepo:  equipmentRepo,
		technicianRepo: technicianRepo,
		policy:         policy,
		clock:          clk,
		logger:         logger,
	}
}

// computeIsOverdue - просрочка на момент чтения: запланированная дата уже
// прошла (сравнение по дням) и заявка ещё открыта. Сохранённый флаг overdue
// здесь не участвует.
func computeIsOverdue(scheduledDate null.Time, stage entities.RequestStage, now time.Time) bool {
	if !scheduledDate.Valid || !stage.IsOpen() {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sched := scheduledDate.Time
	schedDay := time.Date(sched.Year(), sched.Month(), sched.Day(), 0, 0, 0, 0, time.UTC)
	return schedDay.Before(today)
}

func requestDetailToDTO(row *repositories.RequestDetailRow, isOverdue bool) *dto.MaintenanceRequestDetailDTO {
	out := &dto.MaintenanceRequestDetailDTO{
		ID:                  row.ID,
		Subject:             row.Subject,
		RequestType:         string(row.RequestType),
		EquipmentID:         row.EquipmentID,
		EquipmentName:       row.EquipmentName,
		DetectedBy:          row.DetectedBy,
		DetectedByName:      row.DetectedByName,
		MaintenanceTeamID:   row.MaintenanceTeamID,
		MaintenanceTeamName: row.MaintenanceTeamName,
		Stage:               string(row.Stage),
		CreatedAt:           row.CreatedAt.Format(time.RFC3339),
		Overdue:             row.Overdue,
		IsOverdue:           isOverdue,
	}
	if row.Description.Valid {
		out.Description = &row.Description.String
	}
	if row.EquipmentCategory.Valid {
		out.EquipmentCategory = &row.EquipmentCategory.String
	}
	if row.EquipmentLocation.Valid {
		out.EquipmentLocation = &row.EquipmentLocation.String
	}
	if row.AssignedTo.Valid {
		assigned := row.AssignedTo.UUID
		out.AssignedTo = &assigned
	}
	if row.AssignedToName.Valid {
		out.AssignedToName = &row.AssignedToName.String
	}
	if row.ScheduledDate.Valid {
		s := row.ScheduledDate.Time.Format(dateLayout)
		out.ScheduledDate = &s
	}
	return out
}

func (s *RequestService) CreateRequest(ctx context.Context, payload dto.CreateMaintenanceRequestDTO) (*dto.MaintenanceRequestDetailDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	requestType := entities.RequestType(payload.RequestType)
	if requestType == entities.RequestTypePreventive && payload.ScheduledDate == nil {
		return nil, apperrors.NewInvalidInputError("для планового обслуживания обязательна запланированная дата")
	}

	if _, err := s.equipmentRepo.FindEquipment(ctx, payload.EquipmentID); err != nil {
		return nil, fmt.Errorf("оборудование для заявки: %w", err)
	}

	request := &entities.MaintenanceRequest{
		Subject:     payload.Subject,
		RequestType: requestType,
		EquipmentID: payload.EquipmentID,
		DetectedBy:  actorID,
		Stage:       entities.RequestStageNew,
	}
	if payload.Description != nil {
		request.Description = null.StringFrom(*payload.Description)
	}
	if payload.ScheduledDate != nil {
		scheduled, err := time.Parse(dateLayout, *payload.ScheduledDate)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("некорректный формат запланированной даты")
		}
		request.ScheduledDate = null.TimeFrom(scheduled)
	}

	// Заявка и первая запись аудита появляются строго вместе.
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.requestRepo.CreateInTx(ctx, tx, request); err != nil {
			return err
		}
		auditEntry := &entities.RequestAuditLog{
			RequestID: request.ID,
			NewStage:  entities.RequestStageNew,
			ChangedBy: actorID,
		}
		return s.auditRepo.CreateInTx(ctx, tx, auditEntry)
	})
	if err != nil {
		s.logger.Error("не удалось создать заявку", zap.Error(err))
		return nil, err
	}

	s.logger.Info("заявка создана",
		zap.String("requestId", request.ID.String()),
		zap.String("equipmentId", request.EquipmentID.String()))

	return s.FindRequest(ctx, request.ID)
}

func (s *RequestService) UpdateRequest(ctx context.Context, id uuid.UUID, payload dto.UpdateMaintenanceRequestDTO) (*dto.MaintenanceRequestDetailDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	if payload.AssignedTo != nil {
		if _, err := s.technicianRepo.FindTechnician(ctx, *payload.AssignedTo); err != nil {
			return nil, fmt.Errorf("назначаемый техник: %w", err)
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindRequestForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		oldStage := request.Stage

		if payload.Subject != nil {
			request.Subject = *payload.Subject
		}
		if payload.Description != nil {
			request.Description = null.StringFrom(*payload.Description)
		}
		if payload.RequestType != nil {
			request.RequestType = entities.RequestType(*payload.RequestType)
		}
		if payload.AssignedTo != nil {
			request.AssignedTo = uuid.NullUUID{UUID: *payload.AssignedTo, Valid: true}
		}
		if payload.ScheduledDate != nil {
			scheduled, err := time.Parse(dateLayout, *payload.ScheduledDate)
			if err != nil {
				return apperrors.NewInvalidInputError("некорректный формат запланированной даты")
			}
			request.ScheduledDate = null.TimeFrom(scheduled)
		}
		if payload.Overdue != nil {
			request.Overdue = *payload.Overdue
		}
		if payload.Stage != nil {
			newStage := entities.RequestStage(*payload.Stage)
			if newStage != oldStage {
				if err := s.policy.CanTransition(oldStage, newStage); err != nil {
					return err
				}
				request.Stage = newStage
			}
		}

		if request.RequestType == entities.RequestTypePreventive && !request.ScheduledDate.Valid {
			return apperrors.NewInvalidInputError("для планового обслуживания обязательна запланированная дата")
		}

		if err := s.requestRepo.UpdateInTx(ctx, tx, request); err != nil {
			return err
		}

		// Запись аудита появляется только при реальной смене стадии.
		if request.Stage != oldStage {
			auditEntry := &entities.RequestAuditLog{
				RequestID: request.ID,
				OldStage:  null.StringFrom(string(oldStage)),
				NewStage:  request.Stage,
				ChangedBy: actorID,
			}
			if err := s.auditRepo.CreateInTx(ctx, tx, auditEntry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("не удалось обновить заявку", zap.String("requestId", id.String()), zap.Error(err))
		return nil, err
	}

	return s.FindRequest(ctx, id)
}

func (s *RequestService) FindRequest(ctx context.Context, id uuid.UUID) (*dto.MaintenanceRequestDetailDTO, error) {
	row, err := s.requestRepo.FindRequestDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return requestDetailToDTO(row, computeIsOverdue(row.ScheduledDate, row.Stage, s.clock.Now())), nil
}

func (s *RequestService) GetRequests(ctx context.Context, filter types.Filter) ([]dto.MaintenanceRequestDetailDTO, uint64, error) {
	rows, total, err := s.requestRepo.GetRequests(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	now := s.clock.Now()
	result := make([]dto.MaintenanceRequestDetailDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *requestDetailToDTO(&rows[i], computeIsOverdue(rows[i].ScheduledDate, rows[i].Stage, now)))
	}
	return result, total, nil
}

// GetOverdueRequests отдаёт просроченные открытые заявки. Отбор уже гарантирует
// просрочку, поэтому is_overdue у всех строк выставлен в true.
func (s *RequestService) GetOverdueRequests(ctx context.Context) ([]dto.MaintenanceRequestDetailDTO, error) {
	rows, err := s.requestRepo.GetOverdueRequests(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	result := make([]dto.MaintenanceRequestDetailDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *requestDetailToDTO(&rows[i], true))
	}
	return result, nil
}

// GetCalendarRequests отдаёт заявки с запланированной датой в диапазоне.
// В календарном представлении is_overdue всегда false.
func (s *RequestService) GetCalendarRequests(ctx context.Context, start, end time.Time) ([]dto.MaintenanceRequestDetailDTO, error) {
	rows, err := s.requestRepo.GetCalendarRequests(ctx, start, end)
	if err != nil {
		return nil, err
	}
	result := make([]dto.MaintenanceRequestDetailDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *requestDetailToDTO(&rows[i], false))
	}
	return result, nil
}

// DeleteRequest удаляет заявку вместе с её записями аудита и времени.
func (s *RequestService) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.timeLogRepo.DeleteByRequestInTx(ctx, tx, id); err != nil {
			return err
		}
		if err := s.auditRepo.DeleteByRequestInTx(ctx, tx, id); err != nil {
			return err
		}
		return s.requestRepo.DeleteInTx(ctx, tx, id)
	})
	if err != nil {
		s.logger.Error("не удалось удалить заявку", zap.String("requestId", id.String()), zap.Error(err))
		return err
	}
	s.logger.Info("заявка удалена", zap.String("requestId", id.String()))
	return nil
}
