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
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

type EquipmentServiceInterface interface {
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDetailDTO, error)
	FindEquipment(ctx context.Context, id uuid.UUID) (*dto.EquipmentDetailDTO, error)
	GetEquipmentList(ctx context.Context, filter types.Filter) ([]dto.EquipmentDetailDTO, uint64, error)
	GetCategories(ctx context.Context) ([]string, error)
	GetAutoFill(ctx context.Context, id uuid.UUID) (*dto.MaintenanceRequestAutoFillDTO, error)
	UpdateEquipment(ctx context.Context, id uuid.UUID, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDetailDTO, error)
	DeleteEquipment(ctx context.Context, id uuid.UUID) error
}

type EquipmentService struct {
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	requestRepo   repositories.RequestRepositoryInterface
	auditRepo     repositories.RequestAuditLogRepositoryInterface
	timeLogRepo   repositories.TimeLogRepositoryInterface
	cache         repositories.CacheRepositoryInterface
	autoFillTTL   time.Duration
	logger        *zap.Logger
}

func NewEquipmentService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	auditRepo repositories.RequestAuditLogRepositoryInterface,
	timeLogRepo repositories.TimeLogRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	autoFillTTL time.Duration,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		requestRepo:   requestRepo,
		auditRepo:     auditRepo,
		timeLogRepo:   timeLogRepo,
		cache:         cache,
		autoFillTTL:   autoFillTTL,
		logger:        logger,
	}
}

func autoFillCacheKey(id uuid.UUID) string {
	return "equipment:autofill:" + id.String()
}

func nullStringPtr(s null.String) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullDatePtr(t null.Time) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(dateLayout)
	return &s
}

func equipmentDetailToDTO(row *repositories.EquipmentDetailRow) *dto.EquipmentDetailDTO {
	return &dto.EquipmentDetailDTO{
		EquipmentDTO: dto.EquipmentDTO{
			ID:                row.ID,
			Name:              row.Name,
			SerialNumber:      row.SerialNumber,
			Category:          nullStringPtr(row.Category),
			PurchaseDate:      nullDatePtr(row.PurchaseDate),
			WarrantyExpiry:    nullDatePtr(row.WarrantyExpiry),
			Location:          nullStringPtr(row.Location),
			AssignedEmployee:  nullStringPtr(row.AssignedEmployee),
			DepartmentID:      row.DepartmentID,
			MaintenanceTeamID: row.MaintenanceTeamID,
			Status:            string(row.Status),
		},
		DepartmentName:      row.DepartmentName,
		MaintenanceTeamName: row.MaintenanceTeamName,
		RequestCount:        row.RequestCount,
		OpenRequestCount:    row.OpenRequestCount,
	}
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDetailDTO, error) {
	equipment := &entities.Equipment{
		Name:              payload.Name,
		SerialNumber:      payload.SerialNumber,
		DepartmentID:      payload.DepartmentID,
		MaintenanceTeamID: payload.MaintenanceTeamID,
		Status:            entities.EquipmentStatusActive,
	}
	if payload.Category != nil {
		equipment.Category = null.StringFrom(*payload.Category)
	}
	if payload.Location != nil {
		equipment.Location = null.StringFrom(*payload.Location)
	}
	if payload.AssignedEmployee != nil {
		equipment.AssignedEmployee = null.StringFrom(*payload.AssignedEmployee)
	}
	if payload.Status != nil {
		equipment.Status = entities.EquipmentStatus(*payload.Status)
	}
	if payload.PurchaseDate != nil {
		d, err := time.Parse(dateLayout, *payload.PurchaseDate)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("некорректный формат даты покупки")
		}
		equipment.PurchaseDate = null.TimeFrom(d)
	}
	if payload.WarrantyExpiry != nil {
		d, err := time.Parse(dateLayout, *payload.WarrantyExpiry)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("некорректный формат даты окончания гарантии")
		}
		equipment.WarrantyExpiry = null.TimeFrom(d)
	}

	if err := s.equipmentRepo.CreateEquipment(ctx, equipment); err != nil {
		s.logger.Error("не удалось создать оборудование", zap.Error(err))
		return nil, err
	}
	return s.FindEquipment(ctx, equipment.ID)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uuid.UUID) (*dto.EquipmentDetailDTO, error) {
	row, err := s.equipmentRepo.FindEquipmentDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return equipmentDetailToDTO(row), nil
}

func (s *EquipmentService) GetEquipmentList(ctx context.Context, filter types.Filter) ([]dto.EquipmentDetailDTO, uint64, error) {
	rows, total, err := s.equipmentRepo.GetEquipmentList(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.EquipmentDetailDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *equipmentDetailToDTO(&rows[i]))
	}
	return result, total, nil
}

func (s *EquipmentService) GetCategories(ctx context.Context) ([]string, error) {
	return s.equipmentRepo.GetCategories(ctx)
}

// GetAutoFill отдаёт значения для подстановки в форму новой заявки.
// Результат кешируется: карточка оборудования меняется редко, а форму
// открывают часто. Кеш сбрасывается при изменении оборудования.
func (s *EquipmentService) GetAutoFill(ctx context.Context, id uuid.UUID) (*dto.MaintenanceRequestAutoFillDTO, error) {
	key := autoFillCacheKey(id)

	var cached dto.MaintenanceRequestAutoFillDTO
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	row, err := s.equipmentRepo.FindAutoFill(ctx, id)
	if err != nil {
		return nil, err
	}
	result := &dto.MaintenanceRequestAutoFillDTO{
		EquipmentCategory:   nullStringPtr(row.Category),
		MaintenanceTeamID:   row.MaintenanceTeamID,
		MaintenanceTeamName: row.MaintenanceTeamName,
		EquipmentLocation:   nullStringPtr(row.Location),
	}

	if err := s.cache.Set(ctx, key, result, s.autoFillTTL); err != nil {
		s.logger.Warn("не удалось записать автозаполнение в кеш",
			zap.String("equipmentId", id.String()), zap.Error(err))
	}
	return result, nil
}

func (s *EquipmentService) UpdateEquipment(ctx context.Context, id uuid.UUID, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDetailDTO, error) {
	equipment, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		equipment.Name = *payload.Name
	}
	if payload.SerialNumber != nil {
		equipment.SerialNumber = *payload.SerialNumber
	}
	if payload.Category != nil {
		equipment.Category = null.StringFrom(*payload.Category)
	}
	if payload.Location != nil {
		equipment.Location = null.StringFrom(*payload.Location)
	}
	if payload.AssignedEmployee != nil {
		equipment.AssignedEmployee = null.StringFrom(*payload.AssignedEmployee)
	}
	if payload.DepartmentID != nil {
		equipment.DepartmentID = *payload.DepartmentID
	}
	if payload.MaintenanceTeamID != nil {
		equipment.MaintenanceTeamID = *payload.MaintenanceTeamID
	}
	if payload.Status != nil {
		equipment.Status = entities.EquipmentStatus(*payload.Status)
	}
	if payload.PurchaseDate != nil {
		d, err := time.Parse(dateLayout, *payload.PurchaseDate)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("некорректный формат даты покупки")
		}
		equipment.PurchaseDate = null.TimeFrom(d)
	}
	if payload.WarrantyExpiry != nil {
		d, err := time.Parse(dateLayout, *payload.WarrantyExpiry)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("некорректный формат даты окончания гарантии")
		}
		equipment.WarrantyExpiry = null.TimeFrom(d)
	}

	if err := s.equipmentRepo.UpdateEquipment(ctx, equipment); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, autoFillCacheKey(id)); err != nil {
		s.logger.Warn("не удалось сбросить кеш автозаполнения",
			zap.String("equipmentId", id.String()), zap.Error(err))
	}
	return s.FindEquipment(ctx, id)
}

// DeleteEquipment удаляет оборудование со всей историей: заявки, их аудит
// и записи времени уходят в одной транзакции.
func (s *EquipmentService) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.equipmentRepo.FindEquipment(ctx, id); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.timeLogRepo.DeleteByEquipmentInTx(ctx, tx, id); err != nil {
			return fmt.Errorf("удаление записей времени оборудования: %w", err)
		}
		if err := s.auditRepo.DeleteByEquipmentInTx(ctx, tx, id); err != nil {
			return fmt.Errorf("удаление записей аудита оборудования: %w", err)
		}
		if err := s.requestRepo.DeleteByEquipmentInTx(ctx, tx, id); err != nil {
			return fmt.Errorf("удаление заявок оборудования: %w", err)
		}
		return s.equipmentRepo.DeleteInTx(ctx, tx, id)
	})
	if err != nil {
		s.logger.Error("не удалось удалить оборудование", zap.String("equipmentId", id.String()), zap.Error(err))
		return err
	}

	if err := s.cache.Delete(ctx, autoFillCacheKey(id)); err != nil {
		s.logger.Warn("не удалось сбросить кеш автозаполнения",
			zap.String("equipmentId", id.String()), zap.Error(err))
	}
	s.logger.Info("оборудование удалено со всей историей", zap.String("equipmentId", id.String()))
	return nil
}
