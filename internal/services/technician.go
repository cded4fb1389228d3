package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/types"
)

type TechnicianServiceInterface interface {
	CreateTechnician(ctx context.Context, payload dto.CreateTechnicianDTO) (*dto.TechnicianDetailDTO, error)
	FindTechnician(ctx context.Context, id uuid.UUID) (*dto.TechnicianDetailDTO, error)
	GetTechnicians(ctx context.Context, filter types.Filter) ([]dto.TechnicianDetailDTO, uint64, error)
	UpdateTechnician(ctx context.Context, id uuid.UUID, payload dto.UpdateTechnicianDTO) (*dto.TechnicianDetailDTO, error)
	DeleteTechnician(ctx context.Context, id uuid.UUID) error
}

type TechnicianService struct {
	txManager      repositories.TxManagerInterface
	technicianRepo repositories.TechnicianRepositoryInterface
	requestRepo    repositories.RequestRepositoryInterface
	userRepo       repositories.UserRepositoryInterface
	teamRepo       repositories.MaintenanceTeamRepositoryInterface
	logger         *zap.Logger
}

func NewTechnicianService(
	txManager repositories.TxManagerInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	teamRepo repositories.MaintenanceTeamRepositoryInterface,
	logger *zap.Logger,
) TechnicianServiceInterface {
	return &TechnicianService{
		txManager:      txManager,
		technicianRepo: technicianRepo,
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		teamRepo:       teamRepo,
		logger:         logger,
	}
}

func technicianDetailToDTO(row *repositories.TechnicianDetailRow) *dto.TechnicianDetailDTO {
	return &dto.TechnicianDetailDTO{
		TechnicianDTO: dto.TechnicianDTO{
			ID:       row.ID,
			UserID:   row.UserID,
			TeamID:   row.TeamID,
			IsActive: row.IsActive,
		},
		UserName: row.UserName,
		TeamName: row.TeamName,
	}
}

func (s *TechnicianService) CreateTechnician(ctx context.Context, payload dto.CreateTechnicianDTO) (*dto.TechnicianDetailDTO, error) {
	if _, err := s.userRepo.FindUser(ctx, payload.UserID); err != nil {
		return nil, fmt.Errorf("пользователь для техника: %w", err)
	}
	if _, err := s.teamRepo.FindTeam(ctx, payload.TeamID); err != nil {
		return nil, fmt.Errorf("команда для техника: %w", err)
	}

	technician := &entities.Technician{
		UserID:   payload.UserID,
		TeamID:   payload.TeamID,
		IsActive: true,
	}
	if payload.IsActive != nil {
		technician.IsActive = *payload.IsActive
	}
	if err := s.technicianRepo.CreateTechnician(ctx, technician); err != nil {
		s.logger.Error("не удалось создать техника", zap.Error(err))
		return nil, err
	}
	return s.FindTechnician(ctx, technician.ID)
}

func (s *TechnicianService) FindTechnician(ctx context.Context, id uuid.UUID) (*dto.TechnicianDetailDTO, error) {
	row, err := s.technicianRepo.FindTechnicianDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return technicianDetailToDTO(row), nil
}

func (s *TechnicianService) GetTechnicians(ctx context.Context, filter types.Filter) ([]dto.TechnicianDetailDTO, uint64, error) {
	rows, total, err := s.technicianRepo.GetTechnicians(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.TechnicianDetailDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *technicianDetailToDTO(&rows[i]))
	}
	return result, total, nil
}

func (s *TechnicianService) UpdateTechnician(ctx context.Context, id uuid.UUID, payload dto.UpdateTechnicianDTO) (*dto.TechnicianDetailDTO, error) {
	technician, err := s.technicianRepo.FindTechnician(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload.TeamID != nil {
		if _, err := s.teamRepo.FindTeam(ctx, *payload.TeamID); err != nil {
			return nil, fmt.Errorf("команда для техника: %w", err)
		}
		technician.TeamID = *payload.TeamID
	}
	if payload.IsActive != nil {
		technician.IsActive = *payload.IsActive
	}
	if err := s.technicianRepo.UpdateTechnician(ctx, technician); err != nil {
		return nil, err
	}
	return s.FindTechnician(ctx, id)
}

// DeleteTechnician снимает техника с его заявок и удаляет его одной
// транзакцией. Сами заявки остаются, но без исполнителя.
func (s *TechnicianService) DeleteTechnician(ctx context.Context, id uuid.UUID) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.requestRepo.ClearAssignedTechnicianInTx(ctx, tx, id); err != nil {
			return fmt.Errorf("снятие назначений техника: %w", err)
		}
		return s.technicianRepo.DeleteInTx(ctx, tx, id)
	})
	if err != nil {
		s.logger.Error("не удалось удалить техника", zap.String("technicianId", id.String()), zap.Error(err))
		return err
	}
	return nil
}
