package services

import (
	"context"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

type MaintenanceTeamServiceInterface interface {
	CreateTeam(ctx context.Context, payload dto.CreateMaintenanceTeamDTO) (*dto.MaintenanceTeamDTO, error)
	FindTeam(ctx context.Context, id uuid.UUID) (*dto.MaintenanceTeamDTO, error)
	GetTeams(ctx context.Context, filter types.Filter) ([]dto.MaintenanceTeamDTO, uint64, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, payload dto.UpdateMaintenanceTeamDTO) (*dto.MaintenanceTeamDTO, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
}

type MaintenanceTeamService struct {
	teamRepo       repositories.MaintenanceTeamRepositoryInterface
	equipmentRepo  repositories.EquipmentRepositoryInterface
	technicianRepo repositories.TechnicianRepositoryInterface
	logger         *zap.Logger
}

func NewMaintenanceTeamService(
	teamRepo repositories.MaintenanceTeamRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	logger *zap.Logger,
) MaintenanceTeamServiceInterface {
	return &MaintenanceTeamService{
		teamRepo:       teamRepo,
		equipmentRepo:  equipmentRepo,
		technicianRepo: technicianRepo,
		logger:         logger,
	}
}

func teamToDTO(t *entities.MaintenanceTeam) *dto.MaintenanceTeamDTO {
	return &dto.MaintenanceTeamDTO{
		ID:             t.ID,
		Name:           t.Name,
		Specialization: nullStringPtr(t.Specialization),
	}
}

func (s *MaintenanceTeamService) CreateTeam(ctx context.Context, payload dto.CreateMaintenanceTeamDTO) (*dto.MaintenanceTeamDTO, error) {
	team := &entities.MaintenanceTeam{Name: payload.Name}
	if payload.Specialization != nil {
		team.Specialization = null.StringFrom(*payload.Specialization)
	}
	if err := s.teamRepo.CreateTeam(ctx, team); err != nil {
		s.logger.Error("не удалось создать команду обслуживания", zap.Error(err))
		return nil, err
	}
	return teamToDTO(team), nil
}

func (s *MaintenanceTeamService) FindTeam(ctx context.Context, id uuid.UUID) (*dto.MaintenanceTeamDTO, error) {
	team, err := s.teamRepo.FindTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	return teamToDTO(team), nil
}

func (s *MaintenanceTeamService) GetTeams(ctx context.Context, filter types.Filter) ([]dto.MaintenanceTeamDTO, uint64, error) {
	teams, total, err := s.teamRepo.GetTeams(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.MaintenanceTeamDTO, 0, len(teams))
	for i := range teams {
		result = append(result, *teamToDTO(&teams[i].MaintenanceTeam))
	}
	return result, total, nil
}

func (s *MaintenanceTeamService) UpdateTeam(ctx context.Context, id uuid.UUID, payload dto.UpdateMaintenanceTeamDTO) (*dto.MaintenanceTeamDTO, error) {
	team, err := s.teamRepo.FindTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload.Name != nil {
		team.Name = *payload.Name
	}
	if payload.Specialization != nil {
		team.Specialization = null.StringFrom(*payload.Specialization)
	}
	if err := s.teamRepo.UpdateTeam(ctx, team); err != nil {
		return nil, err
	}
	return teamToDTO(team), nil
}

// DeleteTeam запрещает удаление, пока на команду ссылается оборудование
// или в ней состоят техники.
func (s *MaintenanceTeamService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	equipmentCount, err := s.equipmentRepo.CountByTeam(ctx, id)
	if err != nil {
		return err
	}
	if equipmentCount > 0 {
		return apperrors.NewConflictError("нельзя удалить команду: на неё назначено оборудование")
	}
	technicianCount, err := s.technicianRepo.CountByTeam(ctx, id)
	if err != nil {
		return err
	}
	if technicianCount > 0 {
		return apperrors.NewConflictError("нельзя удалить команду: в ней состоят техники")
	}
	return s.teamRepo.DeleteTeam(ctx, id)
}
