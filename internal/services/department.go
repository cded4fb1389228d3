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

type DepartmentServiceInterface interface {
	CreateDepartment(ctx context.Context, payload dto.CreateDepartmentDTO) (*dto.DepartmentDTO, error)
	FindDepartment(ctx context.Context, id uuid.UUID) (*dto.DepartmentDTO, error)
	GetDepartments(ctx context.Context, filter types.Filter) ([]dto.DepartmentDTO, uint64, error)
	UpdateDepartment(ctx context.Context, id uuid.UUID, payload dto.UpdateDepartmentDTO) (*dto.DepartmentDTO, error)
	DeleteDepartment(ctx context.Context, id uuid.UUID) error
}

type DepartmentService struct {
	departmentRepo repositories.DepartmentRepositoryInterface
	equipmentRepo  repositories.EquipmentRepositoryInterface
	logger         *zap.Logger
}

func NewDepartmentService(
	departmentRepo repositories.DepartmentRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	logger *zap.Logger,
) DepartmentServiceInterface {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		equipmentRepo:  equipmentRepo,
		logger:         logger,
	}
}

func departmentToDTO(d *entities.Department) *dto.DepartmentDTO {
	return &dto.DepartmentDTO{
		ID:          d.ID,
		Name:        d.Name,
		Description: nullStringPtr(d.Description),
	}
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, payload dto.CreateDepartmentDTO) (*dto.DepartmentDTO, error) {
	department := &entities.Department{Name: payload.Name}
	if payload.Description != nil {
		department.Description = null.StringFrom(*payload.Description)
	}
	if err := s.departmentRepo.CreateDepartment(ctx, department); err != nil {
		s.logger.Error("не удалось создать отдел", zap.Error(err))
		return nil, err
	}
	return departmentToDTO(department), nil
}

func (s *DepartmentService) FindDepartment(ctx context.Context, id uuid.UUID) (*dto.DepartmentDTO, error) {
	department, err := s.departmentRepo.FindDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	return departmentToDTO(department), nil
}

func (s *DepartmentService) GetDepartments(ctx context.Context, filter types.Filter) ([]dto.DepartmentDTO, uint64, error) {
	departments, total, err := s.departmentRepo.GetDepartments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.DepartmentDTO, 0, len(departments))
	for i := range departments {
		result = append(result, *departmentToDTO(&departments[i]))
	}
	return result, total, nil
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uuid.UUID, payload dto.UpdateDepartmentDTO) (*dto.DepartmentDTO, error) {
	department, err := s.departmentRepo.FindDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload.Name != nil {
		department.Name = *payload.Name
	}
	if payload.Description != nil {
		department.Description = null.StringFrom(*payload.Description)
	}
	if err := s.departmentRepo.UpdateDepartment(ctx, department); err != nil {
		return nil, err
	}
	return departmentToDTO(department), nil
}

// DeleteDepartment запрещает удаление, пока за отделом числится оборудование.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	count, err := s.equipmentRepo.CountByDepartment(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflictError("нельзя удалить отдел: за ним числится оборудование")
	}
	return s.departmentRepo.DeleteDepartment(ctx, id)
}
