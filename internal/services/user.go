package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/types"
	"gearguard/pkg/utils"
)

type UserServiceInterface interface {
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	FindUser(ctx context.Context, id uuid.UUID) (*dto.UserDTO, error)
	GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error)
	UpdateUser(ctx context.Context, id uuid.UUID, payload dto.UpdateUserDTO) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type UserService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewUserService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) UserServiceInterface {
	return &UserService{userRepo: userRepo, logger: logger}
}

func userToDTO(u *entities.User) *dto.UserDTO {
	return &dto.UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	passwordHash, err := utils.HashPassword(payload.Password)
	if err != nil {
		s.logger.Error("не удалось захешировать пароль", zap.Error(err))
		return nil, err
	}

	user := &entities.User{
		Email:        payload.Email,
		PasswordHash: passwordHash,
		Name:         payload.Name,
		Role:         entities.UserRole(payload.Role),
		IsActive:     true,
	}
	if payload.IsActive != nil {
		user.IsActive = *payload.IsActive
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		s.logger.Error("не удалось создать пользователя", zap.Error(err))
		return nil, err
	}
	return userToDTO(user), nil
}

func (s *UserService) FindUser(ctx context.Context, id uuid.UUID) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return userToDTO(user), nil
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	users, total, err := s.userRepo.GetUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		result = append(result, *userToDTO(&users[i]))
	}
	return result, total, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, payload dto.UpdateUserDTO) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload.Email != nil {
		user.Email = *payload.Email
	}
	if payload.Name != nil {
		user.Name = *payload.Name
	}
	if payload.Role != nil {
		user.Role = entities.UserRole(*payload.Role)
	}
	if payload.IsActive != nil {
		user.IsActive = *payload.IsActive
	}
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return userToDTO(user), nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.DeleteUser(ctx, id)
}
