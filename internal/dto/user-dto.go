package dto

import (
	"github.com/google/uuid"
)

type CreateUserDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Role     string `json:"role" validate:"required,user_role"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type UpdateUserDTO struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Role     *string `json:"role,omitempty" validate:"omitempty,user_role"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt string    `json:"created_at"`
}
