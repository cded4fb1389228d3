// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations регистрирует доменные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("request_stage", isRequestStage); err != nil {
		return err
	}
	if err := v.RegisterValidation("request_type", isRequestType); err != nil {
		return err
	}
	if err := v.RegisterValidation("equipment_status", isEquipmentStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("user_role", isUserRole); err != nil {
		return err
	}
	return nil
}

func isRequestStage(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "new", "in_progress", "repaired", "scrap":
		return true
	}
	return false
}

func isRequestType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "corrective", "preventive":
		return true
	}
	return false
}

func isEquipmentStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "scrapped":
		return true
	}
	return false
}

func isUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "manager", "technician", "user":
		return true
	}
	return false
}
