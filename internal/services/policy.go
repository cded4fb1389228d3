package services

import (
	"gearguard/internal/entities"
)

// StagePolicy решает, допустим ли переход заявки между стадиями.
// Движок сам переходы не ограничивает, проверка вынесена в отдельную
// точку, чтобы правила можно было ужесточить, не трогая сам движок.
type StagePolicy interface {
	CanTransition(from, to entities.RequestStage) error
}

type permissivePolicy struct{}

func (permissivePolicy) CanTransition(from, to entities.RequestStage) error { return nil }

// NewPermissiveStagePolicy разрешает любой переход между известными стадиями.
func NewPermissiveStagePolicy() StagePolicy {
	return permissivePolicy{}
}
