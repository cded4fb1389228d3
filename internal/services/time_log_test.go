package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	apperrors "gearguard/pkg/errors"
)

type timeLogTestEnv struct {
	service        TimeLogServiceInterface
	timeLogRepo    *fakeTimeLogRepo
	requestRepo    *fakeRequestRepo
	technicianRepo *fakeTechnicianRepo
	equipmentRepo  *fakeEquipmentRepo
	requestService RequestServiceInterface
	clock          *fakeClock
}

func newTimeLogTestEnv() *timeLogTestEnv {
	env := &timeLogTestEnv{
		timeLogRepo:    newFakeTimeLogRepo(),
		requestRepo:    newFakeRequestRepo(),
		technicianRepo: newFakeTechnicianRepo(),
		equipmentRepo:  newFakeEquipmentRepo(),
		clock:          &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)},
	}
	env.service = NewTimeLogService(env.timeLogRepo, env.requestRepo, env.technicianRepo, env.clock, zap.NewNop())
	env.requestService = NewRequestService(
		&fakeTxManager{},
		env.requestRepo,
		&fakeAuditRepo{},
		env.timeLogRepo,
		env.equipmentRepo,
		env.technicianRepo,
		NewPermissiveStagePolicy(),
		env.clock,
		zap.NewNop(),
	)
	return env
}

func (env *timeLogTestEnv) seedRequestAndTechnician(t *testing.T) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()
	created, err := env.requestService.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Заявка для учёта времени",
		RequestType: "corrective",
		EquipmentID: equipmentID,
	})
	require.NoError(t, err)
	technicianID := env.technicianRepo.add(uuid.New())
	return created.ID, technicianID
}

func TestCreateTimeLog_RejectsNonPositiveHours(t *testing.T) {
	env := newTimeLogTestEnv()
	ctx, _ := actorContext()
	requestID, technicianID := env.seedRequestAndTechnician(t)

	for _, hours := range []float64{0, -1.5} {
		_, err := env.service.CreateTimeLog(ctx, dto.CreateTimeLogDTO{
			RequestID:    requestID,
			TechnicianID: technicianID,
			HoursSpent:   hours,
		})
		require.Error(t, err)
		var invalidInput *apperrors.InvalidInputError
		require.ErrorAs(t, err, &invalidInput)
	}
	assert.Empty(t, env.timeLogRepo.logs)
}

func TestCreateTimeLog_DefaultsLoggedAtToNow(t *testing.T) {
	env := newTimeLogTestEnv()
	ctx, _ := actorContext()
	requestID, technicianID := env.seedRequestAndTechnician(t)

	created, err := env.service.CreateTimeLog(ctx, dto.CreateTimeLogDTO{
		RequestID:    requestID,
		TechnicianID: technicianID,
		HoursSpent:   3.5,
	})
	require.NoError(t, err)
	assert.Equal(t, env.clock.now.Format(time.RFC3339), created.LoggedAt)
	assert.Equal(t, 3.5, created.HoursSpent)
}

func TestCreateTimeLog_UnknownRequest(t *testing.T) {
	env := newTimeLogTestEnv()
	ctx, _ := actorContext()
	technicianID := env.technicianRepo.add(uuid.New())

	_, err := env.service.CreateTimeLog(ctx, dto.CreateTimeLogDTO{
		RequestID:    uuid.New(),
		TechnicianID: technicianID,
		HoursSpent:   1,
	})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateTimeLog_RejectsNonPositiveHours(t *testing.T) {
	env := newTimeLogTestEnv()
	ctx, _ := actorContext()
	requestID, technicianID := env.seedRequestAndTechnician(t)

	created, err := env.service.CreateTimeLog(ctx, dto.CreateTimeLogDTO{
		RequestID:    requestID,
		TechnicianID: technicianID,
		HoursSpent:   2,
	})
	require.NoError(t, err)

	zero := 0.0
	_, err = env.service.UpdateTimeLog(ctx, created.ID, dto.UpdateTimeLogDTO{HoursSpent: &zero})
	require.Error(t, err)

	// Старое значение не должно пострадать.
	found, err := env.service.FindTimeLog(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, found.HoursSpent)
}
