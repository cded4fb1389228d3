package services

import (
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
)

type requestTestEnv struct {
	service        RequestServiceInterface
	requestRepo    *fakeRequestRepo
	auditRepo      *fakeAuditRepo
	timeLogRepo    *fakeTimeLogRepo
	equipmentRepo  *fakeEquipmentRepo
	technicianRepo *fakeTechnicianRepo
	clock          *fakeClock
}

func newRequestTestEnv() *requestTestEnv {
	env := &requestTestEnv{
		requestRepo:    newFakeRequestRepo(),
		auditRepo:      &fakeAuditRepo{},
		timeLogRepo:    newFakeTimeLogRepo(),
		equipmentRepo:  newFakeEquipmentRepo(),
		technicianRepo: newFakeTechnicianRepo(),
		clock:          &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)},
	}
	env.service = NewRequestService(
		&fakeTxManager{},
		env.requestRepo,
		env.auditRepo,
		env.timeLogRepo,
		env.equipmentRepo,
		env.technicianRepo,
		NewPermissiveStagePolicy(),
		env.clock,
		zap.NewNop(),
	)
	return env
}

func TestCreateRequest_PreventiveRequiresScheduledDate(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()

	_, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Плановое ТО компрессора",
		RequestType: "preventive",
		EquipmentID: equipmentID,
	})

	require.Error(t, err)
	var invalidInput *apperrors.InvalidInputError
	require.ErrorAs(t, err, &invalidInput)
	// Ничего не должно сохраниться: ни заявки, ни записи аудита.
	assert.Empty(t, env.requestRepo.requests)
	assert.Empty(t, env.auditRepo.entries)
}

func TestCreateRequest_WritesInitialAuditEntry(t *testing.T) {
	env := newRequestTestEnv()
	ctx, actorID := actorContext()
	equipmentID := env.equipmentRepo.add()

	created, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Не включается станок",
		RequestType: "corrective",
		EquipmentID: equipmentID,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", created.Stage)

	entries := env.auditRepo.forRequest(created.ID)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].OldStage.Valid, "у первой записи аудита не должно быть старой стадии")
	assert.Equal(t, entities.RequestStageNew, entries[0].NewStage)
	assert.Equal(t, actorID, entries[0].ChangedBy)
}

func TestCreateRequest_UnknownEquipment(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()

	_, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Не включается станок",
		RequestType: "corrective",
		EquipmentID: uuid.New(),
	})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, env.auditRepo.entries)
}

func TestUpdateRequest_StageChangeAppendsAudit(t *testing.T) {
	env := newRequestTestEnv()
	ctx, actorID := actorContext()
	equipmentID := env.equipmentRepo.add()

	created, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Гидравлика течёт",
		RequestType: "corrective",
		EquipmentID: equipmentID,
	})
	require.NoError(t, err)

	updated, err := env.service.UpdateRequest(ctx, created.ID, dto.UpdateMaintenanceRequestDTO{
		Stage: strPtr("in_progress"),
	})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", updated.Stage)

	updated, err = env.service.UpdateRequest(ctx, created.ID, dto.UpdateMaintenanceRequestDTO{
		Stage: strPtr("repaired"),
	})
	require.NoError(t, err)
	assert.Equal(t, "repaired", updated.Stage)

	entries := env.auditRepo.forRequest(created.ID)
	require.Len(t, entries, 3)

	assert.Equal(t, "new", entries[1].OldStage.String)
	assert.Equal(t, entities.RequestStageInProgress, entries[1].NewStage)
	assert.Equal(t, "in_progress", entries[2].OldStage.String)
	assert.Equal(t, entities.RequestStageRepaired, entries[2].NewStage)
	assert.Equal(t, actorID, entries[2].ChangedBy)
}

func TestUpdateRequest_NonStageFieldsDoNotTouchAudit(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()

	created, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Шумит подшипник",
		RequestType: "corrective",
		EquipmentID: equipmentID,
	})
	require.NoError(t, err)

	updated, err := env.service.UpdateRequest(ctx, created.ID, dto.UpdateMaintenanceRequestDTO{
		Subject:     strPtr("Шумит подшипник шпинделя"),
		Description: strPtr("Слышно на высоких оборотах"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Шумит подшипник шпинделя", updated.Subject)

	assert.Len(t, env.auditRepo.forRequest(created.ID), 1, "без смены стадии аудит не пополняется")
}

func TestUpdateRequest_SameStageDoesNotAppendAudit(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()

	created, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Перегрев двигателя",
		RequestType: "corrective",
		EquipmentID: equipmentID,
	})
	require.NoError(t, err)

	_, err = env.service.UpdateRequest(ctx, created.ID, dto.UpdateMaintenanceRequestDTO{
		Stage: strPtr("new"),
	})
	require.NoError(t, err)

	assert.Len(t, env.auditRepo.forRequest(created.ID), 1)
}

func TestUpdateRequest_PreventiveCannotLoseScheduledDate(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()

	created, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Замена масла",
		RequestType: "corrective",
		EquipmentID: equipmentID,
	})
	require.NoError(t, err)

	// Смена типа на плановый без даты должна быть отвергнута.
	_, err = env.service.UpdateRequest(ctx, created.ID, dto.UpdateMaintenanceRequestDTO{
		RequestType: strPtr("preventive"),
	})
	require.Error(t, err)
	var invalidInput *apperrors.InvalidInputError
	require.ErrorAs(t, err, &invalidInput)
}

func TestUpdateRequest_AssignUnknownTechnician(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()

	created, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Вибрация на холостом ходу",
		RequestType: "corrective",
		EquipmentID: equipmentID,
	})
	require.NoError(t, err)

	unknown := uuid.New()
	_, err = env.service.UpdateRequest(ctx, created.ID, dto.UpdateMaintenanceRequestDTO{
		AssignedTo: &unknown,
	})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestComputeIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := null.TimeFrom(time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC))
	today := null.TimeFrom(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	tomorrow := null.TimeFrom(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC))

	testCases := []struct {
		name      string
		scheduled null.Time
		stage     entities.RequestStage
		want      bool
	}{
		{"вчерашняя дата, новая заявка", yesterday, entities.RequestStageNew, true},
		{"вчерашняя дата, в работе", yesterday, entities.RequestStageInProgress, true},
		{"вчерашняя дата, отремонтирована", yesterday, entities.RequestStageRepaired, false},
		{"вчерашняя дата, списана", yesterday, entities.RequestStageScrap, false},
		{"сегодняшняя дата ещё не просрочена", today, entities.RequestStageNew, false},
		{"завтрашняя дата", tomorrow, entities.RequestStageNew, false},
		{"без даты", null.Time{}, entities.RequestStageNew, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, computeIsOverdue(tc.scheduled, tc.stage, now))
		})
	}
}

func TestGetOverdueRequests_FlagAlwaysTrue(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()

	created, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:       "Просроченное ТО",
		RequestType:   "preventive",
		EquipmentID:   equipmentID,
		ScheduledDate: datePtr(env.clock.now.AddDate(0, 0, -3)),
	})
	require.NoError(t, err)

	overdue, err := env.service.GetOverdueRequests(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, created.ID, overdue[0].ID)
	assert.True(t, overdue[0].IsOverdue)
}

func TestGetCalendarRequests_FlagAlwaysFalse(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()

	_, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:       "Просроченное ТО в календаре",
		RequestType:   "preventive",
		EquipmentID:   equipmentID,
		ScheduledDate: datePtr(env.clock.now.AddDate(0, 0, -3)),
	})
	require.NoError(t, err)

	start := env.clock.now.AddDate(0, 0, -10)
	end := env.clock.now.AddDate(0, 0, 10)
	calendar, err := env.service.GetCalendarRequests(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, calendar, 1)
	// Календарь показывает план, а не состояние: просрочка здесь всегда false.
	assert.False(t, calendar[0].IsOverdue)
}

func TestUpdateRequest_StoredOverdueFlagUntouchedByEngine(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()

	created, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:       "ТО с прошедшей датой",
		RequestType:   "preventive",
		EquipmentID:   equipmentID,
		ScheduledDate: datePtr(env.clock.now.AddDate(0, 0, -1)),
	})
	require.NoError(t, err)

	// Вычисляемая просрочка есть, но сохранённый флаг остаётся false.
	assert.True(t, created.IsOverdue)
	assert.False(t, created.Overdue)

	// Флаг меняется только явным запросом клиента.
	overdueTrue := true
	updated, err := env.service.UpdateRequest(ctx, created.ID, dto.UpdateMaintenanceRequestDTO{
		Overdue: &overdueTrue,
	})
	require.NoError(t, err)
	assert.True(t, updated.Overdue)
}

func TestDeleteRequest_RemovesAuditAndTimeLogs(t *testing.T) {
	env := newRequestTestEnv()
	ctx, _ := actorContext()
	equipmentID := env.equipmentRepo.add()
	technicianID := env.technicianRepo.add(uuid.New())

	created, err := env.service.CreateRequest(ctx, dto.CreateMaintenanceRequestDTO{
		Subject:     "Заявка под удаление",
		RequestType: "corrective",
		EquipmentID: equipmentID,
	})
	require.NoError(t, err)

	err = env.timeLogRepo.CreateTimeLog(ctx, &entities.TimeLog{
		RequestID:    created.ID,
		TechnicianID: technicianID,
		HoursSpent:   2.5,
		LoggedAt:     env.clock.now,
	})
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteRequest(ctx, created.ID))

	_, err = env.service.FindRequest(ctx, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, env.auditRepo.forRequest(created.ID))
	assert.Empty(t, env.timeLogRepo.logs)
}
