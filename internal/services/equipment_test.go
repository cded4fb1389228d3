package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
)

type fakeCacheRepo struct {
	store map[string][]byte
	hits  int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{store: make(map[string][]byte)}
}

func (r *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := r.store[key]
	if !ok {
		return repositories.ErrCacheMiss
	}
	r.hits++
	return json.Unmarshal(data, dest)
}

func (r *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.store[key] = data
	return nil
}

func (r *fakeCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(r.store, key)
	}
	return nil
}

type equipmentTestEnv struct {
	service       EquipmentServiceInterface
	equipmentRepo *fakeEquipmentRepo
	requestRepo   *fakeRequestRepo
	auditRepo     *fakeAuditRepo
	timeLogRepo   *fakeTimeLogRepo
	cache         *fakeCacheRepo
}

func newEquipmentTestEnv() *equipmentTestEnv {
	env := &equipmentTestEnv{
		equipmentRepo: newFakeEquipmentRepo(),
		requestRepo:   newFakeRequestRepo(),
		auditRepo:     &fakeAuditRepo{},
		timeLogRepo:   newFakeTimeLogRepo(),
		cache:         newFakeCacheRepo(),
	}
	env.service = NewEquipmentService(
		&fakeTxManager{},
		env.equipmentRepo,
		env.requestRepo,
		env.auditRepo,
		env.timeLogRepo,
		env.cache,
		time.Minute*10,
		zap.NewNop(),
	)
	return env
}

func TestGetAutoFill_CachesResult(t *testing.T) {
	env := newEquipmentTestEnv()
	ctx := context.Background()
	equipmentID := env.equipmentRepo.add()

	first, err := env.service.GetAutoFill(ctx, equipmentID)
	require.NoError(t, err)
	assert.Zero(t, env.cache.hits, "первое чтение идёт мимо кеша")

	second, err := env.service.GetAutoFill(ctx, equipmentID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.cache.hits, "повторное чтение должно попасть в кеш")
	assert.Equal(t, first, second)
}

func TestUpdateEquipment_InvalidatesAutoFillCache(t *testing.T) {
	env := newEquipmentTestEnv()
	ctx := context.Background()
	equipmentID := env.equipmentRepo.add()

	_, err := env.service.GetAutoFill(ctx, equipmentID)
	require.NoError(t, err)
	require.NotEmpty(t, env.cache.store)

	_, err = env.service.UpdateEquipment(ctx, equipmentID, dto.UpdateEquipmentDTO{
		Location: strPtr("Цех №2"),
	})
	require.NoError(t, err)
	assert.Empty(t, env.cache.store, "обновление оборудования сбрасывает кеш автозаполнения")
}

func TestGetAutoFill_UnknownEquipment(t *testing.T) {
	env := newEquipmentTestEnv()
	_, err := env.service.GetAutoFill(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteEquipment_CascadesHistory(t *testing.T) {
	env := newEquipmentTestEnv()
	ctx := context.Background()
	equipmentID := env.equipmentRepo.add()

	request := &entities.MaintenanceRequest{
		Subject:     "Заявка на удаляемое оборудование",
		RequestType: entities.RequestTypeCorrective,
		EquipmentID: equipmentID,
		DetectedBy:  uuid.New(),
		Stage:       entities.RequestStageNew,
	}
	require.NoError(t, env.requestRepo.CreateInTx(ctx, nil, request))

	require.NoError(t, env.service.DeleteEquipment(ctx, equipmentID))

	_, err := env.requestRepo.FindRequest(ctx, request.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = env.service.FindEquipment(ctx, equipmentID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
