package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearguard/internal/entities"
	"gearguard/pkg/types"
)

var testPool *pgxpool.Pool

// TestMain подключается к тестовой БД, если она указана. Без TEST_DATABASE_URL
// интеграционные тесты пропускаются, схему должна накатить миграция goose.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		var err error
		testPool, err = pgxpool.New(context.Background(), dsn)
		if err != nil {
			panic("не удалось подключиться к тестовой БД: " + err.Error())
		}
		defer testPool.Close()
	}
	os.Exit(m.Run())
}

func requireTestDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан, интеграционный тест пропущен")
	}
}

func cleanupTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE TABLE time_logs, request_audit_logs, maintenance_requests, equipment,
			technicians, maintenance_teams, departments, users CASCADE`)
	require.NoError(t, err, "не удалось очистить таблицы")
}

// seedBase создаёт минимальный набор справочников для заявки.
func seedBase(t *testing.T) (userID, equipmentID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	err := testPool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name) VALUES ('test@example.com', 'x', 'Тестовый пользователь') RETURNING id`,
	).Scan(&userID)
	require.NoError(t, err)

	var departmentID, teamID uuid.UUID
	err = testPool.QueryRow(ctx,
		`INSERT INTO departments (name) VALUES ('Механический цех') RETURNING id`).Scan(&departmentID)
	require.NoError(t, err)
	err = testPool.QueryRow(ctx,
		`INSERT INTO maintenance_teams (name) VALUES ('Механики') RETURNING id`).Scan(&teamID)
	require.NoError(t, err)

	err = testPool.QueryRow(ctx, `
		INSERT INTO equipment (name, serial_number, department_id, maintenance_team_id)
		VALUES ('Токарный станок', 'SN-001', $1, $2) RETURNING id`,
		departmentID, teamID).Scan(&equipmentID)
	require.NoError(t, err)
	return
}

func TestRequestRepository_CreateAndAuditInOneTx(t *testing.T) {
	requireTestDB(t)
	cleanupTables(t)
	ctx := context.Background()
	userID, equipmentID := seedBase(t)

	requestRepo := NewRequestRepository(testPool)
	auditRepo := NewRequestAuditLogRepository(testPool)
	txManager := NewTxManager(testPool)

	request := &entities.MaintenanceRequest{
		Subject:     "Не крутится шпиндель",
		RequestType: entities.RequestTypeCorrective,
		EquipmentID: equipmentID,
		DetectedBy:  userID,
		Stage:       entities.RequestStageNew,
	}
	err := txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := requestRepo.CreateInTx(ctx, tx, request); err != nil {
			return err
		}
		return auditRepo.CreateInTx(ctx, tx, &entities.RequestAuditLog{
			RequestID: request.ID,
			NewStage:  entities.RequestStageNew,
			ChangedBy: userID,
		})
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, request.ID)

	logs, total, err := auditRepo.GetAuditLogs(ctx,
		uuid.NullUUID{UUID: request.ID, Valid: true}, testFilter())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].OldStage.Valid)
	assert.Equal(t, entities.RequestStageNew, logs[0].NewStage)
	assert.False(t, logs[0].ChangedAt.IsZero(), "время изменения должна проставить БД")
}

func TestRequestRepository_GetOverdueRequests(t *testing.T) {
	requireTestDB(t)
	cleanupTables(t)
	ctx := context.Background()
	userID, equipmentID := seedBase(t)

	requestRepo := NewRequestRepository(testPool)
	txManager := NewTxManager(testPool)

	now := time.Now().UTC()
	insert := func(subject string, scheduled null.Time, stage entities.RequestStage) {
		t.Helper()
		req := &entities.MaintenanceRequest{
			Subject:       subject,
			RequestType:   entities.RequestTypePreventive,
			EquipmentID:   equipmentID,
			DetectedBy:    userID,
			ScheduledDate: scheduled,
			Stage:         stage,
		}
		require.NoError(t, txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return requestRepo.CreateInTx(ctx, tx, req)
		}))
	}

	insert("просрочена, открыта", null.TimeFrom(now.AddDate(0, 0, -2)), entities.RequestStageNew)
	insert("просрочена, но закрыта", null.TimeFrom(now.AddDate(0, 0, -2)), entities.RequestStageRepaired)
	insert("ещё не наступила", null.TimeFrom(now.AddDate(0, 0, 2)), entities.RequestStageNew)

	overdue, err := requestRepo.GetOverdueRequests(ctx, now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "просрочена, открыта", overdue[0].Subject)
}

func testFilter() types.Filter {
	return types.Filter{Limit: 100}
}
