package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/contextkeys"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

// Фейки держат всё в памяти, чтобы проверять движок жизненного цикла
// без поднятия Postgres.

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakeTxManager struct{}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeRequestRepo struct {
	requests map[uuid.UUID]*entities.MaintenanceRequest
	details  map[uuid.UUID]*repositories.RequestDetailRow
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[uuid.UUID]*entities.MaintenanceRequest),
		details:  make(map[uuid.UUID]*repositories.RequestDetailRow),
	}
}

func (r *fakeRequestRepo) syncDetail(req *entities.MaintenanceRequest) {
	copied := *req
	r.details[req.ID] = &repositories.RequestDetailRow{
		MaintenanceRequest:  copied,
		EquipmentName:       "Станок",
		MaintenanceTeamID:   uuid.New(),
		MaintenanceTeamName: "Механики",
		DetectedByName:      "Тестовый пользователь",
	}
}

func (r *fakeRequestRepo) CreateInTx(ctx context.Context, tx pgx.Tx, request *entities.MaintenanceRequest) error {
	request.ID = uuid.New()
	request.CreatedAt = time.Now().UTC()
	copied := *request
	r.requests[request.ID] = &copied
	r.syncDetail(request)
	return nil
}

func (r *fakeRequestRepo) FindRequest(ctx context.Context, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRequestRepo) FindRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	return r.FindRequest(ctx, id)
}

func (r *fakeRequestRepo) UpdateInTx(ctx context.Context, tx pgx.Tx, request *entities.MaintenanceRequest) error {
	if _, ok := r.requests[request.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *request
	r.requests[request.ID] = &copied
	r.syncDetail(request)
	return nil
}

func (r *fakeRequestRepo) FindRequestDetail(ctx context.Context, id uuid.UUID) (*repositories.RequestDetailRow, error) {
	row, ok := r.details[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeRequestRepo) GetRequests(ctx context.Context, filter types.Filter) ([]repositories.RequestDetailRow, uint64, error) {
	var result []repositories.RequestDetailRow
	for _, row := range r.details {
		result = append(result, *row)
	}
	return result, uint64(len(result)), nil
}

func (r *fakeRequestRepo) GetOverdueRequests(ctx context.Context, now time.Time) ([]repositories.RequestDetailRow, error) {
	var result []repositories.RequestDetailRow
	for _, row := range r.details {
		if row.ScheduledDate.Valid && row.ScheduledDate.Time.Before(now) && row.Stage.IsOpen() {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (r *fakeRequestRepo) GetCalendarRequests(ctx context.Context, start, end time.Time) ([]repositories.RequestDetailRow, error) {
	var result []repositories.RequestDetailRow
	for _, row := range r.details {
		if !row.ScheduledDate.Valid {
			continue
		}
		d := row.ScheduledDate.Time
		if !d.Before(start) && !d.After(end) {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (r *fakeRequestRepo) DeleteInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, ok := r.requests[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.requests, id)
	delete(r.details, id)
	return nil
}

func (r *fakeRequestRepo) DeleteByEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) error {
	for id, req := range r.requests {
		if req.EquipmentID == equipmentID {
			delete(r.requests, id)
			delete(r.details, id)
		}
	}
	return nil
}

func (r *fakeRequestRepo) ClearAssignedTechnicianInTx(ctx context.Context, tx pgx.Tx, technicianID uuid.UUID) error {
	for _, req := range r.requests {
		if req.AssignedTo.Valid && req.AssignedTo.UUID == technicianID {
			req.AssignedTo = uuid.NullUUID{}
			r.syncDetail(req)
		}
	}
	return nil
}

type fakeAuditRepo struct {
	entries []entities.RequestAuditLog
}

func (r *fakeAuditRepo) CreateInTx(ctx context.Context, tx pgx.Tx, log *entities.RequestAuditLog) error {
	log.ID = uuid.New()
	log.ChangedAt = time.Now().UTC()
	r.entries = append(r.entries, *log)
	return nil
}

func (r *fakeAuditRepo) GetAuditLogs(ctx context.Context, requestID uuid.NullUUID, filter types.Filter) ([]repositories.AuditLogItem, uint64, error) {
	var result []repositories.AuditLogItem
	for _, e := range r.entries {
		if requestID.Valid && e.RequestID != requestID.UUID {
			continue
		}
		result = append(result, repositories.AuditLogItem{RequestAuditLog: e, ChangedByName: "Тестовый пользователь"})
	}
	return result, uint64(len(result)), nil
}

func (r *fakeAuditRepo) DeleteByRequestInTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) error {
	var kept []entities.RequestAuditLog
	for _, e := range r.entries {
		if e.RequestID != requestID {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

func (r *fakeAuditRepo) DeleteByEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) error {
	return nil
}

func (r *fakeAuditRepo) forRequest(id uuid.UUID) []entities.RequestAuditLog {
	var result []entities.RequestAuditLog
	for _, e := range r.entries {
		if e.RequestID == id {
			result = append(result, e)
		}
	}
	return result
}

type fakeTimeLogRepo struct {
	logs map[uuid.UUID]*entities.TimeLog
}

func newFakeTimeLogRepo() *fakeTimeLogRepo {
	return &fakeTimeLogRepo{logs: make(map[uuid.UUID]*entities.TimeLog)}
}

func (r *fakeTimeLogRepo) CreateTimeLog(ctx context.Context, log *entities.TimeLog) error {
	log.ID = uuid.New()
	copied := *log
	r.logs[log.ID] = &copied
	return nil
}

func (r *fakeTimeLogRepo) FindTimeLog(ctx context.Context, id uuid.UUID) (*repositories.TimeLogItem, error) {
	log, ok := r.logs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &repositories.TimeLogItem{TimeLog: *log, RequestSubject: "Тестовая заявка", TechnicianName: "Тестовый техник"}, nil
}

func (r *fakeTimeLogRepo) GetTimeLogs(ctx context.Context, requestID, technicianID uuid.NullUUID, filter types.Filter) ([]repositories.TimeLogItem, uint64, error) {
	var result []repositories.TimeLogItem
	for _, log := range r.logs {
		if requestID.Valid && log.RequestID != requestID.UUID {
			continue
		}
		if technicianID.Valid && log.TechnicianID != technicianID.UUID {
			continue
		}
		result = append(result, repositories.TimeLogItem{TimeLog: *log, RequestSubject: "Тестовая заявка", TechnicianName: "Тестовый техник"})
	}
	return result, uint64(len(result)), nil
}

func (r *fakeTimeLogRepo) UpdateTimeLog(ctx context.Context, log *entities.TimeLog) error {
	if _, ok := r.logs[log.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *log
	r.logs[log.ID] = &copied
	return nil
}

func (r *fakeTimeLogRepo) DeleteTimeLog(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.logs[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.logs, id)
	return nil
}

func (r *fakeTimeLogRepo) DeleteByRequestInTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) error {
	for id, log := range r.logs {
		if log.RequestID == requestID {
			delete(r.logs, id)
		}
	}
	return nil
}

func (r *fakeTimeLogRepo) DeleteByEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) error {
	return nil
}

type fakeEquipmentRepo struct {
	equipment map[uuid.UUID]*entities.Equipment
}

func newFakeEquipmentRepo() *fakeEquipmentRepo {
	return &fakeEquipmentRepo{equipment: make(map[uuid.UUID]*entities.Equipment)}
}

func (r *fakeEquipmentRepo) add() uuid.UUID {
	id := uuid.New()
	r.equipment[id] = &entities.Equipment{
		ID:           id,
		Name:         "Станок",
		SerialNumber: "SN-" + id.String()[:8],
		Status:       entities.EquipmentStatusActive,
	}
	return id
}

func (r *fakeEquipmentRepo) CreateEquipment(ctx context.Context, equipment *entities.Equipment) error {
	equipment.ID = uuid.New()
	copied := *equipment
	r.equipment[equipment.ID] = &copied
	return nil
}

func (r *fakeEquipmentRepo) FindEquipment(ctx context.Context, id uuid.UUID) (*entities.Equipment, error) {
	e, ok := r.equipment[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEquipmentRepo) FindEquipmentDetail(ctx context.Context, id uuid.UUID) (*repositories.EquipmentDetailRow, error) {
	e, ok := r.equipment[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &repositories.EquipmentDetailRow{Equipment: *e, DepartmentName: "Цех", MaintenanceTeamName: "Механики"}, nil
}

func (r *fakeEquipmentRepo) FindAutoFill(ctx context.Context, id uuid.UUID) (*repositories.EquipmentAutoFillRow, error) {
	e, ok := r.equipment[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &repositories.EquipmentAutoFillRow{
		Category:            e.Category,
		MaintenanceTeamID:   e.MaintenanceTeamID,
		MaintenanceTeamName: "Механики",
		Location:            e.Location,
	}, nil
}

func (r *fakeEquipmentRepo) GetEquipmentList(ctx context.Context, filter types.Filter) ([]repositories.EquipmentDetailRow, uint64, error) {
	var result []repositories.EquipmentDetailRow
	for _, e := range r.equipment {
		result = append(result, repositories.EquipmentDetailRow{Equipment: *e, DepartmentName: "Цех", MaintenanceTeamName: "Механики"})
	}
	return result, uint64(len(result)), nil
}

func (r *fakeEquipmentRepo) GetCategories(ctx context.Context) ([]string, error) {
	return []string{"станки"}, nil
}

func (r *fakeEquipmentRepo) CountRequests(ctx context.Context, id uuid.UUID) (uint64, uint64, error) {
	return 0, 0, nil
}

func (r *fakeEquipmentRepo) CountByDepartment(ctx context.Context, departmentID uuid.UUID) (uint64, error) {
	var count uint64
	for _, e := range r.equipment {
		if e.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeEquipmentRepo) CountByTeam(ctx context.Context, teamID uuid.UUID) (uint64, error) {
	var count uint64
	for _, e := range r.equipment {
		if e.MaintenanceTeamID == teamID {
			count++
		}
	}
	return count, nil
}

func (r *fakeEquipmentRepo) UpdateEquipment(ctx context.Context, equipment *entities.Equipment) error {
	if _, ok := r.equipment[equipment.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *equipment
	r.equipment[equipment.ID] = &copied
	return nil
}

func (r *fakeEquipmentRepo) DeleteInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, ok := r.equipment[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.equipment, id)
	return nil
}

type fakeTechnicianRepo struct {
	technicians map[uuid.UUID]*entities.Technician
}

func newFakeTechnicianRepo() *fakeTechnicianRepo {
	return &fakeTechnicianRepo{technicians: make(map[uuid.UUID]*entities.Technician)}
}

func (r *fakeTechnicianRepo) add(teamID uuid.UUID) uuid.UUID {
	id := uuid.New()
	r.technicians[id] = &entities.Technician{ID: id, UserID: uuid.New(), TeamID: teamID, IsActive: true}
	return id
}

func (r *fakeTechnicianRepo) CreateTechnician(ctx context.Context, technician *entities.Technician) error {
	technician.ID = uuid.New()
	copied := *technician
	r.technicians[technician.ID] = &copied
	return nil
}

func (r *fakeTechnicianRepo) FindTechnician(ctx context.Context, id uuid.UUID) (*entities.Technician, error) {
	t, ok := r.technicians[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTechnicianRepo) FindTechnicianDetail(ctx context.Context, id uuid.UUID) (*repositories.TechnicianDetailRow, error) {
	t, ok := r.technicians[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &repositories.TechnicianDetailRow{Technician: *t, UserName: "Тестовый техник", TeamName: "Механики"}, nil
}

func (r *fakeTechnicianRepo) GetTechnicians(ctx context.Context, filter types.Filter) ([]repositories.TechnicianDetailRow, uint64, error) {
	var result []repositories.TechnicianDetailRow
	for _, t := range r.technicians {
		result = append(result, repositories.TechnicianDetailRow{Technician: *t, UserName: "Тестовый техник", TeamName: "Механики"})
	}
	return result, uint64(len(result)), nil
}

func (r *fakeTechnicianRepo) CountByTeam(ctx context.Context, teamID uuid.UUID) (uint64, error) {
	var count uint64
	for _, t := range r.technicians {
		if t.TeamID == teamID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTechnicianRepo) UpdateTechnician(ctx context.Context, technician *entities.Technician) error {
	if _, ok := r.technicians[technician.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *technician
	r.technicians[technician.ID] = &copied
	return nil
}

func (r *fakeTechnicianRepo) DeleteInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, ok := r.technicians[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.technicians, id)
	return nil
}

func actorContext() (context.Context, uuid.UUID) {
	actorID := uuid.New()
	return context.WithValue(context.Background(), contextkeys.UserIDKey, actorID), actorID
}

func strPtr(s string) *string { return &s }

func datePtr(t time.Time) *string {
	s := t.Format(dateLayout)
	return &s
}
