package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

const requestTable = "maintenance_requests"

const requestDetailColumns = `r.id, r.subject, r.description, r.request_type, r.equipment_id,
	r.detected_by, r.assigned_to, r.scheduled_date, r.stage, r.overdue, r.created_at,
	e.name, e.category, e.location, e.maintenance_team_id, mt.name, u.name, tu.name`

const requestDetailJoins = `
	FROM maintenance_requests r
	JOIN equipment e ON e.id = r.equipment_id
	JOIN maintenance_teams mt ON mt.id = e.maintenance_team_id
	JOIN users u ON u.id = r.detected_by
	LEFT JOIN technicians t ON t.id = r.assigned_to
	LEFT JOIN users tu ON tu.id = t.user_id`

var requestAllowedFilterFields = map[string]string{
	"equipment_id": "r.equipment_id",
	"assigned_to":  "r.assigned_to",
	"stage":        "r.stage",
	"request_type": "r.request_type",
}

// RequestDetailRow - строка заявки, обогащённая данными соседних таблиц.
type RequestDetailRow struct {
	entities.MaintenanceRequest
	EquipmentName       string
	EquipmentCategory   null.String
	EquipmentLocation   null.String
	MaintenanceTeamID   uuid.UUID
	MaintenanceTeamName string
	DetectedByName      string
	AssignedToName      null.String
}

type RequestRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, request *entities.MaintenanceRequest) error
	FindRequest(ctx context.Context, id uuid.UUID) (*entities.MaintenanceRequest, error)
	FindRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.MaintenanceRequest, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, request *entities.MaintenanceRequest) error
	FindRequestDetail(ctx context.Context, id uuid.UUID) (*RequestDetailRow, error)
	GetRequests(ctx context.Context, filter types.Filter) ([]RequestDetailRow, uint64, error)
	GetOverdueRequests(ctx context.Context, now time.Time) ([]RequestDetailRow, error)
	GetCalendarRequests(ctx context.Context, start, end time.Time) ([]RequestDetailRow, error)
	DeleteInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	DeleteByEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) error
	ClearAssignedTechnicianInTx(ctx context.Context, tx pgx.Tx, technicianID uuid.UUID) error
}

type RequestRepository struct {
	storage *pgxpool.Pool
}

func NewRequestRepository(storage *pgxpool.Pool) RequestRepositoryInterface {
	return &RequestRepository{storage: storage}
}

func (r *RequestRepository) CreateInTx(ctx context.Context, tx pgx.Tx, request *entities.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests
			(subject, description, request_type, equipment_id, detected_by, assigned_to, scheduled_date, stage, overdue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`
	err := tx.QueryRow(ctx, query,
		request.Subject,
		request.Description,
		request.RequestType,
		request.EquipmentID,
		request.DetectedBy,
		request.AssignedTo,
		request.ScheduledDate,
		request.Stage,
		request.Overdue,
	).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания заявки: %w", err)
	}
	return nil
}

func scanRequest(row pgx.Row) (*entities.MaintenanceRequest, error) {
	var req entities.MaintenanceRequest
	err := row.Scan(
		&req.ID, &req.Subject, &req.Description, &req.RequestType, &req.EquipmentID,
		&req.DetectedBy, &req.AssignedTo, &req.ScheduledDate, &req.Stage, &req.Overdue, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
	}
	return &req, nil
}

const requestColumns = `id, subject, description, request_type, equipment_id,
	detected_by, assigned_to, scheduled_date, stage, overdue, created_at`

func findRequestBy(ctx context.Context, q querier, id uuid.UUID, lock bool) (*entities.MaintenanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, requestColumns, requestTable)
	if lock {
		query += " FOR UPDATE"
	}
	return scanRequest(q.QueryRow(ctx, query, id))
}

func (r *RequestRepository) FindRequest(ctx context.Context, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	return findRequestBy(ctx, r.storage, id, false)
}

// FindRequestForUpdateInTx блокирует строку заявки до конца транзакции.
// Так конкурирующие обновления одной заявки выполняются строго по очереди,
// и каждая запись аудита видит настоящую предыдущую стадию.
func (r *RequestRepository) FindRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.MaintenanceRequest, error) {
	return findRequestBy(ctx, tx, id, true)
}

func (r *RequestRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, request *entities.MaintenanceRequest) error {
	query := `
		UPDATE maintenance_requests
		SET subject = $1, description = $2, request_type = $3, assigned_to = $4,
			scheduled_date = $5, stage = $6, overdue = $7
		WHERE id = $8`
	tag, err := tx.Exec(ctx, query,
		request.Subject,
		request.Description,
		request.RequestType,
		request.AssignedTo,
		request.ScheduledDate,
		request.Stage,
		request.Overdue,
		request.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanRequestDetail(rows pgx.Rows) ([]RequestDetailRow, error) {
	var result []RequestDetailRow
	for rows.Next() {
		var row RequestDetailRow
		if err := rows.Scan(
			&row.ID, &row.Subject, &row.Description, &row.RequestType, &row.EquipmentID,
			&row.DetectedBy, &row.AssignedTo, &row.ScheduledDate, &row.Stage, &row.Overdue, &row.CreatedAt,
			&row.EquipmentName, &row.EquipmentCategory, &row.EquipmentLocation,
			&row.MaintenanceTeamID, &row.MaintenanceTeamName, &row.DetectedByName, &row.AssignedToName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *RequestRepository) FindRequestDetail(ctx context.Context, id uuid.UUID) (*RequestDetailRow, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.id = $1`, requestDetailColumns, requestDetailJoins)
	rows, err := r.storage.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := scanRequestDetail(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &result[0], nil
}

func (r *RequestRepository) buildListQuery(filter types.Filter) (string, []interface{}, string, []interface{}, error) {
	builder := sq.Select(requestDetailColumns).
		From("maintenance_requests r").
		Join("equipment e ON e.id = r.equipment_id").
		Join("maintenance_teams mt ON mt.id = e.maintenance_team_id").
		Join("users u ON u.id = r.detected_by").
		LeftJoin("technicians t ON t.id = r.assigned_to").
		LeftJoin("users tu ON tu.id = t.user_id").
		PlaceholderFormat(sq.Dollar)

	countBuilder := sq.Select("COUNT(*)").From("maintenance_requests r").PlaceholderFormat(sq.Dollar)

	for key, value := range filter.Filter {
		column, ok := requestAllowedFilterFields[key]
		if !ok {
			continue
		}
		items := strings.Split(fmt.Sprintf("%v", value), ",")
		if len(items) > 1 {
			builder = builder.Where(sq.Eq{column: items})
			countBuilder = countBuilder.Where(sq.Eq{column: items})
		} else {
			builder = builder.Where(sq.Eq{column: value})
			countBuilder = countBuilder.Where(sq.Eq{column: value})
		}
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		cond := sq.Or{
			sq.ILike{"r.subject": pattern},
			sq.ILike{"r.description": pattern},
		}
		builder = builder.Where(cond)
		countBuilder = countBuilder.Where(cond)
	}

	builder = builder.OrderBy("r.created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, "", nil, err
	}
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return "", nil, "", nil, err
	}
	return query, args, countQuery, countArgs, nil
}

func (r *RequestRepository) GetRequests(ctx context.Context, filter types.Filter) ([]RequestDetailRow, uint64, error) {
	query, args, countQuery, countArgs, err := r.buildListQuery(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []RequestDetailRow{}, 0, nil
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanRequestDetail(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// GetOverdueRequests отбирает по условию "запланировано раньше, чем сейчас, и
// стадия открыта", игнорируя сохранённый флаг overdue.
func (r *RequestRepository) GetOverdueRequests(ctx context.Context, now time.Time) ([]RequestDetailRow, error) {
	query := fmt.Sprintf(`SELECT %s %s
		WHERE r.scheduled_date < $1 AND r.stage IN ('new', 'in_progress')
		ORDER BY r.scheduled_date ASC`, requestDetailColumns, requestDetailJoins)
	rows, err := r.storage.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequestDetail(rows)
}

func (r *RequestRepository) GetCalendarRequests(ctx context.Context, start, end time.Time) ([]RequestDetailRow, error) {
	query := fmt.Sprintf(`SELECT %s %s
		WHERE r.scheduled_date BETWEEN $1 AND $2
		ORDER BY r.scheduled_date ASC`, requestDetailColumns, requestDetailJoins)
	rows, err := r.storage.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequestDetail(rows)
}

func (r *RequestRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM maintenance_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *RequestRepository) DeleteByEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM maintenance_requests WHERE equipment_id = $1`, equipmentID)
	return err
}

// ClearAssignedTechnicianInTx снимает назначение с заявок техника.
// Сами заявки при удалении техника не трогаем.
func (r *RequestRepository) ClearAssignedTechnicianInTx(ctx context.Context, tx pgx.Tx, technicianID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE maintenance_requests SET assigned_to = NULL WHERE assigned_to = $1`, technicianID)
	return err
}
