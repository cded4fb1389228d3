package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

const equipmentTable = "equipment"

const equipmentColumns = `e.id, e.name, e.serial_number, e.category, e.purchase_date,
	e.warranty_expiry, e.location, e.assigned_employee, e.department_id, e.maintenance_team_id, e.status`

var equipmentAllowedFilterFields = map[string]string{
	"department_id": "e.department_id",
	"team_id":       "e.maintenance_team_id",
	"category":      "e.category",
	"status":        "e.status",
}

// EquipmentDetailRow - карточка оборудования с именами владельцев и живыми
// счётчиками заявок (total / open).
type EquipmentDetailRow struct {
	entities.Equipment
	DepartmentName      string
	MaintenanceTeamName string
	RequestCount        uint64
	OpenRequestCount    uint64
}

// EquipmentAutoFillRow - проекция для автозаполнения формы новой заявки.
type EquipmentAutoFillRow struct {
	Category            null.String
	MaintenanceTeamID   uuid.UUID
	MaintenanceTeamName string
	Location            null.String
}

type EquipmentRepositoryInterface interface {
	CreateEquipment(ctx context.Context, equipment *entities.Equipment) error
	FindEquipment(ctx context.Context, id uuid.UUID) (*entities.Equipment, error)
	FindEquipmentDetail(ctx context.Context, id uuid.UUID) (*EquipmentDetailRow, error)
	FindAutoFill(ctx context.Context, id uuid.UUID) (*EquipmentAutoFillRow, error)
	GetEquipmentList(ctx context.Context, filter types.Filter) ([]EquipmentDetailRow, uint64, error)
	GetCategories(ctx context.Context) ([]string, error)
	CountRequests(ctx context.Context, id uuid.UUID) (total uint64, open uint64, err error)
	CountByDepartment(ctx context.Context, departmentID uuid.UUID) (uint64, error)
	CountByTeam(ctx context.Context, teamID uuid.UUID) (uint64, error)
	UpdateEquipment(ctx context.Context, equipment *entities.Equipment) error
	DeleteInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment *entities.Equipment) error {
	query := `
		INSERT INTO equipment
			(name, serial_number, category, purchase_date, warranty_expiry, location,
			 assigned_employee, department_id, maintenance_team_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.storage.QueryRow(ctx, query,
		equipment.Name, equipment.SerialNumber, equipment.Category,
		equipment.PurchaseDate, equipment.WarrantyExpiry, equipment.Location,
		equipment.AssignedEmployee, equipment.DepartmentID, equipment.MaintenanceTeamID, equipment.Status,
	).Scan(&equipment.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(
				fmt.Sprintf("оборудование с серийным номером '%s' уже существует", equipment.SerialNumber))
		}
		return fmt.Errorf("ошибка создания оборудования: %w", err)
	}
	return nil
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	err := row.Scan(
		&e.ID, &e.Name, &e.SerialNumber, &e.Category, &e.PurchaseDate,
		&e.WarrantyExpiry, &e.Location, &e.AssignedEmployee,
		&e.DepartmentID, &e.MaintenanceTeamID, &e.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования equipment: %w", err)
	}
	return &e, nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uuid.UUID) (*entities.Equipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s e WHERE e.id = $1`, equipmentColumns, equipmentTable)
	return scanEquipment(r.storage.QueryRow(ctx, query, id))
}

const equipmentDetailColumns = equipmentColumns + `, d.name, mt.name,
	(SELECT COUNT(*) FROM maintenance_requests r WHERE r.equipment_id = e.id),
	(SELECT COUNT(*) FROM maintenance_requests r WHERE r.equipment_id = e.id AND r.stage IN ('new', 'in_progress'))`

const equipmentDetailJoins = `
	FROM equipment e
	JOIN departments d ON d.id = e.department_id
	JOIN maintenance_teams mt ON mt.id = e.maintenance_team_id`

func scanEquipmentDetail(rows pgx.Rows) ([]EquipmentDetailRow, error) {
	var result []EquipmentDetailRow
	for rows.Next() {
		var row EquipmentDetailRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.SerialNumber, &row.Category, &row.PurchaseDate,
			&row.WarrantyExpiry, &row.Location, &row.AssignedEmployee,
			&row.DepartmentID, &row.MaintenanceTeamID, &row.Status,
			&row.DepartmentName, &row.MaintenanceTeamName,
			&row.RequestCount, &row.OpenRequestCount,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования equipment: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *EquipmentRepository) FindEquipmentDetail(ctx context.Context, id uuid.UUID) (*EquipmentDetailRow, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE e.id = $1`, equipmentDetailColumns, equipmentDetailJoins)
	rows, err := r.storage.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := scanEquipmentDetail(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &result[0], nil
}

func (r *EquipmentRepository) FindAutoFill(ctx context.Context, id uuid.UUID) (*EquipmentAutoFillRow, error) {
	query := `
		SELECT e.category, e.maintenance_team_id, mt.name, e.location
		FROM equipment e
		JOIN maintenance_teams mt ON mt.id = e.maintenance_team_id
		WHERE e.id = $1`
	var row EquipmentAutoFillRow
	err := r.storage.QueryRow(ctx, query, id).Scan(
		&row.Category, &row.MaintenanceTeamID, &row.MaintenanceTeamName, &row.Location,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения данных автозаполнения: %w", err)
	}
	return &row, nil
}

func (r *EquipmentRepository) GetEquipmentList(ctx context.Context, filter types.Filter) ([]EquipmentDetailRow, uint64, error) {
	builder := sq.Select(equipmentDetailColumns).
		From("equipment e").
		Join("departments d ON d.id = e.department_id").
		Join("maintenance_teams mt ON mt.id = e.maintenance_team_id").
		PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From("equipment e").PlaceholderFormat(sq.Dollar)

	for key, value := range filter.Filter {
		column, ok := equipmentAllowedFilterFields[key]
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
			sq.ILike{"e.name": pattern},
			sq.ILike{"e.serial_number": pattern},
			sq.ILike{"e.location": pattern},
			sq.ILike{"e.assigned_employee": pattern},
		}
		builder = builder.Where(cond)
		countBuilder = countBuilder.Where(cond)
	}

	builder = builder.OrderBy("e.name ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []EquipmentDetailRow{}, 0, nil
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanEquipmentDetail(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *EquipmentRepository) GetCategories(ctx context.Context) ([]string, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT DISTINCT category FROM equipment WHERE category IS NOT NULL ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CountRequests считается заново при каждом вызове: счётчики заявок должны
// отражать живое состояние, их нельзя кешировать.
func (r *EquipmentRepository) CountRequests(ctx context.Context, id uuid.UUID) (uint64, uint64, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE stage IN ('new', 'in_progress'))
		FROM maintenance_requests
		WHERE equipment_id = $1`
	var total, open uint64
	if err := r.storage.QueryRow(ctx, query, id).Scan(&total, &open); err != nil {
		return 0, 0, err
	}
	return total, open, nil
}

func (r *EquipmentRepository) CountByDepartment(ctx context.Context, departmentID uuid.UUID) (uint64, error) {
	var count uint64
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM equipment WHERE department_id = $1`, departmentID).Scan(&count)
	return count, err
}

func (r *EquipmentRepository) CountByTeam(ctx context.Context, teamID uuid.UUID) (uint64, error) {
	var count uint64
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM equipment WHERE maintenance_team_id = $1`, teamID).Scan(&count)
	return count, err
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, equipment *entities.Equipment) error {
	query := `
		UPDATE equipment
		SET name = $1, serial_number = $2, category = $3, purchase_date = $4,
			warranty_expiry = $5, location = $6, assigned_employee = $7,
			department_id = $8, maintenance_team_id = $9, status = $10
		WHERE id = $11`
	tag, err := r.storage.Exec(ctx, query,
		equipment.Name, equipment.SerialNumber, equipment.Category,
		equipment.PurchaseDate, equipment.WarrantyExpiry, equipment.Location,
		equipment.AssignedEmployee, equipment.DepartmentID, equipment.MaintenanceTeamID,
		equipment.Status, equipment.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(
				fmt.Sprintf("оборудование с серийным номером '%s' уже существует", equipment.SerialNumber))
		}
		return fmt.Errorf("ошибка обновления оборудования: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
