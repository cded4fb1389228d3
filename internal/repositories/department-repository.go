package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
)

type DepartmentRepositoryInterface interface {
	CreateDepartment(ctx context.Context, department *entities.Department) error
	FindDepartment(ctx context.Context, id uuid.UUID) (*entities.Department, error)
	GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error)
	UpdateDepartment(ctx context.Context, department *entities.Department) error
	DeleteDepartment(ctx context.Context, id uuid.UUID) error
}

type DepartmentRepository struct {
	storage *pgxpool.Pool
}

func NewDepartmentRepository(storage *pgxpool.Pool) DepartmentRepositoryInterface {
	return &DepartmentRepository{storage: storage}
}

func (r *DepartmentRepository) CreateDepartment(ctx context.Context, department *entities.Department) error {
	err := r.storage.QueryRow(ctx,
		`INSERT INTO departments (name, description) VALUES ($1, $2) RETURNING id`,
		department.Name, department.Description,
	).Scan(&department.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(
				fmt.Sprintf("отдел с названием '%s' уже существует", department.Name))
		}
		return fmt.Errorf("ошибка создания отдела: %w", err)
	}
	return nil
}

func (r *DepartmentRepository) FindDepartment(ctx context.Context, id uuid.UUID) (*entities.Department, error) {
	var d entities.Department
	err := r.storage.QueryRow(ctx,
		`SELECT id, name, description FROM departments WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования отдела: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error) {
	builder := sq.Select("id", "name", "description").
		From("departments").
		PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From("departments").PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		cond := sq.ILike{"name": "%" + filter.Search + "%"}
		builder = builder.Where(cond)
		countBuilder = countBuilder.Where(cond)
	}

	builder = builder.OrderBy("name ASC").
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
		return []entities.Department{}, 0, nil
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

	var result []entities.Department
	for rows.Next() {
		var d entities.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования отдела: %w", err)
		}
		result = append(result, d)
	}
	return result, total, rows.Err()
}

func (r *DepartmentRepository) UpdateDepartment(ctx context.Context, department *entities.Department) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE departments SET name = $1, description = $2 WHERE id = $3`,
		department.Name, department.Description, department.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(
				fmt.Sprintf("отдел с названием '%s' уже существует", department.Name))
		}
		return fmt.Errorf("ошибка обновления отдела: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DepartmentRepository) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
