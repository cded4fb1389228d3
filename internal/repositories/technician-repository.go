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

// TechnicianDetailRow - техник вместе с именем пользователя и названием команды.
type TechnicianDetailRow struct {
	entities.Technician
	UserName string
	TeamName string
}

var technicianAllowedFilterFields = map[string]string{
	"team_id":   "t.team_id",
	"is_active": "t.is_active",
}

type TechnicianRepositoryInterface interface {
	CreateTechnician(ctx context.Context, technician *entities.Technician) error
	FindTechnician(ctx context.Context, id uuid.UUID) (*entities.Technician, error)
	FindTechnicianDetail(ctx context.Context, id uuid.UUID) (*TechnicianDetailRow, error)
	GetTechnicians(ctx context.Context, filter types.Filter) ([]TechnicianDetailRow, uint64, error)
	CountByTeam(ctx context.Context, teamID uuid.UUID) (uint64, error)
	UpdateTechnician(ctx context.Context, technician *entities.Technician) error
	DeleteInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

type TechnicianRepository struct {
	storage *pgxpool.Pool
}

func NewTechnicianRepository(storage *pgxpool.Pool) TechnicianRepositoryInterface {
	return &TechnicianRepository{storage: storage}
}

func (r *TechnicianRepository) CreateTechnician(ctx context.Context, technician *entities.Technician) error {
	err := r.storage.QueryRow(ctx,
		`INSERT INTO technicians (user_id, team_id, is_active) VALUES ($1, $2, $3) RETURNING id`,
		technician.UserID, technician.TeamID, technician.IsActive,
	).Scan(&technician.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("этот пользователь уже является техником")
		}
		return fmt.Errorf("ошибка создания техника: %w", err)
	}
	return nil
}

func (r *TechnicianRepository) FindTechnician(ctx context.Context, id uuid.UUID) (*entities.Technician, error) {
	var t entities.Technician
	err := r.storage.QueryRow(ctx,
		`SELECT id, user_id, team_id, is_active FROM technicians WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.TeamID, &t.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования техника: %w", err)
	}
	return &t, nil
}

func (r *TechnicianRepository) FindTechnicianDetail(ctx context.Context, id uuid.UUID) (*TechnicianDetailRow, error) {
	query := `
		SELECT t.id, t.user_id, t.team_id, t.is_active, u.name, mt.name
		FROM technicians t
		JOIN users u ON u.id = t.user_id
		JOIN maintenance_teams mt ON mt.id = t.team_id
		WHERE t.id = $1`
	var row TechnicianDetailRow
	err := r.storage.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.UserID, &row.TeamID, &row.IsActive, &row.UserName, &row.TeamName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования техника: %w", err)
	}
	return &row, nil
}

func (r *TechnicianRepository) GetTechnicians(ctx context.Context, filter types.Filter) ([]TechnicianDetailRow, uint64, error) {
	builder := sq.Select("t.id", "t.user_id", "t.team_id", "t.is_active", "u.name", "mt.name").
		From("technicians t").
		Join("users u ON u.id = t.user_id").
		Join("maintenance_teams mt ON mt.id = t.team_id").
		PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From("technicians t").PlaceholderFormat(sq.Dollar)

	for key, value := range filter.Filter {
		column, ok := technicianAllowedFilterFields[key]
		if !ok {
			continue
		}
		builder = builder.Where(sq.Eq{column: value})
		countBuilder = countBuilder.Where(sq.Eq{column: value})
	}

	if filter.Search != "" {
		cond := sq.ILike{"u.name": "%" + filter.Search + "%"}
		builder = builder.Where(cond)
		countBuilder = countBuilder.Join("users u ON u.id = t.user_id").Where(cond)
	}

	builder = builder.OrderBy("u.name ASC").
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
		return []TechnicianDetailRow{}, 0, nil
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

	var result []TechnicianDetailRow
	for rows.Next() {
		var row TechnicianDetailRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.TeamID, &row.IsActive, &row.UserName, &row.TeamName); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования техника: %w", err)
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}

func (r *TechnicianRepository) CountByTeam(ctx context.Context, teamID uuid.UUID) (uint64, error) {
	var count uint64
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM technicians WHERE team_id = $1`, teamID).Scan(&count)
	return count, err
}

func (r *TechnicianRepository) UpdateTechnician(ctx context.Context, technician *entities.Technician) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE technicians SET team_id = $1, is_active = $2 WHERE id = $3`,
		technician.TeamID, technician.IsActive, technician.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления техника: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TechnicianRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM technicians WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
