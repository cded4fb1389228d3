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

// MaintenanceTeamItem - команда вместе с числом активных техников.
type MaintenanceTeamItem struct {
	entities.MaintenanceTeam
	TechnicianCount uint64
}

type MaintenanceTeamRepositoryInterface interface {
	CreateTeam(ctx context.Context, team *entities.MaintenanceTeam) error
	FindTeam(ctx context.Context, id uuid.UUID) (*entities.MaintenanceTeam, error)
	GetTeams(ctx context.Context, filter types.Filter) ([]MaintenanceTeamItem, uint64, error)
	UpdateTeam(ctx context.Context, team *entities.MaintenanceTeam) error
	DeleteTeam(ctx context.Context, id uuid.UUID) error
}

type MaintenanceTeamRepository struct {
	storage *pgxpool.Pool
}

func NewMaintenanceTeamRepository(storage *pgxpool.Pool) MaintenanceTeamRepositoryInterface {
	return &MaintenanceTeamRepository{storage: storage}
}

func (r *MaintenanceTeamRepository) CreateTeam(ctx context.Context, team *entities.MaintenanceTeam) error {
	err := r.storage.QueryRow(ctx,
		`INSERT INTO maintenance_teams (name, specialization) VALUES ($1, $2) RETURNING id`,
		team.Name, team.Specialization,
	).Scan(&team.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(
				fmt.Sprintf("команда с названием '%s' уже существует", team.Name))
		}
		return fmt.Errorf("ошибка создания команды обслуживания: %w", err)
	}
	return nil
}

func (r *MaintenanceTeamRepository) FindTeam(ctx context.Context, id uuid.UUID) (*entities.MaintenanceTeam, error) {
	var t entities.MaintenanceTeam
	err := r.storage.QueryRow(ctx,
		`SELECT id, name, specialization FROM maintenance_teams WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Specialization)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования команды: %w", err)
	}
	return &t, nil
}

func (r *MaintenanceTeamRepository) GetTeams(ctx context.Context, filter types.Filter) ([]MaintenanceTeamItem, uint64, error) {
	builder := sq.Select("mt.id", "mt.name", "mt.specialization",
		"(SELECT COUNT(*) FROM technicians t WHERE t.team_id = mt.id AND t.is_active)").
		From("maintenance_teams mt").
		PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From("maintenance_teams mt").PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		cond := sq.ILike{"mt.name": "%" + filter.Search + "%"}
		builder = builder.Where(cond)
		countBuilder = countBuilder.Where(cond)
	}

	builder = builder.OrderBy("mt.name ASC").
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
		return []MaintenanceTeamItem{}, 0, nil
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

	var result []MaintenanceTeamItem
	for rows.Next() {
		var item MaintenanceTeamItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Specialization, &item.TechnicianCount); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования команды: %w", err)
		}
		result = append(result, item)
	}
	return result, total, rows.Err()
}

func (r *MaintenanceTeamRepository) UpdateTeam(ctx context.Context, team *entities.MaintenanceTeam) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE maintenance_teams SET name = $1, specialization = $2 WHERE id = $3`,
		team.Name, team.Specialization, team.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(
				fmt.Sprintf("команда с названием '%s' уже существует", team.Name))
		}
		return fmt.Errorf("ошибка обновления команды: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MaintenanceTeamRepository) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM maintenance_teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
