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

// TimeLogItem - запись о затраченных часах вместе с темой заявки и именем техника.
type TimeLogItem struct {
	entities.TimeLog
	RequestSubject string
	TechnicianName string
}

type TimeLogRepositoryInterface interface {
	CreateTimeLog(ctx context.Context, log *entities.TimeLog) error
	FindTimeLog(ctx context.Context, id uuid.UUID) (*TimeLogItem, error)
	GetTimeLogs(ctx context.Context, requestID, technicianID uuid.NullUUID, filter types.Filter) ([]TimeLogItem, uint64, error)
	UpdateTimeLog(ctx context.Context, log *entities.TimeLog) error
	DeleteTimeLog(ctx context.Context, id uuid.UUID) error
	DeleteByRequestInTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) error
	DeleteByEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) error
}

type TimeLogRepository struct {
	storage *pgxpool.Pool
}

func NewTimeLogRepository(storage *pgxpool.Pool) TimeLogRepositoryInterface {
	return &TimeLogRepository{storage: storage}
}

func (r *TimeLogRepository) CreateTimeLog(ctx context.Context, log *entities.TimeLog) error {
	query := `
		INSERT INTO time_logs (request_id, technician_id, hours_spent, logged_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.storage.QueryRow(ctx, query,
		log.RequestID, log.TechnicianID, log.HoursSpent, log.LoggedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("ошибка создания записи времени: %w", err)
	}
	return nil
}

func (r *TimeLogRepository) FindTimeLog(ctx context.Context, id uuid.UUID) (*TimeLogItem, error) {
	query := `
		SELECT tl.id, tl.request_id, tl.technician_id, tl.hours_spent, tl.logged_at, r.subject, u.name
		FROM time_logs tl
		JOIN maintenance_requests r ON r.id = tl.request_id
		JOIN technicians t ON t.id = tl.technician_id
		JOIN users u ON u.id = t.user_id
		WHERE tl.id = $1`
	var item TimeLogItem
	err := r.storage.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.RequestID, &item.TechnicianID, &item.HoursSpent, &item.LoggedAt,
		&item.RequestSubject, &item.TechnicianName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования записи времени: %w", err)
	}
	return &item, nil
}

func (r *TimeLogRepository) GetTimeLogs(ctx context.Context, requestID, technicianID uuid.NullUUID, filter types.Filter) ([]TimeLogItem, uint64, error) {
	builder := sq.Select("tl.id", "tl.request_id", "tl.technician_id", "tl.hours_spent", "tl.logged_at", "r.subject", "u.name").
		From("time_logs tl").
		Join("maintenance_requests r ON r.id = tl.request_id").
		Join("technicians t ON t.id = tl.technician_id").
		Join("users u ON u.id = t.user_id").
		PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From("time_logs tl").PlaceholderFormat(sq.Dollar)

	if requestID.Valid {
		builder = builder.Where(sq.Eq{"tl.request_id": requestID.UUID})
		countBuilder = countBuilder.Where(sq.Eq{"tl.request_id": requestID.UUID})
	}
	if technicianID.Valid {
		builder = builder.Where(sq.Eq{"tl.technician_id": technicianID.UUID})
		countBuilder = countBuilder.Where(sq.Eq{"tl.technician_id": technicianID.UUID})
	}

	builder = builder.OrderBy("tl.logged_at DESC", "tl.id DESC").
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
		return []TimeLogItem{}, 0, nil
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

	var result []TimeLogItem
	for rows.Next() {
		var item TimeLogItem
		if err := rows.Scan(
			&item.ID, &item.RequestID, &item.TechnicianID, &item.HoursSpent, &item.LoggedAt,
			&item.RequestSubject, &item.TechnicianName,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования записи времени: %w", err)
		}
		result = append(result, item)
	}
	return result, total, rows.Err()
}

func (r *TimeLogRepository) UpdateTimeLog(ctx context.Context, log *entities.TimeLog) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE time_logs SET hours_spent = $1, logged_at = $2 WHERE id = $3`,
		log.HoursSpent, log.LoggedAt, log.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления записи времени: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TimeLogRepository) DeleteTimeLog(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM time_logs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TimeLogRepository) DeleteByRequestInTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM time_logs WHERE request_id = $1`, requestID)
	return err
}

func (r *TimeLogRepository) DeleteByEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM time_logs
		WHERE request_id IN (SELECT id FROM maintenance_requests WHERE equipment_id = $1)`, equipmentID)
	return err
}
