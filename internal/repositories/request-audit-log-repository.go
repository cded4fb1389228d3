package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gearguard/internal/entities"
	"gearguard/pkg/types"
)

// AuditLogItem - запись аудита вместе с именем автора изменения.
type AuditLogItem struct {
	entities.RequestAuditLog
	ChangedByName string
}

// Журнал аудита только пополняется: интерфейс сознательно не содержит
// ни обновления, ни точечного удаления. Записи уходят только вместе
// со своей заявкой.
type RequestAuditLogRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, log *entities.RequestAuditLog) error
	GetAuditLogs(ctx context.Context, requestID uuid.NullUUID, filter types.Filter) ([]AuditLogItem, uint64, error)
	DeleteByRequestInTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) error
	DeleteByEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) error
}

type RequestAuditLogRepository struct {
	storage *pgxpool.Pool
}

func NewRequestAuditLogRepository(storage *pgxpool.Pool) RequestAuditLogRepositoryInterface {
	return &RequestAuditLogRepository{storage: storage}
}

// CreateInTx добавляет запись аудита. Момент изменения проставляет БД
// в момент вставки, а не вызывающий код.
func (r *RequestAuditLogRepository) CreateInTx(ctx context.Context, tx pgx.Tx, log *entities.RequestAuditLog) error {
	query := `
		INSERT INTO request_audit_logs (request_id, old_stage, new_stage, changed_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, changed_at`
	err := tx.QueryRow(ctx, query,
		log.RequestID, log.OldStage, log.NewStage, log.ChangedBy,
	).Scan(&log.ID, &log.ChangedAt)
	if err != nil {
		return fmt.Errorf("ошибка записи аудита: %w", err)
	}
	return nil
}

func (r *RequestAuditLogRepository) GetAuditLogs(ctx context.Context, requestID uuid.NullUUID, filter types.Filter) ([]AuditLogItem, uint64, error) {
	builder := sq.Select("a.id", "a.request_id", "a.old_stage", "a.new_stage", "a.changed_by", "a.changed_at", "u.name").
		From("request_audit_logs a").
		Join("users u ON u.id = a.changed_by").
		PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From("request_audit_logs a").PlaceholderFormat(sq.Dollar)

	if requestID.Valid {
		builder = builder.Where(sq.Eq{"a.request_id": requestID.UUID})
		countBuilder = countBuilder.Where(sq.Eq{"a.request_id": requestID.UUID})
	}

	builder = builder.OrderBy("a.changed_at DESC", "a.id DESC").
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
		return []AuditLogItem{}, 0, nil
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

	var result []AuditLogItem
	for rows.Next() {
		var item AuditLogItem
		if err := rows.Scan(
			&item.ID, &item.RequestID, &item.OldStage, &item.NewStage,
			&item.ChangedBy, &item.ChangedAt, &item.ChangedByName,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования записи аудита: %w", err)
		}
		result = append(result, item)
	}
	return result, total, rows.Err()
}

func (r *RequestAuditLogRepository) DeleteByRequestInTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM request_audit_logs WHERE request_id = $1`, requestID)
	return err
}

func (r *RequestAuditLogRepository) DeleteByEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM request_audit_logs
		WHERE request_id IN (SELECT id FROM maintenance_requests WHERE equipment_id = $1)`, equipmentID)
	return err
}
