package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

var notificationColumns = []string{
	"n.id", "n.request_id", "n.recipient_type", "n.recipient_id", "n.message", "n.created_at", "n.is_read",
}

type NotificationRepositoryInterface interface {
	CreateNotification(ctx context.Context, tx pgx.Tx, n entities.Notification) (*entities.Notification, error)
	GetUnread(ctx context.Context, inbox entities.Inbox, filter types.Filter) ([]entities.Notification, uint64, error)
	FindNotification(ctx context.Context, id uint64) (*entities.Notification, error)
	MarkRead(ctx context.Context, id uint64) error
	// MarkRequestRead помечает прочитанными все уведомления заявки для типа получателя.
	MarkRequestRead(ctx context.Context, tx pgx.Tx, requestID uint64, recipientType entities.RecipientType) (int64, error)
}

type NotificationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewNotificationRepository(storage *pgxpool.Pool, logger *zap.Logger) NotificationRepositoryInterface {
	return &NotificationRepository{storage: storage, logger: logger}
}

func scanNotification(row pgx.Row) (*entities.Notification, error) {
	var n entities.Notification
	var recipientType string
	err := row.Scan(&n.ID, &n.RequestID, &recipientType, &n.RecipientID, &n.Message, &n.CreatedAt, &n.IsRead)
	if err != nil {
		return nil, mapError(err, "ошибка сканирования notification")
	}
	n.RecipientType = entities.RecipientType(recipientType)
	return &n, nil
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, tx pgx.Tx, n entities.Notification) (*entities.Notification, error) {
	query := `
		INSERT INTO notifications (request_id, recipient_type, recipient_id, message, created_at, is_read)
		VALUES ($1, $2, $3, $4, NOW(), FALSE)
		RETURNING id, created_at
	`
	err := pick(r.storage, tx).QueryRow(ctx, query,
		n.RequestID, string(n.RecipientType), n.RecipientID, n.Message,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, mapError(err, "создание уведомления")
	}
	n.IsRead = false
	return &n, nil
}

func inboxWhere(inbox entities.Inbox) sq.And {
	where := sq.And{
		sq.Eq{"n.recipient_type": string(inbox.RecipientType)},
		sq.Eq{"n.is_read": false},
	}
	if inbox.RecipientID != nil {
		where = append(where, sq.Eq{"n.recipient_id": *inbox.RecipientID})
	}
	return where
}

func (r *NotificationRepository) GetUnread(ctx context.Context, inbox entities.Inbox, filter types.Filter) ([]entities.Notification, uint64, error) {
	where := inboxWhere(inbox)

	var total uint64
	sqlCount, argsCount, err := psql.Select("COUNT(n.id)").From("notifications AS n").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "подсчёт уведомлений")
	}
	if total == 0 {
		return []entities.Notification{}, 0, nil
	}

	builder := psql.Select(notificationColumns...).From("notifications AS n").Where(where).
		OrderBy("n.created_at DESC", "n.id DESC")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "выборка уведомлений")
	}
	defer rows.Close()

	notifications := make([]entities.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, total, rows.Err()
}

func (r *NotificationRepository) FindNotification(ctx context.Context, id uint64) (*entities.Notification, error) {
	query, args, err := psql.Select(notificationColumns...).From("notifications AS n").Where(sq.Eq{"n.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanNotification(r.storage.QueryRow(ctx, query, args...))
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "отметка уведомления")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkRequestRead(ctx context.Context, tx pgx.Tx, requestID uint64, recipientType entities.RecipientType) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE request_id = $1 AND recipient_type = $2 AND is_read = FALSE`
	result, err := pick(r.storage, tx).Exec(ctx, query, requestID, string(recipientType))
	if err != nil {
		return 0, mapError(err, "отметка уведомлений заявки")
	}
	return result.RowsAffected(), nil
}
