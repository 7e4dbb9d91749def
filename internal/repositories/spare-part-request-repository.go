package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	db "maintenance-system/internal/infrastructure/bd"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

var sparePartRequestMap = map[string]string{
	"id":         "s.id",
	"request_id": "s.request_id",
	"part_name":  "s.part_name",
	"status":     "s.status",
	"created_at": "s.created_at",
}

var sparePartRequestColumns = []string{"s.id", "s.request_id", "s.part_name", "s.status", "s.created_at"}

type SparePartRequestRepositoryInterface interface {
	CreateSparePartRequest(ctx context.Context, tx pgx.Tx, requestID uint64, partName string) (*entities.SparePartsRequest, error)
	GetSparePartRequests(ctx context.Context, filter types.Filter) ([]entities.SparePartsRequest, uint64, error)
	ListByRequest(ctx context.Context, tx pgx.Tx, requestID uint64) ([]entities.SparePartsRequest, error)
	// FindRequestID возвращает заявку запроса запчасти без блокировки строки.
	FindRequestID(ctx context.Context, tx pgx.Tx, id uint64) (uint64, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.SparePartsRequest, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status entities.SparePartStatus) error
	UnavailablePartNames(ctx context.Context, tx pgx.Tx, requestID uint64) ([]string, error)
}

type SparePartRequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSparePartRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) SparePartRequestRepositoryInterface {
	return &SparePartRequestRepository{storage: storage, logger: logger}
}

func scanSparePartRequest(row pgx.Row) (*entities.SparePartsRequest, error) {
	var s entities.SparePartsRequest
	var status string
	if err := row.Scan(&s.ID, &s.RequestID, &s.PartName, &status, &s.CreatedAt); err != nil {
		return nil, mapError(err, "ошибка сканирования spare_parts_request")
	}
	s.Status = entities.SparePartStatus(status)
	return &s, nil
}

func collectSparePartRequests(rows pgx.Rows) ([]entities.SparePartsRequest, error) {
	defer rows.Close()
	list := make([]entities.SparePartsRequest, 0)
	for rows.Next() {
		s, err := scanSparePartRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

func (r *SparePartRequestRepository) CreateSparePartRequest(ctx context.Context, tx pgx.Tx, requestID uint64, partName string) (*entities.SparePartsRequest, error) {
	query := `
		INSERT INTO spare_parts_requests (request_id, part_name, status, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, request_id, part_name, status, created_at
	`
	return scanSparePartRequest(pick(r.storage, tx).QueryRow(ctx, query, requestID, partName, string(entities.SparePartPending)))
}

func (r *SparePartRequestRepository) GetSparePartRequests(ctx context.Context, filter types.Filter) ([]entities.SparePartsRequest, uint64, error) {
	countBuilder := db.ApplySearch(psql.Select("COUNT(s.id)").From("spare_parts_requests AS s"), filter.Search, "s.part_name")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, sparePartRequestMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "подсчёт запросов запчастей")
	}
	if total == 0 {
		return []entities.SparePartsRequest{}, 0, nil
	}

	builder := db.ApplySearch(psql.Select(sparePartRequestColumns...).From("spare_parts_requests AS s"), filter.Search, "s.part_name")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("s.created_at DESC", "s.id DESC")
	}
	builder = db.ApplyListParams(builder, filter, sparePartRequestMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "выборка запросов запчастей")
	}
	list, err := collectSparePartRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *SparePartRequestRepository) ListByRequest(ctx context.Context, tx pgx.Tx, requestID uint64) ([]entities.SparePartsRequest, error) {
	query, args, err := psql.Select(sparePartRequestColumns...).From("spare_parts_requests AS s").
		Where(sq.Eq{"s.request_id": requestID}).OrderBy("s.id ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := pick(r.storage, tx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "запчасти заявки")
	}
	return collectSparePartRequests(rows)
}

func (r *SparePartRequestRepository) FindRequestID(ctx context.Context, tx pgx.Tx, id uint64) (uint64, error) {
	var requestID uint64
	err := pick(r.storage, tx).QueryRow(ctx, `SELECT request_id FROM spare_parts_requests WHERE id = $1`, id).Scan(&requestID)
	if err != nil {
		return 0, mapError(err, "заявка запроса запчасти")
	}
	return requestID, nil
}

func (r *SparePartRequestRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.SparePartsRequest, error) {
	query, args, err := psql.Select(sparePartRequestColumns...).From("spare_parts_requests AS s").
		Where(sq.Eq{"s.id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, err
	}
	return scanSparePartRequest(pick(r.storage, tx).QueryRow(ctx, query, args...))
}

func (r *SparePartRequestRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status entities.SparePartStatus) error {
	result, err := pick(r.storage, tx).Exec(ctx, `UPDATE spare_parts_requests SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return mapError(err, "обновление запроса запчасти")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UnavailablePartNames - названия отсутствующих на складе запчастей заявки, в порядке запроса.
func (r *SparePartRequestRepository) UnavailablePartNames(ctx context.Context, tx pgx.Tx, requestID uint64) ([]string, error) {
	query := `SELECT part_name FROM spare_parts_requests WHERE request_id = $1 AND status = $2 ORDER BY id ASC`
	rows, err := pick(r.storage, tx).Query(ctx, query, requestID, string(entities.SparePartUnavailable))
	if err != nil {
		return nil, mapError(err, "отсутствующие запчасти")
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
