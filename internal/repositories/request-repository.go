// Файл: internal/repositories/request-repository.go
package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	db "maintenance-system/internal/infrastructure/bd"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

var requestMap = map[string]string{
	"id":                     "r.id",
	"request_date":           "r.request_date",
	"requester_name":         "r.requester_name",
	"phone_number":           "r.phone_number",
	"branch":                 "r.branch",
	"maintenance_type":       "r.maintenance_type",
	"equipment_name":         "r.equipment_name",
	"fault_type":             "r.fault_type",
	"assigned_technician_id": "r.assigned_technician_id",
	"status":                 "r.status",
}

var requestColumns = []string{
	"r.id", "r.request_date", "r.requester_name", "r.phone_number", "r.branch",
	"r.maintenance_type", "r.equipment_name", "r.fault_type", "r.notes",
	"r.assigned_technician", "r.assigned_technician_id", "r.status", "r.start_time", "r.end_time",
}

var requestSearchColumns = []string{"r.requester_name", "r.phone_number", "r.equipment_name", "r.fault_type", "r.notes"}

type RequestRepositoryInterface interface {
	GetRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error)
	FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error)
	// FindForUpdate блокирует строку заявки до конца транзакции.
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error)
	CreateRequest(ctx context.Context, tx pgx.Tx, request entities.MaintenanceRequest) (*entities.MaintenanceRequest, error)
	AssignTechnician(ctx context.Context, tx pgx.Tx, id uint64, technicianID uint64, technicianName string) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status entities.RequestStatus, startTime, endTime *time.Time) error
	ListForReport(ctx context.Context, filter entities.ReportFilter) ([]entities.MaintenanceRequest, error)
	CountByStatus(ctx context.Context, filter entities.ReportFilter) (map[entities.RequestStatus]int, error)
	FindStale(ctx context.Context, olderThan time.Time) ([]entities.MaintenanceRequest, error)
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{storage: storage, logger: logger}
}

func scanRequest(row pgx.Row) (*entities.MaintenanceRequest, error) {
	var r entities.MaintenanceRequest
	var status string
	err := row.Scan(
		&r.ID, &r.RequestDate, &r.RequesterName, &r.PhoneNumber, &r.Branch,
		&r.MaintenanceType, &r.EquipmentName, &r.FaultType, &r.Notes,
		&r.AssignedTechnician, &r.AssignedTechnicianID, &status, &r.StartTime, &r.EndTime,
	)
	if err != nil {
		return nil, mapError(err, "ошибка сканирования maintenance_request")
	}
	r.Status = entities.RequestStatus(status)
	return &r, nil
}

func collectRequests(rows pgx.Rows) ([]entities.MaintenanceRequest, error) {
	defer rows.Close()
	requests := make([]entities.MaintenanceRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func (r *RequestRepository) GetRequests(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRequest, uint64, error) {
	// 1. COUNT
	countBuilder := db.ApplySearch(psql.Select("COUNT(r.id)").From("maintenance_requests AS r"), filter.Search, requestSearchColumns...)
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, requestMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "подсчёт заявок")
	}
	if total == 0 {
		return []entities.MaintenanceRequest{}, 0, nil
	}

	// 2. SELECT
	builder := db.ApplySearch(psql.Select(requestColumns...).From("maintenance_requests AS r"), filter.Search, requestSearchColumns...)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("r.request_date DESC", "r.id DESC")
	}
	builder = db.ApplyListParams(builder, filter, requestMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "выборка заявок")
	}
	requests, err := collectRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *RequestRepository) FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	query, args, err := psql.Select(requestColumns...).From("maintenance_requests AS r").Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanRequest(r.storage.QueryRow(ctx, query, args...))
}

func (r *RequestRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error) {
	query, args, err := psql.Select(requestColumns...).
		From("maintenance_requests AS r").
		Where(sq.Eq{"r.id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanRequest(pick(r.storage, tx).QueryRow(ctx, query, args...))
}

func (r *RequestRepository) CreateRequest(ctx context.Context, tx pgx.Tx, request entities.MaintenanceRequest) (*entities.MaintenanceRequest, error) {
	query := `
		INSERT INTO maintenance_requests
			(request_date, requester_name, phone_number, branch, maintenance_type, equipment_name, fault_type, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := pick(r.storage, tx).QueryRow(ctx, query,
		request.RequestDate, request.RequesterName, request.PhoneNumber, request.Branch,
		request.MaintenanceType, request.EquipmentName, request.FaultType, request.Notes,
		string(request.Status),
	).Scan(&request.ID)
	if err != nil {
		return nil, mapError(err, "создание заявки")
	}
	return &request, nil
}

func (r *RequestRepository) AssignTechnician(ctx context.Context, tx pgx.Tx, id uint64, technicianID uint64, technicianName string) error {
	query := `UPDATE maintenance_requests SET assigned_technician = $1, assigned_technician_id = $2 WHERE id = $3`
	result, err := pick(r.storage, tx).Exec(ctx, query, technicianName, technicianID, id)
	if err != nil {
		return mapError(err, "назначение техника")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateStatus меняет статус. Время начала и окончания пишется, только если передано.
func (r *RequestRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status entities.RequestStatus, startTime, endTime *time.Time) error {
	builder := psql.Update("maintenance_requests").Set("status", string(status)).Where(sq.Eq{"id": id})
	if startTime != nil {
		builder = builder.Set("start_time", *startTime)
	}
	if endTime != nil {
		builder = builder.Set("end_time", *endTime)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	result, err := pick(r.storage, tx).Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "обновление статуса заявки")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func applyReportFilter(builder sq.SelectBuilder, filter entities.ReportFilter) sq.SelectBuilder {
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"r.status": string(filter.Status)})
	}
	if filter.Branch != "" {
		builder = builder.Where(sq.Eq{"r.branch": filter.Branch})
	}
	return builder
}

// ListForReport возвращает все подходящие заявки, новые сверху, без пагинации.
func (r *RequestRepository) ListForReport(ctx context.Context, filter entities.ReportFilter) ([]entities.MaintenanceRequest, error) {
	builder := applyReportFilter(psql.Select(requestColumns...).From("maintenance_requests AS r"), filter).
		OrderBy("r.request_date DESC", "r.id DESC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "выборка заявок для отчёта")
	}
	return collectRequests(rows)
}

func (r *RequestRepository) CountByStatus(ctx context.Context, filter entities.ReportFilter) (map[entities.RequestStatus]int, error) {
	builder := applyReportFilter(psql.Select("r.status", "COUNT(*)").From("maintenance_requests AS r"), filter).
		GroupBy("r.status")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "статистика заявок")
	}
	defer rows.Close()

	counts := make(map[entities.RequestStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[entities.RequestStatus(status)] = count
	}
	return counts, rows.Err()
}

// FindStale ищет заявки, которые ждут действия инженера:
// открытые без техника и ожидающие запчастей дольше olderThan.
func (r *RequestRepository) FindStale(ctx context.Context, olderThan time.Time) ([]entities.MaintenanceRequest, error) {
	lastPartRequest := "(SELECT MAX(s.created_at) FROM spare_parts_requests s WHERE s.request_id = r.id)"
	builder := psql.Select(requestColumns...).From("maintenance_requests AS r").Where(sq.Or{
		sq.And{
			sq.Eq{"r.status": string(entities.RequestStatusOpen)},
			sq.Eq{"r.assigned_technician_id": nil},
			sq.Lt{"r.request_date": olderThan},
		},
		sq.And{
			sq.Eq{"r.status": string(entities.RequestStatusWaiting)},
			sq.Expr("COALESCE("+lastPartRequest+", r.request_date) < ?", olderThan),
		},
	}).OrderBy("r.id ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "поиск зависших заявок")
	}
	return collectRequests(rows)
}
