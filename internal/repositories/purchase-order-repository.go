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

var purchaseOrderMap = map[string]string{
	"id":         "p.id",
	"request_id": "p.request_id",
	"status":     "p.status",
	"created_at": "p.created_at",
}

var purchaseOrderColumns = []string{"p.id", "p.request_id", "p.part_name", "p.details", "p.created_at", "p.status"}

type PurchaseOrderRepositoryInterface interface {
	CreatePurchaseOrder(ctx context.Context, tx pgx.Tx, order entities.PurchaseOrder) (*entities.PurchaseOrder, error)
	GetPurchaseOrders(ctx context.Context, filter types.Filter) ([]entities.PurchaseOrder, uint64, error)
	ListByRequest(ctx context.Context, tx pgx.Tx, requestID uint64) ([]entities.PurchaseOrder, error)
	FindRequestID(ctx context.Context, tx pgx.Tx, id uint64) (uint64, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status entities.PurchaseOrderStatus) error
	HasPending(ctx context.Context, tx pgx.Tx, requestID uint64) (bool, error)
}

type PurchaseOrderRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewPurchaseOrderRepository(storage *pgxpool.Pool, logger *zap.Logger) PurchaseOrderRepositoryInterface {
	return &PurchaseOrderRepository{storage: storage, logger: logger}
}

func scanPurchaseOrder(row pgx.Row) (*entities.PurchaseOrder, error) {
	var p entities.PurchaseOrder
	var status string
	if err := row.Scan(&p.ID, &p.RequestID, &p.PartName, &p.Details, &p.CreatedAt, &status); err != nil {
		return nil, mapError(err, "ошибка сканирования purchase_order")
	}
	p.Status = entities.PurchaseOrderStatus(status)
	return &p, nil
}

func collectPurchaseOrders(rows pgx.Rows) ([]entities.PurchaseOrder, error) {
	defer rows.Close()
	list := make([]entities.PurchaseOrder, 0)
	for rows.Next() {
		p, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *PurchaseOrderRepository) CreatePurchaseOrder(ctx context.Context, tx pgx.Tx, order entities.PurchaseOrder) (*entities.PurchaseOrder, error) {
	query := `
		INSERT INTO purchase_orders (request_id, part_name, details, created_at, status)
		VALUES ($1, $2, $3, NOW(), $4)
		RETURNING id, request_id, part_name, details, created_at, status
	`
	return scanPurchaseOrder(pick(r.storage, tx).QueryRow(ctx, query,
		order.RequestID, order.PartName, order.Details, string(entities.PurchaseOrderPending),
	))
}

func (r *PurchaseOrderRepository) GetPurchaseOrders(ctx context.Context, filter types.Filter) ([]entities.PurchaseOrder, uint64, error) {
	countBuilder := db.ApplySearch(psql.Select("COUNT(p.id)").From("purchase_orders AS p"), filter.Search, "p.part_name", "p.details")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, purchaseOrderMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "подсчёт заказов")
	}
	if total == 0 {
		return []entities.PurchaseOrder{}, 0, nil
	}

	builder := db.ApplySearch(psql.Select(purchaseOrderColumns...).From("purchase_orders AS p"), filter.Search, "p.part_name", "p.details")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("p.created_at DESC", "p.id DESC")
	}
	builder = db.ApplyListParams(builder, filter, purchaseOrderMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "выборка заказов")
	}
	list, err := collectPurchaseOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *PurchaseOrderRepository) ListByRequest(ctx context.Context, tx pgx.Tx, requestID uint64) ([]entities.PurchaseOrder, error) {
	query, args, err := psql.Select(purchaseOrderColumns...).From("purchase_orders AS p").
		Where(sq.Eq{"p.request_id": requestID}).OrderBy("p.id ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := pick(r.storage, tx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "заказы заявки")
	}
	return collectPurchaseOrders(rows)
}

func (r *PurchaseOrderRepository) FindRequestID(ctx context.Context, tx pgx.Tx, id uint64) (uint64, error) {
	var requestID uint64
	err := pick(r.storage, tx).QueryRow(ctx, `SELECT request_id FROM purchase_orders WHERE id = $1`, id).Scan(&requestID)
	if err != nil {
		return 0, mapError(err, "заявка заказа на закупку")
	}
	return requestID, nil
}

func (r *PurchaseOrderRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.PurchaseOrder, error) {
	query, args, err := psql.Select(purchaseOrderColumns...).From("purchase_orders AS p").
		Where(sq.Eq{"p.id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, err
	}
	return scanPurchaseOrder(pick(r.storage, tx).QueryRow(ctx, query, args...))
}

func (r *PurchaseOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status entities.PurchaseOrderStatus) error {
	result, err := pick(r.storage, tx).Exec(ctx, `UPDATE purchase_orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return mapError(err, "обновление заказа")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PurchaseOrderRepository) HasPending(ctx context.Context, tx pgx.Tx, requestID uint64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM purchase_orders WHERE request_id = $1 AND status = $2)`
	if err := pick(r.storage, tx).QueryRow(ctx, query, requestID, string(entities.PurchaseOrderPending)).Scan(&exists); err != nil {
		return false, mapError(err, "проверка заказов")
	}
	return exists, nil
}
