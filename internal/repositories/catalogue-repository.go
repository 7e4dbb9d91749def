package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	db "maintenance-system/internal/infrastructure/bd"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

var catalogueMap = map[string]string{
	"id":   "c.id",
	"name": "c.name",
}

// CatalogueRepositoryInterface обслуживает все справочники вида (id, name).
type CatalogueRepositoryInterface interface {
	GetItems(ctx context.Context, kind entities.CatalogueKind, filter types.Filter) ([]entities.CatalogueItem, uint64, error)
	FindItem(ctx context.Context, kind entities.CatalogueKind, id uint64) (*entities.CatalogueItem, error)
	FindByName(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, name string) (*entities.CatalogueItem, error)
	MissingNames(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, names []string) ([]string, error)
	CreateItem(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, name string) (uint64, error)
	UpdateItem(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, id uint64, name string) error
	DeleteItem(ctx context.Context, kind entities.CatalogueKind, id uint64) error
}

type CatalogueRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCatalogueRepository(storage *pgxpool.Pool, logger *zap.Logger) CatalogueRepositoryInterface {
	return &CatalogueRepository{storage: storage, logger: logger}
}

func tableOf(kind entities.CatalogueKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("неизвестный справочник: %s", kind)
	}
	return kind.Table(), nil
}

func scanCatalogueItem(row pgx.Row) (*entities.CatalogueItem, error) {
	var item entities.CatalogueItem
	if err := row.Scan(&item.ID, &item.Name); err != nil {
		return nil, mapError(err, "ошибка сканирования справочника")
	}
	return &item, nil
}

func (r *CatalogueRepository) GetItems(ctx context.Context, kind entities.CatalogueKind, filter types.Filter) ([]entities.CatalogueItem, uint64, error) {
	table, err := tableOf(kind)
	if err != nil {
		return nil, 0, err
	}
	from := table + " AS c"

	// 1. COUNT
	countBuilder := db.ApplySearch(psql.Select("COUNT(c.id)").From(from), filter.Search, "c.name")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, catalogueMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "подсчёт записей справочника")
	}
	if total == 0 {
		return []entities.CatalogueItem{}, 0, nil
	}

	// 2. SELECT
	builder := db.ApplySearch(psql.Select("c.id", "c.name").From(from), filter.Search, "c.name")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("c.id ASC")
	}
	builder = db.ApplyListParams(builder, filter, catalogueMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "выборка справочника")
	}
	defer rows.Close()

	items := make([]entities.CatalogueItem, 0)
	for rows.Next() {
		item, err := scanCatalogueItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

func (r *CatalogueRepository) findOne(ctx context.Context, querier Querier, kind entities.CatalogueKind, where sq.Eq) (*entities.CatalogueItem, error) {
	table, err := tableOf(kind)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select("c.id", "c.name").From(table + " AS c").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	return scanCatalogueItem(querier.QueryRow(ctx, query, args...))
}

func (r *CatalogueRepository) FindItem(ctx context.Context, kind entities.CatalogueKind, id uint64) (*entities.CatalogueItem, error) {
	return r.findOne(ctx, r.storage, kind, sq.Eq{"c.id": id})
}

func (r *CatalogueRepository) FindByName(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, name string) (*entities.CatalogueItem, error) {
	return r.findOne(ctx, pick(r.storage, tx), kind, sq.Eq{"c.name": name})
}

// MissingNames возвращает те имена из списка, которых нет в справочнике.
func (r *CatalogueRepository) MissingNames(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	table, err := tableOf(kind)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select("name").From(table).Where(sq.Eq{"name": names}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := pick(r.storage, tx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "проверка справочника")
	}
	defer rows.Close()

	found := make(map[string]struct{}, len(names))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		found[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, n := range names {
		if _, ok := found[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

func (r *CatalogueRepository) CreateItem(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, name string) (uint64, error) {
	table, err := tableOf(kind)
	if err != nil {
		return 0, err
	}
	var newID uint64
	query := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id`, table)
	if err := pick(r.storage, tx).QueryRow(ctx, query, name).Scan(&newID); err != nil {
		return 0, mapError(err, "создание записи справочника")
	}
	return newID, nil
}

func (r *CatalogueRepository) UpdateItem(ctx context.Context, tx pgx.Tx, kind entities.CatalogueKind, id uint64, name string) error {
	table, err := tableOf(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2`, table)
	result, err := pick(r.storage, tx).Exec(ctx, query, name, id)
	if err != nil {
		return mapError(err, "обновление записи справочника")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CatalogueRepository) DeleteItem(ctx context.Context, kind entities.CatalogueKind, id uint64) error {
	table, err := tableOf(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return mapError(err, "удаление записи справочника")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
