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

var technicianMap = map[string]string{
	"id":           "t.id",
	"name":         "t.name",
	"phone_number": "t.phone_number",
	"branch_id":    "t.branch_id",
	"branch":       "b.name",
}

var technicianColumns = []string{
	"t.id", "t.name", "t.phone_number", "t.branch_id", "COALESCE(b.name, '')", "t.telegram_chat_id",
}

type TechnicianRepositoryInterface interface {
	GetTechnicians(ctx context.Context, filter types.Filter) ([]entities.Technician, uint64, error)
	FindTechnician(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Technician, error)
	FindByName(ctx context.Context, tx pgx.Tx, name string) (*entities.Technician, error)
	CreateTechnician(ctx context.Context, tx pgx.Tx, technician entities.Technician) (uint64, error)
	UpdateTechnician(ctx context.Context, tx pgx.Tx, id uint64, technician entities.Technician) error
	DeleteTechnician(ctx context.Context, id uint64) error
}

type TechnicianRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTechnicianRepository(storage *pgxpool.Pool, logger *zap.Logger) TechnicianRepositoryInterface {
	return &TechnicianRepository{storage: storage, logger: logger}
}

func scanTechnician(row pgx.Row) (*entities.Technician, error) {
	var t entities.Technician
	err := row.Scan(&t.ID, &t.Name, &t.PhoneNumber, &t.BranchID, &t.BranchName, &t.TelegramChatID)
	if err != nil {
		return nil, mapError(err, "ошибка сканирования technician")
	}
	return &t, nil
}

func (r *TechnicianRepository) baseSelect(columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).From("technicians AS t").LeftJoin("branches b ON b.id = t.branch_id")
}

func (r *TechnicianRepository) GetTechnicians(ctx context.Context, filter types.Filter) ([]entities.Technician, uint64, error) {
	// 1. COUNT
	countBuilder := db.ApplySearch(r.baseSelect("COUNT(t.id)"), filter.Search, "t.name", "t.phone_number")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, technicianMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "подсчёт техников")
	}
	if total == 0 {
		return []entities.Technician{}, 0, nil
	}

	// 2. SELECT
	builder := db.ApplySearch(r.baseSelect(technicianColumns...), filter.Search, "t.name", "t.phone_number")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("t.id ASC")
	}
	builder = db.ApplyListParams(builder, filter, technicianMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "выборка техников")
	}
	defer rows.Close()

	technicians := make([]entities.Technician, 0)
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, 0, err
		}
		technicians = append(technicians, *t)
	}
	return technicians, total, rows.Err()
}

func (r *TechnicianRepository) findOne(ctx context.Context, querier Querier, where sq.Eq) (*entities.Technician, error) {
	query, args, err := r.baseSelect(technicianColumns...).Where(where).OrderBy("t.id ASC").Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTechnician(querier.QueryRow(ctx, query, args...))
}

func (r *TechnicianRepository) FindTechnician(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Technician, error) {
	return r.findOne(ctx, pick(r.storage, tx), sq.Eq{"t.id": id})
}

// FindByName ищет техника по имени. Имя не уникально, берётся первый по id.
func (r *TechnicianRepository) FindByName(ctx context.Context, tx pgx.Tx, name string) (*entities.Technician, error) {
	return r.findOne(ctx, pick(r.storage, tx), sq.Eq{"t.name": name})
}

func (r *TechnicianRepository) CreateTechnician(ctx context.Context, tx pgx.Tx, technician entities.Technician) (uint64, error) {
	query := `
		INSERT INTO technicians (name, phone_number, branch_id, telegram_chat_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var newID uint64
	err := pick(r.storage, tx).QueryRow(ctx, query,
		technician.Name, technician.PhoneNumber, technician.BranchID, technician.TelegramChatID,
	).Scan(&newID)
	if err != nil {
		return 0, mapError(err, "создание техника")
	}
	return newID, nil
}

func (r *TechnicianRepository) UpdateTechnician(ctx context.Context, tx pgx.Tx, id uint64, technician entities.Technician) error {
	query := `
		UPDATE technicians
		SET name = $1, phone_number = $2, branch_id = $3, telegram_chat_id = $4
		WHERE id = $5
	`
	result, err := pick(r.storage, tx).Exec(ctx, query,
		technician.Name, technician.PhoneNumber, technician.BranchID, technician.TelegramChatID, id,
	)
	if err != nil {
		return mapError(err, "обновление техника")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TechnicianRepository) DeleteTechnician(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM technicians WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "удаление техника")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
