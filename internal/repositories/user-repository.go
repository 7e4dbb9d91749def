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

var userMap = map[string]string{
	"id":            "u.id",
	"username":      "u.username",
	"role":          "u.role",
	"technician_id": "u.technician_id",
}

var userColumns = []string{"u.id", "u.username", "u.password", "u.role", "u.technician_id"}

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	CreateUser(ctx context.Context, tx pgx.Tx, user entities.User) (uint64, error)
	UpdateUser(ctx context.Context, tx pgx.Tx, id uint64, user entities.User) error
	UpdatePassword(ctx context.Context, tx pgx.Tx, id uint64, hashedPassword string) error
	DeleteUser(ctx context.Context, id uint64) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &role, &u.TechnicianID); err != nil {
		return nil, mapError(err, "ошибка сканирования user")
	}
	u.Role = entities.Role(role)
	return &u, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	countBuilder := db.ApplySearch(psql.Select("COUNT(u.id)").From("users AS u"), filter.Search, "u.username")
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, userMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "подсчёт пользователей")
	}
	if total == 0 {
		return []entities.User{}, 0, nil
	}

	builder := db.ApplySearch(psql.Select(userColumns...).From("users AS u"), filter.Search, "u.username")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("u.id ASC")
	}
	builder = db.ApplyListParams(builder, filter, userMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "выборка пользователей")
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) findOne(ctx context.Context, querier Querier, where sq.Eq) (*entities.User, error) {
	query, args, err := psql.Select(userColumns...).From("users AS u").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(querier.QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, r.storage, sq.Eq{"u.id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, r.storage, sq.Eq{"u.username": username})
}

func (r *UserRepository) CreateUser(ctx context.Context, tx pgx.Tx, user entities.User) (uint64, error) {
	query := `
		INSERT INTO users (username, password, role, technician_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var newID uint64
	err := pick(r.storage, tx).QueryRow(ctx, query,
		user.Username, user.Password, string(user.Role), user.TechnicianID,
	).Scan(&newID)
	if err != nil {
		return 0, mapError(err, "создание пользователя")
	}
	return newID, nil
}

// UpdateUser обновляет всё, кроме пароля. Пароль меняется через UpdatePassword.
func (r *UserRepository) UpdateUser(ctx context.Context, tx pgx.Tx, id uint64, user entities.User) error {
	query := `UPDATE users SET username = $1, role = $2, technician_id = $3 WHERE id = $4`
	result, err := pick(r.storage, tx).Exec(ctx, query, user.Username, string(user.Role), user.TechnicianID, id)
	if err != nil {
		return mapError(err, "обновление пользователя")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, tx pgx.Tx, id uint64, hashedPassword string) error {
	result, err := pick(r.storage, tx).Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, hashedPassword, id)
	if err != nil {
		return mapError(err, "обновление пароля")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "удаление пользователя")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
