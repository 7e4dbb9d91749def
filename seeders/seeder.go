// Файл: seeders/seeder.go
package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/pkg/utils"
)

// Seed наполняет справочники, техников и учётные записи. Повторный запуск
// ничего не дублирует: существующие строки пропускаются.
func Seed(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("▶️  Запуск наполнения базы данных...")

	return pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		if err := seedCatalogues(ctx, tx, logger); err != nil {
			return fmt.Errorf("ошибка наполнения справочников: %w", err)
		}
		if err := seedTechnicians(ctx, tx, logger); err != nil {
			return fmt.Errorf("ошибка наполнения техников: %w", err)
		}
		if err := seedUsers(ctx, tx, logger); err != nil {
			return fmt.Errorf("ошибка создания пользователей: %w", err)
		}
		logger.Info("✅ Наполнение базы данных завершено!")
		return nil
	})
}

func seedCatalogues(ctx context.Context, tx pgx.Tx, logger *zap.Logger) error {
	for _, kind := range entities.AllCatalogues {
		for _, name := range catalogueData[kind] {
			query := fmt.Sprintf("INSERT INTO %s (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", kind.Table())
			if _, err := tx.Exec(ctx, query, name); err != nil {
				return fmt.Errorf("%s '%s': %w", kind, name, err)
			}
		}
		logger.Info("  - Справочник заполнен", zap.String("catalogue", string(kind)), zap.Int("items", len(catalogueData[kind])))
	}
	return nil
}

func seedTechnicians(ctx context.Context, tx pgx.Tx, logger *zap.Logger) error {
	for _, t := range techniciansData {
		var branchID uint64
		if err := tx.QueryRow(ctx, "SELECT id FROM branches WHERE name = $1", t.Branch).Scan(&branchID); err != nil {
			return fmt.Errorf("не найден филиал '%s': %w", t.Branch, err)
		}

		tag, err := tx.Exec(ctx,
			"INSERT INTO technicians (name, phone_number, branch_id) VALUES ($1, $2, $3) ON CONFLICT (phone_number) DO NOTHING",
			t.Name, t.Phone, branchID)
		if err != nil {
			return fmt.Errorf("техник '%s': %w", t.Name, err)
		}
		if tag.RowsAffected() == 0 {
			logger.Info("    - Техник уже существует. Пропускаем.", zap.String("name", t.Name))
		}
	}
	return nil
}

func seedUsers(ctx context.Context, tx pgx.Tx, logger *zap.Logger) error {
	hashed, err := utils.HashPassword(defaultPassword)
	if err != nil {
		return err
	}

	for _, u := range usersData {
		var technicianID *uint64
		if u.TechnicianPhone != "" {
			var id uint64
			err := tx.QueryRow(ctx, "SELECT id FROM technicians WHERE phone_number = $1", u.TechnicianPhone).Scan(&id)
			if err != nil {
				return fmt.Errorf("не найден техник с телефоном %s: %w", u.TechnicianPhone, err)
			}
			technicianID = &id
		}

		tag, err := tx.Exec(ctx,
			"INSERT INTO users (username, password, role, technician_id) VALUES ($1, $2, $3, $4) ON CONFLICT (username) DO NOTHING",
			u.Username, hashed, string(u.Role), technicianID)
		if err != nil {
			return fmt.Errorf("пользователь '%s': %w", u.Username, err)
		}
		if tag.RowsAffected() == 0 {
			logger.Info("    - Пользователь уже существует. Пропускаем.", zap.String("username", u.Username))
		}
	}
	return nil
}
