package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"maintenance-system/internal/listeners"
	"maintenance-system/internal/repositories"
	"maintenance-system/internal/routes"
	"maintenance-system/internal/scheduler"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/database/postgresql"
	"maintenance-system/pkg/eventbus"
	"maintenance-system/pkg/filestorage"
	applogger "maintenance-system/pkg/logger"
	"maintenance-system/pkg/service"
	"maintenance-system/pkg/telegram"
	"maintenance-system/pkg/websocket"
	"maintenance-system/seeders"
)

func loadConfig() *config.Config {
	if configFile != "" {
		os.Setenv("CONFIG_FILE", configFile)
	}
	return config.New()
}

// withDatabase открывает пул, выполняет fn и закрывает пул.
func withDatabase(ctx context.Context, fn func(cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) error) error {
	cfg := loadConfig()
	logger := applogger.NewLogger(cfg.Log)
	defer logger.Sync()

	pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(cfg, pool, logger)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер (по умолчанию)",
		RunE:  runServe,
	}
}

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Применить миграции схемы",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(_ *config.Config, pool *pgxpool.Pool, logger *zap.Logger) error {
				if err := postgresql.Migrate(cmd.Context(), pool); err != nil {
					return err
				}
				version, err := postgresql.Version(cmd.Context(), pool)
				if err != nil {
					return err
				}
				logger.Info("✅ Схема базы данных создана", zap.Int64("version", version))
				return nil
			})
		},
	}
}

func newSeedDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-db",
		Short: "Заполнить справочники, техников и учётные записи",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(_ *config.Config, pool *pgxpool.Pool, logger *zap.Logger) error {
				if err := postgresql.Migrate(cmd.Context(), pool); err != nil {
					return err
				}
				return seeders.Seed(cmd.Context(), pool, logger)
			})
		},
	}
}

func newResetDBCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Откатить все миграции (удаляет данные)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				return errors.New("reset-db удаляет все данные; повторите с --force")
			}
			return withDatabase(cmd.Context(), func(_ *config.Config, pool *pgxpool.Pool, logger *zap.Logger) error {
				if err := postgresql.Reset(cmd.Context(), pool); err != nil {
					return err
				}
				logger.Warn("Все миграции откачены")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "подтвердить удаление данных")
	return cmd
}

func newTelegramService(cfg config.TelegramConfig, logger *zap.Logger) telegram.ServiceInterface {
	if !cfg.Enabled {
		logger.Info("Telegram отключён, сообщения техникам не отправляются")
		return telegram.NoopService{}
	}
	bot, err := telegram.NewBot(cfg.BotToken)
	if err != nil {
		logger.Error("Telegram недоступен, работаем без него", zap.Error(err))
		return telegram.NoopService{}
	}
	return telegram.NewService(bot, logger.Named("telegram"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	logger := applogger.NewLogger(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Базы данных
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if cfg.Postgres.AutoMigrate {
		if err := postgresql.Migrate(ctx, dbConn); err != nil {
			return err
		}
		logger.Info("Миграции применены")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("не удалось подключиться к Redis (%s): %w", cfg.Redis.Address, err)
	}

	// 2. Доставка уведомлений
	hub := websocket.NewHub(logger.Named("ws"))
	go hub.Run(ctx)

	bus := eventbus.New(logger.Named("eventbus"))
	listeners.NewNotificationListener(
		services.NewWebSocketNotificationService(hub, logger.Named("ws")),
		newTelegramService(cfg.Telegram, logger),
		logger.Named("listener"),
	).Register(bus)

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Storage.ExportsDir)
	if err != nil {
		return fmt.Errorf("не удалось создать хранилище выгрузок: %w", err)
	}

	// 3. Сервисы и маршруты
	loggers := routes.NewLoggers(logger)
	svcs := routes.NewServices(dbConn, repositories.NewRedisCacheRepository(redisClient), bus, fileStorage, cfg, loggers)
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger)

	e := routes.NewServer(&cfg.Server, logger)
	routes.InitRouter(e, svcs, jwtSvc, hub, cfg, loggers)

	// 4. Напоминания
	var reminders *scheduler.ReminderScheduler
	if cfg.Scheduler.Enabled {
		reminders = scheduler.NewReminderScheduler(svcs.Reminder, cfg.Scheduler.ReminderSpec, logger.Named("scheduler"))
		if err := reminders.Start(); err != nil {
			return err
		}
	}

	// 5. Сервер
	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Получен сигнал остановки")
	case err := <-errCh:
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	if reminders != nil {
		reminders.Stop()
	}
	bus.Wait()

	logger.Info("Сервер остановлен")
	return nil
}
