package routes

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/filestorage"
	"maintenance-system/pkg/middleware"
	"maintenance-system/pkg/service"
	"maintenance-system/pkg/websocket"
)

type Loggers struct {
	Main         *zap.Logger
	Auth         *zap.Logger
	Request      *zap.Logger
	Notification *zap.Logger
}

// NewLoggers раздаёт подсистемам именованные дочерние логгеры.
func NewLoggers(base *zap.Logger) *Loggers {
	return &Loggers{
		Main:         base,
		Auth:         base.Named("auth"),
		Request:      base.Named("request"),
		Notification: base.Named("notification"),
	}
}

// Services - всё, что нужно контроллерам. В тестах собирается из заглушек.
type Services struct {
	Auth         services.AuthServiceInterface
	Catalogue    services.CatalogueServiceInterface
	Technician   services.TechnicianServiceInterface
	User         services.UserServiceInterface
	Request      services.RequestServiceInterface
	Notification services.NotificationServiceInterface
	Report       services.ReportServiceInterface
	Reminder     services.ReminderServiceInterface
}

func NewServices(
	dbConn *pgxpool.Pool,
	cacheRepo repositories.CacheRepositoryInterface,
	publisher services.EventPublisher,
	fileStorage filestorage.FileStorageInterface,
	cfg *config.Config,
	loggers *Loggers,
) *Services {
	// --- 1. РЕПОЗИТОРИИ ---
	txManager := repositories.NewTxManager(dbConn)
	userRepo := repositories.NewUserRepository(dbConn, loggers.Auth)
	catalogueRepo := repositories.NewCatalogueRepository(dbConn, loggers.Main)
	technicianRepo := repositories.NewTechnicianRepository(dbConn, loggers.Main)
	requestRepo := repositories.NewRequestRepository(dbConn, loggers.Request)
	notificationRepo := repositories.NewNotificationRepository(dbConn, loggers.Notification)
	sparePartRepo := repositories.NewSparePartRequestRepository(dbConn, loggers.Request)
	purchaseOrderRepo := repositories.NewPurchaseOrderRepository(dbConn, loggers.Request)

	// --- 2. СЕРВИСЫ ---
	return &Services{
		Auth:       services.NewAuthService(userRepo, cacheRepo, loggers.Auth, &cfg.Auth),
		Catalogue:  services.NewCatalogueService(catalogueRepo, loggers.Main),
		Technician: services.NewTechnicianService(txManager, technicianRepo, catalogueRepo, loggers.Main),
		User:       services.NewUserService(txManager, userRepo, technicianRepo, loggers.Auth),
		Request: services.NewRequestService(
			txManager, requestRepo, catalogueRepo, technicianRepo, notificationRepo,
			sparePartRepo, purchaseOrderRepo, publisher, loggers.Request,
		),
		Notification: services.NewNotificationService(notificationRepo, loggers.Notification),
		Report:       services.NewReportService(requestRepo, fileStorage, loggers.Main),
		Reminder: services.NewReminderService(
			txManager, requestRepo, notificationRepo, cacheRepo, publisher, cfg.Scheduler, loggers.Notification,
		),
	}
}

func InitRouter(e *echo.Echo, svcs *Services, jwtSvc service.JWTService, hub *websocket.Hub, cfg *config.Config, loggers *Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, svcs.Auth, jwtSvc, &cfg.Server, loggers.Auth)
	runWebSocketRouter(api, hub, authMW, cfg.Server.AllowedOrigins, loggers.Notification)

	for _, kind := range entities.AllCatalogues {
		runCatalogueRouter(secureGroup, svcs.Catalogue, kind, loggers.Main, authMW)
	}
	runTechnicianRouter(secureGroup, svcs.Technician, loggers.Main, authMW)
	runUserRouter(secureGroup, svcs.User, loggers.Auth, authMW)
	runRequestRouter(secureGroup, svcs.Request, loggers.Request, authMW)
	runProcurementRouter(secureGroup, svcs.Request, loggers.Request, authMW)
	runNotificationRouter(secureGroup, svcs.Notification, loggers.Notification)
	runReportRouter(secureGroup, svcs.Report, loggers.Main, authMW)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}
