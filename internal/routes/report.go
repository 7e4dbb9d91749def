package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/middleware"
)

func runReportRouter(secureGroup *echo.Group, reportService services.ReportServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	reportCtrl := controllers.NewReportController(reportService, logger)

	reports := secureGroup.Group("/report", authMW.RequireRoles(roleEngineer, roleAdmin))
	reports.GET("", reportCtrl.GetReport)
	reports.GET("/export", reportCtrl.ExportReport)

	secureGroup.GET("/stats", reportCtrl.GetStats)
}
