package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/middleware"
)

func runTechnicianRouter(secureGroup *echo.Group, technicianService services.TechnicianServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	ctrl := controllers.NewTechnicianController(technicianService, logger)
	adminOnly := authMW.RequireRoles(roleAdmin)

	group := secureGroup.Group("/technicians", authMW.RequireRoles(roleEngineer, roleAdmin))
	group.GET("", ctrl.GetTechnicians)
	group.GET("/:id", ctrl.FindTechnician)
	group.POST("", ctrl.CreateTechnician, adminOnly)
	group.PUT("/:id", ctrl.UpdateTechnician, adminOnly)
	group.DELETE("/:id", ctrl.DeleteTechnician, adminOnly)
}
