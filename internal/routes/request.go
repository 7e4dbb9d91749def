package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/middleware"
)

func runRequestRouter(secureGroup *echo.Group, requestService services.RequestServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	ctrl := controllers.NewRequestController(requestService, logger)

	requests := secureGroup.Group("/requests")
	requests.GET("", ctrl.GetRequests)
	requests.GET("/:id", ctrl.FindRequest)
	requests.POST("", ctrl.CreateRequest, authMW.RequireRoles(roleEngineer, roleBranch, roleAdmin))
	requests.POST("/:id/assign", ctrl.AssignTechnician, authMW.RequireRoles(roleEngineer, roleAdmin))
	requests.POST("/:id/status", ctrl.UpdateStatus, authMW.RequireRoles(roleTechnician, roleEngineer, roleAdmin))
	requests.POST("/:id/spare-parts", ctrl.RequestSpareParts, authMW.RequireRoles(roleTechnician, roleEngineer, roleAdmin))
	requests.POST("/:id/purchase-orders", ctrl.CreatePurchaseOrder, authMW.RequireRoles(roleEngineer, roleAdmin))
}
