package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/middleware"
)

func runProcurementRouter(secureGroup *echo.Group, requestService services.RequestServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	ctrl := controllers.NewProcurementController(requestService, logger)

	parts := secureGroup.Group("/spare-part-requests")
	parts.GET("", ctrl.GetSparePartRequests, authMW.RequireRoles(roleStore, roleEngineer, roleAdmin))
	parts.POST("/:id/decision", ctrl.DecideSparePart, authMW.RequireRoles(roleStore, roleAdmin))

	orders := secureGroup.Group("/purchase-orders", authMW.RequireRoles(roleEngineer, roleAdmin))
	orders.GET("", ctrl.GetPurchaseOrders)
	orders.POST("/:id/decision", ctrl.DecidePurchaseOrder)
}
