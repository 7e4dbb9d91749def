package routes

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/middleware"
)

// cataloguePath: maintenance_types -> /maintenance-types
func cataloguePath(kind entities.CatalogueKind) string {
	return "/" + strings.ReplaceAll(string(kind), "_", "-")
}

func runCatalogueRouter(
	secureGroup *echo.Group,
	catalogueService services.CatalogueServiceInterface,
	kind entities.CatalogueKind,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	ctrl := controllers.NewCatalogueController(catalogueService, kind, logger)
	manage := authMW.RequireRoles(roleEngineer, roleAdmin)

	group := secureGroup.Group(cataloguePath(kind))
	group.GET("", ctrl.GetItems)
	group.GET("/:id", ctrl.FindItem)
	group.POST("", ctrl.CreateItem, manage)
	group.PUT("/:id", ctrl.UpdateItem, manage)
	group.DELETE("/:id", ctrl.DeleteItem, manage)
}
