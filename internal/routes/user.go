package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, userService services.UserServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	userCtrl := controllers.NewUserController(userService, logger)

	users := secureGroup.Group("/users", authMW.RequireRoles(roleAdmin))
	users.GET("", userCtrl.GetUsers)
	users.GET("/:id", userCtrl.FindUser)
	users.POST("", userCtrl.CreateUser)
	users.PUT("/:id", userCtrl.UpdateUser)
	users.DELETE("/:id", userCtrl.DeleteUser)
}
