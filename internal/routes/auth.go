package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/service"
)

func runAuthRouter(
	api *echo.Group,
	secureGroup *echo.Group,
	authService services.AuthServiceInterface,
	jwtSvc service.JWTService,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) {
	authCtrl := controllers.NewAuthController(authService, jwtSvc, cfg, logger)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authCtrl.Login)
	authGroup.POST("/refresh", authCtrl.RefreshToken)
	authGroup.POST("/logout", authCtrl.Logout)

	secureGroup.GET("/auth/me", authCtrl.Me)
}
