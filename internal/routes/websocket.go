package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/pkg/middleware"
	"maintenance-system/pkg/websocket"
)

func runWebSocketRouter(api *echo.Group, hub *websocket.Hub, authMW *middleware.AuthMiddleware, allowedOrigins []string, logger *zap.Logger) {
	wsCtrl := controllers.NewWebSocketController(hub, authMW, allowedOrigins, logger)
	api.GET("/ws", wsCtrl.ServeWs)
}
